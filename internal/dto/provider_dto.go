package dto

import "github.com/SscSPs/mycurrency/internal/core/domain"

// ProviderResponse describes one registry entry.
type ProviderResponse struct {
	Name         string `json:"name"`
	Priority     int    `json:"priority"`
	ActiveFlag   bool   `json:"activeFlag"`
	ActiveStatus bool   `json:"activeStatus"`
}

// ToProviderResponse converts a domain.Provider to its DTO
func ToProviderResponse(p domain.Provider) ProviderResponse {
	return ProviderResponse{
		Name:         p.Name,
		Priority:     p.Priority,
		ActiveFlag:   p.ActiveFlag,
		ActiveStatus: p.ActiveStatus,
	}
}

// ToListProviderResponse converts the registry to DTOs.
func ToListProviderResponse(ps []domain.Provider) []ProviderResponse {
	res := make([]ProviderResponse, len(ps))
	for i, p := range ps {
		res[i] = ToProviderResponse(p)
	}
	return res
}

// FailoverRequest triggers a manual failover.
type FailoverRequest struct {
	Reason string `json:"reason"`
}

// FailoverResponse reports the rotation.
type FailoverResponse struct {
	Deactivated string `json:"deactivated"`
	Activated   string `json:"activated,omitempty"`
	Superseded  bool   `json:"superseded,omitempty"`
}

// ToFailoverResponse converts a failover result to its DTO
func ToFailoverResponse(r *domain.FailoverResult) FailoverResponse {
	return FailoverResponse{Deactivated: r.Deactivated, Activated: r.Activated, Superseded: r.Superseded}
}
