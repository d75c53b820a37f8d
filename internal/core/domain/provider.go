package domain

import (
	"fmt"
	"sort"

	"github.com/SscSPs/mycurrency/internal/apperrors"
)

// Provider is a registered exchange-rate source.
// ActiveFlag marks it usable at all; ActiveStatus marks it as the one currently selected.
type Provider struct {
	Name         string `json:"name"`
	Priority     int    `json:"priority"`
	ActiveFlag   bool   `json:"activeFlag"`
	ActiveStatus bool   `json:"activeStatus"`
	AuditFields
}

// Well-known provider names.
const (
	ProviderCurrencyBeacon = "currencybeacon"
	ProviderMock           = "mock"
)

// DefaultProviders is the registry seeded at startup.
func DefaultProviders() []Provider {
	return []Provider{
		{Name: ProviderCurrencyBeacon, Priority: 1, ActiveFlag: true, ActiveStatus: true},
		{Name: ProviderMock, Priority: 10, ActiveFlag: true, ActiveStatus: false},
	}
}

// FailoverResult describes one registry rotation.
type FailoverResult struct {
	Deactivated string `json:"deactivated"`
	Activated   string `json:"activated,omitempty"`
	// Superseded is set when the expected provider was no longer active,
	// meaning a concurrent failover already rotated the registry.
	Superseded bool `json:"superseded,omitempty"`
}

// FailoverPlan is the set of status changes a failover must persist.
type FailoverPlan struct {
	Result     FailoverResult
	Deactivate *Provider
	Activate   *Provider
}

// ActiveProvider returns the provider with ActiveStatus set, if any.
func ActiveProvider(providers []Provider) (*Provider, bool) {
	for i := range providers {
		if providers[i].ActiveStatus {
			return &providers[i], true
		}
	}
	return nil, false
}

// SelectFailoverCandidate picks the flagged, inactive provider with the lowest
// priority. Ties are broken by name so the choice is deterministic.
func SelectFailoverCandidate(providers []Provider) (*Provider, bool) {
	candidates := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p.ActiveFlag && !p.ActiveStatus {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return nil, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority < candidates[j].Priority
		}
		return candidates[i].Name < candidates[j].Name
	})
	return &candidates[0], true
}

// PlanFailover computes the rotation for the given registry snapshot.
// When expectedActive is non-empty and another provider is active, the plan is
// a no-op marked Superseded. A plan returned together with ErrNoFallbackAvailable
// still demotes the current provider.
func PlanFailover(providers []Provider, expectedActive string) (*FailoverPlan, error) {
	active, ok := ActiveProvider(providers)
	if !ok {
		return nil, fmt.Errorf("%w: no provider is currently active", apperrors.ErrNoProviderAvailable)
	}
	if expectedActive != "" && active.Name != expectedActive {
		return &FailoverPlan{Result: FailoverResult{Activated: active.Name, Superseded: true}}, nil
	}

	demoted := *active
	demoted.ActiveStatus = false
	plan := &FailoverPlan{
		Result:     FailoverResult{Deactivated: demoted.Name},
		Deactivate: &demoted,
	}

	candidate, ok := SelectFailoverCandidate(providers)
	if !ok {
		return plan, fmt.Errorf("%w: %s was deactivated and no candidate remains", apperrors.ErrNoFallbackAvailable, demoted.Name)
	}
	promoted := *candidate
	promoted.ActiveStatus = true
	plan.Activate = &promoted
	plan.Result.Activated = promoted.Name
	return plan, nil
}

// CountActive returns how many providers have ActiveStatus set.
func CountActive(providers []Provider) int {
	n := 0
	for _, p := range providers {
		if p.ActiveStatus {
			n++
		}
	}
	return n
}
