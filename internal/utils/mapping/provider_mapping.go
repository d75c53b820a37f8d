package mapping

import (
	"github.com/SscSPs/mycurrency/internal/core/domain"
	"github.com/SscSPs/mycurrency/internal/models"
)

// ToModelProvider converts a domain Provider to a model Provider
func ToModelProvider(d domain.Provider) models.Provider {
	return models.Provider{
		Name:         d.Name,
		Priority:     d.Priority,
		ActiveFlag:   d.ActiveFlag,
		ActiveStatus: d.ActiveStatus,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainProvider converts a model Provider to a domain Provider
func ToDomainProvider(m models.Provider) domain.Provider {
	return domain.Provider{
		Name:         m.Name,
		Priority:     m.Priority,
		ActiveFlag:   m.ActiveFlag,
		ActiveStatus: m.ActiveStatus,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainProviderSlice converts a slice of model Providers.
func ToDomainProviderSlice(ms []models.Provider) []domain.Provider {
	ds := make([]domain.Provider, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainProvider(m)
	}
	return ds
}
