package models

// Provider represents a row of the providers table.
type Provider struct {
	Name         string `json:"name" db:"name"`
	Priority     int    `json:"priority" db:"priority"`
	ActiveFlag   bool   `json:"activeFlag" db:"active_flag"`
	ActiveStatus bool   `json:"activeStatus" db:"active_status"`
	AuditFields
}
