package model

import "time"

// BillRange is the monthly electricity bill bracket in EUR.
type BillRange string

const (
	BillUnder30  BillRange = "<30"
	Bill30To60   BillRange = "30-60"
	Bill60To100  BillRange = "60-100"
	Bill100To150 BillRange = "100-150"
	BillOver150  BillRange = ">150"
)

// LeadStatus tracks a lead through the field sales flow.
type LeadStatus string

const (
	LeadStatusNew      LeadStatus = "new"
	LeadStatusVisited  LeadStatus = "visited"
	LeadStatusReported LeadStatus = "reported"
)

// Lead is a request for a professional on-site audit.
type Lead struct {
	ID                   string     `json:"id,omitempty"`
	Name                 string     `json:"name"`
	Phone                string     `json:"phone"`
	Email                string     `json:"email,omitempty"`
	City                 string     `json:"city,omitempty"`
	Address              string     `json:"address,omitempty"`
	PreferredContactTime string     `json:"preferred_contact_time,omitempty"`
	BillRange            BillRange  `json:"bill_range"`
	RoughEstimateEUR     int        `json:"rough_estimate_eur"`
	Status               LeadStatus `json:"status"`
	CreatedAt            time.Time  `json:"created_at,omitempty"`
}
