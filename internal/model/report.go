package model

import "time"

// AuditReport is the persisted outcome of the residential audit pipeline.
type AuditReport struct {
	AuditID        string          `json:"audit_id,omitempty"`
	EndUse         EndUseBreakdown `json:"end_use"`
	TotalKWh       int             `json:"total_kwh"`
	Score          int             `json:"score"`
	Advice         []AdviceItem    `json:"advice"`
	AdviceOrigin   AdviceOrigin    `json:"advice_origin"`
	FallbackReason string          `json:"fallback_reason,omitempty"`
	GeneratedAt    time.Time       `json:"generated_at,omitempty"`
}

// AssessmentInput is the dwelling snapshot a SolarAssessment was computed from.
type AssessmentInput struct {
	City         string       `json:"city,omitempty"`
	Address      string       `json:"address,omitempty"`
	DwellingType DwellingType `json:"dwelling_type"`
	RoofType     RoofType     `json:"roof_type"`
}

// SolarAssessment is the self-service solar potential report.
type SolarAssessment struct {
	ID         string                 `json:"id,omitempty"`
	AuditID    string                 `json:"audit_id,omitempty"`
	Input      AssessmentInput        `json:"input"`
	Potential  SolarSizing            `json:"potential"`
	Economics  Economics              `json:"economics"`
	Projection Projection             `json:"projection"`
	Battery    *BatteryRecommendation `json:"battery,omitempty"`
	CreatedAt  time.Time              `json:"created_at,omitempty"`
}

// FieldSuggestion is a fixed follow-up shown on a field report.
type FieldSuggestion struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	When   string `json:"when"`
}

// SiteReport is the professional solar report built from a site visit.
type SiteReport struct {
	ID             string            `json:"id,omitempty"`
	LeadID         string            `json:"lead_id,omitempty"`
	SiteVisitID    string            `json:"site_visit_id,omitempty"`
	ReadinessScore int               `json:"readiness_score"`
	Sizing         SolarSizing       `json:"sizing"`
	Economics      Economics         `json:"economics"`
	Suggestions    []FieldSuggestion `json:"suggestions"`
	CreatedAt      time.Time         `json:"created_at,omitempty"`
}
