package model

import "time"

// PlanEntry is one catalog action a user has added to their action plan.
type PlanEntry struct {
	UserID     string    `json:"user_id"`
	ActionCode string    `json:"action_code"`
	AddedAt    time.Time `json:"added_at"`
}
