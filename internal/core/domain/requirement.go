package domain

import "time"

const (
	RequirementFunctional    = "FR"
	RequirementNonFunctional = "NFR"
)

// MoSCoW priorities.
const (
	PriorityMust   = "Must"
	PriorityShould = "Should"
	PriorityCould  = "Could"
	PriorityWont   = "Won't"
)

// Requirement is a single functional or non-functional requirement.
type Requirement struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	RequirementID string    `json:"requirement_id" bson:"requirement_id"`
	Source        string    `json:"source,omitempty" bson:"source,omitempty"`
	Type          string    `json:"type,omitempty" bson:"type,omitempty"`
	Description   string    `json:"description,omitempty" bson:"description,omitempty"`
	Category      string    `json:"category,omitempty" bson:"category,omitempty"`
	Priority      string    `json:"priority,omitempty" bson:"priority,omitempty"`
	Tags          []string  `json:"tags" bson:"tags"`
	IsDuplicate   bool      `json:"is_duplicate" bson:"is_duplicate"`
	Notes         string    `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedBy     string    `json:"created_by,omitempty" bson:"created_by,omitempty"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`
}
