package domain

import "time"

// AgentOutput stores what an extraction agent reported for a document.
// ExtractedRequirements is kept as submitted; the service does not interpret it.
type AgentOutput struct {
	ID                    string           `json:"id" bson:"_id,omitempty"`
	AgentOutputID         string           `json:"agent_output_id" bson:"agent_output_id"`
	DocumentID            string           `json:"document_id" bson:"document_id"`
	AgentType             string           `json:"agent_type,omitempty" bson:"agent_type,omitempty"`
	ExtractedRequirements []map[string]any `json:"extracted_requirements" bson:"extracted_requirements"`
	CreatedBy             string           `json:"created_by,omitempty" bson:"created_by,omitempty"`
	CreatedAt             time.Time        `json:"created_at" bson:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at" bson:"updated_at"`
}
