package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Accounts ---

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type createAccountRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"     validate:"required,oneof=admin agent user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin agent user"`
}

type accountResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type loginResponse struct {
	accountResponse
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type currentUserResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// --- Documents ---

type createDocumentRequest struct {
	DocumentID       string   `json:"document_id"`
	OriginalFileName string   `json:"original_file_name"`
	StoredFilePath   string   `json:"stored_file_path"`
	FileType         string   `json:"file_type"`
	AgentOutputID    string   `json:"agent_output_id"`
	Status           string   `json:"status"            validate:"omitempty,oneof=uploaded processed"`
	FinalJSONPath    string   `json:"final_json_path"`
	FinalDocxPath    string   `json:"final_docx_path"`
	VersionHistory   []string `json:"version_history"`
}

// --- Agent outputs ---

type createAgentOutputRequest struct {
	AgentOutputID         string           `json:"agent_output_id"`
	DocumentID            string           `json:"document_id"            validate:"required"`
	AgentType             string           `json:"agent_type"`
	ExtractedRequirements []map[string]any `json:"extracted_requirements"`
}

// --- Requirements ---

// Priority is checked by the service: validator's oneof cannot express "Won't".
type createRequirementRequest struct {
	RequirementID string   `json:"requirement_id"`
	Source        string   `json:"source"`
	Type          string   `json:"type"           validate:"omitempty,oneof=FR NFR"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Priority      string   `json:"priority"`
	Tags          []string `json:"tags"`
	IsDuplicate   bool     `json:"is_duplicate"`
	Notes         string   `json:"notes"`
}
