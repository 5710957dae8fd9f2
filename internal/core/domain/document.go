package domain

import "time"

// DocumentStatus is the processing state of an uploaded document. Only
// "uploaded" is ever set by this service; later states are written by
// external tooling through the generic create endpoint.
type DocumentStatus string

const (
	DocumentUploaded  DocumentStatus = "uploaded"
	DocumentProcessed DocumentStatus = "processed"
)

// Document describes an uploaded source document.
type Document struct {
	ID               string         `json:"id" bson:"_id,omitempty"`
	DocumentID       string         `json:"document_id" bson:"document_id"`
	UploadedBy       string         `json:"uploaded_by" bson:"uploaded_by"`
	OriginalFileName string         `json:"original_file_name,omitempty" bson:"original_file_name,omitempty"`
	StoredFilePath   string         `json:"stored_file_path,omitempty" bson:"stored_file_path,omitempty"`
	FileID           string         `json:"file_id,omitempty" bson:"file_id,omitempty"`
	FileType         string         `json:"file_type,omitempty" bson:"file_type,omitempty"`
	SizeBytes        int64          `json:"size_bytes,omitempty" bson:"size_bytes,omitempty"`
	UploadDate       time.Time      `json:"upload_date" bson:"upload_date"`
	AgentOutputID    string         `json:"agent_output_id,omitempty" bson:"agent_output_id,omitempty"`
	Status           DocumentStatus `json:"status" bson:"status"`
	FinalJSONPath    string         `json:"final_json_path,omitempty" bson:"final_json_path,omitempty"`
	FinalDocxPath    string         `json:"final_docx_path,omitempty" bson:"final_docx_path,omitempty"`
	VersionHistory   []string       `json:"version_history" bson:"version_history"`
	CreatedAt        time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" bson:"updated_at"`
}
