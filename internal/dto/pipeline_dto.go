package dto

import "github.com/google/uuid"

// ProcessDocumentMessage is the queue payload that triggers a pipeline run.
type ProcessDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
	TenantId   uuid.UUID `json:"tenant_id"`
	FileName   string    `json:"file_name"`
	FilePath   string    `json:"file_path"`
}
