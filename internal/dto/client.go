package dto

import (
	"time"

	"github.com/google/uuid"

	"loan-portal-api/internal/domain"
)

// ClientResponse is the API representation of a deduplicated borrower record
type ClientResponse struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Name      string    `json:"name"`
	Phone     *string   `json:"phone,omitempty"`
	Email     string    `json:"email"`
	LeadID    *string   `json:"lead_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ClientDocumentResponse is the API representation of a stored client file
type ClientDocumentResponse struct {
	ID          uuid.UUID `json:"id"`
	ClientID    uuid.UUID `json:"client_id"`
	Folder      string    `json:"folder"`
	Tag         string    `json:"tag"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

// ClientFolderResponse is the lazy document-folder view for a loan: the
// client record (created on first access) plus its documents
type ClientFolderResponse struct {
	Client    ClientResponse           `json:"client"`
	Documents []ClientDocumentResponse `json:"documents"`
}

// ToClientResponse converts a domain client
func ToClientResponse(c *domain.Client) ClientResponse {
	return ClientResponse{
		ID:        c.ID,
		OwnerID:   c.OwnerID,
		Name:      c.Name,
		Phone:     c.Phone,
		Email:     c.Email,
		LeadID:    c.LeadID,
		CreatedAt: c.CreatedAt,
	}
}

// ToClientDocumentResponse converts a domain client document
func ToClientDocumentResponse(d *domain.ClientDocument) ClientDocumentResponse {
	return ClientDocumentResponse{
		ID:          d.ID,
		ClientID:    d.ClientID,
		Folder:      d.Folder,
		Tag:         d.Tag,
		FileName:    d.FileName,
		ContentType: d.ContentType,
		SizeBytes:   d.SizeBytes,
		CreatedAt:   d.CreatedAt,
	}
}

// ToClientDocumentResponses converts a slice of domain client documents
func ToClientDocumentResponses(docs []*domain.ClientDocument) []ClientDocumentResponse {
	out := make([]ClientDocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, ToClientDocumentResponse(d))
	}
	return out
}
