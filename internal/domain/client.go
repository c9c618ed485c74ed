package domain

import (
	"github.com/google/uuid"
)

// Client is a deduplicated borrower record, lazily created the first time a
// loan's document folder is accessed. Uniqueness is enforced by the store on
// (owner, phone) and (owner, lead id), not just checked in code.
type Client struct {
	BaseModel
	OwnerID uuid.UUID  `gorm:"type:uuid;not null;index:idx_clients_owner_id;uniqueIndex:uq_clients_owner_phone,priority:1;uniqueIndex:uq_clients_owner_lead,priority:1" json:"owner_id"`
	Name    string     `gorm:"type:varchar(255);not null" json:"name"`
	Phone   *string    `gorm:"type:varchar(50);uniqueIndex:uq_clients_owner_phone,priority:2" json:"phone,omitempty"`
	Email   string     `gorm:"type:varchar(255)" json:"email"`
	LeadID  *string    `gorm:"type:varchar(100);uniqueIndex:uq_clients_owner_lead,priority:2" json:"lead_id,omitempty"`
}

// ClientDocument is a file stored under a client, taggable and foldered
type ClientDocument struct {
	BaseModel
	ClientID     uuid.UUID `gorm:"type:uuid;not null;index:idx_client_documents_client_id" json:"client_id"`
	Folder       string    `gorm:"type:varchar(255);not null;default:''" json:"folder"`
	Tag          string    `gorm:"type:varchar(100)" json:"tag"`
	StoragePath  string    `gorm:"type:text;not null" json:"storage_path"`
	FileName     string    `gorm:"type:varchar(255);not null" json:"file_name"`
	ContentType  string    `gorm:"type:varchar(100);not null" json:"content_type"`
	SizeBytes    int64     `gorm:"not null" json:"size_bytes"`
	UploadedByID uuid.UUID `gorm:"type:uuid;not null" json:"uploaded_by_id"`
	Client       Client    `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"client,omitempty"`
}

// TableName specifies the table name for Client
func (Client) TableName() string {
	return "clients"
}

// TableName specifies the table name for ClientDocument
func (ClientDocument) TableName() string {
	return "client_documents"
}
