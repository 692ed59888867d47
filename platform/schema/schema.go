package schema

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	Username string `gorm:"unique;size:50;not null"`
	Email    string `gorm:"unique;size:254;not null"`
	Password []byte

	IsAdmin bool `gorm:"not null;default:false"`
}

type Asset struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	Category string `gorm:"size:50;not null;index"`

	HostName string `gorm:"size:100;not null"`
	Brand    string `gorm:"size:100"`
	Model    string `gorm:"size:100"`
	SerialNo string `gorm:"size:100"`

	Status   string `gorm:"size:50;not null;default:'Active'"`
	Location string `gorm:"size:50;not null;default:'Mumbai'"`

	// Slash-delimited allotment history, last segment is the current holder.
	AllotedUserName string `gorm:"size:500"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Attributes []AssetAttribute `gorm:"constraint:OnDelete:CASCADE"`
}

func (a *Asset) GetAttributes() map[string]string {
	attrs := make(map[string]string)
	for _, attr := range a.Attributes {
		attrs[attr.Key] = attr.Value
	}
	return attrs
}

type AssetAttribute struct {
	AssetId uuid.UUID `gorm:"type:uuid;primaryKey"`
	Key     string    `gorm:"primaryKey"`
	Value   string
}

type Employee struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	UserName       string `gorm:"size:100;not null"`
	EmailId        string `gorm:"size:254"`
	EmailPassword  string `gorm:"size:200"`
	DomainId       string `gorm:"size:100"`
	DomainPassword string `gorm:"size:200"`
	Department     string `gorm:"size:100"`
	Location       string `gorm:"size:50"`
	Status         string `gorm:"size:50;not null;default:'Active User'"`

	AssetId           *uuid.UUID `gorm:"type:uuid"`
	Asset             *Asset     `gorm:"constraint:OnDelete:SET NULL"`
	AssetAssignedDate *time.Time

	Remarks  string
	Comments string
}

type SimCard struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	CellNo   string `gorm:"unique;size:20;not null"`
	Provider string `gorm:"size:100"`

	CurrentUserName  string `gorm:"size:100"`
	CurrentUserEmail string `gorm:"size:254"`

	// Slash-delimited displaced holders, most recent first.
	PreviousUser string `gorm:"size:500"`

	Department string `gorm:"size:100"`
	Location   string `gorm:"size:50"`
	Status     string `gorm:"size:50;not null;default:'Active'"`
	Remarks    string
}

type Vendor struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	VendorName string `gorm:"size:200;not null"`
	Category   string `gorm:"size:100"`
	Location   string `gorm:"size:100"`
	Address    string

	Gstin              string `gorm:"size:50"`
	RegistrationNumber string `gorm:"size:100"`

	ContactPerson string `gorm:"size:100"`
	ContactPhone  string `gorm:"size:50"`
	ContactEmail  string `gorm:"size:254"`
	Website       string `gorm:"size:254"`

	BankName          string `gorm:"size:200"`
	BankAccountNumber string `gorm:"size:50"`
	IfscCode          string `gorm:"size:20"`

	PaymentTerms string `gorm:"size:200"`
	CreditLimit  string `gorm:"size:50"`

	Status string `gorm:"size:50;not null;default:'Active'"`

	Invoices []Invoice `gorm:"foreignKey:VendorId"`
}

type EmailAccount struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	Address  string `gorm:"unique;size:254;not null"`
	Password string `gorm:"size:200"`
	Status   string `gorm:"size:50;not null;default:'Active'"`

	// Forwarding destination, empty when forwarding is off.
	ForwardTo string `gorm:"size:254"`

	Assignments []EmailAssignment `gorm:"constraint:OnDelete:CASCADE"`
}

type EmailAssignment struct {
	EmailAccountId uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeId     uuid.UUID `gorm:"type:uuid;primaryKey"`

	Employee *Employee `gorm:"constraint:OnDelete:CASCADE"`
}

type Invoice struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	ReceivedName  string `gorm:"size:200"`
	InvoiceNumber string `gorm:"size:100;not null"`

	UploadDate  time.Time
	InvoiceDate time.Time

	Amount  float64
	Purpose string

	// Path of the uploaded document relative to the storage root, empty
	// until a file is attached.
	FilePath string `gorm:"size:500"`

	VendorId *uuid.UUID `gorm:"type:uuid"`
	Vendor   *Vendor    `gorm:"constraint:OnDelete:SET NULL"`
}

type AuditRecord struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	ActionTimestamp time.Time `gorm:"not null;index"`
	ActionBy        string    `gorm:"size:100;not null"`

	Module     string `gorm:"size:50;not null;index"`
	ActionType string `gorm:"size:50;not null;index"`

	RecordId       string `gorm:"size:100"`
	AdditionalInfo string
}
