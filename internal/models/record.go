package models

import (
	"time"

	"gorm.io/gorm"
)

// Stamps records which users created, edited, deleted and restored a record.
type Stamps struct {
	CreatedBy  *uint `gorm:"index" json:"created_by"`
	UpdatedBy  *uint `json:"updated_by"`
	DeletedBy  *uint `json:"deleted_by"`
	RestoredBy *uint `json:"restored_by"`
}

// AuditStamps exposes the stamp block so hooks can recognise auditable records.
func (s *Stamps) AuditStamps() *Stamps {
	return s
}

// Auditable is implemented by every record that embeds Stamps.
type Auditable interface {
	AuditStamps() *Stamps
}

// Record is the persisted base shared by events and participants.
type Record struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`
	Stamps
}

// GetID returns the primary key.
func (r Record) GetID() uint {
	return r.ID
}

// Trashed reports whether the record has been soft-deleted.
func (r Record) Trashed() bool {
	return r.DeletedAt.Valid
}

// Entity describes a record type managed by the generic repository.
type Entity interface {
	GetID() uint
	TableName() string
	EntityName() string
	FillableFields() []string
}
