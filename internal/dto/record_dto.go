package dto

import (
	"time"

	"github.com/noah-isme/gema-events-api/internal/models"
)

const dateLayout = "2006-01-02"

// PaginationMeta captures pagination metadata for list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginationMeta derives the page count from the totals.
func NewPaginationMeta(page, pageSize int, total int64) PaginationMeta {
	meta := PaginationMeta{Page: page, PageSize: pageSize, TotalItems: total}
	if pageSize > 0 {
		meta.TotalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return meta
}

// RecordMeta is the identity, timestamp and stamp block shared by record responses.
type RecordMeta struct {
	ID         uint       `json:"id"`
	CreatedBy  *uint      `json:"created_by"`
	UpdatedBy  *uint      `json:"updated_by"`
	DeletedBy  *uint      `json:"deleted_by"`
	RestoredBy *uint      `json:"restored_by"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at"`
}

func newRecordMeta(record models.Record) RecordMeta {
	var deletedAt *time.Time
	if record.DeletedAt.Valid {
		t := record.DeletedAt.Time
		deletedAt = &t
	}

	return RecordMeta{
		ID:         record.ID,
		CreatedBy:  record.CreatedBy,
		UpdatedBy:  record.UpdatedBy,
		DeletedBy:  record.DeletedBy,
		RestoredBy: record.RestoredBy,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
		DeletedAt:  deletedAt,
	}
}
