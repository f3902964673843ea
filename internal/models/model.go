package models

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel carries the identifier and lifecycle timestamps shared by all
// persisted entities. A non-nil DeletedAt marks a soft-deleted row.
type BaseModel struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the row is soft-deleted.
func (m BaseModel) IsDeleted() bool { return m.DeletedAt != nil }
