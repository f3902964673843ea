package models

import "github.com/google/uuid"

// Page represents a published or draft page built in the editor
type Page struct {
	BaseModel
	Title      string     `db:"title" json:"title"`
	Slug       string     `db:"slug" json:"slug"`
	Content    []byte     `db:"content" json:"content"` // serialized block tree
	Published  bool       `db:"published" json:"published"`
	TemplateID *uuid.UUID `db:"template_id" json:"template_id,omitempty"`
}

// Template represents a reusable page layout
type Template struct {
	BaseModel
	Name    string `db:"name" json:"name"`
	Content []byte `db:"content" json:"content"`
}
