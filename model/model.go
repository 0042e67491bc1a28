package model

import (
	"strings"
	"time"
)

// FieldType is the closed set of input affordances an admin can pick for a
// data field. Validation dispatches on this tag, never on reflection.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldTel      FieldType = "tel"
	FieldDate     FieldType = "date"
	FieldNumber   FieldType = "number"
	FieldSelect   FieldType = "select"
	FieldTextarea FieldType = "textarea"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldEmail, FieldTel, FieldDate, FieldNumber, FieldSelect, FieldTextarea:
		return true
	}
	return false
}

// FileKind restricts which file extensions a required document accepts.
type FileKind string

const (
	FilePDF   FileKind = "pdf"
	FileImage FileKind = "image"
	FileBoth  FileKind = "both"
)

func (k FileKind) Valid() bool {
	return k == FilePDF || k == FileImage || k == FileBoth
}

// Extensions returns the accepted file extensions, lowercase, without dot.
func (k FileKind) Extensions() []string {
	switch k {
	case FilePDF:
		return []string{"pdf"}
	case FileImage:
		return []string{"jpg", "jpeg", "png"}
	default:
		return []string{"pdf", "jpg", "jpeg", "png"}
	}
}

// Accepts reports whether ext (with or without leading dot, any case) is in
// the accepted set.
func (k FileKind) Accepts(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, e := range k.Extensions() {
		if e == ext {
			return true
		}
	}
	return false
}

// Field is one admin-defined data input. ID is immutable once submissions
// referencing it exist. Region marks the field whose value drives the
// per-region statistics breakdown.
type Field struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required"`
	Placeholder string    `json:"placeholder,omitempty"`
	Options     []string  `json:"options,omitempty"`
	Region      bool      `json:"region,omitempty"`
}

// Document is one admin-defined required upload.
type Document struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Required    bool     `json:"required"`
	FileKind    FileKind `json:"fileKind"`
	ExampleFile string   `json:"exampleFile,omitempty"`
}

// Campaign is a collective petition with its own field and document schema.
// Deadlines are ISO strings ("2006-01-02" or RFC3339) as entered by the
// admin; they are parsed only when the stats aggregator needs them.
type Campaign struct {
	ID                string            `json:"id,omitempty"`
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	BadgeText         string            `json:"badgeText"`
	Active            bool              `json:"active"`
	Fields            []Field           `json:"fields"`
	Documents         []Document        `json:"documents"`
	GeneralDeadline   string            `json:"generalDeadline,omitempty"`
	RegionalDeadlines map[string]string `json:"regionalDeadlines,omitempty"`
	CreatedAt         time.Time         `json:"createdAt,omitempty"`
	UpdatedAt         time.Time         `json:"updatedAt,omitempty"`
}

// FieldByID returns the schema field with the given id.
func (c Campaign) FieldByID(id string) (Field, bool) {
	for _, f := range c.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// DocumentByID returns the schema document with the given id.
func (c Campaign) DocumentByID(id string) (Document, bool) {
	for _, d := range c.Documents {
		if d.ID == id {
			return d, true
		}
	}
	return Document{}, false
}
