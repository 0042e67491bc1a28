package form

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/luigilocane-sketch/ricorsi-sinafi/model"
)

// MaxDocuments caps how many required documents a campaign may define.
const MaxDocuments = 10

var (
	ErrNoFields      = errors.New("aggiungi almeno un campo dati")
	ErrNoDocuments   = errors.New("aggiungi almeno un documento")
	ErrDocumentLimit = errors.New("massimo 10 documenti consentiti")
	ErrUnsavedDraft  = errors.New("salva prima il ricorso per gestire i file di esempio")
)

// Draft is a campaign schema being edited by one admin session. Mutations
// stay in memory; Check gates the schema before it may reach the store.
type Draft struct {
	Campaign model.Campaign
}

// NewDraft starts an empty campaign draft.
func NewDraft() *Draft {
	return &Draft{Campaign: model.Campaign{
		BadgeText: "RICORSO COLLETTIVO",
		Active:    true,
	}}
}

// EditDraft wraps an already persisted campaign for editing.
func EditDraft(c model.Campaign) *Draft {
	return &Draft{Campaign: c}
}

// AddField appends a fresh field with defaults and returns a pointer to it
// so the caller can fill in label, type and the rest.
func (d *Draft) AddField() *model.Field {
	d.Campaign.Fields = append(d.Campaign.Fields, model.Field{
		ID:       uuid.NewString(),
		Type:     model.FieldText,
		Required: true,
	})
	return &d.Campaign.Fields[len(d.Campaign.Fields)-1]
}

// AddDocument appends a fresh document with defaults, refusing once the
// limit is reached (the document list is left untouched).
func (d *Draft) AddDocument() (*model.Document, error) {
	if len(d.Campaign.Documents) >= MaxDocuments {
		return nil, ErrDocumentLimit
	}
	d.Campaign.Documents = append(d.Campaign.Documents, model.Document{
		ID:       uuid.NewString(),
		FileKind: model.FilePDF,
		Required: true,
	})
	return &d.Campaign.Documents[len(d.Campaign.Documents)-1], nil
}

// RemoveField deletes the field at the given position, preserving the
// relative order of the rest. Out-of-range positions are ignored.
func (d *Draft) RemoveField(i int) {
	if i < 0 || i >= len(d.Campaign.Fields) {
		return
	}
	d.Campaign.Fields = append(d.Campaign.Fields[:i], d.Campaign.Fields[i+1:]...)
}

// RemoveDocument deletes the document at the given position.
func (d *Draft) RemoveDocument(i int) {
	if i < 0 || i >= len(d.Campaign.Documents) {
		return
	}
	d.Campaign.Documents = append(d.Campaign.Documents[:i], d.Campaign.Documents[i+1:]...)
}

// AttachExample records an example-file reference on the document at the
// given position. Example files live per persisted campaign id, so an
// unsaved draft must be saved first.
func (d *Draft) AttachExample(i int, ref string) error {
	if d.Campaign.ID == "" {
		return ErrUnsavedDraft
	}
	if i < 0 || i >= len(d.Campaign.Documents) {
		return errors.New("documento inesistente")
	}
	d.Campaign.Documents[i].ExampleFile = ref
	return nil
}

// RemoveExample clears the example-file reference on the document at the
// given position.
func (d *Draft) RemoveExample(i int) error {
	if d.Campaign.ID == "" {
		return ErrUnsavedDraft
	}
	if i < 0 || i >= len(d.Campaign.Documents) {
		return errors.New("documento inesistente")
	}
	d.Campaign.Documents[i].ExampleFile = ""
	return nil
}

// Check runs the structural save gate on the draft.
func (d *Draft) Check() error {
	return CheckSchema(d.Campaign)
}

// CheckSchema enforces the structural invariants a campaign must satisfy
// before create or update may reach the store: at least one field, between
// one and ten documents, and every type tag drawn from the known enums.
func CheckSchema(c model.Campaign) error {
	if len(c.Fields) == 0 {
		return ErrNoFields
	}
	if len(c.Documents) == 0 {
		return ErrNoDocuments
	}
	if len(c.Documents) > MaxDocuments {
		return ErrDocumentLimit
	}
	for _, f := range c.Fields {
		if !f.Type.Valid() {
			return fmt.Errorf("tipo di campo non valido: %q", f.Type)
		}
	}
	for _, d := range c.Documents {
		if !d.FileKind.Valid() {
			return fmt.Errorf("tipo di file non valido: %q", d.FileKind)
		}
	}
	return nil
}
