package form

import (
	"fmt"

	"github.com/luigilocane-sketch/ricorsi-sinafi/model"
)

// Attachments is the pending file set built up before a submission is sent.
// Every file is checked the moment it is offered; a rejected file never
// displaces a previously accepted one for the same document slot.
type Attachments struct {
	docs  map[string]model.Document
	files map[string]Attachment
}

func NewAttachments(docs []model.Document) *Attachments {
	byID := make(map[string]model.Document, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}
	return &Attachments{
		docs:  byID,
		files: map[string]Attachment{},
	}
}

// Put offers a file for the given document slot. On any failure the slot is
// left exactly as it was.
func (a *Attachments) Put(docID, name string, size int64) error {
	doc, ok := a.docs[docID]
	if !ok {
		return fmt.Errorf("documento sconosciuto: %s", docID)
	}
	if err := CheckAttachment(doc, name, size); err != nil {
		return err
	}
	a.files[docID] = Attachment{Name: name, Size: size}
	return nil
}

// Remove clears the slot for the given document id.
func (a *Attachments) Remove(docID string) {
	delete(a.files, docID)
}

// Get returns the accepted file for a document id, if any.
func (a *Attachments) Get(docID string) (Attachment, bool) {
	att, ok := a.files[docID]
	return att, ok
}

// Files returns the accepted set keyed by document id, in the shape Validate
// expects.
func (a *Attachments) Files() map[string]Attachment {
	out := make(map[string]Attachment, len(a.files))
	for id, att := range a.files {
		out[id] = att
	}
	return out
}
