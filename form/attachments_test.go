package form

import (
	"testing"

	"github.com/luigilocane-sketch/ricorsi-sinafi/model"
)

func TestAttachmentsPutRejectsEarly(t *testing.T) {
	atts := NewAttachments([]model.Document{
		{ID: "ci", Label: "Carta d'Identità", Required: true, FileKind: model.FilePDF},
	})

	if err := atts.Put("ci", "carta.pdf", 1024); err != nil {
		t.Fatalf("valid file rejected: %v", err)
	}

	// a bad file must not displace the accepted one
	if err := atts.Put("ci", "carta.jpg", 1024); err == nil {
		t.Fatal("wrong extension accepted")
	}
	if err := atts.Put("ci", "enorme.pdf", MaxFileSize+1); err == nil {
		t.Fatal("oversized file accepted")
	}

	got, ok := atts.Get("ci")
	if !ok || got.Name != "carta.pdf" {
		t.Errorf("previously accepted file lost, got %+v", got)
	}
}

func TestAttachmentsUnknownDocument(t *testing.T) {
	atts := NewAttachments(nil)
	if err := atts.Put("ghost", "x.pdf", 1); err == nil {
		t.Error("expected rejection for unknown document id")
	}
}

func TestAttachmentsRemove(t *testing.T) {
	atts := NewAttachments([]model.Document{
		{ID: "ci", FileKind: model.FileBoth},
	})
	if err := atts.Put("ci", "foto.png", 10); err != nil {
		t.Fatal(err)
	}
	atts.Remove("ci")
	if _, ok := atts.Get("ci"); ok {
		t.Error("expected slot to be cleared")
	}
}
