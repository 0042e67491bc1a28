package form

import (
	"errors"
	"testing"

	"github.com/luigilocane-sketch/ricorsi-sinafi/model"
)

func TestAddFieldDefaults(t *testing.T) {
	draft := NewDraft()
	a := draft.AddField()
	b := draft.AddField()

	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected fresh unique ids, got %q and %q", a.ID, b.ID)
	}
	if a.Type != model.FieldText || !a.Required {
		t.Errorf("unexpected defaults: %+v", a)
	}
}

func TestAddDocumentLimit(t *testing.T) {
	draft := NewDraft()
	for i := 0; i < MaxDocuments; i++ {
		if _, err := draft.AddDocument(); err != nil {
			t.Fatalf("document %d rejected: %v", i+1, err)
		}
	}

	_, err := draft.AddDocument()
	if !errors.Is(err, ErrDocumentLimit) {
		t.Errorf("expected ErrDocumentLimit, got %v", err)
	}
	if n := len(draft.Campaign.Documents); n != MaxDocuments {
		t.Errorf("document count changed on rejection: %d", n)
	}
}

func TestRemovePreservesOrder(t *testing.T) {
	draft := NewDraft()
	for _, label := range []string{"a", "b", "c", "d"} {
		draft.AddField().Label = label
	}
	draft.RemoveField(1)

	got := []string{}
	for _, f := range draft.Campaign.Fields {
		got = append(got, f.Label)
	}
	want := []string{"a", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	// out of range is a no-op
	draft.RemoveField(17)
	draft.RemoveField(-1)
	if len(draft.Campaign.Fields) != 3 {
		t.Error("out-of-range removal changed the list")
	}
}

func TestCheckSchema(t *testing.T) {
	field := model.Field{ID: "f", Type: model.FieldText}
	doc := model.Document{ID: "d", FileKind: model.FilePDF}
	manyDocs := make([]model.Document, MaxDocuments+1)
	for i := range manyDocs {
		manyDocs[i] = doc
	}

	tests := []struct {
		name     string
		campaign model.Campaign
		want     error
	}{
		{"no fields", model.Campaign{Documents: []model.Document{doc}}, ErrNoFields},
		{"no documents", model.Campaign{Fields: []model.Field{field}}, ErrNoDocuments},
		{"too many documents", model.Campaign{Fields: []model.Field{field}, Documents: manyDocs}, ErrDocumentLimit},
		{"valid", model.Campaign{Fields: []model.Field{field}, Documents: []model.Document{doc}}, nil},
		{"at the limit", model.Campaign{Fields: []model.Field{field}, Documents: manyDocs[:MaxDocuments]}, nil},
	}
	for _, tt := range tests {
		if err := CheckSchema(tt.campaign); !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}
}

func TestCheckSchemaRejectsUnknownTypes(t *testing.T) {
	field := model.Field{ID: "f", Type: model.FieldText}
	doc := model.Document{ID: "d", FileKind: model.FilePDF}

	badField := model.Campaign{
		Fields:    []model.Field{{ID: "f", Type: "checkbox"}},
		Documents: []model.Document{doc},
	}
	if err := CheckSchema(badField); err == nil {
		t.Error("expected rejection of unknown field type")
	}

	badKind := model.Campaign{
		Fields:    []model.Field{field},
		Documents: []model.Document{{ID: "d", FileKind: "zip"}},
	}
	if err := CheckSchema(badKind); err == nil {
		t.Error("expected rejection of unknown file kind")
	}

	empty := model.Campaign{
		Fields:    []model.Field{{ID: "f"}},
		Documents: []model.Document{doc},
	}
	if err := CheckSchema(empty); err == nil {
		t.Error("expected rejection of empty field type")
	}
}

func TestExampleNeedsPersistedCampaign(t *testing.T) {
	draft := NewDraft()
	if _, err := draft.AddDocument(); err != nil {
		t.Fatal(err)
	}

	if err := draft.AttachExample(0, "/api/examples/x/y"); !errors.Is(err, ErrUnsavedDraft) {
		t.Errorf("expected ErrUnsavedDraft on fresh draft, got %v", err)
	}

	saved := EditDraft(model.Campaign{
		ID:        "campaign-1",
		Documents: []model.Document{{ID: "d", FileKind: model.FilePDF}},
	})
	if err := saved.AttachExample(0, "/api/examples/campaign-1/d"); err != nil {
		t.Errorf("expected attach to work on persisted campaign, got %v", err)
	}
	if saved.Campaign.Documents[0].ExampleFile == "" {
		t.Error("example reference not recorded")
	}
	if err := saved.RemoveExample(0); err != nil {
		t.Errorf("remove failed: %v", err)
	}
	if saved.Campaign.Documents[0].ExampleFile != "" {
		t.Error("example reference not cleared")
	}
}
