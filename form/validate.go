// Package form holds the schema-driven submission validator and the
// campaign draft builder. Everything here is pure: persistence and HTTP are
// somebody else's problem.
package form

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/luigilocane-sketch/ricorsi-sinafi/model"
)

// MaxFileSize is the per-file upload limit, inclusive.
const MaxFileSize = 15 * 1024 * 1024 // 15 MiB

var ErrFileTooLarge = errors.New("il file supera il limite di 15 MB")

var reEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s has a local@domain.tld shape.
func ValidEmail(s string) bool {
	return reEmail.MatchString(s)
}

// Errors maps field or document ids to user-facing messages.
type Errors map[string]string

// Attachment is a candidate file for one document slot.
type Attachment struct {
	Name string
	Size int64
}

// Validate checks candidate values and attached files against the campaign
// schema. All detected errors are returned together, keyed by field or
// document id, so a caller can show each one next to the offending input.
// A nil/empty result means the submission is acceptable as a whole.
func Validate(c model.Campaign, values map[string]string, files map[string]Attachment) Errors {
	errs := ValidateFields(c.Fields, values)
	for id, msg := range ValidateDocuments(c.Documents, files) {
		errs[id] = msg
	}
	return errs
}

// ValidateFields applies the per-field rules: required fields reject
// empty/whitespace-only values, email fields reject malformed non-empty
// values. Other types (number, date, tel) accept any non-empty string; that
// laxness is inherited behavior, kept on purpose.
func ValidateFields(fields []model.Field, values map[string]string) Errors {
	errs := Errors{}
	for _, f := range fields {
		value := strings.TrimSpace(values[f.ID])
		if f.Required && value == "" {
			errs[f.ID] = fmt.Sprintf("%s è obbligatorio", f.Label)
			continue
		}
		if f.Type == model.FieldEmail && value != "" && !reEmail.MatchString(value) {
			errs[f.ID] = "Email non valida"
		}
	}
	return errs
}

// ValidateDocuments checks that every required document has a file. Supplied
// files are assumed to have passed CheckAttachment when they entered the
// pending set.
func ValidateDocuments(docs []model.Document, files map[string]Attachment) Errors {
	errs := Errors{}
	for _, d := range docs {
		if !d.Required {
			continue
		}
		if _, ok := files[d.ID]; !ok {
			errs[d.ID] = fmt.Sprintf("%s è obbligatorio", d.Label)
		}
	}
	return errs
}

// CheckAttachment verifies a single candidate file against its document's
// constraints: extension in the accepted set (case-insensitive) and size at
// most MaxFileSize.
func CheckAttachment(doc model.Document, name string, size int64) error {
	ext := filepath.Ext(name)
	if !doc.FileKind.Accepts(ext) {
		return fmt.Errorf("tipo di file non consentito (ammessi: %s)",
			strings.Join(doc.FileKind.Extensions(), ", "))
	}
	if size > MaxFileSize {
		return ErrFileTooLarge
	}
	return nil
}
