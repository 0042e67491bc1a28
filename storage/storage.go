// Package storage keeps uploaded submission files and per-document example
// files on local disk, one directory per submission or campaign.
package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/luigilocane-sketch/ricorsi-sinafi/form"
)

// exampleExts is the order example files are looked up in.
var exampleExts = []string{"pdf", "jpg", "jpeg", "png"}

type Disk struct {
	uploads  string
	examples string
}

func NewDisk(root string) (*Disk, error) {
	d := &Disk{
		uploads:  filepath.Join(root, "uploads"),
		examples: filepath.Join(root, "esempi"),
	}
	for _, dir := range []string{d.uploads, d.examples} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// SaveSubmissionFile streams one attached document to disk as
// uploads/<submissionID>/<docID>.<ext>, enforcing the size limit while
// copying. A re-upload for the same document id replaces the previous file,
// whatever its extension was; a rejected upload leaves it untouched.
func (d *Disk) SaveSubmissionFile(submissionID, docID, ext string, r io.Reader) (int64, error) {
	dir := filepath.Join(d.uploads, submissionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	return replaceFile(dir, docID+".", docID+"."+cleanExt(ext), r)
}

// SaveExample stores an admin-provided example file as
// esempi/<campaignID>/<docID>_esempio.<ext>.
func (d *Disk) SaveExample(campaignID, docID, ext string, r io.Reader) (int64, error) {
	dir := filepath.Join(d.examples, campaignID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	return replaceFile(dir, docID+"_esempio.", docID+"_esempio."+cleanExt(ext), r)
}

// ExamplePath finds the stored example file for a document, trying each
// accepted extension. Returns os.ErrNotExist when there is none.
func (d *Disk) ExamplePath(campaignID, docID string) (string, error) {
	dir := filepath.Join(d.examples, campaignID)
	for _, ext := range exampleExts {
		path := filepath.Join(dir, docID+"_esempio."+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", os.ErrNotExist
}

// RemoveExample deletes the example file for a document. Returns
// os.ErrNotExist when there was nothing to delete.
func (d *Disk) RemoveExample(campaignID, docID string) error {
	dir := filepath.Join(d.examples, campaignID)
	removed := false
	for _, ext := range exampleExts {
		path := filepath.Join(dir, docID+"_esempio."+ext)
		if err := os.Remove(path); err == nil {
			removed = true
		}
	}
	if !removed {
		return os.ErrNotExist
	}
	return nil
}

// RemoveCampaign drops every example file of a deleted campaign.
func (d *Disk) RemoveCampaign(campaignID string) error {
	return os.RemoveAll(filepath.Join(d.examples, campaignID))
}

// replaceFile streams r to a temp file inside dir and, only once the copy
// is complete and within the size limit, removes any previous file with the
// given prefix and renames the temp into place. A rejected or failed upload
// never displaces the file it was meant to replace.
func replaceFile(dir, prefix, name string, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return 0, err
	}
	// one extra byte so an oversized upload is detectable
	n, err := io.Copy(tmp, io.LimitReader(r, form.MaxFileSize+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > form.MaxFileSize {
		err = form.ErrFileTooLarge
	}
	if err == nil {
		err = removeMatching(dir, prefix)
	}
	if err == nil {
		err = os.Rename(tmp.Name(), filepath.Join(dir, name))
	}
	if err != nil {
		os.Remove(tmp.Name())
		return 0, err
	}
	return n, nil
}

func removeMatching(dir, prefix string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), prefix) {
			if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

func cleanExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	// paranoia against path tricks in client-supplied names
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, ext)
}
