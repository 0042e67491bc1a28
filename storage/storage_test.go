package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/luigilocane-sketch/ricorsi-sinafi/form"
)

func TestSaveSubmissionFileReplaces(t *testing.T) {
	disk, err := NewDisk(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	n, err := disk.SaveSubmissionFile("sub-1", "ci", ".pdf", strings.NewReader("%PDF-1.4 fake"))
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(len("%PDF-1.4 fake")) {
		t.Errorf("size: got %d", n)
	}

	// re-upload with a different extension replaces the old file entirely
	_, err = disk.SaveSubmissionFile("sub-1", "ci", ".JPG", strings.NewReader("jpegdata"))
	if err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(filepath.Join(disk.uploads, "sub-1"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "ci.jpg" {
		names := []string{}
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected a single ci.jpg, got %v", names)
	}
}

func TestOversizedReuploadKeepsPreviousFile(t *testing.T) {
	disk, err := NewDisk(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := disk.SaveSubmissionFile("sub-1", "ci", ".pdf", strings.NewReader("accettato")); err != nil {
		t.Fatal(err)
	}

	big := bytes.NewReader(make([]byte, form.MaxFileSize+1))
	_, err = disk.SaveSubmissionFile("sub-1", "ci", ".pdf", big)
	if !errors.Is(err, form.ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}

	// the rejected upload must not displace the accepted file
	content, err := os.ReadFile(filepath.Join(disk.uploads, "sub-1", "ci.pdf"))
	if err != nil {
		t.Fatalf("previously accepted file is gone: %v", err)
	}
	if string(content) != "accettato" {
		t.Errorf("accepted file content changed: %q", content)
	}

	entries, err := os.ReadDir(filepath.Join(disk.uploads, "sub-1"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		names := []string{}
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only ci.pdf to remain, got %v", names)
	}
}

func TestSaveRejectsOversizedFile(t *testing.T) {
	disk, err := NewDisk(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	big := bytes.NewReader(make([]byte, form.MaxFileSize+1))
	_, err = disk.SaveSubmissionFile("sub-1", "ci", ".pdf", big)
	if !errors.Is(err, form.ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}

	// nothing must be left behind
	entries, _ := os.ReadDir(filepath.Join(disk.uploads, "sub-1"))
	if len(entries) != 0 {
		t.Errorf("oversized upload left files behind: %v", entries)
	}
}

func TestExampleLifecycle(t *testing.T) {
	disk, err := NewDisk(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := disk.ExamplePath("c1", "istanza"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist before upload, got %v", err)
	}

	_, err = disk.SaveExample("c1", "istanza", "pdf", strings.NewReader("esempio"))
	if err != nil {
		t.Fatal(err)
	}

	path, err := disk.ExamplePath("c1", "istanza")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "istanza_esempio.pdf" {
		t.Errorf("unexpected example path %q", path)
	}

	if err := disk.RemoveExample("c1", "istanza"); err != nil {
		t.Fatal(err)
	}
	if err := disk.RemoveExample("c1", "istanza"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist after removal, got %v", err)
	}
}

func TestRemoveCampaignExamples(t *testing.T) {
	disk, err := NewDisk(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := disk.SaveExample("c1", "istanza", "pdf", strings.NewReader("x")); err != nil {
		t.Fatal(err)
	}
	if err := disk.RemoveCampaign("c1"); err != nil {
		t.Fatal(err)
	}
	if _, err := disk.ExamplePath("c1", "istanza"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected examples gone, got %v", err)
	}
}
