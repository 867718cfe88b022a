package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DocumentService is the local implementation of the document-store
// collaborator: it turns uploaded bytes into opaque references. The ledger
// and the issuance/recarga records only ever persist the reference.
type DocumentService struct {
	baseDir string
}

func NewDocumentService(baseDir string) *DocumentService {
	return &DocumentService{baseDir: baseDir}
}

// Store writes the upload under category and returns its reference.
func (s *DocumentService) Store(category string, r io.Reader, ext string) (string, error) {
	dir := filepath.Join(s.baseDir, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("document dir create failed: %w", err)
	}

	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		ext = "pdf"
	}
	ref := filepath.Join(category, uuid.NewString()+"."+ext)

	f, err := os.Create(filepath.Join(s.baseDir, ref))
	if err != nil {
		return "", fmt.Errorf("document create failed: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("document write failed: %w", err)
	}
	return ref, nil
}

// Open resolves a reference back to its content.
func (s *DocumentService) Open(ref string) (io.ReadCloser, error) {
	clean := filepath.Clean(ref)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, ErrNotFound
	}
	f, err := os.Open(filepath.Join(s.baseDir, clean))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return f, err
}
