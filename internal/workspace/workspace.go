// Package workspace manages the pipeline's working directories and file moves.
package workspace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"paperlens/internal/config"
	"paperlens/internal/domain"
)

// Layout is the set of directories a run reads from and archives into.
type Layout struct {
	InputPDFs      string
	Texts          string
	ProcessedTexts string
	UsedPDFs       string
}

// NewLayout creates a Layout from the paths config.
func NewLayout(cfg *config.PathsConfig) Layout {
	return Layout{
		InputPDFs:      cfg.InputPDFs,
		Texts:          cfg.Texts,
		ProcessedTexts: cfg.ProcessedTexts,
		UsedPDFs:       cfg.UsedPDFs,
	}
}

// EnsureDirs creates every directory of the layout that does not exist yet.
func (l Layout) EnsureDirs() error {
	for _, dir := range []string{l.InputPDFs, l.Texts, l.ProcessedTexts, l.UsedPDFs} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return nil
}

// PendingPDFs lists the PDFs in the input directory as documents.
func (l Layout) PendingPDFs() ([]domain.SourceDocument, error) {
	names, err := ListByExt(l.InputPDFs, domain.FileTypePDF.Extension())
	if err != nil {
		return nil, err
	}
	docs := make([]domain.SourceDocument, 0, len(names))
	for _, name := range names {
		stem := domain.StemOf(name)
		docs = append(docs, domain.SourceDocument{
			Stem:     stem,
			PDFPath:  filepath.Join(l.InputPDFs, name),
			TextPath: filepath.Join(l.Texts, stem+domain.FileTypeText.Extension()),
		})
	}
	return docs, nil
}

// PendingTexts lists the extracted text files waiting for processing.
func (l Layout) PendingTexts() ([]domain.SourceDocument, error) {
	names, err := ListByExt(l.Texts, domain.FileTypeText.Extension())
	if err != nil {
		return nil, err
	}
	docs := make([]domain.SourceDocument, 0, len(names))
	for _, name := range names {
		stem := domain.StemOf(name)
		docs = append(docs, domain.SourceDocument{
			Stem:     stem,
			PDFPath:  filepath.Join(l.InputPDFs, stem+domain.FileTypePDF.Extension()),
			TextPath: filepath.Join(l.Texts, name),
		})
	}
	return docs, nil
}

// ListByExt returns the names of regular files in dir whose extension matches ext
// case-insensitively, in directory listing order.
func ListByExt(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ext) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Move relocates src into dir, keeping its base name, and returns the new path.
// A cross-device rename falls back to copy and remove.
func Move(src, dir string) (string, error) {
	dst := filepath.Join(dir, filepath.Base(src))
	err := os.Rename(src, dst)
	if err == nil {
		return dst, nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return "", fmt.Errorf("moving %s to %s: %w", src, dir, err)
	}
	if err := copyFile(src, dst); err != nil {
		return "", fmt.Errorf("copying %s to %s: %w", src, dir, err)
	}
	if err := os.Remove(src); err != nil {
		return "", fmt.Errorf("removing %s after copy: %w", src, err)
	}
	return dst, nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	_, err = io.Copy(out, in)
	return err
}
