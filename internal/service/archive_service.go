package service

import (
	"context"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"paperlens/internal/port"
	"paperlens/internal/workspace"
)

// ArchiveService copies a run's output files to object storage.
type ArchiveService interface {
	// ArchiveRun uploads every existing output file and returns how many were uploaded.
	ArchiveRun(ctx context.Context, runID uuid.UUID) int
}

type archiveService struct {
	storage port.ObjectStorage
	bucket  string
	prefix  string
	files   []string
}

// NewArchiveService creates a new ArchiveService for the given output files.
func NewArchiveService(storage port.ObjectStorage, bucket, prefix string, files []string) ArchiveService {
	return &archiveService{
		storage: storage,
		bucket:  bucket,
		prefix:  prefix,
		files:   files,
	}
}

// ArchiveRun uploads each file to <prefix>/<runID>/<basename>. Missing files are
// skipped and upload failures are only logged; the local files stay authoritative.
func (s *archiveService) ArchiveRun(ctx context.Context, runID uuid.UUID) int {
	uploaded := 0
	for _, file := range s.files {
		if file == "" || !workspace.Exists(file) {
			continue
		}
		key := ObjectKey(s.prefix, runID, file)
		if err := s.upload(ctx, file, key); err != nil {
			log.Printf("archiveService: uploading %s failed: %v", file, err)
			continue
		}
		log.Printf("archiveService: uploaded %s to s3://%s/%s", file, s.bucket, key)
		uploaded++
	}
	return uploaded
}

func (s *archiveService) upload(ctx context.Context, file, key string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.bucket,
		Key:         key,
		Body:        f,
		ContentType: contentTypeFor(file),
	})
	return err
}

// ObjectKey builds the storage key of an output file for a run.
func ObjectKey(prefix string, runID uuid.UUID, file string) string {
	return path.Join(prefix, runID.String(), filepath.Base(file))
}

func contentTypeFor(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".csv":
		return "text/csv"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}
