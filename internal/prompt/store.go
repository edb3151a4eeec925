package prompt

import (
	"fmt"
	"log"
	"os"
	"sync"

	"paperlens/internal/domain"
)

// FileStore loads prompts from disk. With caching enabled each path is read once
// per store; otherwise every Load re-reads the file.
// It implements port.PromptStore.
type FileStore struct {
	cache bool

	mu      sync.Mutex
	entries map[string]string
}

// NewFileStore creates a FileStore.
func NewFileStore(cache bool) *FileStore {
	return &FileStore{cache: cache, entries: map[string]string{}}
}

// Load returns the content of the prompt file at path. Missing, unreadable and
// empty files all report domain.ErrPromptUnavailable.
func (s *FileStore) Load(path string) (string, error) {
	if s.cache {
		s.mu.Lock()
		defer s.mu.Unlock()
		if text, ok := s.entries[path]; ok {
			return text, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("prompt.FileStore: error reading file %s: %v", path, err)
		return "", fmt.Errorf("%w: %s: %v", domain.ErrPromptUnavailable, path, err)
	}
	if len(data) == 0 {
		log.Printf("prompt.FileStore: file %s is empty", path)
		return "", fmt.Errorf("%w: %s is empty", domain.ErrPromptUnavailable, path)
	}

	text := string(data)
	if s.cache {
		s.entries[path] = text
	}
	return text, nil
}
