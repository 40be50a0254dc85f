package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
	"github.com/custodia-labs/enlogic/internal/logger"
)

var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore serves prompt templates from <dir>/<name>.txt.
//
// The directory is seeded with the built-in templates on first Load. A file
// edited on disk is picked up by the next Load because entries are keyed by
// modification time. A template whose %s count differs from the built-in
// one is ignored with a warning, since the caller fills a fixed number of
// arguments.
type PromptStore struct {
	dir string

	seedOnce sync.Once
	seedErr  error

	mu      sync.Mutex
	entries map[string]promptEntry
}

type promptEntry struct {
	text    string
	modTime time.Time
}

// NewPromptStore returns a store rooted at dir, or ~/.enlogic/prompts when
// dir is empty. Nothing touches the disk until the first Load.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		base, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "prompts")
	}
	return &PromptStore{dir: dir, entries: make(map[string]promptEntry)}, nil
}

func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the template called name.
func (s *PromptStore) Load(name string) (string, error) {
	s.seedOnce.Do(func() { s.seedErr = s.seed() })

	builtin, known := driven.DefaultPrompts[name]
	if s.seedErr != nil {
		if known {
			return builtin, nil
		}
		return "", fmt.Errorf("prompt %q: %w", name, s.seedErr)
	}

	text, err := s.read(name)
	switch {
	case err == nil:
	case known:
		return builtin, nil
	default:
		return "", fmt.Errorf("prompt %q: %w", name, err)
	}

	if known && placeholders(text) != placeholders(builtin) {
		logger.Warn("prompt %s: expected %d %%s placeholders, found %d; using built-in",
			name, placeholders(builtin), placeholders(text))
		return builtin, nil
	}
	return text, nil
}

// read returns the file content, reusing the cached copy while the file's
// modification time is unchanged.
func (s *PromptStore) read(name string) (string, error) {
	path := filepath.Join(s.dir, name+".txt")
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	cached, ok := s.entries[name]
	s.mu.Unlock()
	if ok && cached.modTime.Equal(info.ModTime()) {
		return cached.text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	entry := promptEntry{text: strings.TrimSpace(string(data)), modTime: info.ModTime()}

	s.mu.Lock()
	s.entries[name] = entry
	s.mu.Unlock()
	return entry.text, nil
}

// Reload forgets every cached template.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.entries = make(map[string]promptEntry)
	s.mu.Unlock()
}

// seed writes each built-in template and the README unless a file with
// that name is already present.
func (s *PromptStore) seed() error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}

	names := make([]string, 0, len(driven.DefaultPrompts))
	for name := range driven.DefaultPrompts {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := writeIfAbsent(filepath.Join(s.dir, name+".txt"), driven.DefaultPrompts[name]); err != nil {
			return fmt.Errorf("seed prompt %s: %w", name, err)
		}
	}
	return writeIfAbsent(filepath.Join(s.dir, "README.md"), promptReadme(names))
}

func writeIfAbsent(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// placeholders counts %s verbs, ignoring escaped percent signs.
func placeholders(tmpl string) int {
	return strings.Count(strings.ReplaceAll(tmpl, "%%", ""), "%s")
}

func promptReadme(names []string) string {
	var b strings.Builder
	b.WriteString("# Enlogic prompts\n\n")
	b.WriteString("Edit a template to change how documents are extracted, how agent\n")
	b.WriteString("schemas are drafted and how questions are answered. Edits apply to\n")
	b.WriteString("the next command. Delete a file to restore the built-in text.\n\n")
	b.WriteString("Each template must keep its number of `%s` placeholders:\n\n")
	for _, name := range names {
		fmt.Fprintf(&b, "- `%s.txt`: %d\n", name, placeholders(driven.DefaultPrompts[name]))
	}
	return b.String()
}
