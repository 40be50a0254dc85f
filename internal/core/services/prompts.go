package services

import (
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
	"github.com/custodia-labs/enlogic/internal/logger"
)

// promptSource renders prompt templates, preferring a configured store
// over driven.DefaultPrompts. The zero value uses the defaults.
type promptSource struct {
	mu    sync.RWMutex
	store driven.PromptStore
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (p *promptSource) SetPromptStore(store driven.PromptStore) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.store = store
}

func (p *promptSource) render(name string, args ...any) string {
	p.mu.RLock()
	store := p.store
	p.mu.RUnlock()

	tmpl := driven.DefaultPrompts[name]
	if store != nil {
		custom, err := store.Load(name)
		switch {
		case err != nil:
			logger.Debug("prompt %s: using default: %v", name, err)
		case strings.TrimSpace(custom) != "":
			tmpl = custom
		}
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

// NormalizeLanguage maps the Chinese language tags to "zh-Hant" and
// an empty tag to the same default. Other tags are returned unchanged.
func NormalizeLanguage(language string) string {
	if language == "" {
		return "zh-Hant"
	}
	switch strings.ReplaceAll(strings.ToLower(language), "_", "-") {
	case "zh", "zh-hant", "zh-tw", "zh-hk":
		return "zh-Hant"
	}
	return language
}
