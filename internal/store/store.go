// Package store owns the in-memory translation data and provides the only
// read path to it.
//
// The store is loaded exactly once at startup and is read-only afterwards;
// a restart is the only refresh mechanism. Concurrent readers need no locking
// because every lookup happens behind a one-shot readiness gate and returns
// deep copies, never handles into shared state.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/nadzzz/phrasebook/internal/config"
	"github.com/nadzzz/phrasebook/internal/phrase"
)

// Store holds the loaded translation data for all configured languages.
type Store struct {
	cfg config.DataConfig

	languages map[string]phrase.Language
	order     []string

	ready atomic.Bool

	views   map[string]*phrase.LanguageView
	corrupt map[string]error
}

// New creates an unloaded store over the built-in language set. Lookups fail
// with ErrNotReady until Load succeeds.
func New(cfg config.DataConfig) *Store {
	s := &Store{
		cfg:       cfg,
		languages: make(map[string]phrase.Language, len(phrase.Builtin)),
		order:     make([]string, 0, len(phrase.Builtin)),
		views:     make(map[string]*phrase.LanguageView),
		corrupt:   make(map[string]error),
	}
	for _, lang := range phrase.Builtin {
		s.languages[lang.Code] = lang
		s.order = append(s.order, lang.Code)
	}
	return s
}

// Load reads the backing data into memory and opens the readiness gate.
//
// In unified mode a missing or unparseable file is fatal: the error is
// returned and the store stays not-ready, so the process must not serve.
// In per-language mode a missing file only drops that language, and a
// malformed file marks the language corrupt without failing the load.
func (s *Store) Load() error {
	var err error
	switch s.cfg.Mode {
	case "per_language":
		err = s.loadPerLanguage()
	default:
		err = s.loadUnified()
	}
	if err != nil {
		return err
	}

	s.ready.Store(true)
	slog.Info("translation store loaded",
		"mode", s.cfg.Mode,
		"languages", len(s.views),
		"corrupt", len(s.corrupt))
	return nil
}

// Ready reports whether Load has completed successfully.
func (s *Store) Ready() bool {
	return s.ready.Load()
}

// Languages returns the configured language set in stable order.
func (s *Store) Languages() []phrase.Language {
	out := make([]phrase.Language, 0, len(s.order))
	for _, code := range s.order {
		out = append(out, s.languages[code])
	}
	return out
}

// Supported reports whether the language code is in the configured set.
func (s *Store) Supported(language string) bool {
	_, ok := s.languages[language]
	return ok
}

// LanguageView returns a deep-copied view of one language's data.
//
// The error wraps exactly one taxonomy sentinel: ErrNotReady before Load,
// ErrNotFound for unknown or unloaded languages, ErrCorruptData when the
// language's backing file failed to parse.
func (s *Store) LanguageView(language string) (*phrase.LanguageView, error) {
	if !s.ready.Load() {
		return nil, phrase.ErrNotReady
	}
	if _, ok := s.languages[language]; !ok {
		return nil, fmt.Errorf("language %q not supported: %w", language, phrase.ErrNotFound)
	}
	if err := s.corrupt[language]; err != nil {
		return nil, fmt.Errorf("language %q: %v: %w", language, err, phrase.ErrCorruptData)
	}
	view, ok := s.views[language]
	if !ok {
		return nil, fmt.Errorf("no translation data for language %q: %w", language, phrase.ErrNotFound)
	}
	return cloneView(view), nil
}

// unifiedFile is the merged translation structure produced by the unify tool.
type unifiedFile struct {
	Version       string                       `json:"version"`
	Languages     map[string]unifiedLanguage   `json:"languages"`
	CategoryNames map[string]map[string]string `json:"categoryNames"`
	Phrases       []phrase.Entry               `json:"phrases"`
}

type unifiedLanguage struct {
	Name        string            `json:"name"`
	NativeField string            `json:"nativeField"`
	UI          map[string]string `json:"ui"`
}

func (s *Store) loadUnified() error {
	data, err := os.ReadFile(s.cfg.UnifiedFile)
	if err != nil {
		return fmt.Errorf("reading unified translations %s: %w", s.cfg.UnifiedFile, err)
	}

	var unified unifiedFile
	if err := json.Unmarshal(data, &unified); err != nil {
		return fmt.Errorf("parsing unified translations %s: %v: %w", s.cfg.UnifiedFile, err, phrase.ErrCorruptData)
	}

	for _, code := range s.order {
		meta := s.languages[code]
		view := &phrase.LanguageView{
			Language:      code,
			Name:          meta.Name,
			NativeField:   meta.NativeField,
			UI:            map[string]string{},
			CategoryNames: map[string]string{},
			Categories:    map[string][]phrase.Entry{},
		}

		if fm, ok := unified.Languages[code]; ok {
			if fm.Name != "" {
				view.Name = fm.Name
			}
			if fm.NativeField != "" {
				view.NativeField = fm.NativeField
			}
			for k, v := range fm.UI {
				view.UI[k] = v
			}
		}

		for cat, names := range unified.CategoryNames {
			if name, ok := names[code]; ok {
				view.CategoryNames[cat] = name
			}
		}

		// Merged records carry every language's text side by side, so each
		// language's view holds the full phrase list per category. Absent
		// translations surface as empty text at resolution time.
		for _, entry := range unified.Phrases {
			if entry.English == "" || entry.Category == "" {
				continue
			}
			view.Categories[entry.Category] = append(view.Categories[entry.Category], entry.Clone())
		}

		s.views[code] = view
	}
	return nil
}

// languageFile is the legacy per-language translation file.
type languageFile struct {
	Language            string                    `json:"language"`
	NativeLanguageField string                    `json:"nativeLanguageField"`
	UI                  map[string]string         `json:"ui"`
	CategoryNames       map[string]string         `json:"categoryNames"`
	Categories          map[string][]phrase.Entry `json:"categories"`
}

func (s *Store) loadPerLanguage() error {
	for _, code := range s.order {
		path := filepath.Join(s.cfg.Dir, code+".json")
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			slog.Warn("translation file missing, language unavailable", "language", code, "path", path)
			continue
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		var lf languageFile
		if err := json.Unmarshal(data, &lf); err != nil {
			slog.Error("malformed translation file", "language", code, "path", path, "error", err)
			s.corrupt[code] = err
			continue
		}

		meta := s.languages[code]
		view := &phrase.LanguageView{
			Language:      code,
			Name:          meta.Name,
			NativeField:   phrase.FirstNonEmpty(lf.NativeLanguageField, meta.NativeField),
			UI:            map[string]string{},
			CategoryNames: map[string]string{},
			Categories:    map[string][]phrase.Entry{},
		}
		for k, v := range lf.UI {
			view.UI[k] = v
		}
		for k, v := range lf.CategoryNames {
			view.CategoryNames[k] = v
		}
		for cat, entries := range lf.Categories {
			for _, entry := range entries {
				if entry.Category == "" {
					entry.Category = cat
				}
				view.Categories[cat] = append(view.Categories[cat], entry)
			}
		}

		s.views[code] = view
	}
	return nil
}

func cloneView(v *phrase.LanguageView) *phrase.LanguageView {
	out := &phrase.LanguageView{
		Language:      v.Language,
		Name:          v.Name,
		NativeField:   v.NativeField,
		UI:            make(map[string]string, len(v.UI)),
		CategoryNames: make(map[string]string, len(v.CategoryNames)),
		Categories:    make(map[string][]phrase.Entry, len(v.Categories)),
	}
	for k, val := range v.UI {
		out.UI[k] = val
	}
	for k, val := range v.CategoryNames {
		out.CategoryNames[k] = val
	}
	for cat, entries := range v.Categories {
		copied := make([]phrase.Entry, 0, len(entries))
		for _, e := range entries {
			copied = append(copied, e.Clone())
		}
		out.Categories[cat] = copied
	}
	return out
}
