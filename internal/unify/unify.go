// Package unify merges per-language translation files into the unified
// structure the store consumes.
//
// This is offline batch tooling: JSON in, JSON out, no code execution. It
// enforces the dedup invariant: within one category, phrases sharing an
// English key merge into a single record instead of duplicating.
package unify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nadzzz/phrasebook/internal/phrase"
)

// Options configures a merge run.
type Options struct {
	// Dir holds the per-language source files (<language>.json).
	Dir string

	// Out is the unified output path.
	Out string

	// Languages is the set to merge; defaults to the built-in set.
	Languages []phrase.Language
}

// Stats summarizes a merge run.
type Stats struct {
	Languages  int            `json:"languages"`
	Categories int            `json:"categories"`
	Phrases    int            `json:"phrases"`
	Coverage   map[string]int `json:"coverage"` // language code -> phrases with text
}

// languageFile mirrors the per-language source format.
type languageFile struct {
	Language            string                    `json:"language"`
	NativeLanguageField string                    `json:"nativeLanguageField"`
	UI                  map[string]string         `json:"ui"`
	CategoryNames       map[string]string         `json:"categoryNames"`
	Categories          map[string][]phrase.Entry `json:"categories"`
}

type unifiedOut struct {
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

// Run merges every readable per-language file into one unified file.
// Missing source files are skipped with a warning; a malformed file aborts
// the run so a half-merged artifact is never written.
func Run(opts Options) (*Stats, error) {
	languages := opts.Languages
	if len(languages) == 0 {
		languages = phrase.Builtin
	}

	unified := unifiedOut{
		Version:       "2.0",
		Languages:     map[string]unifiedLanguage{},
		CategoryNames: map[string]map[string]string{},
	}

	merged := map[string]*phrase.Entry{} // "<category>|<english>" -> merged record
	nativeFields := map[string]string{}  // language code -> native field in its file

	for _, lang := range languages {
		path := filepath.Join(opts.Dir, lang.Code+".json")
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			slog.Warn("skipping missing language file", "language", lang.Code, "path", path)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		var lf languageFile
		if err := json.Unmarshal(data, &lf); err != nil {
			return nil, fmt.Errorf("parsing %s: %v: %w", path, err, phrase.ErrCorruptData)
		}

		nativeField := phrase.FirstNonEmpty(lf.NativeLanguageField, lang.NativeField)
		nativeFields[lang.Code] = nativeField

		unified.Languages[lang.Code] = unifiedLanguage{
			Name:        lang.Name,
			NativeField: nativeField,
			UI:          lf.UI,
		}

		for cat, name := range lf.CategoryNames {
			if unified.CategoryNames[cat] == nil {
				unified.CategoryNames[cat] = map[string]string{}
			}
			unified.CategoryNames[cat][lang.Code] = name
		}

		for cat, entries := range lf.Categories {
			for _, entry := range entries {
				if entry.English == "" {
					continue
				}
				mergeEntry(merged, cat, entry, nativeField)
			}
		}
		slog.Info("merged language file", "language", lang.Code)
	}

	if len(unified.Languages) == 0 {
		return nil, fmt.Errorf("no language files found under %s", opts.Dir)
	}

	for _, entry := range merged {
		unified.Phrases = append(unified.Phrases, *entry)
	}
	sort.Slice(unified.Phrases, func(i, j int) bool {
		a, b := &unified.Phrases[i], &unified.Phrases[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.English < b.English
	})

	out, err := json.MarshalIndent(unified, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding unified output: %w", err)
	}
	if err := os.WriteFile(opts.Out, out, 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", opts.Out, err)
	}

	stats := &Stats{
		Languages:  len(unified.Languages),
		Categories: len(unified.CategoryNames),
		Phrases:    len(unified.Phrases),
		Coverage:   map[string]int{},
	}
	for code, field := range nativeFields {
		for _, entry := range unified.Phrases {
			if entry.TextFor(field) != "" {
				stats.Coverage[code]++
			}
		}
	}
	return stats, nil
}

// mergeEntry folds one source record into the merged set. Non-empty values
// win; a generic "phonetic" field is qualified to the source language's
// native field so phonetics from different languages never collide.
func mergeEntry(merged map[string]*phrase.Entry, category string, entry phrase.Entry, nativeField string) {
	key := category + "|" + entry.English
	target, ok := merged[key]
	if !ok {
		target = &phrase.Entry{
			ID:       category + "_" + sanitizeID(entry.English),
			Category: category,
			English:  entry.English,
			Text:     map[string]string{},
			Phonetic: map[string]string{},
		}
		merged[key] = target
	}

	for field, text := range entry.Text {
		if strings.TrimSpace(text) != "" {
			target.Text[field] = text
		}
	}
	for field, p := range entry.Phonetic {
		if strings.TrimSpace(p) != "" {
			target.Phonetic[field] = p
		}
	}
	if strings.TrimSpace(entry.PhoneticDefault) != "" {
		target.Phonetic[nativeField] = entry.PhoneticDefault
	}
}

// sanitizeID turns an English key into a stable id fragment.
func sanitizeID(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('_')
		}
	}
	id := strings.Trim(b.String(), "_")
	if len(id) > 50 {
		id = id[:50]
	}
	return id
}
