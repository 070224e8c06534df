// Package resolver projects a language view into API-shaped answers.
package resolver

import (
	"fmt"

	"github.com/nadzzz/phrasebook/internal/phrase"
)

// CategoryList is the answer to "which categories does this language have".
type CategoryList struct {
	Language            string            `json:"language"`
	NativeLanguageField string            `json:"nativeLanguageField"`
	CategoryNames       map[string]string `json:"categoryNames"`
	Categories          []string          `json:"categories"`
}

// CategoryPhrases is the answer to "which phrases are in this category".
type CategoryPhrases struct {
	Language            string         `json:"language"`
	NativeLanguageField string         `json:"nativeLanguageField"`
	Category            string         `json:"category"`
	CategoryName        string         `json:"categoryName"`
	Phrases             []phrase.Entry `json:"phrases"`
}

// ListCategories returns the view's category keys (sorted) with their display
// names. A category without a translated name falls back to the raw key, so
// the name map always covers every key and never errors.
func ListCategories(view *phrase.LanguageView) CategoryList {
	keys := view.CategoryKeys()
	names := make(map[string]string, len(keys))
	for _, key := range keys {
		names[key] = phrase.FirstNonEmpty(view.CategoryNames[key], key)
	}
	return CategoryList{
		Language:            view.Language,
		NativeLanguageField: view.NativeField,
		CategoryNames:       names,
		Categories:          keys,
	}
}

// GetPhrases returns the phrases under one category.
//
// The category key is charset-checked before any map access: a key outside
// ^[a-z_]+$ is a validation error, not a lookup miss. A well-formed key with
// no category behind it is ErrNotFound.
func GetPhrases(view *phrase.LanguageView, categoryKey string) (*CategoryPhrases, error) {
	if !phrase.ValidKey(categoryKey) {
		return nil, fmt.Errorf("invalid category format %q: %w", categoryKey, phrase.ErrValidation)
	}
	entries, ok := view.Categories[categoryKey]
	if !ok {
		return nil, fmt.Errorf("category %q not found: %w", categoryKey, phrase.ErrNotFound)
	}
	return &CategoryPhrases{
		Language:            view.Language,
		NativeLanguageField: view.NativeField,
		Category:            categoryKey,
		CategoryName:        phrase.FirstNonEmpty(view.CategoryNames[categoryKey], categoryKey),
		Phrases:             entries,
	}, nil
}
