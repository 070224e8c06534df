// Package translator resolves one phrase in two language views at once, by
// shared English key, for translate mode.
package translator

import (
	"fmt"

	"github.com/nadzzz/phrasebook/internal/phrase"
)

// Translate looks up the phrase with the given English key under the given
// category in both views and pairs the two renderings.
//
// The English key is matched exactly as stored, case-sensitive. The phrase
// must be present in both views; with the unified store both views carry the
// same merged records so one existing record satisfies both sides, while
// per-language data requires the phrase in each language's own file. There
// are no partial results: any missing piece is ErrNotFound.
//
// Missing text is not an error. The result's text is the language's
// native-field value, or empty when the language has no translation yet;
// phonetics fall back from "<field>_phonetic" to the generic "phonetic"
// field, else stay empty.
func Translate(source, target *phrase.LanguageView, category, english string) (*phrase.TranslationResult, error) {
	if !phrase.ValidKey(category) {
		return nil, fmt.Errorf("invalid category format %q: %w", category, phrase.ErrValidation)
	}

	src, err := find(source, category, english)
	if err != nil {
		return nil, err
	}
	dst, err := find(target, category, english)
	if err != nil {
		return nil, err
	}

	return &phrase.TranslationResult{
		Source:   side(source, src),
		Target:   side(target, dst),
		Category: category,
	}, nil
}

func find(view *phrase.LanguageView, category, english string) (*phrase.Entry, error) {
	entries, ok := view.Categories[category]
	if !ok {
		return nil, fmt.Errorf("category %q not found for language %q: %w", category, view.Language, phrase.ErrNotFound)
	}
	for i := range entries {
		if entries[i].English == english {
			return &entries[i], nil
		}
	}
	return nil, fmt.Errorf("phrase %q not found in %s/%s: %w", english, view.Language, category, phrase.ErrNotFound)
}

func side(view *phrase.LanguageView, entry *phrase.Entry) phrase.TranslationSide {
	return phrase.TranslationSide{
		Language: view.Language,
		Text:     entry.TextFor(view.NativeField),
		Phonetic: entry.PhoneticFor(view.NativeField),
		English:  entry.English,
	}
}
