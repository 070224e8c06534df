package contextual

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/phrasebook/internal/phrase"
)

func writeIndex(t *testing.T, convFiles map[string]string) *Index {
	t.Helper()
	dir := t.TempDir()
	convDir := filepath.Join(dir, "conversations")
	require.NoError(t, os.Mkdir(convDir, 0o755))

	indexPath := filepath.Join(dir, "conversations.json")
	index := `{"conversations": [
		{"context": "greeting", "language": "amharic", "title": "Greeting a neighbor", "turns": 2},
		{"context": "greeting", "language": "somali", "title": "Greeting a neighbor", "turns": 2},
		{"context": "market", "language": "amharic", "title": "At the market", "turns": 3}
	]}`
	require.NoError(t, os.WriteFile(indexPath, []byte(index), 0o644))

	for name, content := range convFiles {
		require.NoError(t, os.WriteFile(filepath.Join(convDir, name), []byte(content), 0o644))
	}

	idx, err := LoadIndex(indexPath, convDir)
	require.NoError(t, err)
	return idx
}

func TestIndexFilters(t *testing.T) {
	idx := writeIndex(t, nil)

	assert.Len(t, idx.List(), 3)
	assert.Len(t, idx.ByContext("greeting"), 2)
	assert.Len(t, idx.ByLanguage("amharic"), 2)
	assert.Empty(t, idx.ByContext("hospital"))
}

func TestLoadIndexMissing(t *testing.T) {
	_, err := LoadIndex(filepath.Join(t.TempDir(), "nope.json"), t.TempDir())
	assert.ErrorIs(t, err, phrase.ErrNotFound)
}

func TestLoadIndexMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversations.json")
	require.NoError(t, os.WriteFile(path, []byte(`{]`), 0o644))

	_, err := LoadIndex(path, t.TempDir())
	assert.ErrorIs(t, err, phrase.ErrCorruptData)
}

const multiGreeting = `{
	"context": "greeting",
	"title": "Greeting a neighbor",
	"turns": [
		{"speaker": "A", "text": {"english": "Good morning", "amharic": "እንደምን አደርክ", "spanish": "Buenos días"},
		 "phonetic": {"amharic": "endemin aderk"}},
		{"speaker": "B", "text": {"english": "I am fine", "amharic": "ደህና ነኝ"}}
	]
}`

const legacyGreetingAmharic = `{
	"context": "greeting",
	"language": "amharic",
	"title": "Greeting a neighbor (legacy)",
	"turns": [
		{"speaker": "A", "text": "ጤና ይስጥልኝ", "phonetic": "tena yistilign", "english": "Hello"}
	]
}`

func TestResolvePrefersMultilanguage(t *testing.T) {
	// Both files exist; the consolidated one must win.
	idx := writeIndex(t, map[string]string{
		"multilanguage_greeting.json": multiGreeting,
		"greeting_amharic.json":       legacyGreetingAmharic,
	})

	conv, err := idx.Resolve("greeting", "english", "amharic")
	require.NoError(t, err)

	assert.Equal(t, "multilanguage", conv.Source)
	assert.Equal(t, "Greeting a neighbor", conv.Title)
	require.Len(t, conv.Turns, 2)
	assert.Equal(t, "Good morning", conv.Turns[0].Native)
	assert.Equal(t, "እንደምን አደርክ", conv.Turns[0].Target)
	assert.Equal(t, "endemin aderk", conv.Turns[0].Phonetic)
}

func TestResolveMultilanguageFallsBackToEnglishText(t *testing.T) {
	idx := writeIndex(t, map[string]string{
		"multilanguage_greeting.json": multiGreeting,
		"greeting_somali.json":        `{"context": "greeting", "language": "somali", "turns": []}`,
	})

	// Somali text is absent from the consolidated file: each turn falls
	// back to that same file's English, never to the legacy somali file.
	conv, err := idx.Resolve("greeting", "english", "somali")
	require.NoError(t, err)
	assert.Equal(t, "multilanguage", conv.Source)
	require.Len(t, conv.Turns, 2)
	assert.Equal(t, "Good morning", conv.Turns[0].Target)
	assert.Equal(t, "I am fine", conv.Turns[1].Target)
}

func TestResolveLegacyFallback(t *testing.T) {
	idx := writeIndex(t, map[string]string{
		"greeting_amharic.json": legacyGreetingAmharic,
	})

	conv, err := idx.Resolve("greeting", "english", "amharic")
	require.NoError(t, err)
	assert.Equal(t, "legacy", conv.Source)
	require.Len(t, conv.Turns, 1)
	assert.Equal(t, "ጤና ይስጥልኝ", conv.Turns[0].Target)
	assert.Equal(t, "Hello", conv.Turns[0].Native)
	assert.Equal(t, "tena yistilign", conv.Turns[0].Phonetic)
}

func TestResolveNotFound(t *testing.T) {
	idx := writeIndex(t, nil)

	_, err := idx.Resolve("hospital", "english", "amharic")
	assert.ErrorIs(t, err, phrase.ErrNotFound)
}

func TestResolveContextCharsetGuard(t *testing.T) {
	idx := writeIndex(t, nil)

	for _, bad := range []string{"../../etc/passwd", "Greeting", "greeting.json", "__proto__"} {
		_, err := idx.Resolve(bad, "english", "amharic")
		assert.ErrorIs(t, err, phrase.ErrValidation, bad)
	}
}

func TestResolveMalformedMultilanguage(t *testing.T) {
	idx := writeIndex(t, map[string]string{
		"multilanguage_greeting.json": `{"turns": [`,
	})

	_, err := idx.Resolve("greeting", "english", "amharic")
	assert.ErrorIs(t, err, phrase.ErrCorruptData)
}
