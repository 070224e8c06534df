package contextual

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nadzzz/phrasebook/internal/phrase"
)

// Summary is one row of the conversation index.
type Summary struct {
	Context  string `json:"context"`
	Language string `json:"language,omitempty"`
	Title    string `json:"title,omitempty"`
	Turns    int    `json:"turns,omitempty"`
}

// Index lists the available conversations and resolves individual ones from
// the conversations directory.
type Index struct {
	conversations []Summary
	dir           string
}

type indexFile struct {
	Conversations []Summary `json:"conversations"`
}

// LoadIndex reads the conversation index. Like the contextual dataset, a
// missing index is ErrNotFound and a malformed one is ErrCorruptData.
func LoadIndex(indexPath, conversationsDir string) (*Index, error) {
	data, err := os.ReadFile(indexPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("conversation index %s: %w", indexPath, phrase.ErrNotFound)
		}
		return nil, fmt.Errorf("reading conversation index %s: %w", indexPath, err)
	}
	var idx indexFile
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parsing conversation index %s: %v: %w", indexPath, err, phrase.ErrCorruptData)
	}
	return &Index{conversations: idx.Conversations, dir: conversationsDir}, nil
}

// List returns all index entries.
func (i *Index) List() []Summary {
	out := make([]Summary, len(i.conversations))
	copy(out, i.conversations)
	return out
}

// ByContext returns the entries for one context.
func (i *Index) ByContext(context string) []Summary {
	out := make([]Summary, 0)
	for _, c := range i.conversations {
		if c.Context == context {
			out = append(out, c)
		}
	}
	return out
}

// ByLanguage returns the entries available in one language.
func (i *Index) ByLanguage(language string) []Summary {
	out := make([]Summary, 0)
	for _, c := range i.conversations {
		if c.Language == language {
			out = append(out, c)
		}
	}
	return out
}

// Turn is one resolved dialogue turn.
type Turn struct {
	Speaker  string `json:"speaker,omitempty"`
	Native   string `json:"native,omitempty"`
	Target   string `json:"target"`
	Phonetic string `json:"phonetic,omitempty"`
}

// Conversation is an ordered dialogue resolved for one language pair.
type Conversation struct {
	Context        string `json:"context"`
	Title          string `json:"title,omitempty"`
	NativeLanguage string `json:"nativeLanguage"`
	TargetLanguage string `json:"targetLanguage"`
	Source         string `json:"source"` // "multilanguage" or "legacy"
	Turns          []Turn `json:"turns"`
}

// multiFile is the consolidated per-context conversation file carrying every
// language's text per turn.
type multiFile struct {
	Context string `json:"context"`
	Title   string `json:"title,omitempty"`
	Turns   []struct {
		Speaker  string            `json:"speaker,omitempty"`
		Text     map[string]string `json:"text"`
		Phonetic map[string]string `json:"phonetic,omitempty"`
	} `json:"turns"`
}

// legacyFile is the older single-language-pair conversation file.
type legacyFile struct {
	Context  string `json:"context"`
	Language string `json:"language"`
	Title    string `json:"title,omitempty"`
	Turns    []struct {
		Speaker  string `json:"speaker,omitempty"`
		Text     string `json:"text"`
		Phonetic string `json:"phonetic,omitempty"`
		English  string `json:"english,omitempty"`
	} `json:"turns"`
}

// Resolve loads the conversation for a context and language pair.
//
// The consolidated multilanguage_<context>.json is always preferred when it
// exists, even if it lacks complete text for the target language: missing
// turn text falls back to that file's English field, never to the legacy
// file. Only when no multilanguage file exists is the legacy
// <context>_<language>.json tried. The context identifier is charset-checked
// before any path is built.
func (i *Index) Resolve(context, nativeLanguage, targetLanguage string) (*Conversation, error) {
	if !phrase.ValidKey(context) {
		return nil, fmt.Errorf("invalid context format %q: %w", context, phrase.ErrValidation)
	}

	multiPath := filepath.Join(i.dir, "multilanguage_"+context+".json")
	if data, err := os.ReadFile(multiPath); err == nil {
		var mf multiFile
		if err := json.Unmarshal(data, &mf); err != nil {
			return nil, fmt.Errorf("parsing %s: %v: %w", multiPath, err, phrase.ErrCorruptData)
		}
		conv := &Conversation{
			Context:        context,
			Title:          mf.Title,
			NativeLanguage: nativeLanguage,
			TargetLanguage: targetLanguage,
			Source:         "multilanguage",
		}
		for _, t := range mf.Turns {
			conv.Turns = append(conv.Turns, Turn{
				Speaker:  t.Speaker,
				Native:   phrase.FirstNonEmpty(t.Text[nativeLanguage], t.Text["english"]),
				Target:   phrase.FirstNonEmpty(t.Text[targetLanguage], t.Text["english"]),
				Phonetic: t.Phonetic[targetLanguage],
			})
		}
		return conv, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading %s: %w", multiPath, err)
	}

	legacyPath := filepath.Join(i.dir, context+"_"+targetLanguage+".json")
	data, err := os.ReadFile(legacyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("conversation %s/%s not found: %w", context, targetLanguage, phrase.ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s: %w", legacyPath, err)
	}
	var lf legacyFile
	if err := json.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parsing %s: %v: %w", legacyPath, err, phrase.ErrCorruptData)
	}
	conv := &Conversation{
		Context:        context,
		Title:          lf.Title,
		NativeLanguage: nativeLanguage,
		TargetLanguage: targetLanguage,
		Source:         "legacy",
	}
	for _, t := range lf.Turns {
		conv.Turns = append(conv.Turns, Turn{
			Speaker:  t.Speaker,
			Native:   t.English,
			Target:   t.Text,
			Phonetic: t.Phonetic,
		})
	}
	return conv, nil
}
