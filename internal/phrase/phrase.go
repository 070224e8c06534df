// Package phrase defines the core data types flowing through the phrasebook:
// languages, phrase entries, language views, and translation results.
package phrase

import (
	"encoding/json"
	"regexp"
	"sort"
)

// Language describes one supported language.
type Language struct {
	// Code is the lowercase identifier used in URLs and data files (e.g. "amharic").
	Code string `json:"code"`

	// Name is the display name, native script first (e.g. "አማርኛ (Amharic)").
	Name string `json:"name"`

	// NativeField is the attribute key that holds this language's text inside a
	// phrase record. Usually equal to Code, but the corpus carries historical
	// spelling variance (tigrinya data uses the "tigrigna" field).
	NativeField string `json:"nativeField"`
}

// Builtin is the default language set served by the phrasebook.
var Builtin = []Language{
	{Code: "english", Name: "English", NativeField: "english"},
	{Code: "spanish", Name: "Español (Spanish)", NativeField: "spanish"},
	{Code: "french", Name: "Français (French)", NativeField: "french"},
	{Code: "amharic", Name: "አማርኛ (Amharic)", NativeField: "amharic"},
	{Code: "tigrinya", Name: "ትግርኛ (Tigrinya)", NativeField: "tigrigna"},
	{Code: "oromo", Name: "Afaan Oromoo (Oromo)", NativeField: "oromo"},
	{Code: "somali", Name: "Af-Soomaali (Somali)", NativeField: "somali"},
	{Code: "arabic", Name: "العربية (Arabic)", NativeField: "arabic"},
	{Code: "hadiyaa", Name: "Hadiyyisa (Hadiyaa)", NativeField: "hadiyaa"},
	{Code: "wolyitta", Name: "Wolaytta (Wolayitta)", NativeField: "wolyitta"},
	{Code: "afar", Name: "Qafar (Afar)", NativeField: "afar"},
	{Code: "gamo", Name: "Gamoñña (Gamo)", NativeField: "gamo"},
	{Code: "swahili", Name: "Kiswahili (Swahili)", NativeField: "swahili"},
	{Code: "kinyarwanda", Name: "Ikinyarwanda (Kinyarwanda)", NativeField: "kinyarwanda"},
	{Code: "kirundi", Name: "Ikirundi (Kirundi)", NativeField: "kirundi"},
	{Code: "luo", Name: "Dholuo (Luo)", NativeField: "luo"},
}

// keyPattern is the restricted charset for category keys and conversation
// context identifiers. Checked at the boundary before any map or path lookup
// so user-controlled strings never index anything unvalidated.
var keyPattern = regexp.MustCompile(`^[a-z_]+$`)

// reservedKeys are identifiers that pass the charset check but are rejected
// anyway. Go maps have no prototype chain, but these names only ever show up
// in injection probes, never in real category data.
var reservedKeys = map[string]bool{
	"__proto__":   true,
	"constructor": true,
	"prototype":   true,
}

// ValidKey reports whether s is a legal category/context identifier.
func ValidKey(s string) bool {
	return keyPattern.MatchString(s) && !reservedKeys[s]
}

// Entry is a single phrase. Its identity is the English key, which joins the
// same concept across languages. One entry may carry text for any number of
// languages; absent translations are simply missing map keys.
type Entry struct {
	ID       string
	Category string
	English  string

	// Text maps a native field name (see Language.NativeField) to the
	// translated text in that language.
	Text map[string]string

	// Phonetic maps a native field name to a phonetic transcription
	// (the "<field>_phonetic" keys in the data files).
	Phonetic map[string]string

	// PhoneticDefault is the bare "phonetic" field some per-language files
	// carry instead of a language-qualified one.
	PhoneticDefault string
}

// TextFor returns the entry's text under the given native field, or "" when
// the language has no translation yet.
func (e *Entry) TextFor(nativeField string) string {
	return e.Text[nativeField]
}

// PhoneticFor resolves a phonetic transcription for the given native field:
// "<field>_phonetic" first, then the generic "phonetic" field, else "".
func (e *Entry) PhoneticFor(nativeField string) string {
	return FirstNonEmpty(e.Phonetic[nativeField], e.PhoneticDefault)
}

// Clone returns a deep copy of the entry.
func (e *Entry) Clone() Entry {
	out := Entry{
		ID:              e.ID,
		Category:        e.Category,
		English:         e.English,
		PhoneticDefault: e.PhoneticDefault,
	}
	if e.Text != nil {
		out.Text = make(map[string]string, len(e.Text))
		for k, v := range e.Text {
			out.Text[k] = v
		}
	}
	if e.Phonetic != nil {
		out.Phonetic = make(map[string]string, len(e.Phonetic))
		for k, v := range e.Phonetic {
			out.Phonetic[k] = v
		}
	}
	return out
}

// phoneticSuffix marks language-qualified phonetic fields in the data files.
const phoneticSuffix = "_phonetic"

// UnmarshalJSON decodes the flat record shape used by both the per-language
// and the unified data files: fixed keys (id, category, english, phonetic)
// plus one key per language and optional "<language>_phonetic" keys.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.Text = make(map[string]string)
	e.Phonetic = make(map[string]string)

	for key, val := range raw {
		s, ok := val.(string)
		if !ok {
			continue
		}
		switch {
		case key == "id":
			e.ID = s
		case key == "category":
			e.Category = s
		case key == "english":
			e.English = s
		case key == "phonetic":
			e.PhoneticDefault = s
		case len(key) > len(phoneticSuffix) && key[len(key)-len(phoneticSuffix):] == phoneticSuffix:
			e.Phonetic[key[:len(key)-len(phoneticSuffix)]] = s
		default:
			e.Text[key] = s
		}
	}
	return nil
}

// MarshalJSON re-emits the flat record shape. Keys come out sorted, so two
// marshals of the same entry are byte-identical.
func (e Entry) MarshalJSON() ([]byte, error) {
	flat := make(map[string]string, len(e.Text)+len(e.Phonetic)+4)
	if e.ID != "" {
		flat["id"] = e.ID
	}
	if e.Category != "" {
		flat["category"] = e.Category
	}
	flat["english"] = e.English
	if e.PhoneticDefault != "" {
		flat["phonetic"] = e.PhoneticDefault
	}
	for field, text := range e.Text {
		flat[field] = text
	}
	for field, p := range e.Phonetic {
		flat[field+phoneticSuffix] = p
	}
	return json.Marshal(flat)
}

// LanguageView is one language's projection of the loaded data. Views are
// deep copies: mutating a view never touches the store.
type LanguageView struct {
	Language    string
	Name        string
	NativeField string

	// UI holds the language's UI string bundle (button labels, titles).
	UI map[string]string

	// CategoryNames maps a category key to its display name in this language.
	// Missing keys fall back to the raw category key at resolution time.
	CategoryNames map[string]string

	// Categories maps a category key to its phrase entries.
	Categories map[string][]Entry
}

// CategoryKeys returns the view's category keys, sorted.
func (v *LanguageView) CategoryKeys() []string {
	keys := make([]string, 0, len(v.Categories))
	for k := range v.Categories {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TranslationSide is one half of a translation result.
type TranslationSide struct {
	Language string `json:"language"`
	Text     string `json:"text"`
	Phonetic string `json:"phonetic,omitempty"`
	English  string `json:"english"`
}

// TranslationResult pairs a phrase's source- and target-language renderings.
type TranslationResult struct {
	Source   TranslationSide `json:"source"`
	Target   TranslationSide `json:"target"`
	Category string          `json:"category"`
}

// FirstNonEmpty returns the first non-empty string, or "". Fallback chains
// throughout the resolver and translator go through here so the precedence
// order is defined in exactly one place.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// defaultUI is the generic label set used when a language's bundle is missing
// a key.
var defaultUI = map[string]string{
	"pageTitle":      "Phrasebook",
	"selectCategory": "Select a category",
	"selectPhrase":   "Select a phrase",
	"listen":         "Listen",
	"translate":      "Translate",
	"loading":        "Loading...",
}

// UIString resolves a UI label from the bundle, falling back to the generic
// default set, then to the key itself.
func UIString(bundle map[string]string, key string) string {
	return FirstNonEmpty(bundle[key], defaultUI[key], key)
}
