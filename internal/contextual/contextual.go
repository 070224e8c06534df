// Package contextual serves filtered views over the contextual-phrase and
// conversation datasets.
package contextual

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/nadzzz/phrasebook/internal/phrase"
)

// Contexts tags a phrase with the situation it fits.
type Contexts struct {
	Time         string `json:"time,omitempty"`
	Relationship string `json:"relationship,omitempty"`
	Formality    string `json:"formality,omitempty"`
	Trust        string `json:"trust,omitempty"`
	Urgency      string `json:"urgency,omitempty"`
}

// Phrase is one entry of the contextual-phrases dataset. It joins languages
// by meaning like a regular phrase, but with a looser schema and situational
// metadata attached.
type Phrase struct {
	PhraseID      string            `json:"phrase_id"`
	Category      string            `json:"category"`
	Subcategory   string            `json:"subcategory,omitempty"`
	BaseMeaning   string            `json:"base_meaning,omitempty"`
	Contexts      Contexts          `json:"contexts"`
	Translations  map[string]string `json:"translations,omitempty"`
	UsageNotes    string            `json:"usage_notes,omitempty"`
	CulturalNotes string            `json:"cultural_notes,omitempty"`
}

// Filter selects contextual phrases. Every set (non-empty) field must match
// the phrase's corresponding context exactly; unset fields impose no
// constraint.
type Filter struct {
	Time         string
	Relationship string
	Formality    string
	Trust        string
	Urgency      string
}

// Matches applies the conjunctive filter to one phrase.
func (f Filter) Matches(p *Phrase) bool {
	if f.Time != "" && p.Contexts.Time != f.Time {
		return false
	}
	if f.Relationship != "" && p.Contexts.Relationship != f.Relationship {
		return false
	}
	if f.Formality != "" && p.Contexts.Formality != f.Formality {
		return false
	}
	if f.Trust != "" && p.Contexts.Trust != f.Trust {
		return false
	}
	if f.Urgency != "" && p.Contexts.Urgency != f.Urgency {
		return false
	}
	return true
}

// Apply returns the subset of phrases matching the filter. An empty filter
// returns all phrases unchanged.
func Apply(phrases []Phrase, f Filter) []Phrase {
	out := make([]Phrase, 0, len(phrases))
	for i := range phrases {
		if f.Matches(&phrases[i]) {
			out = append(out, phrases[i])
		}
	}
	return out
}

// Dataset is the loaded contextual-phrases collection.
type Dataset struct {
	phrases []Phrase
}

type datasetFile struct {
	Phrases []Phrase `json:"phrases"`
}

// LoadDataset reads the contextual-phrases file. A missing file is
// ErrNotFound (the dataset is optional); a present but unparseable file is
// ErrCorruptData.
func LoadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("contextual phrases %s: %w", path, phrase.ErrNotFound)
		}
		return nil, fmt.Errorf("reading contextual phrases %s: %w", path, err)
	}
	var df datasetFile
	if err := json.Unmarshal(data, &df); err != nil {
		return nil, fmt.Errorf("parsing contextual phrases %s: %v: %w", path, err, phrase.ErrCorruptData)
	}
	return &Dataset{phrases: df.Phrases}, nil
}

// Filter returns the phrases matching f.
func (d *Dataset) Filter(f Filter) []Phrase {
	return Apply(d.phrases, f)
}

// Emergency returns the phrases relevant in an emergency: the emergency_help
// subcategory, anything tagged critical urgency, and the core help/water/
// hospital requests.
func (d *Dataset) Emergency() []Phrase {
	out := make([]Phrase, 0)
	for i := range d.phrases {
		p := &d.phrases[i]
		if p.Subcategory == "emergency_help" || p.Contexts.Urgency == "critical" ||
			strings.Contains(p.PhraseID, "help_urgent") ||
			strings.Contains(p.PhraseID, "water_request") ||
			strings.Contains(p.PhraseID, "hospital") {
			out = append(out, *p)
		}
	}
	return out
}
