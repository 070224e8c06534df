// Package tts defines the interface to the external text-to-speech engine.
//
// The phrasebook never synthesizes speech itself: given text and a language
// code, the engine returns an audio byte stream whose content type is passed
// through to the original caller verbatim.
package tts

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nadzzz/phrasebook/internal/phrase"
)

// Text length bounds for synthesis input, measured after trimming.
const (
	MinTextLength = 1
	MaxTextLength = 5000
)

// SynthesizeResult holds the output of a synthesis call.
type SynthesizeResult struct {
	// Audio is the raw audio bytes as returned by the engine.
	Audio []byte

	// ContentType is the engine's response content type (e.g. "audio/mpeg",
	// "audio/wav"), forwarded unchanged.
	ContentType string
}

// Engine converts text to audio and reports on the upstream service.
type Engine interface {
	// Synthesize generates audio for the given text in the given language.
	Synthesize(ctx context.Context, text, language string) (*SynthesizeResult, error)

	// Languages returns the engine's language/voice listing as raw JSON.
	Languages(ctx context.Context) ([]byte, error)

	// Healthy reports whether the engine is reachable.
	Healthy(ctx context.Context) bool

	// Close releases any resources held by the engine client.
	Close() error
}

// ValidateText trims the input and enforces the length bounds, inclusive on
// both ends. The returned string is the trimmed text to synthesize.
func ValidateText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) < MinTextLength {
		return "", fmt.Errorf("text cannot be empty: %w", phrase.ErrValidation)
	}
	if utf8.RuneCountInString(trimmed) > MaxTextLength {
		return "", fmt.Errorf("text exceeds maximum length of %d characters: %w", MaxTextLength, phrase.ErrValidation)
	}
	return trimmed, nil
}
