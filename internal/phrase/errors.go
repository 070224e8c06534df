package phrase

import "errors"

// Error kinds for the phrasebook. Every failure in the data-access layer wraps
// exactly one of these sentinels, so callers (and the HTTP layer) distinguish
// the cases with errors.Is:
//
//	ErrValidation:  the request itself is malformed (bad charset, bad bounds)
//	ErrNotFound:    well-formed request, no such language/category/phrase
//	ErrCorruptData: a backing file exists but failed to parse
//	ErrUpstream:    the external TTS engine is unreachable or errored
//	ErrNotReady:    the store has not finished loading yet
var (
	ErrValidation  = errors.New("invalid input")
	ErrNotFound    = errors.New("not found")
	ErrCorruptData = errors.New("translation data corrupted")
	ErrUpstream    = errors.New("tts service unavailable")
	ErrNotReady    = errors.New("service starting")
)
