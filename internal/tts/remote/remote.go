// Package remote implements the tts.Engine against an HTTP text-to-speech
// service.
//
// Contract: POST <base>/tts with a JSON body {text, language} returns raw
// audio bytes; the response Content-Type names the format. GET /languages and
// GET /health are passthroughs used by the index page and the health server.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/nadzzz/phrasebook/internal/config"
	"github.com/nadzzz/phrasebook/internal/phrase"
	"github.com/nadzzz/phrasebook/internal/tts"
)

// maxAudioBytes caps a single synthesis response.
const maxAudioBytes = 50 << 20

// Engine implements tts.Engine over HTTP.
type Engine struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// New creates a remote engine client from config.
func New(cfg config.TTSConfig) *Engine {
	return &Engine{
		baseURL: cfg.BaseURL,
		timeout: cfg.Timeout,
		client:  &http.Client{},
	}
}

type speakRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Synthesize posts the text to the engine and returns the audio bytes with
// the engine's content type. Connection failures are retried briefly with
// exponential backoff, then surfaced as ErrUpstream; the overall call is
// bounded by the configured timeout and aborts when the caller's context is
// cancelled.
func (e *Engine) Synthesize(ctx context.Context, text, language string) (*tts.SynthesizeResult, error) {
	body, err := json.Marshal(speakRequest{Text: text, Language: language})
	if err != nil {
		return nil, fmt.Errorf("marshalling tts request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var result *tts.SynthesizeResult
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/tts", bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("building tts request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := e.client.Do(req)
		if err != nil {
			// Transient: retried until the backoff gives up.
			return fmt.Errorf("tts engine unreachable: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			if resp.StatusCode == http.StatusBadRequest {
				return backoff.Permanent(fmt.Errorf("tts engine rejected input: %s: %w", detail, phrase.ErrValidation))
			}
			if resp.StatusCode >= 500 {
				return fmt.Errorf("tts engine error %d: %s", resp.StatusCode, detail)
			}
			return backoff.Permanent(fmt.Errorf("tts engine status %d: %s: %w", resp.StatusCode, detail, phrase.ErrUpstream))
		}

		audio, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
		if err != nil {
			return fmt.Errorf("reading tts response: %w", err)
		}
		contentType := resp.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "audio/wav"
		}
		result = &tts.SynthesizeResult{Audio: audio, ContentType: contentType}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			return nil, perm.Err
		}
		slog.Error("tts synthesis failed", "language", language, "error", err)
		return nil, fmt.Errorf("%v: %w", err, phrase.ErrUpstream)
	}

	slog.Debug("tts synthesis complete", "language", language, "audio_bytes", len(result.Audio), "content_type", result.ContentType)
	return result, nil
}

// Languages fetches the engine's language listing as raw JSON.
func (e *Engine) Languages(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/languages", nil)
	if err != nil {
		return nil, fmt.Errorf("building languages request: %w", err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts engine unreachable: %w", phrase.ErrUpstream)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts engine status %d: %w", resp.StatusCode, phrase.ErrUpstream)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}

// Healthy probes the engine's /health endpoint.
func (e *Engine) Healthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Close is a no-op; connections are pooled by the http client.
func (e *Engine) Close() error { return nil }
