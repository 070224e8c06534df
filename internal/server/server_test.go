package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/phrasebook/internal/config"
	"github.com/nadzzz/phrasebook/internal/contextual"
	"github.com/nadzzz/phrasebook/internal/phrase"
	"github.com/nadzzz/phrasebook/internal/store"
	"github.com/nadzzz/phrasebook/internal/tts"
)

const serverFixture = `{
	"version": "2.0",
	"languages": {
		"spanish": {"name": "Español (Spanish)", "nativeField": "spanish", "ui": {}},
		"amharic": {"name": "አማርኛ (Amharic)", "nativeField": "amharic", "ui": {}}
	},
	"categoryNames": {
		"basics": {"spanish": "Básicos"}
	},
	"phrases": [
		{"id": "basics_hello", "category": "basics", "english": "hello", "spanish": "Hola", "spanish_phonetic": "o-la", "amharic": "ሰላም"}
	]
}`

// stubEngine is a canned tts.Engine for handler tests.
type stubEngine struct {
	synthErr error
	audio    []byte
	ctype    string
}

func (s *stubEngine) Synthesize(ctx context.Context, text, language string) (*tts.SynthesizeResult, error) {
	if s.synthErr != nil {
		return nil, s.synthErr
	}
	return &tts.SynthesizeResult{Audio: s.audio, ContentType: s.ctype}, nil
}

func (s *stubEngine) Languages(ctx context.Context) ([]byte, error) {
	return []byte(`{"languages": ["spanish"]}`), nil
}

func (s *stubEngine) Healthy(ctx context.Context) bool { return true }
func (s *stubEngine) Close() error                     { return nil }

type testOption func(*Server)

func withEngine(e tts.Engine) testOption {
	return func(s *Server) { s.engine = e }
}

func withDataset(d *contextual.Dataset) testOption {
	return func(s *Server) { s.dataset = d }
}

func withConversations(idx *contextual.Index) testOption {
	return func(s *Server) { s.convs = idx }
}

func newTestServer(t *testing.T, opts ...testOption) *Server {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "unified_translations.json")
	require.NoError(t, os.WriteFile(path, []byte(serverFixture), 0o644))

	st := store.New(config.DataConfig{Mode: "unified", UnifiedFile: path})
	require.NoError(t, st.Load())

	cfg := &config.Config{}
	cfg.Server.Port = 0
	cfg.TTS.SpeakPerMinute = 10
	cfg.TTS.SpeakBurst = 2

	s := New(cfg, st, nil, nil, &stubEngine{audio: []byte("audio"), ctype: "audio/wav"})
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func doRequest(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestLanguagesEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/languages", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Languages []phrase.Language `json:"languages"`
		TTS       json.RawMessage   `json:"tts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Languages, len(phrase.Builtin))
	assert.NotEmpty(t, body.TTS, "engine listing rides along when reachable")
}

func TestCategoriesEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/categories/spanish", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Language      string            `json:"language"`
		CategoryNames map[string]string `json:"categoryNames"`
		Categories    []string          `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "spanish", body.Language)
	assert.Contains(t, body.Categories, "basics")
	assert.Equal(t, "Básicos", body.CategoryNames["basics"])
}

func TestCategoriesUnknownLanguageIs404(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/categories/klingon", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPhrasesEndpointStatusMapping(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/phrases/spanish/basics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Charset violation: validation, not lookup failure.
	rec = doRequest(s, httptest.NewRequest(http.MethodGet, "/api/phrases/spanish/Foo-Bar", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(s, httptest.NewRequest(http.MethodGet, "/api/phrases/spanish/__proto__", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(s, httptest.NewRequest(http.MethodGet, "/api/phrases/spanish/missing_cat", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTranslateEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/translate/spanish/amharic/basics/hello", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var result phrase.TranslationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "Hola", result.Source.Text)
	assert.Equal(t, "o-la", result.Source.Phonetic)
	assert.Equal(t, "ሰላም", result.Target.Text)
	assert.Equal(t, "basics", result.Category)
}

func TestTranslateMissingPhraseIs404(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/translate/spanish/amharic/basics/nonexistent", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func speakReq(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/speak", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestSpeakEndpoint(t *testing.T) {
	s := newTestServer(t, withEngine(&stubEngine{audio: []byte("RIFFfake"), ctype: "audio/mpeg"}))

	rec := doRequest(s, speakReq(`{"text": "Hola", "language": "spanish"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "inline", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "RIFFfake", rec.Body.String())
}

func TestSpeakValidation(t *testing.T) {
	s := newTestServer(t)

	for name, body := range map[string]string{
		"malformed json":       `{not json`,
		"unsupported language": `{"text": "hi", "language": "klingon"}`,
		"empty text":           `{"text": "   ", "language": "spanish"}`,
		"oversized text":       fmt.Sprintf(`{"text": %q, "language": "spanish"}`, strings.Repeat("a", 5001)),
	} {
		rec := doRequest(s, speakReq(body))
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
}

func TestSpeakUpstreamFailureIs503(t *testing.T) {
	s := newTestServer(t, withEngine(&stubEngine{
		synthErr: fmt.Errorf("connection refused: %w", phrase.ErrUpstream),
	}))

	rec := doRequest(s, speakReq(`{"text": "Hola", "language": "spanish"}`))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Details)
}

func TestSpeakRateLimit(t *testing.T) {
	s := newTestServer(t) // burst 2

	for i := 0; i < 2; i++ {
		rec := doRequest(s, speakReq(`{"text": "Hola", "language": "spanish"}`))
		require.Equal(t, http.StatusOK, rec.Code, "request %d within burst", i+1)
	}
	rec := doRequest(s, speakReq(`{"text": "Hola", "language": "spanish"}`))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// A different client is unaffected.
	req := speakReq(`{"text": "Hola", "language": "spanish"}`)
	req.Header.Set("X-Forwarded-For", "198.51.100.7")
	rec = doRequest(s, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestContextualEndpoints(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "contextual.json")
	content := `{"phrases": [
		{"phrase_id": "greeting_morning_formal", "category": "greetings", "contexts": {"time": "morning", "formality": "formal"}},
		{"phrase_id": "help_urgent", "category": "emergency", "subcategory": "emergency_help", "contexts": {"urgency": "critical"}}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	dataset, err := contextual.LoadDataset(path)
	require.NoError(t, err)

	s := newTestServer(t, withDataset(dataset))

	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/contextual/phrases?time=morning&formality=formal", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Count   int                 `json:"count"`
		Phrases []contextual.Phrase `json:"phrases"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "greeting_morning_formal", body.Phrases[0].PhraseID)

	rec = doRequest(s, httptest.NewRequest(http.MethodGet, "/api/contextual/emergency", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "help_urgent", body.Phrases[0].PhraseID)
}

func TestContextualEndpointsWithoutDataset(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/contextual/phrases", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(s, httptest.NewRequest(http.MethodGet, "/api/contextual/emergency", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func conversationsFixture(t *testing.T) *contextual.Index {
	t.Helper()
	dir := t.TempDir()
	convDir := filepath.Join(dir, "conversations")
	require.NoError(t, os.Mkdir(convDir, 0o755))

	index := `{"conversations": [
		{"context": "greeting", "language": "amharic", "title": "Greeting a neighbor", "turns": 1},
		{"context": "market", "language": "spanish", "title": "At the market", "turns": 1}
	]}`
	indexPath := filepath.Join(dir, "conversations.json")
	require.NoError(t, os.WriteFile(indexPath, []byte(index), 0o644))

	multi := `{"context": "greeting", "title": "Greeting a neighbor", "turns": [
		{"speaker": "A", "text": {"english": "Good morning", "amharic": "እንደምን አደርክ"}}
	]}`
	require.NoError(t, os.WriteFile(filepath.Join(convDir, "multilanguage_greeting.json"), []byte(multi), 0o644))

	idx, err := contextual.LoadIndex(indexPath, convDir)
	require.NoError(t, err)
	return idx
}

func TestConversationsListAndFilters(t *testing.T) {
	s := newTestServer(t, withConversations(conversationsFixture(t)))

	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/conversations", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)

	rec = doRequest(s, httptest.NewRequest(http.MethodGet, "/api/conversations?context=greeting&language=amharic", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)

	// Conjunctive: matching context but mismatched language yields nothing.
	rec = doRequest(s, httptest.NewRequest(http.MethodGet, "/api/conversations?context=greeting&language=spanish", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Count)
}

func TestConversationEndpoint(t *testing.T) {
	s := newTestServer(t, withConversations(conversationsFixture(t)))

	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/conversations/greeting/amharic", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var conv contextual.Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conv))
	assert.Equal(t, "multilanguage", conv.Source)
	assert.Equal(t, "english", conv.NativeLanguage)
	require.Len(t, conv.Turns, 1)
	assert.Equal(t, "እንደምን አደርክ", conv.Turns[0].Target)
	assert.Equal(t, "Good morning", conv.Turns[0].Native)
}

func TestConversationEndpointErrors(t *testing.T) {
	s := newTestServer(t, withConversations(conversationsFixture(t)))

	// Unsupported target language.
	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/conversations/greeting/klingon", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Unsupported native override.
	rec = doRequest(s, httptest.NewRequest(http.MethodGet, "/api/conversations/greeting/amharic?native=klingon", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Bad context charset.
	rec = doRequest(s, httptest.NewRequest(http.MethodGet, "/api/conversations/UPPER/amharic", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown conversation.
	rec = doRequest(s, httptest.NewRequest(http.MethodGet, "/api/conversations/hospital/amharic", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotReadyStoreIs503(t *testing.T) {
	st := store.New(config.DataConfig{Mode: "unified", UnifiedFile: "/nonexistent.json"})
	cfg := &config.Config{}
	cfg.TTS.SpeakPerMinute = 10
	cfg.TTS.SpeakBurst = 2
	s := New(cfg, st, nil, nil, &stubEngine{})

	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/categories/spanish", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestUnknownErrorsDoNotLeakDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("sql: connection reset by peer"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal error", body.Error)
}
