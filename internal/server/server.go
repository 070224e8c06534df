// Package server implements the phrasebook HTTP API.
//
// The server is thin on purpose: handlers validate at the boundary, call into
// the store/resolver/translator, and map the error taxonomy onto status
// codes. No handler touches mutable shared state except the rate limiter.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/nadzzz/phrasebook/internal/config"
	"github.com/nadzzz/phrasebook/internal/contextual"
	"github.com/nadzzz/phrasebook/internal/phrase"
	"github.com/nadzzz/phrasebook/internal/resolver"
	"github.com/nadzzz/phrasebook/internal/store"
	"github.com/nadzzz/phrasebook/internal/translator"
	"github.com/nadzzz/phrasebook/internal/tts"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Server serves the phrasebook REST API.
type Server struct {
	port    int
	store   *store.Store
	dataset *contextual.Dataset
	convs   *contextual.Index
	engine  tts.Engine
	limiter *ipLimiter
	server  *http.Server
}

// New wires the API server. dataset and convs may be nil when their backing
// files were not present at startup; the corresponding endpoints then answer
// not-found instead of failing the whole process.
func New(cfg *config.Config, st *store.Store, dataset *contextual.Dataset, convs *contextual.Index, engine tts.Engine) *Server {
	return &Server{
		port:    cfg.Server.Port,
		store:   st,
		dataset: dataset,
		convs:   convs,
		engine:  engine,
		limiter: newIPLimiter(cfg.TTS.SpeakPerMinute, cfg.TTS.SpeakBurst),
	}
}

// Handler builds the API route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/languages", s.handleLanguages)
	mux.HandleFunc("GET /api/categories/{language}", s.handleCategories)
	mux.HandleFunc("GET /api/phrases/{language}/{category}", s.handlePhrases)
	mux.HandleFunc("GET /api/translate/{source}/{target}/{category}/{english}", s.handleTranslate)
	mux.HandleFunc("POST /api/speak", s.handleSpeak)
	mux.HandleFunc("GET /api/contextual/phrases", s.handleContextual)
	mux.HandleFunc("GET /api/contextual/emergency", s.handleEmergency)
	mux.HandleFunc("GET /api/conversations", s.handleConversations)
	mux.HandleFunc("GET /api/conversations/{context}/{language}", s.handleConversation)

	// Swagger UI, backed by the generated OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return mux
}

// Listen starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Listen(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("api server listening", "port", s.port)

	go func() {
		<-ctx.Done()
		slog.Info("api server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("api listen: %w", err)
	}
	return nil
}

// Close gracefully shuts down the HTTP server.
func (s *Server) Close() error {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

// errorBody is the JSON shape of every non-2xx response.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// writeError maps the error taxonomy onto HTTP status codes. Unknown errors
// are server-side failures and never leak as a 200.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := errorBody{Error: err.Error()}
	switch {
	case errors.Is(err, phrase.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, phrase.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, phrase.ErrNotReady):
		status = http.StatusServiceUnavailable
		w.Header().Set("Retry-After", "1")
	case errors.Is(err, phrase.ErrUpstream):
		status = http.StatusServiceUnavailable
		body.Details = "the speech engine is not reachable; try again shortly"
	case errors.Is(err, phrase.ErrCorruptData):
		slog.Error("serving corrupted data error", "error", err)
	default:
		slog.Error("unhandled error", "error", err)
		body.Error = "internal error"
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// handleLanguages lists the configured languages.
//
// @Summary     List supported languages
// @Description Returns the configured language set. When the speech engine is reachable its voice listing is included under "tts".
// @Tags        languages
// @Produce     json
// @Success     200  {object}  map[string]any
// @Router      /api/languages [get]
func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{
		"languages": s.store.Languages(),
	}
	// Engine listing is best-effort: the phrasebook stays useful without it.
	if raw, err := s.engine.Languages(r.Context()); err == nil {
		out["tts"] = json.RawMessage(raw)
	} else {
		slog.Warn("tts language listing unavailable", "error", err)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCategories returns a language's category list.
//
// @Summary     List categories for a language
// @Tags        phrases
// @Produce     json
// @Param       language  path  string  true  "Language code (e.g. amharic)"
// @Success     200  {object}  resolver.CategoryList
// @Failure     404  {object}  server.errorBody  "Language not supported"
// @Failure     503  {object}  server.errorBody  "Store still loading"
// @Router      /api/categories/{language} [get]
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	view, err := s.store.LanguageView(r.PathValue("language"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resolver.ListCategories(view))
}

// handlePhrases returns the phrases of one category.
//
// @Summary     List phrases in a category
// @Tags        phrases
// @Produce     json
// @Param       language  path  string  true  "Language code"
// @Param       category  path  string  true  "Category key (lowercase letters and underscore)"
// @Success     200  {object}  resolver.CategoryPhrases
// @Failure     400  {object}  server.errorBody  "Invalid category format"
// @Failure     404  {object}  server.errorBody  "Language or category not found"
// @Router      /api/phrases/{language}/{category} [get]
func (s *Server) handlePhrases(w http.ResponseWriter, r *http.Request) {
	view, err := s.store.LanguageView(r.PathValue("language"))
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := resolver.GetPhrases(view, r.PathValue("category"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleTranslate resolves a phrase in two languages at once.
//
// @Summary     Translate a phrase between two languages
// @Description Looks the phrase up by its English key under the given category in both languages and returns both renderings with phonetics.
// @Tags        phrases
// @Produce     json
// @Param       source    path  string  true  "Source language code"
// @Param       target    path  string  true  "Target language code"
// @Param       category  path  string  true  "Category key"
// @Param       english   path  string  true  "English key of the phrase"
// @Success     200  {object}  phrase.TranslationResult
// @Failure     400  {object}  server.errorBody  "Invalid category format"
// @Failure     404  {object}  server.errorBody  "Language or phrase not found"
// @Router      /api/translate/{source}/{target}/{category}/{english} [get]
func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	source, err := s.store.LanguageView(r.PathValue("source"))
	if err != nil {
		writeError(w, err)
		return
	}
	target, err := s.store.LanguageView(r.PathValue("target"))
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := translator.Translate(source, target, r.PathValue("category"), r.PathValue("english"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type speakRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// handleSpeak proxies a synthesis request to the external TTS engine.
//
// @Summary     Synthesize speech for a phrase
// @Description Validates the text (1-5000 characters after trimming) and language, then forwards to the speech engine. The audio bytes stream back with the engine's content type.
// @Tags        speech
// @Accept      json
// @Produce     audio/mpeg
// @Produce     audio/wav
// @Param       request  body  server.speakRequest  true  "Text and language to synthesize"
// @Success     200  {string}  binary  "Audio stream"
// @Failure     400  {object}  server.errorBody  "Invalid text or language"
// @Failure     429  {object}  server.errorBody  "Rate limit exceeded"
// @Failure     503  {object}  server.errorBody  "Speech engine unavailable"
// @Router      /api/speak [post]
func (s *Server) handleSpeak(w http.ResponseWriter, r *http.Request) {
	var req speakRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("invalid json body: %v: %w", err, phrase.ErrValidation))
		return
	}

	if !s.store.Supported(req.Language) {
		writeError(w, fmt.Errorf("valid language is required: %w", phrase.ErrValidation))
		return
	}
	text, err := tts.ValidateText(req.Text)
	if err != nil {
		writeError(w, err)
		return
	}

	if !s.limiter.allow(clientIP(r)) {
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "too many requests, please try again later"})
		return
	}

	result, err := s.engine.Synthesize(r.Context(), text, req.Language)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", "inline")
	_, _ = w.Write(result.Audio)
}

// handleContextual serves the contextual-phrases dataset, optionally
// filtered.
//
// @Summary     List contextual phrases
// @Description Returns contextual phrases. Each query parameter that is set constrains the matching context field exactly; unset parameters impose no constraint.
// @Tags        contextual
// @Produce     json
// @Param       time          query  string  false  "Time-of-day context"
// @Param       relationship  query  string  false  "Relationship context"
// @Param       formality     query  string  false  "Formality level"
// @Param       trust         query  string  false  "Trust level"
// @Param       urgency       query  string  false  "Urgency level"
// @Success     200  {object}  map[string]any
// @Failure     404  {object}  server.errorBody  "Dataset not loaded"
// @Router      /api/contextual/phrases [get]
func (s *Server) handleContextual(w http.ResponseWriter, r *http.Request) {
	if s.dataset == nil {
		writeError(w, fmt.Errorf("contextual phrases dataset not loaded: %w", phrase.ErrNotFound))
		return
	}
	q := r.URL.Query()
	matched := s.dataset.Filter(contextual.Filter{
		Time:         q.Get("time"),
		Relationship: q.Get("relationship"),
		Formality:    q.Get("formality"),
		Trust:        q.Get("trust"),
		Urgency:      q.Get("urgency"),
	})
	writeJSON(w, http.StatusOK, map[string]any{"count": len(matched), "phrases": matched})
}

// handleEmergency serves the emergency subset of the contextual dataset.
//
// @Summary     List emergency phrases
// @Tags        contextual
// @Produce     json
// @Success     200  {object}  map[string]any
// @Failure     404  {object}  server.errorBody  "Dataset not loaded"
// @Router      /api/contextual/emergency [get]
func (s *Server) handleEmergency(w http.ResponseWriter, r *http.Request) {
	if s.dataset == nil {
		writeError(w, fmt.Errorf("contextual phrases dataset not loaded: %w", phrase.ErrNotFound))
		return
	}
	matched := s.dataset.Emergency()
	writeJSON(w, http.StatusOK, map[string]any{"count": len(matched), "phrases": matched})
}

// handleConversations lists the conversation index, optionally filtered by
// context and/or language.
//
// @Summary     List conversations
// @Tags        conversations
// @Produce     json
// @Param       context   query  string  false  "Filter by context"
// @Param       language  query  string  false  "Filter by language"
// @Success     200  {object}  map[string]any
// @Failure     404  {object}  server.errorBody  "Index not loaded"
// @Router      /api/conversations [get]
func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	if s.convs == nil {
		writeError(w, fmt.Errorf("conversation index not loaded: %w", phrase.ErrNotFound))
		return
	}
	q := r.URL.Query()
	context, language := q.Get("context"), q.Get("language")

	var result []contextual.Summary
	switch {
	case context != "" && language != "":
		for _, c := range s.convs.ByContext(context) {
			if c.Language == language {
				result = append(result, c)
			}
		}
	case context != "":
		result = s.convs.ByContext(context)
	case language != "":
		result = s.convs.ByLanguage(language)
	default:
		result = s.convs.List()
	}
	if result == nil {
		result = []contextual.Summary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(result), "conversations": result})
}

// handleConversation resolves one conversation for a language pair.
//
// @Summary     Get a conversation
// @Description Resolves the dialogue for a context and target language. The consolidated multilanguage file is preferred; the legacy per-language file is the fallback. The native side defaults to English and can be overridden with ?native=.
// @Tags        conversations
// @Produce     json
// @Param       context   path   string  true   "Conversation context (lowercase letters and underscore)"
// @Param       language  path   string  true   "Target language code"
// @Param       native    query  string  false  "Native language code (default english)"
// @Success     200  {object}  contextual.Conversation
// @Failure     400  {object}  server.errorBody  "Invalid context format"
// @Failure     404  {object}  server.errorBody  "Conversation or language not found"
// @Router      /api/conversations/{context}/{language} [get]
func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	if s.convs == nil {
		writeError(w, fmt.Errorf("conversation index not loaded: %w", phrase.ErrNotFound))
		return
	}
	target := r.PathValue("language")
	if !s.store.Supported(target) {
		writeError(w, fmt.Errorf("language %q not supported: %w", target, phrase.ErrNotFound))
		return
	}
	native := r.URL.Query().Get("native")
	if native == "" {
		native = "english"
	} else if !s.store.Supported(native) {
		writeError(w, fmt.Errorf("language %q not supported: %w", native, phrase.ErrNotFound))
		return
	}

	conv, err := s.convs.Resolve(r.PathValue("context"), native, target)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}
