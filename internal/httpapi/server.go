package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jhendrikx/podforge/internal/config"
	"github.com/jhendrikx/podforge/internal/observability"
	"github.com/jhendrikx/podforge/internal/pipeline"
	"github.com/jhendrikx/podforge/internal/store"
)

// Runner executes one episode run to completion.
type Runner interface {
	Run(ctx context.Context, run store.Run, req pipeline.Request) (store.Run, error)
}

type Server struct {
	cfg      config.Config
	runs     store.Store
	runner   Runner
	metrics  *observability.Metrics
	upgrader websocket.Upgrader
	hub      *hub
}

func New(cfg config.Config, runs store.Store, runner Runner, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:     cfg,
		runs:    runs,
		runner:  runner,
		metrics: metrics,
		hub:     newHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only same-origin browser connections unless explicitly opened up.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

// PublishRunEvent feeds a run state change to websocket subscribers.
// Wire it as the pipeline's event listener.
func (s *Server) PublishRunEvent(run store.Run) {
	s.hub.publish(run)
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleHealth)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/v1/runs", s.handleCreateRun)
	r.Get("/v1/runs", s.handleListRuns)
	r.Get("/v1/runs/{id}", s.handleGetRun)
	r.Get("/v1/runs/{id}/audio", s.handleRunAudio)
	r.Get("/v1/runs/{id}/events", s.handleRunEvents)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"provider": s.cfg.TTSProvider,
	})
}

type createRunRequest struct {
	Topic           string `json:"topic"`
	Style           string `json:"style"`
	Language        string `json:"language"`
	DurationMinutes int    `json:"duration_minutes"`
	Research        string `json:"research"`
	TranslateTo     string `json:"translate_to"`
	Script          string `json:"script"`
	ScriptOnly      bool   `json:"script_only"`
}

type runView struct {
	ID           string    `json:"id"`
	Topic        string    `json:"topic"`
	Language     string    `json:"language,omitempty"`
	Provider     string    `json:"provider"`
	Status       string    `json:"status"`
	Stage        string    `json:"stage,omitempty"`
	Error        string    `json:"error,omitempty"`
	Script       string    `json:"script,omitempty"`
	AudioReady   bool      `json:"audio_ready"`
	NumSections  int       `json:"num_sections,omitempty"`
	TargetWords  int       `json:"target_words,omitempty"`
	InputTokens  int       `json:"input_tokens,omitempty"`
	OutputTokens int       `json:"output_tokens,omitempty"`
	Chunks       int       `json:"chunks,omitempty"`
	Retries      int       `json:"retries,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func viewOf(run store.Run, includeScript bool) runView {
	v := runView{
		ID:           run.ID,
		Topic:        run.Topic,
		Language:     run.Language,
		Provider:     run.Provider,
		Status:       string(run.Status),
		Stage:        run.Stage,
		Error:        run.Error,
		AudioReady:   run.AudioPath != "",
		NumSections:  run.NumSections,
		TargetWords:  run.TargetWords,
		InputTokens:  run.InputTokens,
		OutputTokens: run.OutputTokens,
		Chunks:       run.Chunks,
		Retries:      run.Retries,
		CreatedAt:    run.CreatedAt,
		UpdatedAt:    run.UpdatedAt,
	}
	if includeScript {
		v.Script = run.Script
	}
	return v
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req createRunRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Topic) == "" && strings.TrimSpace(req.Script) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "topic or script is required")
		return
	}

	run := store.Run{
		ID:       uuid.NewString(),
		Topic:    req.Topic,
		Language: req.Language,
		Provider: s.cfg.TTSProvider,
		Status:   store.StatusPending,
	}
	if err := s.runs.CreateRun(r.Context(), run); err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	s.metrics.RunEvents.WithLabelValues("created", "ok").Inc()

	go func() {
		// The run outlives the HTTP request that started it.
		_, err := s.runner.Run(context.Background(), run, pipeline.Request{
			Topic:           req.Topic,
			Style:           req.Style,
			Language:        req.Language,
			DurationMinutes: req.DurationMinutes,
			Research:        req.Research,
			TranslateTo:     req.TranslateTo,
			Script:          req.Script,
			ScriptOnly:      req.ScriptOnly,
		})
		if err != nil {
			log.Printf("run %s failed: %v", run.ID, err)
		}
	}()

	respondJSON(w, http.StatusAccepted, viewOf(run, false))
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.runs.ListRuns(r.Context(), 50)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	views := make([]runView, 0, len(runs))
	for _, run := range runs {
		views = append(views, viewOf(run, false))
	}
	respondJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, viewOf(run, true))
}

func (s *Server) handleRunAudio(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	if run.AudioPath == "" {
		respondError(w, http.StatusConflict, "audio_not_ready", "run has no audio yet")
		return
	}
	http.ServeFile(w, r, run.AudioPath)
}

func (s *Server) handleRunEvents(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch := s.hub.subscribe(run.ID)
	defer s.hub.unsubscribe(run.ID, ch)

	// Snapshot first so late subscribers see the current state.
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteJSON(viewOf(run, false)); err != nil {
		return
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case update := <-ch:
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(viewOf(update, false)); err != nil {
				return
			}
			if update.Status == store.StatusCompleted || update.Status == store.StatusFailed {
				return
			}
		}
	}
}

func (s *Server) lookupRun(w http.ResponseWriter, r *http.Request) (store.Run, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_run_id", "missing run id")
		return store.Run{}, false
	}
	run, err := s.runs.GetRun(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "run_not_found", err.Error())
		return store.Run{}, false
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return store.Run{}, false
	}
	return run, true
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
