package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/TacImpulse/ultimate-voice-bridge/internal/config"
	"github.com/TacImpulse/ultimate-voice-bridge/internal/conversation"
	"github.com/TacImpulse/ultimate-voice-bridge/internal/history"
	"github.com/TacImpulse/ultimate-voice-bridge/internal/observability"
)

// Generator produces one conversation per call. Satisfied by
// *conversation.Engine; tests substitute stubs.
type Generator interface {
	Generate(ctx context.Context, req conversation.Request) (*conversation.Result, error)
}

type Server struct {
	cfg      config.Config
	engine   Generator
	store    history.Store
	metrics  *observability.Metrics
	window   *observability.StageWindow
	upgrader websocket.Upgrader
}

func New(cfg config.Config, engine Generator, store history.Store, metrics *observability.Metrics, window *observability.StageWindow) *Server {
	return &Server{
		cfg:     cfg,
		engine:  engine,
		store:   store,
		metrics: metrics,
		window:  window,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Default: only same-origin browser connections. Other sites
				// must not be able to drive generation jobs if the service is
				// ever exposed beyond localhost.
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

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/api/v1/conversation", s.handleGenerate)
	r.Get("/api/v1/conversation/styles", s.handleListStyles)
	r.Get("/api/v1/conversation/emotions", s.handleListEmotions)
	r.Get("/api/v1/conversation/ws", s.handleGenerateWS)
	r.Get("/api/v1/conversations/history", s.handleHistory)
	r.Get("/api/v1/perf/latency", s.handlePerfLatency)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "ready",
		"backend": s.cfg.SynthBackend,
	})
}

func (s *Server) handlePerfLatency(w http.ResponseWriter, _ *http.Request) {
	if s.window == nil {
		respondError(w, http.StatusNotImplemented, "unavailable", "latency window not configured")
		return
	}
	respondJSON(w, http.StatusOK, s.window.Snapshot())
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
