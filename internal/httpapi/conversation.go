package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/TacImpulse/ultimate-voice-bridge/internal/conversation"
	"github.com/TacImpulse/ultimate-voice-bridge/internal/history"
)

// generateRequest is the HTTP request body for one generation run. It
// matches protocol.GenerateRequest minus the websocket envelope fields.
type generateRequest struct {
	Script                 string            `json:"script"`
	SpeakerVoiceMap        map[string]string `json:"speaker_voice_map"`
	Style                  string            `json:"style"`
	AddNaturalInteractions bool              `json:"add_natural_interactions"`
	IncludeBackgroundSound bool              `json:"include_background_sound"`
	BackgroundSoundVolume  int               `json:"background_sound_volume"`
	EmotionalIntelligence  bool              `json:"emotional_intelligence"`
	RandomSeed             *int64            `json:"random_seed,omitempty"`
}

func (g generateRequest) toEngineRequest() (conversation.Request, error) {
	style, err := conversation.ParseStyle(g.Style)
	if err != nil {
		return conversation.Request{}, err
	}
	return conversation.Request{
		Script:                 g.Script,
		SpeakerVoiceMap:        g.SpeakerVoiceMap,
		Style:                  style,
		AddNaturalInteractions: g.AddNaturalInteractions,
		IncludeBackgroundSound: g.IncludeBackgroundSound,
		BackgroundSoundVolume:  g.BackgroundSoundVolume,
		EmotionalIntelligence:  g.EmotionalIntelligence,
		RandomSeed:             g.RandomSeed,
	}, nil
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body generateRequest
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	req, err := body.toEngineRequest()
	if err != nil {
		respondError(w, http.StatusBadRequest, "unknown_style", err.Error())
		return
	}
	req.OnProgress = func(p conversation.Progress) {
		status := "ok"
		if p.Failed {
			status = "failed"
		}
		s.metrics.Segments.WithLabelValues(status).Inc()
	}

	s.metrics.ActiveGenerations.Inc()
	defer s.metrics.ActiveGenerations.Dec()

	started := time.Now()
	res, err := s.engine.Generate(r.Context(), req)
	elapsed := time.Since(started)
	if err != nil {
		s.metrics.Conversations.WithLabelValues(string(req.Style), "error").Inc()
		respondGenerateError(w, err)
		return
	}
	s.metrics.Conversations.WithLabelValues(string(req.Style), "ok").Inc()
	s.metrics.ObserveGenerationLatency(elapsed)
	if s.window != nil {
		s.window.Observe("generation_total", float64(elapsed.Milliseconds()))
	}

	s.saveRun(r.Context(), req, res)
	writeConversationWAV(w, res)
}

// respondGenerateError maps pipeline errors onto HTTP statuses. Caller
// mistakes are 400s, backend trouble is a 502, everything else a 500.
func respondGenerateError(w http.ResponseWriter, err error) {
	var parseErr *conversation.ParseError
	var profErr *conversation.ProfileError
	var asmErr *conversation.AssemblyError
	switch {
	case errors.As(err, &parseErr):
		respondError(w, http.StatusBadRequest, "script_parse_failed", err.Error())
	case errors.As(err, &profErr):
		respondError(w, http.StatusBadRequest, "speaker_mapping_invalid", err.Error())
	case errors.Is(err, conversation.ErrAllSegmentsFailed):
		respondError(w, http.StatusBadGateway, "synthesis_unavailable", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusServiceUnavailable, "request_aborted", err.Error())
	case errors.As(err, &asmErr):
		respondError(w, http.StatusInternalServerError, "assembly_failed", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

func writeConversationWAV(w http.ResponseWriter, res *conversation.Result) {
	emotions, _ := json.Marshal(res.Metadata.EmotionDistribution)

	h := w.Header()
	h.Set("Content-Type", "audio/wav")
	h.Set("Content-Length", strconv.Itoa(len(res.WAV)))
	h.Set("X-Conversation-Id", res.ID)
	h.Set("X-Duration-Seconds", fmt.Sprintf("%.3f", res.Metadata.DurationSeconds))
	h.Set("X-Speaker-Count", strconv.Itoa(res.Metadata.SpeakerCount))
	h.Set("X-Word-Count", strconv.Itoa(res.Metadata.WordCount))
	h.Set("X-Interaction-Complexity", fmt.Sprintf("%.3f", res.Metadata.InteractionComplexity))
	h.Set("X-Segments-Failed", strconv.Itoa(res.Metadata.SegmentsFailed))
	h.Set("X-Emotion-Distribution", string(emotions))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.WAV)
}

func (s *Server) saveRun(ctx context.Context, req conversation.Request, res *conversation.Result) {
	if s.store == nil {
		return
	}
	record := history.RunRecord{
		ID:                    res.ID,
		Style:                 string(req.Style),
		SpeakerCount:          res.Metadata.SpeakerCount,
		WordCount:             res.Metadata.WordCount,
		DurationSeconds:       res.Metadata.DurationSeconds,
		InteractionComplexity: res.Metadata.InteractionComplexity,
		SegmentsFailed:        res.Metadata.SegmentsFailed,
	}
	if err := s.store.SaveRun(ctx, record); err != nil {
		// History is best-effort; the caller still gets their audio.
		log.Printf("save run %s: %v", res.ID, err)
	}
}

func (s *Server) handleListStyles(w http.ResponseWriter, _ *http.Request) {
	styles := conversation.Styles()
	out := make([]string, 0, len(styles))
	for _, st := range styles {
		out = append(out, string(st))
	}
	respondJSON(w, http.StatusOK, map[string]any{"styles": out})
}

func (s *Server) handleListEmotions(w http.ResponseWriter, _ *http.Request) {
	emotions := conversation.Emotions()
	out := make([]string, 0, len(emotions))
	for _, e := range emotions {
		out = append(out, string(e))
	}
	respondJSON(w, http.StatusOK, map[string]any{"emotions": out})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusNotImplemented, "unavailable", "history store not configured")
		return
	}

	limit := s.cfg.HistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := s.store.Recent(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "history_unavailable", err.Error())
		return
	}
	if runs == nil {
		runs = []history.RunRecord{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"runs": runs})
}
