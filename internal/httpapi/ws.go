package httpapi

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/TacImpulse/ultimate-voice-bridge/internal/conversation"
	"github.com/TacImpulse/ultimate-voice-bridge/internal/protocol"
)

// handleGenerateWS runs generation jobs over a websocket so clients get
// per-segment progress while synthesis is still running. One job at a time
// per connection; a second generate_request while one is in flight is
// rejected with an error event.
func (s *Server) handleGenerateWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	outbound := make(chan any, 256)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-outbound:
				if !ok {
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteJSON(msg); err != nil {
					cancel()
					return
				}
				if t, ok := messageTypeOf(msg); ok {
					s.metrics.WSMessages.WithLabelValues("outbound", string(t)).Inc()
				}
			}
		}
	}()

	var (
		mu        sync.Mutex
		jobCancel context.CancelFunc
		jobID     string
	)
	jobDone := make(chan struct{}, 1)

	send := func(msg any) {
		select {
		case outbound <- msg:
		default:
			// Keep websocket writes single-threaded; drop when saturated.
		}
	}

	conn.SetReadLimit(2 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		return nil
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		parsed, err := protocol.ParseClientMessage(data)
		if err != nil {
			send(protocol.ErrorEvent{
				Type:   protocol.TypeErrorEvent,
				Code:   "invalid_client_message",
				Detail: err.Error(),
			})
			continue
		}
		if t, ok := messageTypeOf(parsed); ok {
			s.metrics.WSMessages.WithLabelValues("inbound", string(t)).Inc()
		}

		switch msg := parsed.(type) {
		case protocol.GenerateRequest:
			mu.Lock()
			busy := jobCancel != nil
			mu.Unlock()
			if busy {
				send(protocol.ErrorEvent{
					Type:      protocol.TypeErrorEvent,
					RequestID: msg.RequestID,
					Code:      "generation_in_flight",
					Detail:    "a generation is already running on this connection",
				})
				continue
			}

			genCtx, genCancel := context.WithCancel(ctx)
			mu.Lock()
			jobCancel = genCancel
			jobID = msg.RequestID
			mu.Unlock()

			go func(msg protocol.GenerateRequest) {
				defer func() {
					genCancel()
					mu.Lock()
					jobCancel = nil
					jobID = ""
					mu.Unlock()
					select {
					case jobDone <- struct{}{}:
					default:
					}
				}()
				s.runGenerationJob(genCtx, msg, send)
			}(msg)

		case protocol.ClientControl:
			if msg.Action != "cancel" {
				send(protocol.ErrorEvent{
					Type:      protocol.TypeErrorEvent,
					RequestID: msg.RequestID,
					Code:      "unsupported_action",
					Detail:    "only cancel is supported",
				})
				continue
			}
			mu.Lock()
			if jobCancel != nil && (msg.RequestID == "" || msg.RequestID == jobID) {
				jobCancel()
			}
			mu.Unlock()
		}
	}

	cancel()
	<-writerDone
	// Let an in-flight job observe cancellation before the handler returns.
	select {
	case <-jobDone:
	case <-time.After(5 * time.Second):
	}
}

func (s *Server) runGenerationJob(ctx context.Context, msg protocol.GenerateRequest, send func(any)) {
	body := generateRequest{
		Script:                 msg.Script,
		SpeakerVoiceMap:        msg.SpeakerVoiceMap,
		Style:                  msg.Style,
		AddNaturalInteractions: msg.AddNaturalInteractions,
		IncludeBackgroundSound: msg.IncludeBackgroundSound,
		BackgroundSoundVolume:  msg.BackgroundSoundVolume,
		EmotionalIntelligence:  msg.EmotionalIntelligence,
		RandomSeed:             msg.RandomSeed,
	}
	req, err := body.toEngineRequest()
	if err != nil {
		send(protocol.ErrorEvent{
			Type:      protocol.TypeErrorEvent,
			RequestID: msg.RequestID,
			Code:      "unknown_style",
			Detail:    err.Error(),
		})
		return
	}
	req.OnProgress = func(p conversation.Progress) {
		status := "ok"
		if p.Failed {
			status = "failed"
		}
		s.metrics.Segments.WithLabelValues(status).Inc()
		send(protocol.SegmentProgress{
			Type:         protocol.TypeSegmentProgress,
			RequestID:    msg.RequestID,
			SegmentIndex: p.SegmentIndex,
			SegmentCount: p.SegmentCount,
			Speaker:      p.Speaker,
			Emotion:      string(p.Emotion),
			Failed:       p.Failed,
		})
	}

	s.metrics.ActiveGenerations.Inc()
	defer s.metrics.ActiveGenerations.Dec()

	started := time.Now()
	res, err := s.engine.Generate(ctx, req)
	elapsed := time.Since(started)
	if err != nil {
		s.metrics.Conversations.WithLabelValues(string(req.Style), "error").Inc()
		send(protocol.ErrorEvent{
			Type:      protocol.TypeErrorEvent,
			RequestID: msg.RequestID,
			Code:      wsErrorCode(err),
			Retryable: errors.Is(err, conversation.ErrAllSegmentsFailed),
			Detail:    err.Error(),
		})
		return
	}
	s.metrics.Conversations.WithLabelValues(string(req.Style), "ok").Inc()
	s.metrics.ObserveGenerationLatency(elapsed)
	if s.window != nil {
		s.window.Observe("generation_total", float64(elapsed.Milliseconds()))
	}
	s.saveRun(ctx, req, res)

	briefs := make([]protocol.GenerationSegmentBrief, 0, len(res.Segments))
	for _, seg := range res.Segments {
		briefs = append(briefs, protocol.GenerationSegmentBrief{
			Speaker:        seg.Speaker,
			Text:           seg.Text,
			Emotion:        string(seg.Emotion),
			PauseBefore:    seg.PauseBefore,
			PauseAfter:     seg.PauseAfter,
			IsInterjection: seg.IsInterjection,
		})
	}
	emotions := make(map[string]float64, len(res.Metadata.EmotionDistribution))
	for e, share := range res.Metadata.EmotionDistribution {
		emotions[string(e)] = share
	}

	send(protocol.GenerationComplete{
		Type:            protocol.TypeGenerationComplete,
		RequestID:       msg.RequestID,
		ConversationID:  res.ID,
		Format:          "wav",
		AudioBase64:     base64.StdEncoding.EncodeToString(res.WAV),
		DurationSeconds: res.Metadata.DurationSeconds,
		SpeakerCount:    res.Metadata.SpeakerCount,
		WordCount:       res.Metadata.WordCount,
		Complexity:      res.Metadata.InteractionComplexity,
		SegmentsFailed:  res.Metadata.SegmentsFailed,
		Emotions:        emotions,
		Segments:        briefs,
	})
}

func wsErrorCode(err error) string {
	var parseErr *conversation.ParseError
	var profErr *conversation.ProfileError
	switch {
	case errors.As(err, &parseErr):
		return "script_parse_failed"
	case errors.As(err, &profErr):
		return "speaker_mapping_invalid"
	case errors.Is(err, conversation.ErrAllSegmentsFailed):
		return "synthesis_unavailable"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "internal"
	}
}

func messageTypeOf(v any) (protocol.MessageType, bool) {
	switch m := v.(type) {
	case protocol.GenerateRequest:
		return m.Type, true
	case protocol.ClientControl:
		return m.Type, true
	case protocol.SegmentProgress:
		return m.Type, true
	case protocol.GenerationComplete:
		return m.Type, true
	case protocol.ErrorEvent:
		return m.Type, true
	default:
		return "", false
	}
}
