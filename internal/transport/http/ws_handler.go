package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"scheme-eligibility-service/internal/app"
	"scheme-eligibility-service/internal/domain"
	"scheme-eligibility-service/internal/telemetry"
)

type WSHandler struct {
	service  *app.EligibilityService
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

func NewWSHandler(service *app.EligibilityService, logger zerolog.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger.With().Str("component", "ws").Logger(),
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID domain.QuestionID `json:"questionId"`
	Value      any               `json:"value"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and drives one questionnaire
// session over the connection. Without a sessionId query parameter a new
// session is started. Every accepted answer or reset on the session, from
// any connection, is pushed as a "turn" message.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		turn, err := h.service.Start(ctx)
		if err != nil {
			writeError(w, r, err)
			return
		}
		sessionID = turn.SessionID
	}

	updates, cancel, err := h.service.Watch(ctx, sessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()
	telemetry.WSClients.Inc()
	defer telemetry.WSClients.Dec()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug().Err(err).Str("session", sessionID).Msg("ws write error")
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case turn, ok := <-updates:
				if !ok {
					// session ended elsewhere
					_ = conn.Close()
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "turn", Payload: turn}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
				continue
			}
			turn, err := h.service.Submit(ctx, sessionID, payload.QuestionID, payload.Value)
			switch {
			case err == nil:
				// the accepted turn arrives through the watcher
			case turn.SessionID != "":
				send <- outboundMessage[any]{Type: "rejected", Payload: turn}
			default:
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			}
		case "reset":
			if _, err := h.service.Reset(ctx, sessionID); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			}
		case "progress":
			progress, err := h.service.Progress(ctx, sessionID)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "progress", Payload: progress}
		case "results":
			results, err := h.service.Results(ctx, sessionID)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "results", Payload: results}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
