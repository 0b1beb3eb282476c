package http

import (
	"encoding/json"
	"log"
	"net/http"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/domain"
	"github.com/gorilla/websocket"
)

// WSHandler drives server-authoritative timed attempts over a websocket:
// the server owns the countdown and pushes state snapshots, the client
// sends navigation and answer commands.
type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	QuestionID string `json:"questionId"`
	Option     string `json:"option"`
}

type statePayload struct {
	SessionID string                 `json:"sessionId"`
	State     string                 `json:"state"`
	Index     int                    `json:"index"`
	Total     int                    `json:"total"`
	Remaining int                    `json:"remaining"`
	Question  *domain.PublicQuestion `json:"question,omitempty"`
	Selected  string                 `json:"selected,omitempty"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the connection and runs one quiz attempt on it. Closing
// the connection without submitting abandons the attempt and cancels its
// timer.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	difficulty := r.URL.Query().Get("difficulty")
	if category == "" || difficulty == "" {
		http.Error(w, "missing category or difficulty", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	session, err := h.service.StartSession(r.Context(), category, difficulty)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.service.AbandonSession(session)

	updates, cancel := session.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "state", Payload: snapshotPayload(session.ID(), snap)}:
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
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid select payload"}}
				continue
			}
			if err := session.SelectOption(payload.QuestionID, payload.Option); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			}
		case "next":
			if err := session.Advance(); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			}
		case "prev":
			if err := session.Retreat(); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			}
		case "submit":
			result, err := h.service.SubmitSession(r.Context(), session)
			if err != nil {
				// Session is back on its last question; the client may retry.
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "result", Payload: result}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func snapshotPayload(sessionID string, snap app.Snapshot) statePayload {
	payload := statePayload{
		SessionID: sessionID,
		State:     snap.State.String(),
		Index:     snap.Index,
		Total:     snap.Total,
		Remaining: snap.Remaining,
		Selected:  snap.Selected,
	}
	if snap.Question.ID != "" {
		question := snap.Question
		payload.Question = &question
	}
	return payload
}
