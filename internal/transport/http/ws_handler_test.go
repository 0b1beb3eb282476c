package http

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestWebSocketSessionFlow(t *testing.T) {
	server := httptest.NewServer(newTestMux())
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?category=general&difficulty=easy"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// First snapshot: active on question 0 with a full countdown.
	state := readUntil(conn, t, "state")
	if state["state"] != "active" {
		t.Fatalf("expected active state, got %v", state)
	}
	total := int(state["total"].(float64))
	if total != 3 {
		t.Fatalf("expected 3 questions, got %d", total)
	}
	if int(state["remaining"].(float64)) != 30 {
		t.Fatalf("expected fresh 30s countdown, got %v", state["remaining"])
	}

	// Answer and advance through every question, then submit.
	for i := 0; i < total; i++ {
		questionID := currentQuestionID(t, state)
		writeMsg(conn, t, map[string]any{
			"type":    "select",
			"payload": map[string]any{"questionId": questionID, "option": "A"},
		})
		state = readUntil(conn, t, "state")
		if state["selected"] != "A" {
			t.Fatalf("expected selection echoed, got %v", state)
		}
		if i < total-1 {
			writeMsg(conn, t, map[string]any{"type": "next"})
			state = readUntil(conn, t, "state")
		}
	}

	writeMsg(conn, t, map[string]any{"type": "submit"})
	result := readUntil(conn, t, "result")
	if int(result["totalQuestions"].(float64)) != total {
		t.Fatalf("expected totalQuestions=%d, got %v", total, result)
	}
	if _, ok := result["score"]; !ok {
		t.Fatalf("expected score in result, got %v", result)
	}
}

func TestWebSocketNavigationKeepsAnswers(t *testing.T) {
	server := httptest.NewServer(newTestMux())
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?category=general&difficulty=easy"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	state := readUntil(conn, t, "state")
	firstID := currentQuestionID(t, state)

	writeMsg(conn, t, map[string]any{
		"type":    "select",
		"payload": map[string]any{"questionId": firstID, "option": "B"},
	})
	readUntil(conn, t, "state")

	writeMsg(conn, t, map[string]any{"type": "next"})
	readUntil(conn, t, "state")
	writeMsg(conn, t, map[string]any{"type": "prev"})

	state = readUntil(conn, t, "state")
	for currentQuestionID(t, state) != firstID {
		state = readUntil(conn, t, "state")
	}
	if state["selected"] != "B" {
		t.Fatalf("expected answer preserved after prev, got %v", state)
	}
}

func TestWebSocketUnknownBank(t *testing.T) {
	server := httptest.NewServer(newTestMux())
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?category=history&difficulty=hard"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	payload := readUntil(conn, t, "error")
	if payload["message"] == "" {
		t.Fatalf("expected error message, got %v", payload)
	}
}

func readUntil(conn *websocket.Conn, t *testing.T, want string) map[string]any {
	t.Helper()
	for {
		var msg struct {
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read json waiting for %s: %v", want, err)
		}
		if msg.Type == want {
			return msg.Payload
		}
		if msg.Type == "error" && want != "error" {
			t.Fatalf("unexpected error while waiting for %s: %v", want, msg.Payload)
		}
	}
}

func writeMsg(conn *websocket.Conn, t *testing.T, msg map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func currentQuestionID(t *testing.T, state map[string]any) string {
	t.Helper()
	question, ok := state["question"].(map[string]any)
	if !ok {
		t.Fatalf("state without question: %v", state)
	}
	id, _ := question["id"].(string)
	return id
}
