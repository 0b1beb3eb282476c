package domain

import (
	"encoding/json"
	"testing"
)

func TestAnswerMapPreservesInsertionOrder(t *testing.T) {
	var m AnswerMap
	m.Set("q3", "C")
	m.Set("q1", "A")
	m.Set("q2", "B")
	m.Set("q1", "D") // overwrite keeps position

	keys := m.Keys()
	want := []string{"q3", "q1", "q2"}
	for i, key := range want {
		if keys[i] != key {
			t.Fatalf("expected order %v, got %v", want, keys)
		}
	}
	if answer, _ := m.Get("q1"); answer != "D" {
		t.Fatalf("expected last choice to win, got %q", answer)
	}
}

func TestAnswerMapJSONRoundTrip(t *testing.T) {
	raw := []byte(`{"q2":"B","q1":"A","q3":"C"}`)

	var m AnswerMap
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	keys := m.Keys()
	if len(keys) != 3 || keys[0] != "q2" || keys[1] != "q1" || keys[2] != "q3" {
		t.Fatalf("key order lost: %v", keys)
	}

	out, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != string(raw) {
		t.Fatalf("round trip changed payload: %s", out)
	}
}

func TestAnswerMapRejectsNonObject(t *testing.T) {
	var m AnswerMap
	if err := json.Unmarshal([]byte(`["q1"]`), &m); err == nil {
		t.Fatalf("expected error for non-object answers")
	}
}

func TestRedactDropsAnswerAndCopiesOptions(t *testing.T) {
	question := Question{
		ID:            "q1",
		Prompt:        "Pick one",
		Options:       []string{"A", "B"},
		CorrectAnswer: "B",
	}
	public := question.Redact()

	data, err := json.Marshal(public)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := decoded["correct_answer"]; ok {
		t.Fatalf("redacted question still carries the answer key: %s", data)
	}

	public.Options[0] = "Z"
	if question.Options[0] != "A" {
		t.Fatalf("redaction aliased the option slice")
	}
}
