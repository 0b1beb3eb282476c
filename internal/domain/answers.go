package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AnswerMap maps question ids to submitted answers while remembering
// insertion order. Scoring iterates answers in display order, which a plain
// map cannot guarantee, so JSON round-trips preserve object key order.
// The zero value is ready to use.
type AnswerMap struct {
	keys   []string
	values map[string]string
}

// Set records an answer, keeping the id's original position on overwrite.
func (m *AnswerMap) Set(questionID, answer string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[questionID]; !ok {
		m.keys = append(m.keys, questionID)
	}
	m.values[questionID] = answer
}

// Get returns the answer recorded for questionID, if any.
func (m AnswerMap) Get(questionID string) (string, bool) {
	answer, ok := m.values[questionID]
	return answer, ok
}

// Len reports the number of recorded answers.
func (m AnswerMap) Len() int {
	return len(m.keys)
}

// Keys returns the question ids in insertion order.
func (m AnswerMap) Keys() []string {
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// MarshalJSON writes a JSON object with keys in insertion order.
func (m AnswerMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(m.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping key order as encountered.
func (m *AnswerMap) UnmarshalJSON(data []byte) error {
	m.keys = nil
	m.values = nil

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("answers: expected object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("answers: expected string key, got %v", keyTok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("answers: value for %q: %w", key, err)
		}
		m.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
