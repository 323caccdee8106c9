package task

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed means the persisted document is not a JSON array.
var ErrMalformed = errors.New("документ задач повреждён")

// EncodeList serializes the whole collection as a JSON array.
func EncodeList(tasks []Task) ([]byte, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return nil, fmt.Errorf("сериализация задач: %w", err)
	}
	return data, nil
}

// DecodeList parses a persisted collection. Records that cannot be decoded,
// have no id, or repeat an earlier id are dropped and counted.
func DecodeList(data []byte) (tasks []Task, dropped int, err error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, 0, ErrMalformed
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	tasks = make([]Task, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, rec := range raw {
		var t Task
		if err := json.Unmarshal(rec, &t); err != nil {
			dropped++
			continue
		}
		if t.ID == "" {
			dropped++
			continue
		}
		if _, dup := seen[t.ID]; dup {
			dropped++
			continue
		}
		seen[t.ID] = struct{}{}
		tasks = append(tasks, normalize(t))
	}
	return tasks, dropped, nil
}

// normalize repairs records written by older clients.
func normalize(t Task) Task {
	if !t.Priority.Valid() {
		t.Priority = PriorityMedium
	}
	if t.UpdatedAt.IsZero() || t.UpdatedAt.Before(t.CreatedAt) {
		t.UpdatedAt = t.CreatedAt
	}
	return t
}
