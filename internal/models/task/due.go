package task

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Layouts written by browser date inputs. They carry no zone and are read as
// local time.
var localDueLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDueDate accepts RFC 3339 or a zone-less date / datetime-local value.
// The result is normalized with Stamp.
func ParseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Stamp(t), nil
	}
	for _, layout := range localDueLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return Stamp(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("неверный формат даты %q", s)
}

type taskJSON Task

// UnmarshalJSON reads dueDate through ParseDueDate so records saved by older
// clients survive. An empty or null dueDate means no due date.
func (t *Task) UnmarshalJSON(data []byte) error {
	aux := struct {
		*taskJSON
		DueDate *string `json:"dueDate,omitempty"`
	}{taskJSON: (*taskJSON)(t)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	t.DueDate = nil
	if aux.DueDate == nil || strings.TrimSpace(*aux.DueDate) == "" {
		return nil
	}
	due, err := ParseDueDate(*aux.DueDate)
	if err != nil {
		return err
	}
	t.DueDate = &due
	return nil
}
