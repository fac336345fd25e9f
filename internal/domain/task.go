package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

type Task struct {
	ID   string
	Text string
	Done bool
}

func (t Task) Title() string {
	title, _, _ := strings.Cut(t.Text, "\n")
	return strings.TrimSpace(title)
}

// FilterTasks drops finished tasks and skip-listed IDs, keeping input order.
func FilterTasks(tasks []Task, skip []string) []Task {
	skipped := make(map[string]struct{}, len(skip))
	for _, id := range skip {
		skipped[strings.TrimSpace(id)] = struct{}{}
	}

	pending := make([]Task, 0, len(tasks))
	for _, task := range tasks {
		if task.Done {
			continue
		}
		if _, ok := skipped[task.ID]; ok {
			continue
		}
		pending = append(pending, task)
	}

	return pending
}

// AggregatePoints sums the numeric fields of a balance object. Numeric strings
// count; other values and non-object payloads contribute nothing.
func AggregatePoints(balance json.RawMessage) float64 {
	var fields map[string]json.RawMessage
	decoder := json.NewDecoder(bytes.NewReader(balance))
	decoder.UseNumber()
	if err := decoder.Decode(&fields); err != nil {
		return 0
	}

	var total float64
	for _, raw := range fields {
		total += numericValue(raw)
	}

	return total
}

func numericValue(raw json.RawMessage) float64 {
	var number json.Number
	if err := json.Unmarshal(raw, &number); err == nil {
		if v, err := number.Float64(); err == nil {
			return v
		}
		return 0
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
			return v
		}
	}

	return 0
}
