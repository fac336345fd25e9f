package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Outcome is the normalized result of every vendor API call.
type Outcome struct {
	Success bool
	Status  int
	Data    json.RawMessage
	Err     error
}

func (o Outcome) Decode(v any) error {
	if len(o.Data) == 0 {
		return errors.New("outcome has no data")
	}
	if err := json.Unmarshal(o.Data, v); err != nil {
		return fmt.Errorf("decode outcome data: %w", err)
	}

	return nil
}

// Fatal reports whether the account cannot continue after this outcome.
func (o Outcome) Fatal() bool {
	return !o.Success && errors.Is(o.Err, ErrAuthenticationFailed)
}
