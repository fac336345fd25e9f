package jsonfile

import (
	"time"

	"github.com/bnema/nova-runner/internal/domain"
)

type sessionSchema struct {
	AccessToken string         `json:"access_token"`
	Cookie      string         `json:"cookie,omitempty"`
	IssuedAt    string         `json:"issued_at,omitempty"`
	ExpiresAt   string         `json:"expires_at,omitempty"`
	Profile     map[string]any `json:"profile,omitempty"`
}

func toSchema(record domain.SessionRecord) sessionSchema {
	return sessionSchema{
		AccessToken: record.AccessToken,
		Cookie:      record.Cookie,
		IssuedAt:    formatTime(record.IssuedAt),
		ExpiresAt:   formatTime(record.ExpiresAt),
		Profile:     record.Profile,
	}
}

func fromSchema(entry sessionSchema) domain.SessionRecord {
	return domain.SessionRecord{
		AccessToken: entry.AccessToken,
		Cookie:      entry.Cookie,
		IssuedAt:    parseTime(entry.IssuedAt),
		ExpiresAt:   parseTime(entry.ExpiresAt),
		Profile:     entry.Profile,
	}
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339Nano)
}
