package status

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/nova-runner/internal/application"
	"github.com/charmbracelet/lipgloss"
)

const userAgentWidth = 60

type RenderOptions struct {
	Now time.Time
	// StaleAfter flags tokens issued longer ago than this; zero disables it.
	StaleAfter time.Duration
}

func renderView(statuses []application.Status, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Nova Account Sessions"),
		s.header.Render(fmt.Sprintf("accounts: %d", len(statuses))),
	}

	if len(statuses) == 0 {
		lines = append(lines, s.empty.Render("No accounts configured."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, status := range statuses {
		lines = append(lines, s.section.Render(renderAccount(status, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderAccount(status application.Status, opts RenderOptions, s styles) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		s.account.Render(fmt.Sprintf("Account %d (%s)", status.Account.Label(), status.Account.Address)),
		tokenLine(status.Token, opts, s),
		cookieLine(status.Token, s),
		s.detail.Render("agent: "+userAgentLabel(status.UserAgent)),
	)
}

func tokenLine(token *application.StatusToken, opts RenderOptions, s styles) string {
	label := s.fieldKey.Render("token:")
	if token == nil {
		return lipgloss.JoinHorizontal(lipgloss.Top, label, " ", s.empty.Render("none (never logged in)"))
	}

	leftPercent := lifetimeLeft(token, opts.Now)
	line := strings.Join([]string{
		label,
		lifetimeBar(leftPercent, 24, s),
		lipgloss.NewStyle().Foreground(percentColor(leftPercent)).Render(fmt.Sprintf("%2.0f%% left", leftPercent)),
		s.fieldMeta.Render("(" + expiryPhrase(token.ExpiresAt, opts.Now) + ")"),
	}, " ")

	if !token.Valid {
		return line + " " + s.warning.Render("[expired]")
	}
	if !opts.Now.IsZero() && opts.StaleAfter > 0 && !token.IssuedAt.IsZero() && opts.Now.Sub(token.IssuedAt) > opts.StaleAfter {
		line += " " + s.warning.Render("[stale]")
	}

	return line
}

func cookieLine(token *application.StatusToken, s styles) string {
	if token == nil || !token.HasCookie {
		return s.detail.Render("cookie: missing")
	}
	return s.detail.Render("cookie: set")
}

func userAgentLabel(userAgent string) string {
	trimmed := strings.TrimSpace(userAgent)
	if trimmed == "" {
		return "unassigned"
	}
	if len(trimmed) > userAgentWidth {
		return trimmed[:userAgentWidth-3] + "..."
	}
	return trimmed
}

// lifetimeLeft is the share of the token lifetime still ahead of now, in percent.
func lifetimeLeft(token *application.StatusToken, now time.Time) float64 {
	if !token.Valid {
		return 0
	}
	if now.IsZero() || token.IssuedAt.IsZero() || !token.ExpiresAt.After(token.IssuedAt) {
		return 100
	}

	total := token.ExpiresAt.Sub(token.IssuedAt).Seconds()
	return min(max(100*token.ExpiresAt.Sub(now).Seconds()/total, 0), 100)
}

func lifetimeBar(leftPercent float64, width int, s styles) string {
	filled := min(max(int(math.Round(float64(width)*leftPercent/100)), 0), width)

	return s.barBracket.Render("[") +
		s.barFill.Render(strings.Repeat("=", filled)) +
		s.barEmpty.Render(strings.Repeat("-", width-filled)) +
		s.barBracket.Render("]")
}

func expiryPhrase(expiresAt, now time.Time) string {
	switch {
	case expiresAt.IsZero():
		return "expiry unknown"
	case now.IsZero():
		return "expires " + expiresAt.Format(time.RFC3339)
	case !expiresAt.After(now):
		return "expired " + expiresAt.Format("15:04 on 02 Jan")
	}

	remaining := expiresAt.Sub(now)
	if remaining < 24*time.Hour {
		hours := max(int(math.Ceil(remaining.Hours())), 1)
		return fmt.Sprintf("expires in %s (%s)", plural(hours, "hour"), expiresAt.Format("15:04"))
	}

	days := int(math.Ceil(remaining.Hours() / 24))
	return fmt.Sprintf("expires in %s (%s)", plural(days, "day"), expiresAt.Format("15:04 on 02 Jan"))
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// percentColor fades from grey 240 at 0% to white 255 at 100%.
func percentColor(leftPercent float64) lipgloss.Color {
	return lipgloss.Color(strconv.Itoa(240 + int(15*leftPercent/100)))
}
