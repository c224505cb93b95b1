package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// areaDisplayName derives a human-readable name from an area ID.
// "great_hall" -> "Great Hall", "castle_gates" -> "Castle Gates".
func areaDisplayName(id string) string {
	words := strings.Split(id, "_")
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// locationLabel names where the party is.
func (m Model) locationLabel() string {
	c := m.session.Engine.Campaign
	if c.OnWorldMap() {
		return "World Map"
	}
	a := c.CurrentArea()
	if a == nil {
		return "Nowhere"
	}
	if a.Def.Name != "" {
		return a.Def.Name
	}
	return areaDisplayName(a.ID())
}

// renderStatusBar produces a full-width inverted status line showing the
// location, date, purse, party and turn count.
func (m Model) renderStatusBar() string {
	e := m.session.Engine
	c := e.Campaign

	d := c.Date
	left := fmt.Sprintf(" %s | M%d D%d %02d:%02d | %s",
		m.locationLabel(), d.Months()+1, d.Days()+1, d.Hours(), d.Minutes(), c.Currency.ShortString())
	right := fmt.Sprintf("T:%d ", e.TurnCount)

	// Show member names if they fit, otherwise just the count.
	if party := c.Party(); len(party) > 0 {
		names := make([]string, 0, len(party))
		for _, p := range party {
			names = append(names, p.Name())
		}
		candidate := fmt.Sprintf("Party: %s | T:%d ", strings.Join(names, ", "), e.TurnCount)
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		} else {
			right = fmt.Sprintf("Party: %d | T:%d ", len(party), e.TurnCount)
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	style := styleStatusBar
	if e.Fatal() != nil {
		style = styleStatusFatal
	}
	return style.Width(m.width).Render(bar)
}
