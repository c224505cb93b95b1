package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// Chrome styles.
var (
	styleStatusBar   = fg("252").Background(lipgloss.Color("236")).Bold(true)
	styleStatusFatal = styleStatusBar.Background(lipgloss.Color("88"))
	styleInputPrompt = fg("34")
	stylePlayerInput = fg("34")
	styleYouSee      = lipgloss.NewStyle().Bold(true)
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarration lineKind = iota
	kindYouSee
	kindExits
	kindDialogue
	kindQuest
	kindSystem
	kindError
	kindTrace
)

// kindStyles maps each output line kind to its style.
var kindStyles = map[lineKind]lipgloss.Style{
	kindNarration: fg("255"),
	kindYouSee:    fg("255"),
	kindExits:     fg("243"),
	kindDialogue:  fg("228"),
	kindQuest:     fg("141").Bold(true),
	kindSystem:    fg("243"),
	kindError:     fg("196"),
	kindTrace:     fg("240"),
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	if kind == kindYouSee {
		return styledYouSee(line)
	}
	return kindStyles[kind].Render(line)
}

var errorPrefixes = []string{
	"I don't understand",
	"Usage:",
	"No ",
	"The campaign cannot continue",
	"The campaign could not start",
}

var questPrefixes = []string{"New quest:", "Quest updated:", "Quest completed:"}

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "You see:"):
		return kindYouSee
	case strings.HasPrefix(line, "Exits:"):
		return kindExits
	case hasAnyPrefix(line, questPrefixes):
		return kindQuest
	case hasAnyPrefix(line, errorPrefixes):
		return kindError
	case containsQuotedSpeech(line):
		return kindDialogue
	default:
		return kindNarration
	}
}

func hasAnyPrefix(line string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// containsQuotedSpeech checks if a line contains speech in single quotes,
// as area scripts write it.
func containsQuotedSpeech(line string) bool {
	inQuote := false
	quoteLen := 0
	for _, r := range line {
		if r == '\'' {
			if inQuote && quoteLen > 5 {
				return true
			}
			inQuote = !inQuote
			quoteLen = 0
		} else if inQuote {
			quoteLen++
		}
	}
	return false
}

// styledYouSee renders "You see: a (hostile), b (neutral)." with the
// creature list bold.
func styledYouSee(line string) string {
	const prefix = "You see: "
	narration := kindStyles[kindNarration]
	if !strings.HasPrefix(line, prefix) {
		return narration.Render(line)
	}
	return narration.Render(prefix) + styleYouSee.Render(line[len(prefix):])
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return kindStyles[kindSystem].Render("[" + text + "]")
}
