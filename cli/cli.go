// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for the campaign engine.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nathoo/campaigncore/engine"
	"github.com/nathoo/campaigncore/session"
	"github.com/nathoo/campaigncore/storage"
	"github.com/nathoo/campaigncore/types"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Session   *session.Session
	In        io.Reader
	Out       io.Writer
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given engine and save store.
func New(eng *engine.Engine, store storage.Store) *CLI {
	return &CLI{
		Session: session.New(eng, store),
		In:      os.Stdin,
		Out:     os.Stdout,
	}
}

// Run starts the campaign, then loops: prompt, input, dispatch, output.
func (c *CLI) Run() {
	for _, line := range c.Session.Intro() {
		c.printLine(line)
	}

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			lines, quit := c.Session.Meta(input)
			for _, line := range lines {
				c.printSystem(line)
			}
			if quit {
				return
			}
			continue
		}

		// "again" / "g" repeats the last game command.
		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		c.printResult(c.Session.Step(input))
	}
}

func (c *CLI) printResult(result types.Result) {
	for _, line := range result.Output {
		c.printLine(line)
	}
	if result.Fatal != nil {
		c.printSystem(fmt.Sprintf("Fatal: %v", result.Fatal))
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
