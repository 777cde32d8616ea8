// Package clipboard copies text to the desktop clipboard through an external
// helper command (wl-copy, xclip, xsel, pbcopy, or a configured override).
package clipboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrUnavailable is returned when no clipboard helper can be found.
var ErrUnavailable = errors.New("no clipboard command available")

// Writer writes text into the system clipboard.
type Writer interface {
	Copy(ctx context.Context, text string) error
}

var candidates = [][]string{
	{"wl-copy"},
	{"xclip", "-selection", "clipboard"},
	{"xsel", "--clipboard", "--input"},
	{"pbcopy"},
}

// Helpers lists the helper commands tried, in order, when no override is set.
func Helpers() []string {
	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		names = append(names, c[0])
	}
	return names
}

// Command pipes text into a helper process's stdin.
type Command struct {
	name string
	args []string
	// lookPath is replaceable in tests.
	lookPath func(string) (string, error)
}

// New returns a clipboard writer. An empty override selects the first helper
// found on PATH at copy time.
func New(override string) *Command {
	fields := strings.Fields(override)
	c := &Command{lookPath: exec.LookPath}
	if len(fields) > 0 {
		c.name = fields[0]
		c.args = fields[1:]
	}
	return c
}

func (c *Command) resolve() (string, []string, error) {
	if c.name != "" {
		path, err := c.lookPath(c.name)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, c.name, err)
		}
		return path, c.args, nil
	}
	for _, candidate := range candidates {
		if path, err := c.lookPath(candidate[0]); err == nil {
			return path, candidate[1:], nil
		}
	}
	return "", nil, ErrUnavailable
}

// Copy writes text to the clipboard.
func (c *Command) Copy(ctx context.Context, text string) error {
	path, args, err := c.resolve()
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = strings.NewReader(text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("clipboard copy: %w: %s", err, msg)
		}
		return fmt.Errorf("clipboard copy: %w", err)
	}
	return nil
}
