// Package gate decides which store operations a session may perform.
package gate

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrNotPermitted is returned when an operation is outside the session's mode.
var ErrNotPermitted = errors.New("operation not permitted in this mode")

// Mode is fixed for the lifetime of a session.
type Mode string

const (
	ModeEdit     Mode = "edit"
	ModePreview  Mode = "preview"
	ModeReadOnly Mode = "read_only"
)

// ParseMode accepts the canonical names case-insensitively, plus
// "read-only" and "readonly".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "edit":
		return ModeEdit, nil
	case "preview":
		return ModePreview, nil
	case "read_only", "read-only", "readonly":
		return ModeReadOnly, nil
	}
	return "", fmt.Errorf("unknown mode %q (want edit, preview or read_only)", s)
}

func (m Mode) String() string { return string(m) }

// Capability names a class of store operation.
type Capability string

const (
	// CapStructure covers adding and deleting nodes.
	CapStructure Capability = "structure"
	// CapUpdate covers general field updates and status toggles.
	CapUpdate Capability = "update"
	// CapPlanDecision covers accept/reject and the approval tracker.
	CapPlanDecision Capability = "plan-decision"
)

var grants = map[Mode]map[Capability]bool{
	ModeEdit:     {CapStructure: true, CapUpdate: true, CapPlanDecision: true},
	ModePreview:  {CapPlanDecision: true},
	ModeReadOnly: {},
}

// Allows reports whether m grants c.
func (m Mode) Allows(c Capability) bool {
	return grants[m][c]
}

// Gate checks capabilities for one session.
type Gate struct {
	mode     Mode
	advisory bool
	logger   *slog.Logger
}

type Option func(*Gate)

// Advisory makes violations log a warning and pass instead of failing.
func Advisory(enabled bool) Option {
	return func(g *Gate) {
		g.advisory = enabled
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = l
	}
}

func New(mode Mode, opts ...Option) *Gate {
	g := &Gate{mode: mode, logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gate) Mode() Mode { return g.mode }

// Check returns nil when the mode grants c. Otherwise it returns an error
// wrapping ErrNotPermitted, unless the gate is advisory.
func (g *Gate) Check(c Capability, op string) error {
	if g.mode.Allows(c) {
		return nil
	}
	if g.advisory {
		g.logger.Warn("mode gate violation",
			"op", op,
			"capability", string(c),
			"mode", string(g.mode),
		)
		return nil
	}
	return fmt.Errorf("%s in %s mode: %w", op, g.mode, ErrNotPermitted)
}
