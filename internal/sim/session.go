// Package sim drives a cloth through its run states for the viewer and the
// stream server.
package sim

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/clothsim/internal/engine/cloth"
)

// Command changes the session between steps.
type Command int

const (
	CommandToggle Command = iota
	CommandReset
	CommandStart
	CommandStop
)

func (c Command) String() string {
	switch c {
	case CommandToggle:
		return "toggle"
	case CommandReset:
		return "reset"
	case CommandStart:
		return "start"
	case CommandStop:
		return "stop"
	default:
		return fmt.Sprintf("Command(%d)", int(c))
	}
}

// ParseCommand converts a command name into a Command.
func ParseCommand(s string) (Command, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "toggle":
		return CommandToggle, nil
	case "reset":
		return CommandReset, nil
	case "start":
		return CommandStart, nil
	case "stop":
		return CommandStop, nil
	default:
		return 0, fmt.Errorf("unknown command %q", s)
	}
}

// Session owns a cloth and its run state. Commands are queued and applied
// in order at the start of the next Update, so a toggle never lands in the
// middle of a step. A Session is not safe for concurrent use.
type Session struct {
	cloth   *cloth.Cloth
	state   cloth.RunState
	pending []Command
	last    cloth.StepStats
	log     *zap.Logger
}

// NewSession wraps c starting in the given state. A nil logger discards output.
func NewSession(c *cloth.Cloth, initial cloth.RunState, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		cloth: c,
		state: initial,
		log:   log,
	}
}

// Queue schedules cmd for the next Update.
func (s *Session) Queue(cmd Command) {
	s.pending = append(s.pending, cmd)
}

// Update applies pending commands and then steps the cloth by dt.
func (s *Session) Update(dt float32) cloth.StepStats {
	for _, cmd := range s.pending {
		s.apply(cmd)
	}
	s.pending = s.pending[:0]

	s.last = s.cloth.Step(s.state, dt)
	return s.last
}

func (s *Session) apply(cmd Command) {
	prev := s.state
	switch cmd {
	case CommandToggle:
		s.state = s.state.Toggle()
	case CommandStart:
		s.state = cloth.Running
	case CommandStop:
		s.state = cloth.Stopped
	case CommandReset:
		s.cloth.Reset()
		s.log.Info("simulation reset")
		return
	}

	if s.state != prev {
		s.log.Info("simulation state changed",
			zap.Stringer("from", prev),
			zap.Stringer("to", s.state),
			zap.Uint64("frame", s.cloth.Frame()),
		)
	}
}

// State returns the current run state.
func (s *Session) State() cloth.RunState {
	return s.state
}

// Cloth returns the simulated cloth.
func (s *Session) Cloth() *cloth.Cloth {
	return s.cloth
}

// LastStats returns the statistics of the most recent Update.
func (s *Session) LastStats() cloth.StepStats {
	return s.last
}
