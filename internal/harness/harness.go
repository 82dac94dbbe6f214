package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/rewind/internal/engine"
	"github.com/roach88/rewind/internal/playback"
)

// Option configures a scenario run.
type Option func(*runConfig)

type runConfig struct {
	logger *slog.Logger
}

// WithLogger sets the logger passed to the engine and controller. Runs are
// silent by default.
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) {
		c.logger = l
	}
}

// Run executes a scenario and returns the result.
//
// Each run uses a fresh engine. Assertion failures are reported in the
// result; the error is set only when the scenario cannot be executed (an
// unreadable recording, a seek out of range).
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	events, err := scenario.LoadEvents()
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}

	eng := engine.New(engine.WithLogger(cfg.logger))
	ctrl := playback.New(events, playback.WithEngine(eng), playback.WithLogger(cfg.logger))

	result := NewResult()
	result.Events = ctrl.Len()
	for i, step := range scenario.Steps {
		snap, err := seek(ctrl, step)
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		result.Positions = append(result.Positions, ctrl.Position())
		result.Final = snap

		st := State{Snapshot: snap, Diagnostics: eng.Diagnostics()}
		for _, msg := range EvaluateAssertions(st, step.Assertions) {
			result.AddError(fmt.Sprintf("steps[%d].%s", i, msg))
		}
	}
	return result, nil
}

func seek(ctrl *playback.Controller, step Step) (*engine.Snapshot, error) {
	switch {
	case step.Seek != nil:
		return ctrl.Seek(*step.Seek)
	case step.SeekTime != nil:
		return ctrl.SeekTime(*step.SeekTime)
	default:
		return ctrl.Seek(ctrl.Len())
	}
}
