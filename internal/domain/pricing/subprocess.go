package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Default subprocess scorer configuration constants.
const (
	defaultCommandTimeout = 2 * time.Second
	// waitDelay bounds process cleanup after ctx cancellation so a hung
	// child cannot leak past the scoring call.
	defaultWaitDelay = time.Second
)

// CommandOption applies a configuration option to the CommandScorer.
type CommandOption func(*CommandScorer)

// WithCommandTimeout sets the per-call timeout.
func WithCommandTimeout(timeout time.Duration) CommandOption {
	return func(s *CommandScorer) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithArgs sets extra arguments placed before the metric triple.
func WithArgs(args ...string) CommandOption {
	return func(s *CommandScorer) {
		s.args = args
	}
}

// CommandScorer implements Scorer by spawning an external scoring process
// per call. The child receives the metric triple as argv and must print the
// multiplier on the first stdout line and the explanation on the second.
type CommandScorer struct {
	command string
	args    []string
	timeout time.Duration
}

// NewCommandScorer creates a subprocess-backed scorer.
func NewCommandScorer(command string, opts ...CommandOption) *CommandScorer {
	s := &CommandScorer{
		command: command,
		timeout: defaultCommandTimeout,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Score spawns the scoring process and parses its output. The child is
// killed when the deadline passes; no handle survives an error path.
func (s *CommandScorer) Score(ctx context.Context, in Input) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	argv := append([]string{}, s.args...)
	argv = append(argv,
		strconv.FormatFloat(in.FuelPrice, 'f', 2, 64),
		strconv.Itoa(in.CongestionIndex),
		strconv.Itoa(in.DemandLevel),
	)

	cmd := exec.CommandContext(ctx, s.command, argv...)
	cmd.WaitDelay = defaultWaitDelay

	out, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Result{}, fmt.Errorf("%w after %s: %w", ErrScoringTimeout, s.timeout, err)
		}
		return Result{}, fmt.Errorf("%w: %w", ErrProcessFailed, err)
	}

	return parseScorerOutput(out)
}

// parseScorerOutput decodes the two-line stdout contract.
func parseScorerOutput(out []byte) (Result, error) {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) < 2 {
		return Result{}, fmt.Errorf("%w: expected multiplier and explanation lines, got %d line(s)", ErrMalformedOutput, len(lines))
	}

	multiplier, err := strconv.ParseFloat(strings.TrimSpace(lines[0]), 64)
	if err != nil {
		return Result{}, fmt.Errorf("%w: bad multiplier %q: %w", ErrMalformedOutput, lines[0], err)
	}
	if math.IsNaN(multiplier) || math.IsInf(multiplier, 0) {
		return Result{}, fmt.Errorf("%w: non-finite multiplier", ErrMalformedOutput)
	}

	explanation := strings.TrimSpace(lines[1])
	if explanation == "" {
		return Result{}, fmt.Errorf("%w: empty explanation", ErrMalformedOutput)
	}

	return Result{Multiplier: multiplier, Explanation: explanation}, nil
}
