package orchestrator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ideavet/ideavet/internal/core"
	"github.com/ideavet/ideavet/internal/logging"
)

// Gate is the human-in-the-loop checkpoint. When disabled it resolves
// every request immediately with the first offered option, so pipelines
// can call Ask unconditionally.
type Gate struct {
	enabled bool
	decider core.FeedbackDecider
	logger  *logging.Logger
}

// NewGate creates a feedback gate. A nil decider with enabled=true
// degrades to disabled behavior with a warning at ask time.
func NewGate(enabled bool, decider core.FeedbackDecider, logger *logging.Logger) *Gate {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Gate{enabled: enabled, decider: decider, logger: logger}
}

// Enabled reports whether human feedback is active.
func (g *Gate) Enabled() bool {
	return g.enabled && g.decider != nil
}

// Ask requests a decision. With the gate disabled (or no decider wired)
// it returns the first option without blocking, or "approved" when no
// options were offered.
func (g *Gate) Ask(ctx context.Context, message string, options []string) (string, error) {
	if !g.enabled {
		return defaultAnswer(options), nil
	}
	if g.decider == nil {
		g.logger.Warn("human feedback enabled but no decider configured, auto-approving")
		return defaultAnswer(options), nil
	}
	answer, err := g.decider.Decide(ctx, message, options)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", core.ErrTimeout("human feedback timed out").WithCause(err)
		}
		return "", core.ErrExecution(core.CodeFeedbackFailed, "collecting human feedback").WithCause(err)
	}
	return answer, nil
}

func defaultAnswer(options []string) string {
	if len(options) > 0 {
		return options[0]
	}
	return "approved"
}

var (
	feedbackBanner = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2)

	feedbackOption = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	feedbackPrompt = lipgloss.NewStyle().
			Faint(true)
)

// ConsoleDecider prompts a human on the terminal. Options are presented
// as a numbered list; the answer may be the option number or its text.
// Free-form input is accepted when no options are offered.
type ConsoleDecider struct {
	in  io.Reader
	out io.Writer
}

// NewConsoleDecider reads from stdin and writes to stdout.
func NewConsoleDecider() *ConsoleDecider {
	return &ConsoleDecider{in: os.Stdin, out: os.Stdout}
}

// NewConsoleDeciderIO allows redirecting the prompt streams.
func NewConsoleDeciderIO(in io.Reader, out io.Writer) *ConsoleDecider {
	return &ConsoleDecider{in: in, out: out}
}

// Decide renders the request and blocks until a valid answer arrives or
// the context is canceled. Invalid answers re-prompt.
func (d *ConsoleDecider) Decide(ctx context.Context, message string, options []string) (string, error) {
	fmt.Fprintln(d.out)
	fmt.Fprintln(d.out, feedbackBanner.Render("HUMAN FEEDBACK REQUIRED"))
	fmt.Fprintln(d.out, message)
	for i, opt := range options {
		fmt.Fprintln(d.out, feedbackOption.Render(fmt.Sprintf("  %d) %s", i+1, opt)))
	}

	// The blocking read runs in its own goroutine so cancellation can
	// abandon it.
	lines := make(chan string)
	errs := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(d.in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			errs <- err
		} else {
			errs <- io.EOF
		}
	}()

	for {
		fmt.Fprint(d.out, feedbackPrompt.Render("> "))
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case err := <-errs:
			return "", fmt.Errorf("reading feedback: %w", err)
		case line := <-lines:
			if answer, ok := matchAnswer(line, options); ok {
				return answer, nil
			}
			fmt.Fprintln(d.out, feedbackPrompt.Render("please choose one of the offered options"))
		}
	}
}

// matchAnswer resolves a raw input line against the offered options.
func matchAnswer(line string, options []string) (string, bool) {
	if len(options) == 0 {
		return line, line != ""
	}
	if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(options) {
		return options[n-1], true
	}
	for _, opt := range options {
		if strings.EqualFold(line, opt) {
			return opt, true
		}
	}
	return "", false
}

// StaticDecider always answers with a fixed value. Intended for tests
// and non-interactive automation.
type StaticDecider struct {
	Answer string
}

func (d StaticDecider) Decide(_ context.Context, _ string, _ []string) (string, error) {
	return d.Answer, nil
}

var (
	_ core.FeedbackDecider = (*ConsoleDecider)(nil)
	_ core.FeedbackDecider = StaticDecider{}
)
