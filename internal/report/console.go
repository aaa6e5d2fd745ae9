package report

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"pks/internal/config"
)

var (
	styleHeader  = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	styleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleDanger  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleOK      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleInfo    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	styleKey     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	styleHotkey  = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	styleDim     = lipgloss.NewStyle().Faint(true)
)

// Console renders session events to a terminal. KeySent and CycleDone are
// shown only in verbose mode; everything else always prints. All events
// are mirrored to slog at debug level.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
}

// NewConsole creates a console reporter writing to out.
func NewConsole(out io.Writer, verbose bool) *Console {
	return &Console{out: out, verbose: verbose}
}

// Report implements Reporter.
func (c *Console) Report(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch e := ev.(type) {
	case KeySent:
		slog.Debug("key sent", "key", e.Combo.String(), "process", e.Process, "step", e.Step)
		if !c.verbose {
			return
		}
		if e.Of > 1 {
			fmt.Fprintln(c.out, styleOK.Render(fmt.Sprintf("✓ Sent '%s' [step %d/%d]", e.Combo, e.Step, e.Of)))
		} else {
			fmt.Fprintln(c.out, styleOK.Render(fmt.Sprintf("✓ Sent '%s'", e.Combo)))
		}
	case SendFailed:
		slog.Warn("failed to send key", "key", e.Combo.String(), "error", e.Err)
		fmt.Fprintln(c.out, styleWarning.Render(fmt.Sprintf("Failed to send '%s': %v", e.Combo, e.Err)))
	case ProcessRelocated:
		slog.Info("process located", "pid", e.PID)
		fmt.Fprintln(c.out, styleOK.Render(fmt.Sprintf("✓ Process found (pid %d)", e.PID)))
	case ProcessUnavailable:
		slog.Warn("process not found", "attempt", e.Attempt, "max", e.Max)
		fmt.Fprintln(c.out, styleWarning.Render(fmt.Sprintf("Process not found, retrying... (%d/%d)", e.Attempt, e.Max)))
	case Paused:
		slog.Info("session paused")
		fmt.Fprintln(c.out, styleWarning.Render("⏸ Paused"))
	case Resumed:
		slog.Info("session resumed")
		fmt.Fprintln(c.out, styleOK.Render("▶ Resumed"))
	case CycleDone:
		slog.Debug("sequence cycle completed", "cycle", e.N)
		if c.verbose {
			fmt.Fprintln(c.out, styleInfo.Render(fmt.Sprintf("🔄 Completed cycle %d", e.N)))
		}
	case Stopped:
		slog.Info("session stopped", "reason", e.Reason, "sent", e.Sent, "elapsed", e.Elapsed)
		fmt.Fprintln(c.out, styleInfo.Render(fmt.Sprintf("Stopped: %s (%d keys sent in %s)",
			e.Reason, e.Sent, e.Elapsed.Round(time.Millisecond))))
	case Failed:
		slog.Error("session failed", "error", e.Err, "sent", e.Sent, "elapsed", e.Elapsed)
		fmt.Fprintln(c.out, styleDanger.Render(fmt.Sprintf("✗ %v", e.Err)))
	}
}

// Banner prints the program header and the offline-use disclaimer.
func (c *Console) Banner(version string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintln(c.out, styleHeader.Render("Process Key Sender v"+version))
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, styleDanger.Render("⚠ DISCLAIMER"))
	fmt.Fprintln(c.out, styleWarning.Render("This tool is intended for offline/single-player use ONLY."))
	fmt.Fprintln(c.out, styleWarning.Render("Do not use it against online games or anti-cheat systems."))
	fmt.Fprintln(c.out, styleDim.Render("Use at your own risk and responsibility."))
	fmt.Fprintln(c.out)
}

// Summary prints the merged configuration before the session starts.
func (c *Console) Summary(cfg *config.Config) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintln(c.out, styleHeader.Render("Configuration:"))
	fmt.Fprintf(c.out, "  Process: %s\n", styleKey.Render(cfg.ProcessName))

	switch {
	case cfg.IndependentMode():
		fmt.Fprintf(c.out, "  Independent keys: %s\n", cfg.IndependentDescription())
	case len(cfg.KeySequence) == 1:
		a := cfg.KeySequence[0]
		fmt.Fprintf(c.out, "  Key: %s\n", styleKey.Render(a.Key))
		fmt.Fprintf(c.out, "  Interval: %dms\n", a.IntervalAfter.Std().Milliseconds())
	default:
		fmt.Fprintf(c.out, "  Sequence: %s\n", cfg.SequenceDescription())
		fmt.Fprintln(c.out, styleDim.Render(fmt.Sprintf("  Total cycle time: %dms", cfg.TotalCycle().Milliseconds())))
		switch {
		case !cfg.LoopSequence:
			fmt.Fprintln(c.out, styleDim.Render("  Will run once"))
		case cfg.RepeatCount > 0:
			fmt.Fprintln(c.out, styleDim.Render(fmt.Sprintf("  Will repeat %d times", cfg.RepeatCount)))
		default:
			fmt.Fprintln(c.out, styleDim.Render("  Will loop indefinitely"))
		}
	}

	fmt.Fprintf(c.out, "  Max attempts: %d\n", cfg.MaxRetries)
	if cfg.PauseHotkey != "" {
		fmt.Fprintf(c.out, "  Pause hotkey: %s\n", styleHotkey.Render(cfg.PauseHotkey))
	}
	fmt.Fprintln(c.out, styleDim.Render("  Press Ctrl+C to exit"))
	fmt.Fprintln(c.out)
}
