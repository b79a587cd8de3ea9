// Package tui renders CLI output.
// Simple, streaming, no complex TUI - just clean prompts and output.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"
)

// Colors (Swiss minimal)
var (
	accent  = lipgloss.Color("#FF0000")
	muted   = lipgloss.Color("#666666")
	success = lipgloss.Color("#00CC66")
	white   = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(white)
	accentStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	successStyle = lipgloss.NewStyle().Foreground(success).Bold(true)
	codeStyle    = lipgloss.NewStyle().Background(lipgloss.Color("#1a1a1a")).Foreground(white).Padding(0, 1)
)

// PrintBanner prints the tool header.
func PrintBanner(version string) {
	fmt.Println()
	fmt.Println(titleStyle.Render("  LOGFORGE") + mutedStyle.Render(" v"+version))
	fmt.Println(mutedStyle.Render("  Synthetic business process event log generator"))
	fmt.Println()
}

// RunReport summarizes one generation run for printing.
type RunReport struct {
	Processes        int
	Succeeded        int64
	Failed           int64
	Cases            int64
	Events           int64
	LabelerCalls     int64
	LabelerFallbacks int64
	TotalCost        float64
	OutputBytes      int64
	Elapsed          time.Duration
	OutputDir        string
}

// PrintRunReport prints results after a run.
func PrintRunReport(r *RunReport) {
	fmt.Println()
	if r.Failed > 0 {
		fmt.Println(accentStyle.Render(fmt.Sprintf("  ✗ RUN FINISHED, %d PROCESSES FAILED", r.Failed)))
	} else {
		fmt.Println(successStyle.Render("  ✓ GENERATION COMPLETE"))
	}
	fmt.Println()

	fmt.Printf("  %s %s", mutedStyle.Render("Processes:"), titleStyle.Render(formatNumber(r.Succeeded)))
	if r.Failed > 0 {
		fmt.Printf(" %s", accentStyle.Render(fmt.Sprintf("(%d failed)", r.Failed)))
	}
	fmt.Println()

	fmt.Printf("  %s %s %s\n",
		mutedStyle.Render("Cases:"),
		titleStyle.Render(formatNumber(r.Cases)),
		mutedStyle.Render(fmt.Sprintf("(%s events)", formatNumber(r.Events))))

	if r.TotalCost > 0 {
		fmt.Printf("  %s %s\n", mutedStyle.Render("Cost:"), titleStyle.Render(fmt.Sprintf("$%.2f", r.TotalCost)))
	}

	if r.LabelerCalls > 0 {
		fmt.Printf("  %s %s %s\n",
			mutedStyle.Render("Labeler:"),
			titleStyle.Render(formatNumber(r.LabelerCalls)+" calls"),
			mutedStyle.Render(fmt.Sprintf("(%s fallbacks)", formatNumber(r.LabelerFallbacks))))
	}

	if r.Elapsed > 0 {
		throughput := float64(r.Events) / r.Elapsed.Seconds()
		fmt.Printf("  %s %s %s\n",
			mutedStyle.Render("Time:"),
			titleStyle.Render(formatDuration(r.Elapsed)),
			mutedStyle.Render(fmt.Sprintf("(%s events/sec)", formatNumber(int64(throughput)))))
	}

	if r.OutputBytes > 0 {
		fmt.Printf("  %s %s\n", mutedStyle.Render("Size:"), titleStyle.Render(formatBytes(r.OutputBytes)))
	}
	if r.OutputDir != "" {
		fmt.Printf("  %s %s\n", mutedStyle.Render("Output:"), codeStyle.Render(r.OutputDir))
	}
	fmt.Println()
}

// PrintError prints a failure line.
func PrintError(msg string) {
	fmt.Println(accentStyle.Render("  ✗ " + msg))
}

// ClearLine clears the current line.
func ClearLine() {
	fmt.Print("\r\033[K")
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
}

func formatNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}

// ShowProgress creates a progress bar over total units of work.
func ShowProgress(total int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowBytes(false),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "",
			BarEnd:        "",
		}),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// Spinner shows a simple loading indicator until done is closed.
func Spinner(message string, done chan bool) {
	frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	i := 0
	for {
		select {
		case <-done:
			fmt.Printf("\r%s %s\n", successStyle.Render("✓"), message)
			return
		default:
			fmt.Printf("\r%s %s", accentStyle.Render(frames[i]), message)
			i = (i + 1) % len(frames)
			time.Sleep(80 * time.Millisecond)
		}
	}
}
