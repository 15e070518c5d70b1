package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/amterp/forts/internal/model"
)

// Adaptive colors that work in both light and dark terminals.
var (
	ColorSuccess = lipgloss.AdaptiveColor{Dark: "#22c55e", Light: "#16a34a"}
	ColorError   = lipgloss.AdaptiveColor{Dark: "#ef4444", Light: "#dc2626"}
	ColorWarning = lipgloss.AdaptiveColor{Dark: "#f59e0b", Light: "#d97706"}
	ColorMuted   = lipgloss.AdaptiveColor{Dark: "#6b7280", Light: "#9ca3af"}
	ColorAccent  = lipgloss.AdaptiveColor{Dark: "#a78bfa", Light: "#7c3aed"} // IDs
	ColorURL     = lipgloss.AdaptiveColor{Dark: "#38bdf8", Light: "#0284c7"}
)

var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleMuted   = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleID      = lipgloss.NewStyle().Foreground(ColorAccent)
	StyleURL     = lipgloss.NewStyle().Foreground(ColorURL)
	StyleBold    = lipgloss.NewStyle().Bold(true)
)

// Badge styles mirror the web card badges.
var badgeStyles = map[string]lipgloss.Style{
	"default":   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Dark: "#f9fafb", Light: "#111827"}),
	"secondary": lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Dark: "#93c5fd", Light: "#1d4ed8"}),
	"outline":   lipgloss.NewStyle().Foreground(ColorMuted),
}

const (
	IconSuccess = "✓"
	IconError   = "✗"
	IconWarning = "!"
	IconInfo    = "→"
)

// PrintSuccess prints a success message with a green checkmark.
func PrintSuccess(format string, args ...any) {
	fmt.Printf("%s %s\n", StyleSuccess.Render(IconSuccess), fmt.Sprintf(format, args...))
}

// PrintError prints an error message with a red X to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", StyleError.Render(IconError), fmt.Sprintf(format, args...))
}

// PrintWarning prints a warning message with an amber icon to stderr.
func PrintWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", StyleWarning.Render(IconWarning), fmt.Sprintf(format, args...))
}

// PrintInfo prints an info message with a muted arrow.
func PrintInfo(format string, args ...any) {
	fmt.Printf("%s %s\n", StyleMuted.Render(IconInfo), fmt.Sprintf(format, args...))
}

// RenderID renders a fort ID in accent color.
func RenderID(id string) string {
	return StyleID.Render(id)
}

// RenderURL renders a URL in the URL color.
func RenderURL(url string) string {
	return StyleURL.Render(url)
}

// RenderMuted renders text in muted color.
func RenderMuted(text string) string {
	return StyleMuted.Render(text)
}

// RenderBold renders text in bold.
func RenderBold(text string) string {
	return StyleBold.Render(text)
}

// RenderBadge renders a fort's type in its badge style.
func RenderBadge(f *model.Fort) string {
	return badgeStyles[f.BadgeVariant()].Render(string(f.Type))
}

// TitleBox renders a title in a prominent bordered box.
func TitleBox(title string) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorAccent).
		Padding(0, 2).
		Bold(true)
	return style.Render(title)
}

// LabelValue formats a label-value pair with right-aligned label.
func LabelValue(label, value string, labelWidth int) string {
	labelStyle := lipgloss.NewStyle().
		Width(labelWidth).
		Align(lipgloss.Right).
		Foreground(ColorMuted)
	return fmt.Sprintf("%s %s", labelStyle.Render(label+":"), value)
}

// fprintln writes one line, ignoring errors like fmt.Println does.
func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}
