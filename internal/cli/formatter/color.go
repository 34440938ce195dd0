package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/stagehand/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// StateColor returns the lipgloss style corresponding to a task state.
func StateColor(state domain.TaskState) lipgloss.Style {
	switch state {
	case domain.TaskOpen:
		return StyleBlue
	case domain.TaskTodo:
		return StyleYellow
	case domain.TaskDoing:
		return StyleGreen
	case domain.TaskDone:
		return StylePurple
	case domain.TaskClosed:
		return StyleDim
	default:
		return StyleDim
	}
}

// StatePill returns a colored state indicator such as "● Doing".
func StatePill(state domain.TaskState) string {
	switch state {
	case domain.TaskOpen:
		return StyleBlue.Render("○ Open")
	case domain.TaskTodo:
		return StyleYellow.Render("◌ Todo")
	case domain.TaskDoing:
		return StyleGreen.Render("● Doing")
	case domain.TaskDone:
		return StylePurple.Render("◆ Done")
	case domain.TaskClosed:
		return StyleDim.Render("✔ Closed")
	default:
		return StyleDim.Render(string(state))
	}
}

// EnabledPill returns a colored account status indicator.
func EnabledPill(enabled bool) string {
	if enabled {
		return StyleGreen.Render("● Active")
	}
	return StyleDim.Render("✖ Disabled")
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
