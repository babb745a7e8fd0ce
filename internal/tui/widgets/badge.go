// ABOUTME: Inline badges and status lines for list headers and results
// ABOUTME: Maps a status level onto the shared palette and icon set

package widgets

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/slotbook/internal/tui/icons"
	"github.com/markalston/slotbook/internal/tui/styles"
)

// StatusLevel represents the severity of a status
type StatusLevel int

const (
	StatusOK StatusLevel = iota
	StatusWarning
	StatusCritical
	StatusInfo
	StatusNeutral
)

func (l StatusLevel) color() lipgloss.Color {
	switch l {
	case StatusOK:
		return styles.Secondary
	case StatusWarning:
		return styles.Warning
	case StatusCritical:
		return styles.Danger
	case StatusInfo:
		return styles.Info
	default:
		return styles.Muted
	}
}

func (l StatusLevel) icon() string {
	switch l {
	case StatusOK:
		return icons.CheckOK.String()
	case StatusWarning:
		return icons.Warning.String()
	case StatusCritical:
		return icons.Critical.String()
	case StatusInfo:
		return icons.Info.String()
	default:
		return "•"
	}
}

// Badge renders a colored inline badge
func Badge(text string, level StatusLevel) string {
	fg := styles.Text
	if level == StatusWarning {
		fg = lipgloss.Color("#000000")
	}
	return lipgloss.NewStyle().
		Background(level.color()).
		Foreground(fg).
		Padding(0, 1).
		Bold(true).
		Render(text)
}

// CountBadge renders n as a badge, muted when zero
func CountBadge(n int) string {
	if n == 0 {
		return Badge("0", StatusNeutral)
	}
	return Badge(fmt.Sprintf("%d", n), StatusInfo)
}

// StatusText returns styled status text with icon
func StatusText(text string, level StatusLevel) string {
	return lipgloss.NewStyle().Foreground(level.color()).Render(level.icon() + " " + text)
}
