// ABOUTME: Messages shared between the root app and its screens
// ABOUTME: Screens request navigation here instead of importing the app

package nav

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/markalston/slotbook/internal/client"
)

// NavigateMsg asks the app to move to Path through the route gate
type NavigateMsg struct {
	Path string
}

// AuthExpiredMsg reports that the backend rejected the session token
type AuthExpiredMsg struct{}

// To returns a command that navigates to path
func To(path string) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Path: path} }
}

// ExpiredIfUnauthorized returns a command emitting AuthExpiredMsg when err is
// an authorization failure, and nil otherwise.
func ExpiredIfUnauthorized(err error) tea.Cmd {
	if !client.IsUnauthorized(err) {
		return nil
	}
	return func() tea.Msg { return AuthExpiredMsg{} }
}
