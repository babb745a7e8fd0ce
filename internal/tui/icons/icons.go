// ABOUTME: Icon system with Nerd Font detection and Unicode fallback
// ABOUTME: Provides consistent iconography across different terminal capabilities

package icons

import (
	"os"
	"strings"
	"sync"
)

var (
	useNerdFonts     bool
	nerdFontDetected sync.Once
)

// Terminals that usually ship with a patched font
var nerdFontTerminals = []string{
	"iTerm.app",
	"alacritty",
	"WezTerm",
	"kitty",
	"ghostty",
}

func detectNerdFonts() bool {
	if env := os.Getenv("SLOTBOOK_NERD_FONTS"); env != "" {
		return env == "1" || strings.EqualFold(env, "true")
	}

	term := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")
	for _, t := range nerdFontTerminals {
		if strings.Contains(termProgram, t) || strings.Contains(term, strings.ToLower(t)) {
			return true
		}
	}

	return os.Getenv("NERD_FONTS") == "1"
}

// HasNerdFonts returns true if Nerd Fonts are available
func HasNerdFonts() bool {
	nerdFontDetected.Do(func() {
		useNerdFonts = detectNerdFonts()
	})
	return useNerdFonts
}

// Icon represents an icon with Nerd Font and Unicode fallback variants
type Icon struct {
	NerdFont string
	Fallback string
}

func (i Icon) String() string {
	if HasNerdFonts() {
		return i.NerdFont
	}
	return i.Fallback
}

var (
	// Domain
	Calendar = Icon{"󰃭", "▦"} // nf-md-calendar
	User     = Icon{"", "☺"}  // nf-fa-user
	Booking  = Icon{"󰃮", "✚"} // nf-md-calendar_check
	Search   = Icon{"", "⌕"}  // nf-fa-search
	Lock     = Icon{"", "⚿"}  // nf-fa-lock

	// Status indicators
	CheckOK  = Icon{"", "✓"} // nf-oct-check_circle
	Warning  = Icon{"", "⚠"} // nf-oct-alert
	Critical = Icon{"", "✗"} // nf-oct-x_circle
	Info     = Icon{"", "ℹ"} // nf-oct-info

	// Actions
	Add = Icon{"", "+"} // nf-fa-plus

	// Selection markers
	Pointer  = Icon{"", "›"}  // nf-fa-caret_right
	Radio    = Icon{"󰐾", "●"} // nf-md-radiobox_marked
	RadioOff = Icon{"󰄰", "○"} // nf-md-radiobox_blank

	App = Icon{"󰃭", "◈"}
)
