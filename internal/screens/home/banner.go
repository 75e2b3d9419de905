package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/sleuth/internal/ui/theme"
)

const bannerArt = `
 ███████╗██╗     ███████╗██╗   ██╗████████╗██╗  ██╗
 ██╔════╝██║     ██╔════╝██║   ██║╚══██╔══╝██║  ██║
 ███████╗██║     █████╗  ██║   ██║   ██║   ███████║
 ╚════██║██║     ██╔══╝  ██║   ██║   ██║   ██╔══██║
 ███████║███████╗███████╗╚██████╔╝   ██║   ██║  ██║
 ╚══════╝╚══════╝╚══════╝ ╚═════╝    ╚═╝   ╚═╝  ╚═╝`

const bannerCompact = "S L E U T H"

// bannerMinWidth is the narrowest terminal the full banner fits in.
const bannerMinWidth = 56

// renderBanner returns the banner styled in the primary color, falling back
// to a spaced-out word on narrow or short terminals.
func renderBanner(width int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if compact || width < bannerMinWidth {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
