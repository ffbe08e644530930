package dashboard

import (
	"os"

	"golang.org/x/term"
)

// ═══════════════════════════════════════════════════════════════════════════
// RESPONSIVE LAYOUT - Pick centered or wide from the terminal size
// ═══════════════════════════════════════════════════════════════════════════

// LayoutAuto resolves to wide on terminals that fit both columns
const LayoutAuto = "auto"

// wideMinWidth is the signal box, the gap and the barrier table side by side
const wideMinWidth = 100

// ResolveLayout maps auto to a concrete layout using stdout's width.
// Anything that is not a terminal falls back to centered.
func ResolveLayout(layout string) string {
	if layout != LayoutAuto {
		return layout
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return LayoutCentered
	}
	return layoutForWidth(width)
}

func layoutForWidth(width int) string {
	if width >= wideMinWidth {
		return LayoutWide
	}
	return LayoutCentered
}
