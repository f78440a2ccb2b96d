// Package outwriter has report rendering and console output logic.
package outwriter

import (
	"os"

	"github.com/autoops/kpiscope/internal/contract"
	"golang.org/x/term"
)

// terminalWidth resolves the usable terminal width, honoring the absolute
// override from flag/env before probing the terminal itself.
func terminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}

	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		// Conservative default for narrow terminals and CI
		return 80
	}
	return detectedWidth
}

// maxDescriptionWidth calculates the space left for freeform text columns
// after the fixed KPI, number and label columns take their share.
func maxDescriptionWidth(cfg *contract.Config) int {
	// Reserve space for fixed columns with borders and padding
	available := terminalWidth(cfg) - 45
	if available < 20 {
		return 20
	}
	if available > 80 {
		return 80
	}
	return available
}

// truncate shortens freeform text to fit a table column.
func truncate(s string, width int) string {
	if len(s) <= width || width < 4 {
		return s
	}
	return s[:width-3] + "..."
}
