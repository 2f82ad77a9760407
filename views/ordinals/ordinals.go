package ordinals

import (
	"fmt"
	"strings"

	"ordinal-mint-tui/helpers"
	"ordinal-mint-tui/inscriptions"
	"ordinal-mint-tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// Nav returns the navigation bar for the ordinals list view
func Nav(width int, hasMore bool) string {
	keys := []string{
		styles.Key("↑/↓") + " move",
		styles.Key("Enter") + " open",
	}
	if hasMore {
		keys = append(keys, styles.Key("m")+" load more")
	}
	keys = append(keys,
		styles.Key("r")+" reload",
		styles.Key("w")+" wallet",
		styles.Key("n")+" create",
		styles.Key("l")+" logger",
		styles.Key("Esc")+" back",
	)
	return styles.NavStyle.Width(width).Render(strings.Join(keys, "   "))
}

// RenderList renders the inscription list with the highlighted row
func RenderList(items []inscriptions.Record, selectedIdx int) string {
	var rows []string

	for i, rec := range items {
		var marker string
		var idStyle lipgloss.Style

		if i == selectedIdx {
			marker = lipgloss.NewStyle().Foreground(styles.CAccent2).Bold(true).Render("▶ ")
			idStyle = lipgloss.NewStyle().Foreground(styles.CAccent2).Bold(true)
		} else {
			marker = "  "
			idStyle = lipgloss.NewStyle().Foreground(styles.CText)
		}

		title := fmt.Sprintf("#%s  %s", rec.InscriptionNumber, helpers.ShortenID(rec.InscriptionID))
		meta := lipgloss.NewStyle().Foreground(styles.CMuted).Render(
			fmt.Sprintf("%s  ·  %s", rec.ContentType, helpers.FormatTimestamp(rec.Timestamp)))

		rows = append(rows, marker+idStyle.Render(title)+"\n  "+meta)
	}

	return strings.Join(rows, "\n\n")
}

// Render renders the full ordinals view
func Render(items []inscriptions.Record, selectedIdx, total int, hasMore, loading bool, errMsg, spinnerView string) string {
	header := styles.TitleStyle.Render("My Ordinals")
	subtitle := lipgloss.NewStyle().Foreground(styles.CMuted).Render("Inscriptions owned by the connected wallet")

	lines := []string{header, subtitle, ""}

	if errMsg != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(styles.CWarn).Render("⚠ "+errMsg), "")
	}

	switch {
	case len(items) == 0 && loading:
		lines = append(lines, spinnerView+" loading inscriptions…")
	case len(items) == 0:
		lines = append(lines, lipgloss.NewStyle().Foreground(styles.CMuted).Render("No inscriptions found for this wallet."))
	default:
		lines = append(lines, RenderList(items, selectedIdx), "")

		muted := lipgloss.NewStyle().Foreground(styles.CMuted)
		status := muted.Render(fmt.Sprintf("%d of %d inscriptions", len(items), total))
		if hasMore {
			status += muted.Render("  ·  press ") + styles.Key("m") + muted.Render(" for more")
		}
		if loading {
			status = spinnerView + " loading…  ·  " + status
		}
		lines = append(lines, status)
	}

	return strings.Join(lines, "\n")
}
