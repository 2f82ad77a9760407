package details

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"ordinal-mint-tui/helpers"
	"ordinal-mint-tui/inscriptions"
	"ordinal-mint-tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// Nav returns the navigation bar for the inscription details view
func Nav(width int) string {
	left := strings.Join([]string{
		styles.Key("↑/↓") + " prev/next",
		styles.Key("y") + " copy id",
		styles.Key("l") + " logger",
		styles.Key("Esc") + " back",
	}, "   ")

	return styles.NavStyle.Width(width).Render(left)
}

// renderPreview shows inscription content inline when it is text, and a
// summary line otherwise
func renderPreview(p inscriptions.Preview, maxLines int) string {
	if strings.HasPrefix(p.ContentType, "text/") || strings.HasPrefix(p.ContentType, "application/json") {
		if !utf8.Valid(p.Body) {
			return lipgloss.NewStyle().Foreground(styles.CMuted).Render("(content is not valid text)")
		}
		lines := strings.Split(string(p.Body), "\n")
		truncated := false
		if len(lines) > maxLines {
			lines = lines[:maxLines]
			truncated = true
		}
		out := lipgloss.NewStyle().Foreground(styles.CText).Render(strings.Join(lines, "\n"))
		if truncated {
			out += "\n" + lipgloss.NewStyle().Foreground(styles.CMuted).Render("…")
		}
		return out
	}

	return lipgloss.NewStyle().Foreground(styles.CMuted).Render(
		fmt.Sprintf("(%s, %d bytes — open the preview URL to view)", p.ContentType, len(p.Body)))
}

// Render renders the inscription details view
func Render(rec inscriptions.Record, preview inscriptions.Preview, havePreview, loading bool, previewErr, copiedMsg, spinnerView string, height int) string {
	h := styles.TitleStyle.Render("Inscription #" + rec.InscriptionNumber)

	// Link the preview URL so terminals can open the content host
	urlStyle := lipgloss.NewStyle().Foreground(styles.CMuted).Underline(true)
	link := fmt.Sprintf("\x1b]8;;%s\x1b\\%s\x1b]8;;\x1b\\", rec.PreviewURL, urlStyle.Render(rec.PreviewURL))

	label := lipgloss.NewStyle().Foreground(styles.CAccent2).Bold(true)
	value := lipgloss.NewStyle().Foreground(styles.CText)

	idLine := fmt.Sprintf("%-12s %s", label.Render("Id"), value.Render(rec.InscriptionID))
	if copiedMsg != "" {
		idLine += "  " + lipgloss.NewStyle().Foreground(styles.CAccent).Render(copiedMsg)
	}

	lines := []string{
		h,
		"",
		idLine,
		fmt.Sprintf("%-12s %s", label.Render("Type"), value.Render(rec.ContentType)),
		fmt.Sprintf("%-12s %s", label.Render("Genesis"), value.Render(helpers.ShortenID(rec.GenesisTransaction))),
		fmt.Sprintf("%-12s %s", label.Render("Created"), value.Render(helpers.FormatTimestamp(rec.Timestamp))),
		fmt.Sprintf("%-12s %s", label.Render("Content"), link),
		"",
	}

	switch {
	case loading:
		lines = append(lines, spinnerView+" fetching preview…")
	case previewErr != "":
		lines = append(lines, lipgloss.NewStyle().Foreground(styles.CWarn).Render("⚠ "+previewErr))
	case havePreview:
		maxLines := helpers.Max(5, height-14)
		lines = append(lines, lipgloss.NewStyle().Foreground(styles.CMuted).Render("Preview"), renderPreview(preview, maxLines))
	}

	return strings.Join(lines, "\n")
}
