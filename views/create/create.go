package create

import (
	"strings"

	"ordinal-mint-tui/styles"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Nav returns the navigation bar for the create view
func Nav(width int, creating bool) string {
	var left string
	if creating {
		left = strings.Join([]string{
			styles.Key("l") + " logger",
		}, "   ")
	} else {
		left = strings.Join([]string{
			styles.Key("Tab") + " next field",
			styles.Key("Enter") + " submit",
			styles.Key("l") + " logger",
			styles.Key("Esc") + " cancel",
		}, "   ")
	}

	return styles.NavStyle.Width(width).Render(left)
}

// Render renders the ordinal creation view
func Render(form *huh.Form, creating bool, pipelineState, createErr, spinnerView string) string {
	h := styles.TitleStyle.Render("Create Ordinal")

	if creating {
		stateLine := lipgloss.NewStyle().Foreground(styles.CAccent2).Render(pipelineState)
		hint := lipgloss.NewStyle().Foreground(styles.CMuted).Render("Approve or dismiss the prompt in your wallet.")
		return h + "\n\n" + spinnerView + " " + stateLine + "\n\n" + hint
	}

	out := h + "\n\n"
	if createErr != "" {
		out += lipgloss.NewStyle().Foreground(styles.CWarn).Render("⚠ "+createErr) + "\n\n"
	}

	if form != nil {
		out += form.View()
	}
	return out
}
