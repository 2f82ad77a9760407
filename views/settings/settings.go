package settings

import (
	"strings"

	"ordinal-mint-tui/network"
	"ordinal-mint-tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// Nav returns the navigation bar for settings view
func Nav(width int) string {
	left := strings.Join([]string{
		styles.Key("↑/↓") + " select",
		styles.Key("Enter") + " switch",
		styles.Key("w") + " wallet",
		styles.Key("h") + " home",
		styles.Key("l") + " logger",
		styles.Key("Esc") + " back",
	}, "   ")

	return styles.NavStyle.Width(width).Render(left)
}

// Render renders the network settings view
func Render(choices []network.Network, active network.Network, selectedIdx int, backendURL string) string {
	h := styles.TitleStyle.Render("Network Settings")

	lines := []string{h, ""}
	lines = append(lines, lipgloss.NewStyle().Foreground(styles.CMuted).Render("Active network:"))
	lines = append(lines, "")

	for i, n := range choices {
		var marker string
		if n == active {
			marker = lipgloss.NewStyle().Foreground(styles.CAccent).Render("● ")
		} else {
			marker = lipgloss.NewStyle().Foreground(styles.CMuted).Render("○ ")
		}

		nameStyle := lipgloss.NewStyle().Foreground(styles.CText)
		if i == selectedIdx {
			nameStyle = nameStyle.Foreground(styles.CAccent2).Bold(true)
			marker = lipgloss.NewStyle().Foreground(styles.CAccent2).Render("▶ ") + marker
		} else {
			marker = "  " + marker
		}

		lines = append(lines, marker+nameStyle.Render(string(n)))
	}

	lines = append(lines, "")
	warn := lipgloss.NewStyle().Foreground(styles.CMuted).Render(
		"Switching networks disconnects the wallet and clears balances and inscriptions.")
	lines = append(lines, warn)

	lines = append(lines, "")
	lines = append(lines, lipgloss.NewStyle().Foreground(styles.CMuted).Render("Backend: ")+
		lipgloss.NewStyle().Foreground(styles.CText).Render(backendURL))

	return strings.Join(lines, "\n")
}
