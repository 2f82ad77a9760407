package wallet

import (
	"fmt"
	"strings"

	"ordinal-mint-tui/balance"
	"ordinal-mint-tui/helpers"
	"ordinal-mint-tui/network"
	"ordinal-mint-tui/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/mdp/qrterminal/v3"
)

// Nav returns the navigation bar for the wallet status view
func Nav(width int, connected bool) string {
	var keys []string
	if connected {
		keys = []string{
			styles.Key("r") + " refresh",
			styles.Key("y") + " copy address",
			styles.Key("x") + " disconnect",
			styles.Key("o") + " ordinals",
			styles.Key("n") + " create",
			styles.Key("s") + " settings",
			styles.Key("h") + " home",
			styles.Key("l") + " logger",
			styles.Key("Esc") + " quit",
		}
	} else {
		keys = []string{
			styles.Key("c") + " connect",
			styles.Key("s") + " settings",
			styles.Key("h") + " home",
			styles.Key("l") + " logger",
			styles.Key("Esc") + " quit",
		}
	}
	return styles.NavStyle.Width(width).Render(strings.Join(keys, "   "))
}

// addressQR renders a terminal QR code for the receiving address
func addressQR(addr string) string {
	var sb strings.Builder
	qrterminal.GenerateWithConfig(addr, qrterminal.Config{
		Level:          qrterminal.L,
		Writer:         &sb,
		HalfBlocks:     true,
		BlackChar:      qrterminal.BLACK_BLACK,
		WhiteBlackChar: qrterminal.WHITE_BLACK,
		WhiteChar:      qrterminal.WHITE_WHITE,
		BlackWhiteChar: qrterminal.BLACK_WHITE,
		QuietZone:      1,
	})
	return sb.String()
}

// explorerURL links the address on the public explorer for the network
func explorerURL(addr string, n network.Network) string {
	if n == network.Testnet {
		return "https://mempool.space/testnet/address/" + addr
	}
	return "https://mempool.space/address/" + addr
}

// Render renders the wallet status view
func Render(addr string, connected, connecting, refreshing bool, snap balance.Snapshot, n network.Network, copiedMsg, spinnerView string) string {
	h := styles.TitleStyle.Render("Wallet Status")

	if connecting {
		return h + "\n\n" + spinnerView + " waiting for the wallet…"
	}

	if !connected {
		muted := lipgloss.NewStyle().Foreground(styles.CMuted)
		lines := []string{
			h,
			"",
			muted.Render("No wallet connected."),
			"",
			muted.Render("Press ") + styles.Key("c") + muted.Render(" to connect an ordinals and payment address on ") +
				lipgloss.NewStyle().Foreground(styles.CAccent).Render(string(n)) + muted.Render("."),
		}
		return strings.Join(lines, "\n")
	}

	// Clickable address with hyperlink to the explorer
	// OSC 8 format: \x1b]8;;URL\x1b\\TEXT\x1b]8;;\x1b\\
	addrStyle := lipgloss.NewStyle().Foreground(styles.CMuted).Underline(true)
	sub := fmt.Sprintf("\x1b]8;;%s\x1b\\%s\x1b]8;;\x1b\\", explorerURL(addr, n), addrStyle.Render(addr))
	if copiedMsg != "" {
		sub += "  " + lipgloss.NewStyle().Foreground(styles.CAccent).Render(copiedMsg)
	}

	confirmedLine := fmt.Sprintf("%-12s %s",
		lipgloss.NewStyle().Foreground(styles.CAccent2).Bold(true).Render("Confirmed"),
		lipgloss.NewStyle().Foreground(styles.CText).Render(helpers.FormatSatsPtr(snap.ConfirmedSats)),
	)
	unconfirmedLine := fmt.Sprintf("%-12s %s",
		lipgloss.NewStyle().Foreground(styles.CAccent2).Bold(true).Render("Unconfirmed"),
		lipgloss.NewStyle().Foreground(styles.CText).Render(helpers.FormatSatsPtr(snap.UnconfirmedSats)),
	)
	totalLine := fmt.Sprintf("%-12s %s",
		lipgloss.NewStyle().Foreground(styles.CAccent).Bold(true).Render("Total"),
		lipgloss.NewStyle().Foreground(styles.CText).Render(helpers.FormatSatsPtr(snap.TotalSats())),
	)

	lines := []string{h, sub, ""}
	if refreshing {
		lines = append(lines, spinnerView+" fetching balance…")
	} else {
		lines = append(lines, confirmedLine, unconfirmedLine, totalLine)
		if snap.ConfirmedSats == nil {
			lines = append(lines, "", lipgloss.NewStyle().Foreground(styles.CWarn).Render("⚠ Balance unknown. Press ")+styles.Key("r")+lipgloss.NewStyle().Foreground(styles.CWarn).Render(" to refresh."))
		}
	}

	lines = append(lines, "", lipgloss.NewStyle().Foreground(styles.CMuted).Render("Receive to this address:"), addressQR(addr))

	return strings.Join(lines, "\n")
}
