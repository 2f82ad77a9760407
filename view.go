package main

import (
	"fmt"
	"strings"

	"ordinal-mint-tui/config"
	"ordinal-mint-tui/helpers"
	"ordinal-mint-tui/network"
	"ordinal-mint-tui/styles"
	"ordinal-mint-tui/views/create"
	"ordinal-mint-tui/views/details"
	"ordinal-mint-tui/views/home"
	logview "ordinal-mint-tui/views/log"
	"ordinal-mint-tui/views/ordinals"
	"ordinal-mint-tui/views/settings"
	walletview "ordinal-mint-tui/views/wallet"

	"github.com/charmbracelet/lipgloss"
	"github.com/mdp/qrterminal/v3"
)

// -------------------- VIEW --------------------

func (m *model) renderSwitchDialog() string {
	var (
		dialogBoxStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#F7931A")).
				Padding(1, 0).
				BorderTop(true).
				BorderLeft(true).
				BorderRight(true).
				BorderBottom(true)

		buttonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFF7DB")).
				Background(lipgloss.Color("#888B7E")).
				Padding(0, 3).
				MarginTop(1)

		activeButtonStyle = buttonStyle.Copy().
					Foreground(lipgloss.Color("#FFF7DB")).
					Background(lipgloss.Color("#F25D94")).
					MarginRight(2).
					Underline(true)
	)

	target := networkChoices[m.switchTarget]
	msg := helpers.FadeString("Switch to "+string(target)+"? The wallet session, balance, and inscriptions will be cleared.", "#F25D94", "#EDFF82")
	question := lipgloss.NewStyle().Width(50).Align(lipgloss.Center).Render(msg)

	// Apply active style to the selected button
	var okButton, cancelButton string
	if m.switchDialogYes {
		okButton = activeButtonStyle.Render("Yes")
		cancelButton = buttonStyle.Render("No")
	} else {
		okButton = buttonStyle.Copy().MarginRight(2).Render("Yes")
		cancelButton = activeButtonStyle.Copy().MarginRight(0).Render("No")
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Top, okButton, cancelButton)
	ui := lipgloss.JoinVertical(lipgloss.Center, question, buttons)

	dialog := dialogBoxStyle.Render(ui)

	return lipgloss.Place(
		m.w, m.h,
		lipgloss.Center, lipgloss.Center,
		dialog,
	)
}

// txExplorerURL links the broadcast transaction on the public explorer
func txExplorerURL(txid string, n network.Network) string {
	if n == network.Testnet {
		return "https://mempool.space/testnet/tx/" + txid
	}
	return "https://mempool.space/tx/" + txid
}

func (m *model) renderResultContent() string {
	out := styles.TitleStyle.Render("Ordinal Created") + "\n\n"

	url := txExplorerURL(m.lastCreated.ID, m.root.Net.Active())

	var sb strings.Builder
	qrterminal.GenerateWithConfig(url, qrterminal.Config{
		Level:          qrterminal.L,
		Writer:         &sb,
		HalfBlocks:     true,
		BlackChar:      qrterminal.BLACK_BLACK,
		WhiteBlackChar: qrterminal.WHITE_BLACK,
		WhiteChar:      qrterminal.WHITE_WHITE,
		BlackWhiteChar: qrterminal.BLACK_WHITE,
		QuietZone:      1,
	})
	out += sb.String() + "\n"

	label := lipgloss.NewStyle().Foreground(cAccent2).Bold(true)
	value := lipgloss.NewStyle().Foreground(cText)

	out += fmt.Sprintf("%-10s %s\n", label.Render("Txid"), value.Render(m.lastCreated.ID))
	out += fmt.Sprintf("%-10s %s\n", label.Render("Status"), value.Render(m.lastCreated.Status))
	out += fmt.Sprintf("%-10s %s\n", label.Render("Type"), value.Render(m.lastCreated.ContentType))
	out += fmt.Sprintf("%-10s %s\n", label.Render("Created"), value.Render(m.lastCreated.CreatedAtIso))

	out += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")).Render("Scan the QR code to follow the transaction on the explorer")
	out += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")).Render("Press y to copy the txid • Press ESC or Enter to close")

	if m.copiedMsg != "" {
		out += "\n" + lipgloss.NewStyle().Foreground(cAccent).Bold(true).Render(m.copiedMsg)
	}
	return out
}

func (m *model) renderResultPanel() string {
	contentWidth := max(0, m.w-8)
	centeredContent := lipgloss.NewStyle().Width(contentWidth).Align(lipgloss.Center).Render(m.renderResultContent())
	content := panelStyle.Width(max(0, m.w-4)).Render(centeredContent)
	return appStyle.Render(lipgloss.Place(
		m.w, m.h,
		lipgloss.Center, lipgloss.Center,
		content,
	))
}

func (m *model) globalHeader() string {
	availableWidth := max(0, m.w-8) // Account for panel padding

	// Connected address
	var addrDisplay string
	if addr, ok := m.root.Session.Address(); ok {
		addrDisplay = lipgloss.NewStyle().
			Foreground(cAccent2).
			Bold(true).
			Render("Wallet: " + helpers.FadeString(helpers.ShortenAddr(addr), "#F25D94", "#EDFF82"))
	} else {
		addrDisplay = lipgloss.NewStyle().
			Foreground(cMuted).
			Render("Wallet: not connected")
	}

	// Network + connection status dot
	var statusIcon string
	var statusColor lipgloss.Color
	var statusText string

	netName := string(m.root.Net.Active())
	if m.connecting {
		statusIcon = "○"
		statusColor = lipgloss.Color("#c01c28")
		statusText = "Connecting…"
	} else if !m.root.Session.Connected() {
		statusIcon = "○"
		statusColor = lipgloss.Color("#c01c28")
		statusText = netName
	} else {
		statusIcon = "●"
		statusColor = cAccent
		statusText = netName
	}

	netDisplay := lipgloss.NewStyle().
		Foreground(statusColor).
		Bold(true).
		Render(statusIcon + " " + statusText)

	// Center title
	titleText := lipgloss.NewStyle().Bold(true).Render(helpers.FadeString("ordinal mint", "#F7931A", "#82CFFD"))

	addrWidth := lipgloss.Width(addrDisplay)
	netWidth := lipgloss.Width(netDisplay)
	titleWidth := lipgloss.Width(titleText)

	totalOtherWidth := addrWidth + netWidth + titleWidth

	var headerLine string
	if totalOtherWidth+4 > availableWidth {
		// Not enough space, stack vertically
		headerLine = addrDisplay + "\n" + titleText + "\n" + netDisplay
	} else {
		// Three-column layout: Address | Title (centered) | Network
		remainingSpace := availableWidth - totalOtherWidth
		leftPadding := remainingSpace / 2
		rightPadding := remainingSpace - leftPadding

		leftSpacer := strings.Repeat(" ", max(1, leftPadding))
		rightSpacer := strings.Repeat(" ", max(1, rightPadding))

		headerLine = addrDisplay + leftSpacer + titleText + rightSpacer + netDisplay
	}

	separator := lipgloss.NewStyle().
		Foreground(cBorder).
		Render(strings.Repeat("─", availableWidth))

	return headerLine + "\n" + separator
}

func (m *model) View() string {
	// Render global header outside of page content
	globalHdr := m.globalHeader()
	headerPanel := panelStyle.Width(max(0, m.w-2)).Render(globalHdr)

	var pageContent string
	var nav string

	switch m.activePage {
	case config.PageHome:
		pageContent = panelStyle.Width(max(0, m.w-2)).Render(home.Render(m.homeForm))
		nav = home.Nav(m.w - 2)

	case config.PageWallet:
		addr, _ := m.root.Session.Address()
		walletContent := walletview.Render(
			addr,
			m.root.Session.Connected(),
			m.connecting,
			m.refreshing,
			m.root.Balance.Snapshot(),
			m.root.Net.Active(),
			m.copiedMsg,
			m.spin.View(),
		)
		pageContent = panelStyle.Width(max(0, m.w-2)).Render(walletContent)
		nav = walletview.Nav(m.w-2, m.root.Session.Connected())

	case config.PageOrdinals:
		items := m.root.Inscriptions.Items()
		ordinalsContent := ordinals.Render(
			items,
			m.selectedInscription,
			m.root.Inscriptions.Total(),
			m.root.Inscriptions.HasMore(),
			m.inscriptionsLoading,
			m.inscriptionsErr,
			m.spin.View(),
		)
		pageContent = panelStyle.Width(max(0, m.w-2)).Render(ordinalsContent)
		nav = ordinals.Nav(m.w-2, m.root.Inscriptions.HasMore())

	case config.PageDetails:
		items := m.root.Inscriptions.Items()
		var detailsContent string
		if m.selectedInscription >= 0 && m.selectedInscription < len(items) {
			rec := items[m.selectedInscription]
			preview, havePreview := m.previewByID[rec.InscriptionID]
			detailsContent = details.Render(rec, preview, havePreview, m.previewLoading, m.previewErr, m.copiedMsg, m.spin.View(), m.h)
		} else {
			detailsContent = lipgloss.NewStyle().Foreground(cMuted).Render("No inscription selected.")
		}
		pageContent = panelStyle.Width(max(0, m.w-2)).Render(detailsContent)
		nav = details.Nav(m.w - 2)

	case config.PageCreate:
		createContent := create.Render(m.createForm, m.creating, m.root.Pipeline.State().String(), m.createErr, m.spin.View())
		pageContent = panelStyle.Width(max(0, m.w-2)).Render(createContent)
		nav = create.Nav(m.w-2, m.creating)

		if m.showResult {
			return m.renderResultPanel()
		}

	case config.PageSettings:
		settingsContent := settings.Render(networkChoices, m.root.Net.Active(), m.selectedNetworkIdx, m.cfg.BackendURL)
		pageContent = panelStyle.Width(max(0, m.w-2)).Render(settingsContent)
		nav = settings.Nav(m.w - 2)

		if m.showSwitchDialog {
			return m.renderSwitchDialog()
		}
	}

	// Render log panel only if enabled
	if m.logEnabled {
		// Ensure viewport height stays in sync with the rendered panel
		reservedHeight := 10
		availableHeight := max(5, m.h-reservedHeight)
		maxLogHeight := min(m.h/3, 15)
		logPanelHeight := min(availableHeight, maxLogHeight)
		m.logViewport.Height = logPanelHeight

		logPanel := logview.Render(m.w, m.h, m.logReady, m.logSpinner.View(), m.logViewport)
		content := lipgloss.JoinVertical(lipgloss.Left, headerPanel, pageContent, nav, logPanel)
		return appStyle.Render(content)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, headerPanel, pageContent, nav)
	return appStyle.Render(content)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
