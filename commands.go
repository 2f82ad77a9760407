package main

import (
	"context"
	"errors"
	"os"
	"time"

	"ordinal-mint-tui/config"
	"ordinal-mint-tui/helpers"
	"ordinal-mint-tui/inscriptions"
	"ordinal-mint-tui/network"
	"ordinal-mint-tui/pipeline"
	"ordinal-mint-tui/session"
	"ordinal-mint-tui/wallet"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// -------------------- COMMAND FUNCTIONS --------------------
// Functions that return tea.Cmd for async operations

// initLogViewport initializes the log viewport
func initLogViewport() tea.Cmd {
	return func() tea.Msg {
		return logInitMsg{}
	}
}

// connectWallet requests an ordinals+payment address from the wallet
func connectWallet(root *session.Root) tea.Cmd {
	return func() tea.Msg {
		addr, err := root.Conn.Connect(context.Background())
		if errors.Is(err, wallet.ErrCanceled) {
			return walletConnectedMsg{canceled: true}
		}
		return walletConnectedMsg{address: addr, err: err}
	}
}

// disconnectWallet tears down the session and everything keyed to it
func disconnectWallet(root *session.Root) tea.Cmd {
	return func() tea.Msg {
		root.Disconnect()
		return walletDisconnectedMsg{}
	}
}

// refreshBalance fetches the address balance from the esplora endpoint
func refreshBalance(root *session.Root) tea.Cmd {
	return func() tea.Msg {
		addr, ok := root.Session.Address()
		if !ok {
			return balanceRefreshedMsg{snapshot: root.Balance.Snapshot()}
		}
		err := root.Balance.Refresh(context.Background(), addr)
		return balanceRefreshedMsg{snapshot: root.Balance.Snapshot(), err: err}
	}
}

// loadInscriptions fetches one page of owned inscriptions starting at offset
func loadInscriptions(root *session.Root, offset int) tea.Cmd {
	return func() tea.Msg {
		added, err := root.Inscriptions.LoadPage(context.Background(), offset)
		if errors.Is(err, wallet.ErrPermissionDenied) {
			return inscriptionsLoadedMsg{denied: true, err: err}
		}
		return inscriptionsLoadedMsg{added: added, err: err}
	}
}

// loadMoreInscriptions fetches the next inscription page
func loadMoreInscriptions(root *session.Root) tea.Cmd {
	return func() tea.Msg {
		added, err := root.Inscriptions.LoadMore(context.Background())
		if errors.Is(err, wallet.ErrPermissionDenied) {
			return inscriptionsLoadedMsg{denied: true, err: err}
		}
		return inscriptionsLoadedMsg{added: added, err: err}
	}
}

// createOrdinal runs the full creation pipeline for the draft
func createOrdinal(root *session.Root, draft pipeline.Draft) tea.Cmd {
	return func() tea.Msg {
		created, err := root.Pipeline.Create(context.Background(), draft)
		if errors.Is(err, pipeline.ErrAborted) {
			return ordinalCreatedMsg{canceled: true}
		}
		return ordinalCreatedMsg{created: created, err: err}
	}
}

// switchNetwork changes the active chain, resetting all derived state
func switchNetwork(root *session.Root, n network.Network) tea.Cmd {
	return func() tea.Msg {
		root.SwitchNetwork(n)
		return networkSwitchedMsg{network: n}
	}
}

// loadPreview fetches inscription content for the details view
func loadPreview(cache *inscriptions.PreviewCache, rec inscriptions.Record) tea.Cmd {
	return func() tea.Msg {
		preview, err := cache.Fetch(context.Background(), rec.PreviewURL)
		return previewLoadedMsg{inscriptionID: rec.InscriptionID, preview: preview, err: err}
	}
}

// copyToClipboard copies text to clipboard
func copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		err := clipboard.WriteAll(text)
		if err == nil {
			return clipboardCopiedMsg{}
		}
		return nil
	}
}

// clearClipboardMsg waits 2 seconds then sends a message to clear clipboard feedback
func clearClipboardMsg() tea.Cmd {
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return clearClipboardFeedbackMsg{}
	})
}

// readDraftFile loads the file for a draft, if a path was given
func readDraftFile(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	return os.ReadFile(path)
}

// -------------------- MODEL HELPER METHODS --------------------
// These methods help with state management and command generation

// addLog adds a log entry with timestamp and type
func (m *model) addLog(logType, message string) {
	if !m.logEnabled || !m.logReady || m.logger == nil {
		return
	}

	switch logType {
	case "info":
		m.logger.Info(message)
	case "success":
		m.logger.Info("✓", "msg", message)
	case "error":
		m.logger.Error(message)
	case "warning":
		m.logger.Warn(message)
	case "debug":
		m.logger.Debug(message)
	default:
		m.logger.Print(message)
	}

	m.updateLogViewport()
}

// loadSelectedPreview fetches content for the highlighted inscription unless
// it is already cached in the model
func (m *model) loadSelectedPreview() tea.Cmd {
	items := m.root.Inscriptions.Items()
	if m.selectedInscription < 0 || m.selectedInscription >= len(items) {
		return nil
	}
	rec := items[m.selectedInscription]
	if _, ok := m.previewByID[rec.InscriptionID]; ok {
		return nil
	}
	m.previewLoading = true
	return loadPreview(m.previews, rec)
}

// updateLogViewport refreshes the viewport content with log output
func (m *model) updateLogViewport() {
	if !m.logReady || m.logBuffer == nil {
		return
	}

	content := m.logBuffer.String()
	m.logViewport.SetContent(content)
	m.logViewport.GotoBottom()
}

// textInputActive returns true if any text input is currently active
func (m model) textInputActive() bool {
	if m.activePage == config.PageCreate && m.createForm != nil {
		return true
	}
	if m.activePage == config.PageHome && m.homeForm != nil {
		return true
	}
	return false
}

// shortOwner renders the connected address for log lines
func (m model) shortOwner() string {
	addr, ok := m.root.Session.Address()
	if !ok {
		return "unconnected"
	}
	return helpers.ShortenAddr(addr)
}
