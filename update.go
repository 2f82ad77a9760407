package main

import (
	"fmt"
	"os"
	"strings"

	"ordinal-mint-tui/config"
	"ordinal-mint-tui/helpers"
	"ordinal-mint-tui/inscriptions"
	"ordinal-mint-tui/network"
	"ordinal-mint-tui/pipeline"
	"ordinal-mint-tui/views/home"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// -------------------- TEMP FORM STORAGE --------------------
// Temporary form field storage (package-level to avoid pointer-to-copy issues)
var (
	tempCreateContent  string
	tempCreateFilePath string
)

// networkChoices is the settings page ordering
var networkChoices = []network.Network{network.Mainnet, network.Testnet}

func (m *model) createOrdinalForm() {
	tempCreateContent = ""
	tempCreateFilePath = ""

	m.createForm = huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Content").
				Description("Text to inscribe (ignored when a file is chosen)").
				Value(&tempCreateContent).
				Placeholder("Hello, ordinals"),

			huh.NewInput().
				Title("File").
				Description("Optional path to a file to inscribe instead").
				Value(&tempCreateFilePath).
				Placeholder("~/pixel.png").
				Validate(func(s string) error {
					if s == "" {
						return nil
					}
					if _, err := os.Stat(s); err != nil {
						return fmt.Errorf("file not found")
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeCatppuccin())

	m.createForm.Init()
}

// -------------------- UPDATE --------------------

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle creation result panel before anything else
	if m.showResult {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "y":
				if m.resultHasData {
					m.addLog("info", "Copied transaction id to clipboard")
					return m, copyToClipboard(m.lastCreated.ID)
				}
				return m, nil
			case "esc", "enter":
				m.showResult = false
				m.resultHasData = false
				m.copiedMsg = ""
				m.activePage = config.PageWallet
				return m, nil
			}
			return m, nil
		}
	}

	// Handle home menu form
	if m.activePage == config.PageHome && m.homeForm != nil {
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
			return m, tea.Quit
		}

		form, cmd := m.homeForm.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.homeForm = f

			if m.homeForm.State == huh.StateCompleted {
				m.homeForm = nil
				switch home.TempSelection {
				case "wallet":
					m.activePage = config.PageWallet
				case "ordinals":
					m.activePage = config.PageOrdinals
					return m, m.maybeLoadFirstPage()
				case "create":
					m.activePage = config.PageCreate
					m.createErr = ""
					m.createOrdinalForm()
				case "settings":
					m.activePage = config.PageSettings
				}
				return m, nil
			}

			if m.homeForm.State == huh.StateAborted {
				m.homeForm = nil
				m.activePage = config.PageWallet
				return m, nil
			}
		}
		return m, cmd
	}

	// Handle create form
	if m.activePage == config.PageCreate && m.createForm != nil && !m.creating {
		// Intercept ESC key to cancel form
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
			m.createForm = nil
			m.createErr = ""
			m.activePage = config.PageWallet
			return m, nil
		}

		form, cmd := m.createForm.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.createForm = f

			if m.createForm.State == huh.StateCompleted {
				content := strings.TrimSpace(tempCreateContent)
				filePath := strings.TrimSpace(tempCreateFilePath)

				if content == "" && filePath == "" {
					m.createErr = "Enter text or choose a file first."
					m.createOrdinalForm()
					return m, nil
				}

				fileData, err := readDraftFile(filePath)
				if err != nil {
					m.createErr = "Could not read file: " + err.Error()
					m.createOrdinalForm()
					return m, nil
				}

				draft := pipeline.Draft{
					Content:  content,
					FileName: filePath,
					FileData: fileData,
				}
				m.creating = true
				m.createErr = ""
				m.addLog("info", "Starting ordinal creation for "+m.shortOwner())
				return m, createOrdinal(m.root, draft)
			}

			if m.createForm.State == huh.StateAborted {
				m.createForm = nil
				m.createErr = ""
				m.activePage = config.PageWallet
				return m, nil
			}
		}
		return m, cmd
	}

	switch msg := msg.(type) {

	case logInitMsg:
		if !m.logEnabled {
			return m, nil
		}
		// Create logger that writes to our buffer
		m.logger = log.NewWithOptions(m.logBuffer, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
			Prefix:          "",
		})
		m.logger.SetLevel(log.DebugLevel)
		m.logger.SetStyles(&log.Styles{
			Timestamp: lipgloss.NewStyle().Foreground(cMuted),
			Caller:    lipgloss.NewStyle().Faint(true),
			Prefix:    lipgloss.NewStyle().Bold(true).Foreground(cAccent2),
			Message:   lipgloss.NewStyle().Foreground(cText),
			Key:       lipgloss.NewStyle().Foreground(cAccent),
			Value:     lipgloss.NewStyle().Foreground(cText),
			Separator: lipgloss.NewStyle().Faint(true),
			Levels: map[log.Level]lipgloss.Style{
				log.DebugLevel: lipgloss.NewStyle().Foreground(cMuted).SetString("DEBUG"),
				log.InfoLevel:  lipgloss.NewStyle().Foreground(cAccent2).SetString("INFO"),
				log.WarnLevel:  lipgloss.NewStyle().Foreground(cWarn).SetString("WARN"),
				log.ErrorLevel: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).SetString("ERROR"),
			},
		})
		m.logReady = true
		m.addLog("info", "Logger enabled")
		return m, nil

	case walletConnectedMsg:
		m.connecting = false
		if msg.canceled {
			m.addLog("info", "Wallet connection canceled")
			return m, nil
		}
		if msg.err != nil {
			m.addLog("error", fmt.Sprintf("Wallet connection failed: `%s`", msg.err.Error()))
			return m, nil
		}
		m.addLog("success", fmt.Sprintf("Connected wallet `%s`", helpers.ShortenAddr(msg.address)))
		// A fresh session needs its balance and inscription collection
		m.refreshing = true
		m.inscriptionsLoading = true
		return m, tea.Batch(refreshBalance(m.root), loadInscriptions(m.root, 0))

	case walletDisconnectedMsg:
		m.previewByID = make(map[string]inscriptions.Preview)
		m.selectedInscription = 0
		m.inscriptionsErr = ""
		m.previewErr = ""
		m.addLog("info", "Wallet disconnected")
		return m, nil

	case balanceRefreshedMsg:
		m.refreshing = false
		if msg.err != nil {
			m.addLog("error", fmt.Sprintf("Balance refresh failed: `%s`", msg.err.Error()))
			return m, nil
		}
		m.addLog("success", fmt.Sprintf("Balance for `%s`: %s confirmed",
			m.shortOwner(), helpers.FormatSatsPtr(msg.snapshot.ConfirmedSats)))
		return m, nil

	case inscriptionsLoadedMsg:
		m.inscriptionsLoading = false
		if msg.denied {
			m.inscriptionsErr = "Inscription access denied. Press r to ask again."
			m.addLog("warning", "Inscription enumeration permission denied")
			return m, nil
		}
		if msg.err != nil {
			m.inscriptionsErr = "Could not load inscriptions. Press r to retry."
			m.addLog("error", fmt.Sprintf("Inscription load failed: `%s`", msg.err.Error()))
			return m, nil
		}
		m.inscriptionsErr = ""
		m.addLog("success", fmt.Sprintf("Loaded %d inscriptions (%d total)", msg.added, m.root.Inscriptions.Len()))
		return m, nil

	case ordinalCreatedMsg:
		m.creating = false
		if msg.canceled {
			m.addLog("info", "Ordinal creation canceled")
			m.createOrdinalForm()
			return m, nil
		}
		if msg.err != nil {
			m.createErr = msg.err.Error()
			m.addLog("error", fmt.Sprintf("Ordinal creation failed: `%s`", msg.err.Error()))
			m.createOrdinalForm()
			return m, nil
		}
		m.lastCreated = msg.created
		m.resultHasData = true
		m.showResult = true
		m.createForm = nil
		m.addLog("success", fmt.Sprintf("Ordinal %s: `%s`", msg.created.Status, helpers.ShortenID(msg.created.ID)))
		// The spend changes the balance
		m.refreshing = true
		return m, refreshBalance(m.root)

	case networkSwitchedMsg:
		m.previewByID = make(map[string]inscriptions.Preview)
		m.selectedInscription = 0
		m.inscriptionsErr = ""
		m.previewErr = ""
		m.createErr = ""
		m.showResult = false
		m.resultHasData = false
		m.cfg.Network = string(msg.network)
		config.Save(m.configPath, m.cfg)
		m.addLog("warning", fmt.Sprintf("Switched to %s. Session cleared, reconnect the wallet.", msg.network))
		return m, nil

	case previewLoadedMsg:
		m.previewLoading = false
		if msg.err != nil {
			m.previewErr = "Preview unavailable."
			m.addLog("error", fmt.Sprintf("Preview fetch failed: `%s`", msg.err.Error()))
			return m, nil
		}
		m.previewErr = ""
		m.previewByID[msg.inscriptionID] = msg.preview
		return m, nil

	case clipboardCopiedMsg:
		m.copiedMsg = "Copied!"
		return m, clearClipboardMsg()

	case clearClipboardFeedbackMsg:
		m.copiedMsg = ""
		return m, nil

	case tea.WindowSizeMsg:
		m.w, m.h = msg.Width, msg.Height

		if m.logEnabled {
			m.logViewport.Width = max(0, msg.Width-6)
			if m.logReady {
				m.updateLogViewport()
			}
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		var cmds []tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
		if m.logEnabled && !m.logReady {
			m.logSpinner, cmd = m.logSpinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		allowMenuHotkeys := !m.textInputActive()
		// global keys
		if allowMenuHotkeys {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit

			case "l", "L":
				// Toggle logger
				m.logEnabled = !m.logEnabled
				m.cfg.Logger = m.logEnabled
				config.Save(m.configPath, m.cfg)
				if m.logEnabled {
					if m.w > 0 {
						m.logViewport.Width = m.w - 6
					}
					m.logReady = false
					return m, tea.Batch(initLogViewport(), m.logSpinner.Tick)
				}
				if m.logBuffer != nil {
					m.logBuffer.Reset()
				}
				m.logger = nil
				m.logReady = false
				return m, nil

			case "pageup", "pagedown":
				if m.logEnabled && m.logReady {
					var cmd tea.Cmd
					m.logViewport, cmd = m.logViewport.Update(msg)
					return m, cmd
				}
			}
		}

		// page-specific behavior
		switch m.activePage {

		case config.PageWallet:
			switch msg.String() {
			case "c":
				if !m.root.Session.Connected() && !m.connecting {
					m.connecting = true
					m.addLog("info", "Requesting wallet address…")
					return m, connectWallet(m.root)
				}
				return m, nil
			case "x":
				if m.root.Session.Connected() {
					return m, disconnectWallet(m.root)
				}
				return m, nil
			case "r":
				if m.root.Session.Connected() && !m.refreshing {
					m.refreshing = true
					return m, refreshBalance(m.root)
				}
				return m, nil
			case "y":
				if addr, ok := m.root.Session.Address(); ok {
					return m, copyToClipboard(addr)
				}
				return m, nil
			case "o":
				m.activePage = config.PageOrdinals
				return m, m.maybeLoadFirstPage()
			case "n":
				m.activePage = config.PageCreate
				m.createErr = ""
				m.createOrdinalForm()
				return m, nil
			case "s":
				m.activePage = config.PageSettings
				return m, nil
			case "h":
				m.activePage = config.PageHome
				m.homeForm = home.CreateForm()
				return m, nil
			case "esc":
				return m, tea.Quit
			}

		case config.PageOrdinals:
			items := m.root.Inscriptions.Items()
			switch msg.String() {
			case "up", "k":
				if m.selectedInscription > 0 {
					m.selectedInscription--
				}
				return m, nil
			case "down", "j":
				if m.selectedInscription < len(items)-1 {
					m.selectedInscription++
				}
				return m, nil
			case "enter":
				if len(items) > 0 {
					m.activePage = config.PageDetails
					m.previewErr = ""
					return m, m.loadSelectedPreview()
				}
				return m, nil
			case "m":
				if m.root.Inscriptions.HasMore() && !m.inscriptionsLoading {
					m.inscriptionsLoading = true
					return m, loadMoreInscriptions(m.root)
				}
				return m, nil
			case "r":
				if m.root.Session.Connected() && !m.inscriptionsLoading {
					m.inscriptionsLoading = true
					return m, loadInscriptions(m.root, m.root.Inscriptions.Len())
				}
				return m, nil
			case "w", "esc":
				m.activePage = config.PageWallet
				return m, nil
			case "n":
				m.activePage = config.PageCreate
				m.createErr = ""
				m.createOrdinalForm()
				return m, nil
			case "s":
				m.activePage = config.PageSettings
				return m, nil
			case "h":
				m.activePage = config.PageHome
				m.homeForm = home.CreateForm()
				return m, nil
			}

		case config.PageDetails:
			items := m.root.Inscriptions.Items()
			switch msg.String() {
			case "up", "k":
				if m.selectedInscription > 0 {
					m.selectedInscription--
					m.previewErr = ""
					return m, m.loadSelectedPreview()
				}
				return m, nil
			case "down", "j":
				if m.selectedInscription < len(items)-1 {
					m.selectedInscription++
					m.previewErr = ""
					return m, m.loadSelectedPreview()
				}
				return m, nil
			case "y":
				if m.selectedInscription >= 0 && m.selectedInscription < len(items) {
					return m, copyToClipboard(items[m.selectedInscription].InscriptionID)
				}
				return m, nil
			case "o", "esc":
				m.activePage = config.PageOrdinals
				return m, nil
			}

		case config.PageSettings:
			// Handle network switch confirmation dialog
			if m.showSwitchDialog {
				switch msg.String() {
				case "left", "right", "tab":
					m.switchDialogYes = !m.switchDialogYes
					return m, nil
				case "enter":
					m.showSwitchDialog = false
					if m.switchDialogYes {
						target := networkChoices[m.switchTarget]
						return m, switchNetwork(m.root, target)
					}
					return m, nil
				case "esc":
					m.showSwitchDialog = false
					return m, nil
				}
				return m, nil
			}

			switch msg.String() {
			case "up", "k":
				if m.selectedNetworkIdx > 0 {
					m.selectedNetworkIdx--
				}
				return m, nil
			case "down", "j":
				if m.selectedNetworkIdx < len(networkChoices)-1 {
					m.selectedNetworkIdx++
				}
				return m, nil
			case "enter":
				target := networkChoices[m.selectedNetworkIdx]
				if target == m.root.Net.Active() {
					return m, nil
				}
				// Switching tears down the session, confirm first
				m.showSwitchDialog = true
				m.switchDialogYes = false
				m.switchTarget = m.selectedNetworkIdx
				return m, nil
			case "w", "esc":
				m.activePage = config.PageWallet
				return m, nil
			case "h":
				m.activePage = config.PageHome
				m.homeForm = home.CreateForm()
				return m, nil
			}
		}
	}

	return m, nil
}

// maybeLoadFirstPage starts enumeration when entering the ordinals page with
// an empty collection
func (m *model) maybeLoadFirstPage() tea.Cmd {
	if !m.root.Session.Connected() {
		return nil
	}
	if m.root.Inscriptions.Len() > 0 || m.inscriptionsLoading {
		return nil
	}
	m.inscriptionsLoading = true
	return loadInscriptions(m.root, 0)
}
