package main

import (
	"strings"

	"ordinal-mint-tui/config"
	"ordinal-mint-tui/inscriptions"
	"ordinal-mint-tui/pipeline"
	"ordinal-mint-tui/session"
	"ordinal-mint-tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// -------------------- MODEL --------------------

// model represents the application state following The Elm Architecture
type model struct {
	w, h int

	activePage config.Page

	// engine root: network context, wallet session, balance, inscriptions,
	// creation pipeline
	root *session.Root

	// connection state
	connecting bool

	// balance state
	refreshing bool

	// ordinals list state
	inscriptionsLoading bool
	selectedInscription int
	inscriptionsErr     string

	// details state
	previews       *inscriptions.PreviewCache
	previewByID    map[string]inscriptions.Preview
	previewLoading bool
	previewErr     string

	// create flow state
	createForm    *huh.Form
	creating      bool
	createErr     string
	lastCreated   pipeline.CreatedOrdinal
	showResult    bool
	resultHasData bool

	// settings state
	selectedNetworkIdx int
	showSwitchDialog   bool
	switchDialogYes    bool
	switchTarget       int

	// home form
	homeForm *huh.Form

	// clipboard feedback
	copiedMsg string

	// spinner
	spin spinner.Model

	// logger panel
	logEnabled  bool
	logger      *log.Logger
	logBuffer   *strings.Builder
	logViewport viewport.Model
	logReady    bool
	logSpinner  spinner.Model

	// config
	cfg        config.Config
	configPath string
}

// newModel creates and initializes a new model from loaded configuration and
// a wired session root
func newModel(cfg config.Config, configPath string, root *session.Root) model {
	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(styles.CAccent2)

	vp := viewport.New(0, 20) // Will be resized in Update on first WindowSizeMsg
	vp.Style = lipgloss.NewStyle().
		Foreground(styles.CText).
		Background(styles.CPanel)

	logSpin := spinner.New()
	logSpin.Spinner = spinner.Dot
	logSpin.Style = lipgloss.NewStyle().Foreground(styles.CAccent2)

	// small cap; previews are bounded at 64 KiB each
	previews, _ := inscriptions.NewPreviewCache(32)

	m := model{
		activePage:  config.PageWallet,
		root:        root,
		previews:    previews,
		previewByID: make(map[string]inscriptions.Preview),
		spin:        sp,
		logEnabled:  cfg.Logger,
		logViewport: vp,
		logBuffer:   &strings.Builder{},
		logSpinner:  logSpin,
		cfg:         cfg,
		configPath:  configPath,
	}

	return m
}

// Init implements tea.Model interface and returns initial commands
func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick}
	if m.logEnabled {
		cmds = append(cmds, initLogViewport(), m.logSpinner.Tick)
	}
	return tea.Batch(cmds...)
}
