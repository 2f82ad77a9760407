package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ordinal-mint-tui/config"
	"ordinal-mint-tui/network"
	"ordinal-mint-tui/session"
	"ordinal-mint-tui/wallet"
	"ordinal-mint-tui/wallet/bridge"
	"ordinal-mint-tui/wallet/stub"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// -------------------- MAIN --------------------

// demoAddress backs offline runs with no wallet bridge configured
const demoAddress = "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx"

func main() {
	_ = godotenv.Load()

	homeDir, _ := os.UserHomeDir()
	configPath := filepath.Join(homeDir, ".ordinal-mint-config.json")
	cfg := config.LoadOrCreate(configPath)

	// Environment overrides
	if v := strings.TrimSpace(os.Getenv("ORDINALS_BACKEND_URL")); v != "" {
		cfg.BackendURL = v
	}
	if v := strings.TrimSpace(os.Getenv("WALLET_BRIDGE_URL")); v != "" {
		cfg.BridgeURL = v
	}

	logger := log.New(os.Stderr)
	logger.SetLevel(log.WarnLevel)

	// A bridge daemon gives a real wallet; without one the stub keeps the
	// interface usable offline
	var capability wallet.Capability
	if cfg.BridgeURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := bridge.Dial(ctx, cfg.BridgeURL, logger)
		cancel()
		if err != nil {
			fmt.Println("error: cannot reach wallet bridge:", err)
			os.Exit(1)
		}
		defer client.Close()
		capability = client
	} else {
		capability = stub.New(demoAddress)
	}

	root := session.New(session.Options{
		Network: network.Network(cfg.Network),
		Endpoints: network.Endpoints{
			EsploraMainnet:     cfg.EsploraMainnet,
			EsploraTestnet:     cfg.EsploraTestnet,
			ContentHostMainnet: cfg.ContentMainnet,
			ContentHostTestnet: cfg.ContentTestnet,
		},
		BackendURL: cfg.BackendURL,
		Capability: capability,
		Logger:     logger,
	})

	m := newModel(cfg, configPath, root)
	p := tea.NewProgram(&m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}
