package main

import (
	"ordinal-mint-tui/balance"
	"ordinal-mint-tui/inscriptions"
	"ordinal-mint-tui/network"
	"ordinal-mint-tui/pipeline"
)

// -------------------- TEA MESSAGES --------------------
// All custom message types for The Elm Architecture

// clipboardCopiedMsg indicates clipboard copy completed
type clipboardCopiedMsg struct{}

// clearClipboardFeedbackMsg clears the transient "copied" indicator
type clearClipboardFeedbackMsg struct{}

// logInitMsg signals that log viewport should be initialized
type logInitMsg struct{}

// walletConnectedMsg contains result of a wallet connection attempt
type walletConnectedMsg struct {
	address  string
	canceled bool
	err      error
}

// walletDisconnectedMsg signals the session was torn down
type walletDisconnectedMsg struct{}

// balanceRefreshedMsg contains the balance snapshot after a refresh
type balanceRefreshedMsg struct {
	snapshot balance.Snapshot
	err      error
}

// inscriptionsLoadedMsg contains result of an inscription page load
type inscriptionsLoadedMsg struct {
	added  int
	denied bool
	err    error
}

// ordinalCreatedMsg contains result of a creation pipeline run
type ordinalCreatedMsg struct {
	created  pipeline.CreatedOrdinal
	canceled bool
	err      error
}

// networkSwitchedMsg signals the active network changed
type networkSwitchedMsg struct {
	network network.Network
}

// previewLoadedMsg contains a fetched inscription preview
type previewLoadedMsg struct {
	inscriptionID string
	preview       inscriptions.Preview
	err           error
}
