// Package session owns the application-scoped state root: the network
// context, the wallet session, and every component derived from them. It is
// the one place where a network switch resets three components as a unit.
package session

import (
	"sync"

	"ordinal-mint-tui/backend"
	"ordinal-mint-tui/balance"
	"ordinal-mint-tui/inscriptions"
	"ordinal-mint-tui/network"
	"ordinal-mint-tui/pipeline"
	"ordinal-mint-tui/wallet"

	"github.com/charmbracelet/log"
)

// Options configures the session root.
type Options struct {
	Network    network.Network
	Endpoints  network.Endpoints
	BackendURL string
	Capability wallet.Capability
	Logger     *log.Logger
}

// Root wires the orchestration engine together. Component state is guarded
// per component; Root's own mutex serializes the multi-component resets so a
// switch is never interleaved with a disconnect or another switch.
type Root struct {
	mu sync.Mutex

	Net          *network.Context
	Session      *wallet.Session
	Conn         *wallet.ConnectionManager
	Balance      *balance.Tracker
	Inscriptions *inscriptions.Paginator
	Pipeline     *pipeline.Pipeline
	Backend      *backend.Client
	Logger       *log.Logger
}

// New builds the session root from options.
func New(opts Options) *Root {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	net := network.NewContext(opts.Network, opts.Endpoints)
	sess := wallet.NewSession()
	conn := wallet.NewConnectionManager(sess, opts.Capability, net, logger)
	tracker := balance.NewTracker(net, logger)
	paginator := inscriptions.NewPaginator(conn, opts.Capability, net, logger)
	client := backend.NewClient(opts.BackendURL, logger)
	pipe := pipeline.New(sess, tracker, client, opts.Capability, net, logger)

	return &Root{
		Net:          net,
		Session:      sess,
		Conn:         conn,
		Balance:      tracker,
		Inscriptions: paginator,
		Pipeline:     pipe,
		Backend:      client,
		Logger:       logger,
	}
}

// SwitchNetwork changes the active chain and resets everything derived from
// the old one: the wallet session, the balance snapshot, and the inscription
// collection are cleared, and an in-flight creation is aborted. In-flight
// fetches that started before the switch discard their results when they
// complete. A partial reset here would show stale data against the new
// network, so the whole sequence runs under the root lock.
func (r *Root) SwitchNetwork(n network.Network) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Net.Active() == n {
		return
	}
	r.Net.SetActive(n)
	r.Session.Reset()
	r.Balance.Reset()
	r.Inscriptions.Reset()
	r.Pipeline.Abort()
	r.Logger.Info("network switched", "network", string(n))
}

// Disconnect clears the wallet session and everything keyed to its address.
func (r *Root) Disconnect() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Session.Reset()
	r.Balance.Reset()
	r.Inscriptions.Reset()
	r.Pipeline.Abort()
	r.Logger.Info("wallet disconnected")
}
