package balance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"ordinal-mint-tui/network"

	"github.com/charmbracelet/log"
)

// TxoStats is the funded/spent totals esplora reports for one state
// (settled chain or mempool).
type TxoStats struct {
	FundedTxoSum int64 `json:"funded_txo_sum"`
	SpentTxoSum  int64 `json:"spent_txo_sum"`
}

// AddressStats is the esplora GET /address/{addr} response, trimmed to the
// fields the tracker needs.
type AddressStats struct {
	ChainStats   TxoStats `json:"chain_stats"`
	MempoolStats TxoStats `json:"mempool_stats"`
}

// Snapshot holds the computed balances. Nil means "could not determine", which
// is distinct from zero. UnconfirmedSats is the net pending delta and may be
// negative when pending spends exceed pending receipts.
type Snapshot struct {
	ConfirmedSats   *int64
	UnconfirmedSats *int64
}

// TotalSats returns confirmed+unconfirmed, or nil when either side is unknown.
func (s Snapshot) TotalSats() *int64 {
	if s.ConfirmedSats == nil || s.UnconfirmedSats == nil {
		return nil
	}
	total := *s.ConfirmedSats + *s.UnconfirmedSats
	return &total
}

// Compute derives a snapshot from raw UTXO statistics:
// confirmed = chain funded - chain spent, unconfirmed = mempool funded - spent.
func Compute(stats AddressStats) Snapshot {
	confirmed := stats.ChainStats.FundedTxoSum - stats.ChainStats.SpentTxoSum
	unconfirmed := stats.MempoolStats.FundedTxoSum - stats.MempoolStats.SpentTxoSum
	return Snapshot{ConfirmedSats: &confirmed, UnconfirmedSats: &unconfirmed}
}

// Tracker queries address UTXO statistics and keeps the latest snapshot.
// The snapshot is replaced wholesale on every refresh; a failed fetch leaves
// both fields nil rather than zero.
type Tracker struct {
	mu  sync.Mutex
	gen uint64

	snap   Snapshot
	net    *network.Context
	client *http.Client
	logger *log.Logger
}

// NewTracker creates a tracker with an empty (unknown) snapshot.
func NewTracker(net *network.Context, logger *log.Logger) *Tracker {
	return &Tracker{
		net:    net,
		client: &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

// Snapshot returns the current snapshot.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}

// Generation returns the current reset generation.
func (t *Tracker) Generation() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gen
}

// Reset clears the snapshot and invalidates in-flight refreshes.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	t.snap = Snapshot{}
}

// Refresh fetches UTXO statistics for addr and replaces the snapshot
// atomically. On any fetch error the snapshot becomes the explicit-unknown
// value. A refresh started before a reset is discarded, not applied.
func (t *Tracker) Refresh(ctx context.Context, addr string) error {
	gen := t.Generation()
	base := t.net.EsploraBase()

	stats, err := fetchAddressStats(ctx, t.client, base, addr)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gen != gen {
		t.logger.Debug("discarding stale balance refresh", "address", addr)
		return nil
	}
	if err != nil {
		t.snap = Snapshot{}
		t.logger.Error("balance fetch failed", "address", addr, "err", err)
		return fmt.Errorf("refresh balance: %w", err)
	}
	t.snap = Compute(stats)
	t.logger.Info("balance refreshed",
		"address", addr,
		"confirmed", *t.snap.ConfirmedSats,
		"unconfirmed", *t.snap.UnconfirmedSats)
	return nil
}

func fetchAddressStats(ctx context.Context, client *http.Client, base, addr string) (AddressStats, error) {
	url := fmt.Sprintf("%s/address/%s", base, addr)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return AddressStats{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return AddressStats{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return AddressStats{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return AddressStats{}, err
	}

	var stats AddressStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return AddressStats{}, err
	}
	return stats, nil
}
