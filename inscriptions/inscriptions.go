package inscriptions

import (
	"context"
	"fmt"
	"sync"

	"ordinal-mint-tui/network"
	"ordinal-mint-tui/wallet"

	"github.com/charmbracelet/log"
)

// PageSize is how many records one enumeration call may return.
const PageSize = 60

// Record is one inscription owned by the connected wallet. Immutable once
// fetched; PreviewURL is derived from the active network's content host.
type Record struct {
	InscriptionID      string
	InscriptionNumber  string
	ContentType        string
	GenesisTransaction string
	Timestamp          int64
	PreviewURL         string
}

// Paginator incrementally fetches the wallet's inscriptions. The collection
// is append-only within a session and keyed by inscription id so a page that
// re-returns a record cannot duplicate it.
type Paginator struct {
	mu  sync.Mutex
	gen uint64

	items    []Record
	seen     map[string]struct{}
	offset   int
	total    int
	hasMore  bool
	inFlight bool

	conn   *wallet.ConnectionManager
	cap    wallet.Capability
	net    *network.Context
	logger *log.Logger
}

// NewPaginator creates an empty paginator.
func NewPaginator(conn *wallet.ConnectionManager, capability wallet.Capability, net *network.Context, logger *log.Logger) *Paginator {
	return &Paginator{
		seen:   make(map[string]struct{}),
		conn:   conn,
		cap:    capability,
		net:    net,
		logger: logger,
	}
}

// Items returns a copy of the accumulated records.
func (p *Paginator) Items() []Record {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Record, len(p.items))
	copy(out, p.items)
	return out
}

// Len returns the number of accumulated records.
func (p *Paginator) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

// Total returns the provider-reported total.
func (p *Paginator) Total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

// HasMore reports whether another page may exist.
func (p *Paginator) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

// Reset clears the collection and invalidates in-flight loads. A fresh
// connect and a network switch both restart enumeration from offset zero.
func (p *Paginator) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	p.items = nil
	p.seen = make(map[string]struct{})
	p.offset = 0
	p.total = 0
	p.hasMore = false
	p.inFlight = false
}

// LoadPage fetches up to PageSize records starting at offset and appends them.
// The inscription grant is requested first; on denial the call aborts with
// wallet.ErrPermissionDenied and state is unchanged. Calls are strictly
// sequential: a load while another is outstanding is a no-op.
func (p *Paginator) LoadPage(ctx context.Context, offset int) (int, error) {
	if err := p.conn.RequestInscriptionCapability(ctx); err != nil {
		return 0, err
	}

	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		return 0, nil
	}
	p.inFlight = true
	gen := p.gen
	p.mu.Unlock()

	page, err := p.cap.EnumerateInscriptions(ctx, offset, PageSize)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen != gen {
		p.logger.Debug("discarding stale inscription page", "offset", offset)
		return 0, nil
	}
	p.inFlight = false
	if err != nil {
		// State stays at the last successful page; the notice is retryable.
		return 0, fmt.Errorf("load inscriptions at offset %d: %w", offset, err)
	}

	added := 0
	for _, raw := range page.Items {
		if _, dup := p.seen[raw.ID]; dup {
			continue
		}
		p.seen[raw.ID] = struct{}{}
		p.items = append(p.items, Record{
			InscriptionID:      raw.ID,
			InscriptionNumber:  raw.Number,
			ContentType:        raw.ContentType,
			GenesisTransaction: raw.GenesisTransaction,
			Timestamp:          raw.Timestamp,
			PreviewURL:         p.net.ContentURL(raw.ID),
		})
		added++
	}

	p.total = page.Total
	p.offset = offset + len(page.Items)
	p.hasMore = len(page.Items) == PageSize
	p.logger.Info("inscriptions page loaded",
		"offset", offset, "fetched", len(page.Items), "total", p.total, "hasMore", p.hasMore)
	return added, nil
}

// LoadMore fetches the next page. No-op when hasMore is false or a load is
// already in flight.
func (p *Paginator) LoadMore(ctx context.Context) (int, error) {
	p.mu.Lock()
	if !p.hasMore || p.inFlight {
		p.mu.Unlock()
		return 0, nil
	}
	offset := p.offset
	p.mu.Unlock()

	return p.LoadPage(ctx, offset)
}
