package inscriptions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"ordinal-mint-tui/network"
	"ordinal-mint-tui/wallet"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// enumCapability serves a fixed record set over offset paging, with optional
// per-call failure injection.
type enumCapability struct {
	records []wallet.EnumeratedInscription
	failGet bool
	denied  bool
	calls   int
}

func (e *enumCapability) GetAddress(_ context.Context, _ []wallet.Purpose, _ string) (string, error) {
	return "bc1qowner", nil
}

func (e *enumCapability) RequestPermissions(_ context.Context) (bool, error) {
	return !e.denied, nil
}

func (e *enumCapability) EnumerateInscriptions(_ context.Context, offset, limit int) (wallet.EnumerationPage, error) {
	e.calls++
	if e.failGet {
		return wallet.EnumerationPage{}, errors.New("provider unavailable")
	}
	page := wallet.EnumerationPage{Total: len(e.records), Limit: limit, Offset: offset}
	if offset < len(e.records) {
		end := offset + limit
		if end > len(e.records) {
			end = len(e.records)
		}
		page.Items = e.records[offset:end]
	}
	return page, nil
}

func (e *enumCapability) SignOrCreateInscription(_ context.Context, _ wallet.SignRequest) (wallet.SignResult, error) {
	return wallet.SignResult{}, nil
}

func fixtures(n int) []wallet.EnumeratedInscription {
	out := make([]wallet.EnumeratedInscription, n)
	for i := range out {
		out[i] = wallet.EnumeratedInscription{
			ID:                 fmt.Sprintf("insc-%04di0", i),
			Number:             fmt.Sprintf("%d", 1000+i),
			ContentType:        "image/png",
			GenesisTransaction: fmt.Sprintf("tx-%04d", i),
			Timestamp:          1700000000 + int64(i),
		}
	}
	return out
}

func newPaginator(capability wallet.Capability) *Paginator {
	logger := log.New(io.Discard)
	sess := wallet.NewSession()
	net := network.NewContext(network.Testnet, network.Endpoints{})
	conn := wallet.NewConnectionManager(sess, capability, net, logger)
	return NewPaginator(conn, capability, net, logger)
}

func TestAccumulation(t *testing.T) {
	// Provider pages of sizes [60, 60, 23].
	capability := &enumCapability{records: fixtures(143)}
	p := newPaginator(capability)

	added, err := p.LoadPage(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 60, added)
	assert.True(t, p.HasMore())

	_, err = p.LoadMore(context.Background())
	require.NoError(t, err)
	assert.True(t, p.HasMore())

	added, err = p.LoadMore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 23, added)
	assert.False(t, p.HasMore())

	items := p.Items()
	assert.Len(t, items, 143)
	assert.Equal(t, 143, p.Total())

	seen := make(map[string]bool)
	for _, it := range items {
		assert.False(t, seen[it.InscriptionID], "duplicate %s", it.InscriptionID)
		seen[it.InscriptionID] = true
	}

	// A further LoadMore is a no-op with no provider call.
	calls := capability.calls
	added, err = p.LoadMore(context.Background())
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Equal(t, calls, capability.calls)
}

func TestPreviewURLFollowsNetwork(t *testing.T) {
	capability := &enumCapability{records: fixtures(1)}
	p := newPaginator(capability)

	_, err := p.LoadPage(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "https://ord-testnet.xverse.app/content/insc-0000i0", p.Items()[0].PreviewURL)
}

func TestOverlappingPageDeduplicates(t *testing.T) {
	capability := &enumCapability{records: fixtures(10)}
	p := newPaginator(capability)

	_, err := p.LoadPage(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, 10, p.Len())

	// An unstable backing order can re-return records; re-loading the same
	// offset must not duplicate them.
	added, err := p.LoadPage(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Equal(t, 10, p.Len())
}

func TestPermissionDeniedLeavesStateUnchanged(t *testing.T) {
	capability := &enumCapability{records: fixtures(5), denied: true}
	p := newPaginator(capability)

	_, err := p.LoadPage(context.Background(), 0)
	assert.ErrorIs(t, err, wallet.ErrPermissionDenied)
	assert.Zero(t, p.Len())
	assert.Zero(t, capability.calls)
}

func TestProviderFailureKeepsLastGoodPage(t *testing.T) {
	capability := &enumCapability{records: fixtures(80)}
	p := newPaginator(capability)

	_, err := p.LoadPage(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, 60, p.Len())

	capability.failGet = true
	_, err = p.LoadMore(context.Background())
	require.Error(t, err)
	assert.Equal(t, 60, p.Len())
	assert.True(t, p.HasMore())

	// The notice is retryable: once the provider recovers the same call
	// continues from where it left off.
	capability.failGet = false
	added, err := p.LoadMore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 20, added)
	assert.Equal(t, 80, p.Len())
}

func TestResetClearsCollection(t *testing.T) {
	capability := &enumCapability{records: fixtures(3)}
	p := newPaginator(capability)

	_, err := p.LoadPage(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, 3, p.Len())

	p.Reset()
	assert.Zero(t, p.Len())
	assert.Zero(t, p.Total())
	assert.False(t, p.HasMore())
}
