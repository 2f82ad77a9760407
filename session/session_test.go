package session

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ordinal-mint-tui/network"
	"ordinal-mint-tui/pipeline"
	"ordinal-mint-tui/wallet"
	"ordinal-mint-tui/wallet/stub"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingWallet wraps the stub so a test can park the signing handshake and
// abort it from outside.
type blockingWallet struct {
	*stub.Capability
	entered chan struct{}
	release chan struct{}
}

func newBlockingWallet(addr string) *blockingWallet {
	return &blockingWallet{
		Capability: stub.New(addr),
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
}

func (w *blockingWallet) SignOrCreateInscription(ctx context.Context, req wallet.SignRequest) (wallet.SignResult, error) {
	close(w.entered)
	select {
	case <-w.release:
	case <-ctx.Done():
		return wallet.SignResult{}, ctx.Err()
	}
	return w.Capability.SignOrCreateInscription(ctx, req)
}

func newRoot(t *testing.T, capability wallet.Capability) *Root {
	t.Helper()

	esplora := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"chain_stats":{"funded_txo_sum":700000,"spent_txo_sum":100000},"mempool_stats":{"funded_txo_sum":0,"spent_txo_sum":0}}`))
	}))
	t.Cleanup(esplora.Close)

	mux := http.NewServeMux()
	mux.HandleFunc("/prepare", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"preparedArtifact":"psbt-prepared"}`))
	})
	mux.HandleFunc("/broadcast", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"txid":"txid-root"}`))
	})
	backendSrv := httptest.NewServer(mux)
	t.Cleanup(backendSrv.Close)

	return New(Options{
		Network:    network.Testnet,
		Endpoints:  network.Endpoints{EsploraMainnet: esplora.URL, EsploraTestnet: esplora.URL},
		BackendURL: backendSrv.URL,
		Capability: capability,
		Logger:     log.New(io.Discard),
	})
}

// connectAndLoad runs the full connect flow: address grant, balance refresh,
// first inscription page.
func connectAndLoad(t *testing.T, r *Root) {
	t.Helper()
	addr, err := r.Conn.Connect(context.Background())
	require.NoError(t, err)
	require.NoError(t, r.Balance.Refresh(context.Background(), addr))
	_, err = r.Inscriptions.LoadPage(context.Background(), 0)
	require.NoError(t, err)
}

func TestSwitchNetworkResetsEverything(t *testing.T) {
	capability := stub.New("tb1qswitch")
	capability.Inscriptions = []wallet.EnumeratedInscription{
		{ID: "insc-1i0", Number: "1", ContentType: "text/plain"},
	}
	r := newRoot(t, capability)
	connectAndLoad(t, r)

	require.True(t, r.Session.Connected())
	require.NotNil(t, r.Balance.Snapshot().ConfirmedSats)
	require.Equal(t, 1, r.Inscriptions.Len())

	r.SwitchNetwork(network.Mainnet)

	assert.Equal(t, network.Mainnet, r.Net.Active())
	assert.False(t, r.Session.Connected())
	assert.False(t, r.Session.PermissionGranted())
	assert.Nil(t, r.Balance.Snapshot().ConfirmedSats)
	assert.Nil(t, r.Balance.Snapshot().UnconfirmedSats)
	assert.Zero(t, r.Inscriptions.Len())
	assert.Equal(t, pipeline.StateIdle, r.Pipeline.State())
}

func TestSwitchToSameNetworkIsNoop(t *testing.T) {
	capability := stub.New("tb1qsame")
	r := newRoot(t, capability)
	connectAndLoad(t, r)

	r.SwitchNetwork(network.Testnet)

	assert.True(t, r.Session.Connected())
	assert.NotNil(t, r.Balance.Snapshot().ConfirmedSats)
}

func TestDisconnectKeepsNetwork(t *testing.T) {
	capability := stub.New("tb1qgone")
	r := newRoot(t, capability)
	connectAndLoad(t, r)

	r.Disconnect()

	assert.Equal(t, network.Testnet, r.Net.Active())
	assert.False(t, r.Session.Connected())
	assert.Nil(t, r.Balance.Snapshot().ConfirmedSats)
	assert.Zero(t, r.Inscriptions.Len())
}

func TestSwitchAbortsInFlightCreation(t *testing.T) {
	capability := newBlockingWallet("tb1qabort")
	r := newRoot(t, capability)
	connectAndLoad(t, r)

	done := make(chan error, 1)
	go func() {
		_, err := r.Pipeline.Create(context.Background(), pipeline.Draft{Content: "doomed"})
		done <- err
	}()
	<-capability.entered

	r.SwitchNetwork(network.Mainnet)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, pipeline.ErrAborted)
	case <-time.After(2 * time.Second):
		t.Fatal("creation did not observe the network switch")
	}
	assert.Empty(t, r.Pipeline.Created())
	assert.Equal(t, pipeline.StateIdle, r.Pipeline.State())
}
