package pipeline

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"ordinal-mint-tui/backend"
	"ordinal-mint-tui/balance"
	"ordinal-mint-tui/network"
	"ordinal-mint-tui/wallet"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// signCapability scripts the wallet side of a creation run.
type signCapability struct {
	result  wallet.SignResult
	signErr error

	// When set, SignOrCreateInscription parks until released or the context
	// is canceled.
	entered chan struct{}
	release chan struct{}

	lastReq wallet.SignRequest
}

func (c *signCapability) GetAddress(_ context.Context, _ []wallet.Purpose, _ string) (string, error) {
	return "tb1qcreator", nil
}

func (c *signCapability) RequestPermissions(_ context.Context) (bool, error) {
	return true, nil
}

func (c *signCapability) EnumerateInscriptions(_ context.Context, _, _ int) (wallet.EnumerationPage, error) {
	return wallet.EnumerationPage{}, nil
}

func (c *signCapability) SignOrCreateInscription(ctx context.Context, req wallet.SignRequest) (wallet.SignResult, error) {
	c.lastReq = req
	if c.entered != nil {
		close(c.entered)
		select {
		case <-c.release:
		case <-ctx.Done():
			return wallet.SignResult{}, ctx.Err()
		}
	}
	if c.signErr != nil {
		return wallet.SignResult{}, c.signErr
	}
	return c.result, nil
}

// nativeSignCapability plays a wallet that creates and broadcasts the
// inscription itself.
type nativeSignCapability struct {
	signCapability
}

func (c *nativeSignCapability) CreatesNatively() bool { return true }

type harness struct {
	pipeline *Pipeline
	session  *wallet.Session
	tracker  *balance.Tracker
	prepares *int32
	creates  *int32
	casts    *int32
}

// newHarness wires a pipeline against a scripted wallet and a fake backend
// that counts prepare and broadcast calls.
func newHarness(t *testing.T, capability wallet.Capability, backendStatus int) harness {
	t.Helper()
	logger := log.New(io.Discard)

	var prepares, creates, casts int32
	mux := http.NewServeMux()
	mux.HandleFunc("/prepare", func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&prepares, 1)
		if backendStatus != http.StatusOK {
			w.WriteHeader(backendStatus)
			w.Write([]byte(`{"error":"insufficient funds for inscription"}`))
			return
		}
		w.Write([]byte(`{"preparedArtifact":"psbt-unsigned"}`))
	})
	mux.HandleFunc("/create-inscription", func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&creates, 1)
		if backendStatus != http.StatusOK {
			w.WriteHeader(backendStatus)
			w.Write([]byte(`{"error":"insufficient funds for inscription"}`))
			return
		}
		w.Write([]byte(`{"inscriptionRequest":"insc-req"}`))
	})
	mux.HandleFunc("/broadcast", func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&casts, 1)
		w.Write([]byte(`{"txid":"txid-final"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	esplora := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"chain_stats":{"funded_txo_sum":500000,"spent_txo_sum":200000},"mempool_stats":{"funded_txo_sum":0,"spent_txo_sum":0}}`))
	}))
	t.Cleanup(esplora.Close)

	net := network.NewContext(network.Testnet, network.Endpoints{EsploraTestnet: esplora.URL})
	sess := wallet.NewSession()
	tracker := balance.NewTracker(net, logger)
	client := backend.NewClient(srv.URL, logger)

	return harness{
		pipeline: New(sess, tracker, client, capability, net, logger),
		session:  sess,
		tracker:  tracker,
		prepares: &prepares,
		creates:  &creates,
		casts:    &casts,
	}
}

// connect brings the session into the state a real connect flow produces.
func (h harness) connect(t *testing.T, capability wallet.Capability) {
	t.Helper()
	net := network.NewContext(network.Testnet, network.Endpoints{})
	conn := wallet.NewConnectionManager(h.session, capability, net, log.New(io.Discard))
	addr, err := conn.Connect(context.Background())
	require.NoError(t, err)
	require.NoError(t, h.tracker.Refresh(context.Background(), addr))
}

func TestCreateTextBroadcastViaBackend(t *testing.T) {
	capability := &signCapability{result: wallet.SignResult{SignedArtifact: "psbt-signed"}}
	h := newHarness(t, capability, http.StatusOK)
	h.connect(t, capability)

	created, err := h.pipeline.Create(context.Background(), Draft{Content: "hello ordinals"})
	require.NoError(t, err)

	assert.Equal(t, "txid-final", created.ID)
	assert.Equal(t, StatusBroadcasted, created.Status)
	assert.Equal(t, "text/plain", created.ContentType)
	assert.Equal(t, "hello ordinals", created.ContentEcho)
	assert.NotEmpty(t, created.CreatedAtIso)

	assert.Equal(t, int32(1), atomic.LoadInt32(h.prepares))
	assert.Equal(t, int32(1), atomic.LoadInt32(h.casts))

	// The wallet saw the prepared artifact and the text payload untouched.
	assert.Equal(t, "psbt-unsigned", capability.lastReq.Artifact)
	assert.Equal(t, wallet.KindText, capability.lastReq.PayloadKind)
	assert.Equal(t, "hello ordinals", capability.lastReq.Payload)
	assert.Equal(t, "Testnet", capability.lastReq.Network)

	assert.Len(t, h.pipeline.Created(), 1)
	assert.Equal(t, StateIdle, h.pipeline.State())
}

func TestCreateWalletBroadcastsNatively(t *testing.T) {
	capability := &signCapability{result: wallet.SignResult{TxID: "txid-native", Broadcast: true}}
	h := newHarness(t, capability, http.StatusOK)
	h.connect(t, capability)

	created, err := h.pipeline.Create(context.Background(), Draft{Content: "native"})
	require.NoError(t, err)

	assert.Equal(t, "txid-native", created.ID)
	assert.Equal(t, StatusCreated, created.Status)
	assert.Equal(t, int32(0), atomic.LoadInt32(h.casts))
}

func TestCreateNativeCapabilityGetsInscriptionRequest(t *testing.T) {
	capability := &nativeSignCapability{signCapability{
		result: wallet.SignResult{TxID: "txid-native", Broadcast: true},
	}}
	h := newHarness(t, capability, http.StatusOK)
	h.connect(t, capability)

	created, err := h.pipeline.Create(context.Background(), Draft{Content: "native"})
	require.NoError(t, err)

	assert.Equal(t, "txid-native", created.ID)
	assert.Equal(t, StatusCreated, created.Status)
	assert.Equal(t, "insc-req", capability.lastReq.Artifact)
	assert.Equal(t, int32(1), atomic.LoadInt32(h.creates))
	assert.Equal(t, int32(0), atomic.LoadInt32(h.prepares))
	assert.Equal(t, int32(0), atomic.LoadInt32(h.casts))
}

func TestCreateFilePrecedence(t *testing.T) {
	capability := &signCapability{result: wallet.SignResult{TxID: "txid-file", Broadcast: true}}
	h := newHarness(t, capability, http.StatusOK)
	h.connect(t, capability)

	data := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	created, err := h.pipeline.Create(context.Background(), Draft{
		Content:  "ignored when a file is present",
		FileName: "pixel.png",
		FileData: data,
	})
	require.NoError(t, err)

	assert.Equal(t, "image/png", created.ContentType)
	assert.Equal(t, wallet.KindBase64, capability.lastReq.PayloadKind)
	assert.NotEqual(t, "text/plain", capability.lastReq.ContentType)
}

func TestCreatePreconditions(t *testing.T) {
	capability := &signCapability{}
	h := newHarness(t, capability, http.StatusOK)

	// Not connected: rejected before any network call.
	_, err := h.pipeline.Create(context.Background(), Draft{Content: "x"})
	assert.ErrorIs(t, err, ErrNotConnected)

	// Connected but balance never fetched.
	net := network.NewContext(network.Testnet, network.Endpoints{})
	conn := wallet.NewConnectionManager(h.session, capability, net, log.New(io.Discard))
	_, err = conn.Connect(context.Background())
	require.NoError(t, err)
	_, err = h.pipeline.Create(context.Background(), Draft{Content: "x"})
	assert.ErrorIs(t, err, ErrBalanceUnknown)

	assert.Equal(t, int32(0), atomic.LoadInt32(h.prepares))
	assert.Equal(t, StateIdle, h.pipeline.State())
}

func TestCreateZeroBalance(t *testing.T) {
	capability := &signCapability{}
	h := newHarness(t, capability, http.StatusOK)

	esplora := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"chain_stats":{"funded_txo_sum":100,"spent_txo_sum":100},"mempool_stats":{"funded_txo_sum":0,"spent_txo_sum":0}}`))
	}))
	defer esplora.Close()

	net := network.NewContext(network.Testnet, network.Endpoints{EsploraTestnet: esplora.URL})
	logger := log.New(io.Discard)
	tracker := balance.NewTracker(net, logger)
	conn := wallet.NewConnectionManager(h.session, capability, net, logger)
	addr, err := conn.Connect(context.Background())
	require.NoError(t, err)
	require.NoError(t, tracker.Refresh(context.Background(), addr))

	p := New(h.session, tracker, backend.NewClient("http://127.0.0.1:0", logger), capability, net, logger)
	_, err = p.Create(context.Background(), Draft{Content: "x"})
	assert.ErrorIs(t, err, ErrZeroBalance)
}

func TestCreateSingleFlight(t *testing.T) {
	capability := &signCapability{
		entered: make(chan struct{}),
		release: make(chan struct{}),
		result:  wallet.SignResult{TxID: "txid-slow", Broadcast: true},
	}
	h := newHarness(t, capability, http.StatusOK)
	h.connect(t, capability)

	done := make(chan error, 1)
	go func() {
		_, err := h.pipeline.Create(context.Background(), Draft{Content: "first"})
		done <- err
	}()
	<-capability.entered

	_, err := h.pipeline.Create(context.Background(), Draft{Content: "second"})
	assert.ErrorIs(t, err, ErrInFlight)

	close(capability.release)
	require.NoError(t, <-done)
	assert.Len(t, h.pipeline.Created(), 1)
}

func TestCreateUserCancel(t *testing.T) {
	capability := &signCapability{signErr: wallet.ErrCanceled}
	h := newHarness(t, capability, http.StatusOK)
	h.connect(t, capability)

	_, err := h.pipeline.Create(context.Background(), Draft{Content: "nope"})
	assert.ErrorIs(t, err, ErrAborted)
	assert.Empty(t, h.pipeline.Created())

	// A cancellation is not terminal for the session: the next create runs.
	capability.signErr = nil
	capability.result = wallet.SignResult{TxID: "txid-retry", Broadcast: true}
	created, err := h.pipeline.Create(context.Background(), Draft{Content: "retry"})
	require.NoError(t, err)
	assert.Equal(t, "txid-retry", created.ID)
}

func TestCreateBackendFailureCarriesReason(t *testing.T) {
	capability := &signCapability{}
	h := newHarness(t, capability, http.StatusUnprocessableEntity)
	h.connect(t, capability)

	_, err := h.pipeline.Create(context.Background(), Draft{Content: "x"})
	require.Error(t, err)

	var be *backend.Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, http.StatusUnprocessableEntity, be.Status)
	assert.Equal(t, "insufficient funds for inscription", be.Reason)
	assert.Equal(t, StateIdle, h.pipeline.State())
}

func TestAbortWhileAwaitingSignature(t *testing.T) {
	capability := &signCapability{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	h := newHarness(t, capability, http.StatusOK)
	h.connect(t, capability)

	done := make(chan error, 1)
	go func() {
		_, err := h.pipeline.Create(context.Background(), Draft{Content: "doomed"})
		done <- err
	}()
	<-capability.entered

	h.pipeline.Abort()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrAborted)
	case <-time.After(2 * time.Second):
		t.Fatal("create did not observe the abort")
	}
	assert.Equal(t, StateIdle, h.pipeline.State())
	assert.Empty(t, h.pipeline.Created())
}

func TestAbortBetweenBeginAndCancelInstall(t *testing.T) {
	capability := &signCapability{result: wallet.SignResult{SignedArtifact: "psbt-signed"}}
	h := newHarness(t, capability, http.StatusOK)
	h.connect(t, capability)

	_, gen, err := h.pipeline.begin()
	require.NoError(t, err)

	// Abort lands before the invocation publishes its cancel func.
	h.pipeline.Abort()

	_, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.ErrorIs(t, h.pipeline.install(gen, cancel), ErrAborted)

	h.pipeline.mu.Lock()
	assert.Nil(t, h.pipeline.cancel)
	h.pipeline.mu.Unlock()
	assert.Equal(t, StateIdle, h.pipeline.State())

	// The slot is free again for a fresh invocation.
	_, err = h.pipeline.Create(context.Background(), Draft{Content: "retry"})
	require.NoError(t, err)
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "image/png", detectContentType("a.png", nil))
	assert.Equal(t, "text/plain; charset=utf-8", detectContentType("noext", []byte("plain words")))
}
