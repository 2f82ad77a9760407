package wallet

import (
	"context"
	"errors"
	"io"
	"testing"

	"ordinal-mint-tui/network"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCapability scripts the wallet's answers per call.
type fakeCapability struct {
	addr            string
	addressErr      error
	permGranted     bool
	permErr         error
	permCalls       int
	gotPurposes     []Purpose
	gotNetworkToken string
}

func (f *fakeCapability) GetAddress(_ context.Context, purposes []Purpose, token string) (string, error) {
	f.gotPurposes = purposes
	f.gotNetworkToken = token
	if f.addressErr != nil {
		return "", f.addressErr
	}
	return f.addr, nil
}

func (f *fakeCapability) RequestPermissions(_ context.Context) (bool, error) {
	f.permCalls++
	return f.permGranted, f.permErr
}

func (f *fakeCapability) EnumerateInscriptions(_ context.Context, _, _ int) (EnumerationPage, error) {
	return EnumerationPage{}, nil
}

func (f *fakeCapability) SignOrCreateInscription(_ context.Context, _ SignRequest) (SignResult, error) {
	return SignResult{}, nil
}

func newManager(capability Capability, n network.Network) (*ConnectionManager, *Session) {
	sess := NewSession()
	net := network.NewContext(n, network.Endpoints{})
	return NewConnectionManager(sess, capability, net, log.New(io.Discard)), sess
}

func TestConnect(t *testing.T) {
	cap := &fakeCapability{addr: "bc1qordinals"}
	mgr, sess := newManager(cap, network.Testnet)

	addr, err := mgr.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bc1qordinals", addr)

	got, connected := sess.Address()
	assert.True(t, connected)
	assert.Equal(t, "bc1qordinals", got)

	// Both custody purposes are declared, on the active network.
	assert.Equal(t, []Purpose{PurposeOrdinals, PurposePayment}, cap.gotPurposes)
	assert.Equal(t, "Testnet", cap.gotNetworkToken)
}

func TestConnectCanceled(t *testing.T) {
	mgr, sess := newManager(&fakeCapability{addressErr: ErrCanceled}, network.Mainnet)

	_, err := mgr.Connect(context.Background())
	assert.ErrorIs(t, err, ErrCanceled)
	assert.False(t, sess.Connected())
}

func TestConnectCapabilityFailure(t *testing.T) {
	mgr, sess := newManager(&fakeCapability{addressErr: errors.New("extension missing")}, network.Mainnet)

	_, err := mgr.Connect(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCanceled)
	assert.False(t, sess.Connected())
}

func TestConnectDiscardedAfterReset(t *testing.T) {
	block := make(chan struct{})
	cap := &blockingCapability{addr: "bc1qlate", entered: make(chan struct{}, 1), release: block}
	mgr, sess := newManager(cap, network.Mainnet)

	done := make(chan error, 1)
	go func() {
		_, err := mgr.Connect(context.Background())
		done <- err
	}()

	<-cap.entered
	sess.Reset()
	close(block)

	assert.ErrorIs(t, <-done, ErrCanceled)
	assert.False(t, sess.Connected())
}

func TestRequestInscriptionCapability(t *testing.T) {
	cap := &fakeCapability{addr: "bc1q", permGranted: true}
	mgr, sess := newManager(cap, network.Mainnet)

	require.NoError(t, mgr.RequestInscriptionCapability(context.Background()))
	assert.True(t, sess.PermissionGranted())

	// Idempotent: a held grant never re-prompts.
	require.NoError(t, mgr.RequestInscriptionCapability(context.Background()))
	assert.Equal(t, 1, cap.permCalls)
}

func TestRequestInscriptionCapabilityDenied(t *testing.T) {
	cap := &fakeCapability{addr: "bc1q", permGranted: false}
	mgr, sess := newManager(cap, network.Mainnet)

	err := mgr.RequestInscriptionCapability(context.Background())
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.False(t, sess.PermissionGranted())

	// Denial is not cached: a later explicit user re-invoke prompts again.
	_ = mgr.RequestInscriptionCapability(context.Background())
	assert.Equal(t, 2, cap.permCalls)
}

func TestSessionReset(t *testing.T) {
	mgr, sess := newManager(&fakeCapability{addr: "bc1q", permGranted: true}, network.Mainnet)
	_, err := mgr.Connect(context.Background())
	require.NoError(t, err)
	require.NoError(t, mgr.RequestInscriptionCapability(context.Background()))

	sess.Reset()
	assert.False(t, sess.Connected())
	assert.False(t, sess.PermissionGranted())
	addr, _ := sess.Address()
	assert.Empty(t, addr)
}

// blockingCapability parks GetAddress until released, to model a wallet
// prompt that is still open when the session is torn down.
type blockingCapability struct {
	addr    string
	entered chan struct{}
	release chan struct{}
}

func (b *blockingCapability) GetAddress(_ context.Context, _ []Purpose, _ string) (string, error) {
	b.entered <- struct{}{}
	<-b.release
	return b.addr, nil
}

func (b *blockingCapability) RequestPermissions(_ context.Context) (bool, error) {
	return true, nil
}

func (b *blockingCapability) EnumerateInscriptions(_ context.Context, _, _ int) (EnumerationPage, error) {
	return EnumerationPage{}, nil
}

func (b *blockingCapability) SignOrCreateInscription(_ context.Context, _ SignRequest) (SignResult, error) {
	return SignResult{}, nil
}
