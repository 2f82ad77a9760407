package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"ordinal-mint-tui/helpers"
	"ordinal-mint-tui/network"

	"github.com/charmbracelet/log"
)

// Purpose declares what an address grant will be used for.
type Purpose string

const (
	PurposeOrdinals Purpose = "ordinals"
	PurposePayment  Purpose = "payment"
)

// PayloadKind tells the wallet how the inscription payload is encoded.
type PayloadKind string

const (
	KindText   PayloadKind = "text"
	KindBase64 PayloadKind = "base64"
)

// ErrCanceled is returned when the user dismisses a wallet prompt. It is a
// cancellation notice, not a failure; callers must not retry automatically.
var ErrCanceled = errors.New("wallet: canceled by user")

// ErrPermissionDenied is returned when the user refuses the inscription
// enumeration grant. The user must re-invoke explicitly.
var ErrPermissionDenied = errors.New("wallet: inscription permission denied")

// EnumeratedInscription is a raw record from the wallet's enumeration
// capability, before preview-URL derivation.
type EnumeratedInscription struct {
	ID                 string `json:"inscriptionId"`
	Number             string `json:"inscriptionNumber"`
	ContentType        string `json:"contentType"`
	GenesisTransaction string `json:"genesisTransaction"`
	Timestamp          int64  `json:"timestamp"`
}

// EnumerationPage is one offset-based page of inscription records.
type EnumerationPage struct {
	Total  int                     `json:"total"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
	Items  []EnumeratedInscription `json:"items"`
}

// SignRequest carries the backend-prepared artifact plus the original content
// into the wallet's signing/inscription capability.
type SignRequest struct {
	Network     string      `json:"network"`
	Address     string      `json:"address"`
	ContentType string      `json:"contentType"`
	Payload     string      `json:"payload"`
	PayloadKind PayloadKind `json:"payloadKind"`
	Artifact    string      `json:"artifact"`
}

// SignResult is the wallet's answer to a sign request. Broadcast is true when
// the wallet broadcast the transaction itself, in which case TxID is final
// and no backend broadcast step is needed.
type SignResult struct {
	TxID           string `json:"txid"`
	SignedArtifact string `json:"signedArtifact"`
	Broadcast      bool   `json:"broadcast"`
}

// Capability is the external wallet surface: address derivation, permission
// grants, inscription enumeration, and the signing handshake. Signing blocks
// for a user-driven, unbounded duration; the only way out is a result,
// ErrCanceled, or context cancellation.
type Capability interface {
	GetAddress(ctx context.Context, purposes []Purpose, networkToken string) (string, error)
	RequestPermissions(ctx context.Context) (bool, error)
	EnumerateInscriptions(ctx context.Context, offset, limit int) (EnumerationPage, error)
	SignOrCreateInscription(ctx context.Context, req SignRequest) (SignResult, error)
}

// NativeCreator is optionally implemented by capabilities whose wallet builds
// and broadcasts the inscription transaction itself. Such wallets are handed
// an inscription request instead of an unsigned transaction to sign.
type NativeCreator interface {
	CreatesNatively() bool
}

// Session is the single wallet session for the running instance. The
// generation counter invalidates in-flight work when the session is reset:
// anything that started against an older generation discards its result.
type Session struct {
	mu  sync.Mutex
	gen uint64

	address           string
	connected         bool
	permissionGranted bool
}

// NewSession creates an empty, unconnected session.
func NewSession() *Session {
	return &Session{}
}

// Address returns the session address and whether the session is connected.
func (s *Session) Address() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.address, s.connected
}

// Connected reports whether a connect has succeeded since the last reset.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// PermissionGranted reports whether the inscription grant is held.
func (s *Session) PermissionGranted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permissionGranted
}

// Generation returns the current session generation.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Reset clears the session and invalidates in-flight connect attempts.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.address = ""
	s.connected = false
	s.permissionGranted = false
}

// ConnectionManager acquires addresses and capability grants from the wallet
// on the active network.
type ConnectionManager struct {
	session *Session
	cap     Capability
	net     *network.Context
	logger  *log.Logger
}

// NewConnectionManager wires the manager to the session, the wallet
// capability, and the active network context.
func NewConnectionManager(session *Session, capability Capability, net *network.Context, logger *log.Logger) *ConnectionManager {
	return &ConnectionManager{session: session, cap: capability, net: net, logger: logger}
}

// Connect requests an ordinals+payment address from the wallet and populates
// the session on success. A user cancellation surfaces as ErrCanceled with
// the session left unconnected. The result is discarded if the session was
// reset while the prompt was open.
func (m *ConnectionManager) Connect(ctx context.Context) (string, error) {
	gen := m.session.Generation()
	token := m.net.WalletToken()

	addr, err := m.cap.GetAddress(ctx, []Purpose{PurposeOrdinals, PurposePayment}, token)
	if err != nil {
		if errors.Is(err, ErrCanceled) {
			m.logger.Info("wallet connection canceled by user")
			return "", ErrCanceled
		}
		m.logger.Error("wallet connection failed", "err", err)
		return "", fmt.Errorf("connect wallet: %w", err)
	}
	if !helpers.IsValidBitcoinAddress(addr) {
		m.logger.Warn("wallet returned an unusual address", "address", addr)
	}

	m.session.mu.Lock()
	defer m.session.mu.Unlock()
	if m.session.gen != gen {
		m.logger.Warn("discarding stale wallet connection", "address", addr)
		return "", ErrCanceled
	}
	m.session.address = addr
	m.session.connected = true
	m.logger.Info("wallet connected", "address", addr, "network", token)
	return addr, nil
}

// RequestInscriptionCapability asks for the enumeration grant. Idempotent:
// returns immediately when already granted. On denial it returns
// ErrPermissionDenied and callers must not retry without user action.
func (m *ConnectionManager) RequestInscriptionCapability(ctx context.Context) error {
	if m.session.PermissionGranted() {
		return nil
	}
	gen := m.session.Generation()

	granted, err := m.cap.RequestPermissions(ctx)
	if err != nil {
		return fmt.Errorf("request wallet permissions: %w", err)
	}
	if !granted {
		m.logger.Warn("inscription permission denied")
		return ErrPermissionDenied
	}

	m.session.mu.Lock()
	defer m.session.mu.Unlock()
	if m.session.gen != gen {
		return ErrPermissionDenied
	}
	m.session.permissionGranted = true
	return nil
}
