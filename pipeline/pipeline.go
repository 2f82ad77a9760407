// Package pipeline drives one ordinal creation from user content to a
// broadcast transaction: encode the payload, have the backend prepare an
// unsigned artifact, hand it to the wallet for the signing handshake, and
// broadcast the result.
package pipeline

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"ordinal-mint-tui/backend"
	"ordinal-mint-tui/balance"
	"ordinal-mint-tui/network"
	"ordinal-mint-tui/wallet"

	"github.com/charmbracelet/log"
)

// State is the pipeline's position in the creation flow.
type State int

const (
	StateIdle State = iota
	StateEncoding
	StateAwaitingBackendPreparation
	StateAwaitingWalletSignature
	StateBroadcasting
	StateCompleted
	StateCanceled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEncoding:
		return "encoding"
	case StateAwaitingBackendPreparation:
		return "awaiting backend preparation"
	case StateAwaitingWalletSignature:
		return "awaiting wallet signature"
	case StateBroadcasting:
		return "broadcasting"
	case StateCompleted:
		return "completed"
	case StateCanceled:
		return "canceled"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Precondition violations. All fail fast before any network call is made.
var (
	ErrInFlight       = errors.New("pipeline: a creation is already in flight")
	ErrNotConnected   = errors.New("pipeline: wallet not connected")
	ErrBalanceUnknown = errors.New("pipeline: confirmed balance unknown")
	ErrZeroBalance    = errors.New("pipeline: confirmed balance is zero")
)

// ErrAborted reports that the invocation was canceled from outside, either by
// the user dismissing the wallet prompt or by a network switch.
var ErrAborted = errors.New("pipeline: creation canceled")

// Status values for the created-ordinal log.
const (
	StatusCreated     = "created"
	StatusBroadcasted = "broadcasted"
)

// Draft is the user's ephemeral input, handed to Create by value and not
// retained afterward. A file takes precedence over the text content.
type Draft struct {
	Content  string
	FileName string
	FileData []byte
}

// CreatedOrdinal is one successful pipeline run, appended to the session's
// append-only creation log.
type CreatedOrdinal struct {
	ID           string
	ContentType  string
	ContentEcho  string
	Status       string
	CreatedAtIso string
}

// Pipeline is the creation state machine. At most one invocation may be
// between Encoding and Broadcasting at a time; a second Create is rejected
// synchronously. The generation counter lets a network switch abandon an
// in-flight invocation: every transition re-checks it before applying.
type Pipeline struct {
	mu  sync.Mutex
	gen uint64

	state   State
	cancel  context.CancelFunc
	created []CreatedOrdinal

	session *wallet.Session
	tracker *balance.Tracker
	backend *backend.Client
	cap     wallet.Capability
	net     *network.Context
	logger  *log.Logger
}

// New wires the pipeline to the session, the balance tracker, the backend
// client, and the wallet capability.
func New(session *wallet.Session, tracker *balance.Tracker, client *backend.Client, capability wallet.Capability, net *network.Context, logger *log.Logger) *Pipeline {
	return &Pipeline{
		session: session,
		tracker: tracker,
		backend: client,
		cap:     capability,
		net:     net,
		logger:  logger,
	}
}

// State returns the current pipeline state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Created returns a copy of the append-only creation log.
func (p *Pipeline) Created() []CreatedOrdinal {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]CreatedOrdinal, len(p.created))
	copy(out, p.created)
	return out
}

// Abort cancels an in-flight invocation, transitioning it to Canceled from
// its caller's point of view. Only the session root (network switch,
// disconnect) calls this.
func (p *Pipeline) Abort() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateIdle {
		return
	}
	p.gen++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.state = StateIdle
	p.logger.Warn("in-flight ordinal creation aborted")
}

// Create runs one creation to completion or cancellation. Preconditions are
// checked before any network call: wallet connected with a known address, and
// confirmed balance known and strictly greater than zero.
func (p *Pipeline) Create(ctx context.Context, draft Draft) (CreatedOrdinal, error) {
	addr, gen, err := p.begin()
	if err != nil {
		return CreatedOrdinal{}, err
	}

	ctx, cancel := context.WithCancel(ctx)
	if err := p.install(gen, cancel); err != nil {
		cancel()
		return CreatedOrdinal{}, err
	}
	defer p.finish(gen, cancel)

	// Encoding: exactly one payload kind, file takes precedence.
	payload, fileData, contentType, kind := encodeDraft(draft)
	token := p.net.WalletToken()
	p.logger.Info("encoding ordinal payload", "contentType", contentType, "kind", kind)

	native := false
	if nc, ok := p.cap.(wallet.NativeCreator); ok {
		native = nc.CreatesNatively()
	}

	if err := p.advance(gen, StateAwaitingBackendPreparation); err != nil {
		return CreatedOrdinal{}, err
	}
	prep := backend.PrepareRequest{
		Content:     draft.Content,
		ContentType: contentType,
		FileData:    fileData,
		Address:     addr,
		Network:     token,
	}
	// Wallets that broadcast natively get an inscription request; the rest
	// get an unsigned transaction to sign.
	var artifact string
	if native {
		artifact, err = p.backend.CreateInscription(ctx, prep)
	} else {
		artifact, err = p.backend.Prepare(ctx, prep)
	}
	if err != nil {
		return CreatedOrdinal{}, p.fail(gen, err)
	}

	if err := p.advance(gen, StateAwaitingWalletSignature); err != nil {
		return CreatedOrdinal{}, err
	}
	result, err := p.cap.SignOrCreateInscription(ctx, wallet.SignRequest{
		Network:     token,
		Address:     addr,
		ContentType: contentType,
		Payload:     payload,
		PayloadKind: kind,
		Artifact:    artifact,
	})
	if err != nil {
		if errors.Is(err, wallet.ErrCanceled) || errors.Is(err, context.Canceled) {
			return CreatedOrdinal{}, p.cancelTerminal(gen)
		}
		return CreatedOrdinal{}, p.fail(gen, err)
	}

	txid := result.TxID
	status := StatusCreated
	if !result.Broadcast {
		if err := p.advance(gen, StateBroadcasting); err != nil {
			return CreatedOrdinal{}, err
		}
		txid, err = p.backend.Broadcast(ctx, result.SignedArtifact, token)
		if err != nil {
			return CreatedOrdinal{}, p.fail(gen, err)
		}
		status = StatusBroadcasted
	}

	created := CreatedOrdinal{
		ID:           txid,
		ContentType:  contentType,
		ContentEcho:  draft.Content,
		Status:       status,
		CreatedAtIso: time.Now().UTC().Format(time.RFC3339),
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen != gen {
		return CreatedOrdinal{}, ErrAborted
	}
	p.state = StateCompleted
	p.created = append(p.created, created)
	p.logger.Info("ordinal created", "txid", txid, "status", status)
	return created, nil
}

// begin checks preconditions and claims the single in-flight slot.
func (p *Pipeline) begin() (string, uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case StateIdle, StateCompleted, StateCanceled, StateFailed:
	default:
		return "", 0, ErrInFlight
	}
	if !p.session.Connected() {
		return "", 0, ErrNotConnected
	}
	addr, _ := p.session.Address()
	snap := p.tracker.Snapshot()
	if snap.ConfirmedSats == nil {
		return "", 0, ErrBalanceUnknown
	}
	if *snap.ConfirmedSats <= 0 {
		return "", 0, ErrZeroBalance
	}

	p.state = StateEncoding
	return addr, p.gen, nil
}

// install publishes the invocation's cancel func so Abort can interrupt a
// parked wallet handshake. An Abort that landed after begin released the lock
// bumped the generation, so the stale invocation must not install anything.
func (p *Pipeline) install(gen uint64, cancel context.CancelFunc) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen != gen {
		return ErrAborted
	}
	p.cancel = cancel
	return nil
}

// advance moves to the next state unless the invocation was aborted.
func (p *Pipeline) advance(gen uint64, next State) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen != gen {
		return ErrAborted
	}
	p.state = next
	return nil
}

// fail moves to the Failed terminal state carrying the reported reason.
func (p *Pipeline) fail(gen uint64, cause error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen != gen {
		return ErrAborted
	}
	p.state = StateFailed
	p.logger.Error("ordinal creation failed", "state", p.state, "err", cause)
	return fmt.Errorf("create ordinal: %w", cause)
}

// cancelTerminal moves to the Canceled terminal state.
func (p *Pipeline) cancelTerminal(gen uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen == gen {
		p.state = StateCanceled
		p.logger.Info("ordinal creation canceled by user")
	}
	return ErrAborted
}

// finish releases the in-flight slot so the next Create is accepted. Terminal
// states are reported to the caller through the return value; the machine
// itself returns to Idle.
func (p *Pipeline) finish(gen uint64, cancel context.CancelFunc) {
	cancel()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen != gen {
		return
	}
	p.state = StateIdle
	p.cancel = nil
}

// encodeDraft picks exactly one payload kind. A binary file becomes a
// base64-encoded payload tagged with the file's content type; otherwise the
// raw text rides as text/plain.
func encodeDraft(draft Draft) (payload, fileData, contentType string, kind wallet.PayloadKind) {
	if len(draft.FileData) > 0 {
		encoded := base64.StdEncoding.EncodeToString(draft.FileData)
		return encoded, encoded, detectContentType(draft.FileName, draft.FileData), wallet.KindBase64
	}
	return draft.Content, "", "text/plain", wallet.KindText
}

// detectContentType prefers the file extension and falls back on sniffing.
func detectContentType(name string, data []byte) string {
	if ext := filepath.Ext(name); ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}
	return http.DetectContentType(data)
}
