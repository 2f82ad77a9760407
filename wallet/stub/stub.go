// Package stub is an in-process wallet capability with fixed data. It backs
// offline runs (no bridge daemon configured) and tests: prompts auto-approve
// and signing returns a deterministic result.
package stub

import (
	"context"
	"fmt"

	"ordinal-mint-tui/wallet"
)

// Capability implements wallet.Capability from in-memory fixtures.
type Capability struct {
	Addr         string
	Inscriptions []wallet.EnumeratedInscription

	// DenyPermissions makes the enumeration grant fail, for exercising the
	// denial path.
	DenyPermissions bool
	// CancelPrompts makes every prompt behave as if the user dismissed it.
	CancelPrompts bool
	// NativeCreation makes the stub behave like a wallet that creates and
	// broadcasts inscriptions itself.
	NativeCreation bool
}

// New creates a stub wallet holding the given address.
func New(addr string) *Capability {
	return &Capability{Addr: addr}
}

// GetAddress returns the fixed address for any purposes and network.
func (c *Capability) GetAddress(_ context.Context, _ []wallet.Purpose, _ string) (string, error) {
	if c.CancelPrompts {
		return "", wallet.ErrCanceled
	}
	return c.Addr, nil
}

// RequestPermissions auto-approves unless configured to deny.
func (c *Capability) RequestPermissions(_ context.Context) (bool, error) {
	if c.CancelPrompts {
		return false, wallet.ErrCanceled
	}
	return !c.DenyPermissions, nil
}

// EnumerateInscriptions pages over the fixture records.
func (c *Capability) EnumerateInscriptions(_ context.Context, offset, limit int) (wallet.EnumerationPage, error) {
	page := wallet.EnumerationPage{
		Total:  len(c.Inscriptions),
		Limit:  limit,
		Offset: offset,
	}
	if offset >= len(c.Inscriptions) {
		return page, nil
	}
	end := offset + limit
	if end > len(c.Inscriptions) {
		end = len(c.Inscriptions)
	}
	page.Items = append(page.Items, c.Inscriptions[offset:end]...)
	return page, nil
}

// CreatesNatively reports whether the stub plays a self-broadcasting wallet.
func (c *Capability) CreatesNatively() bool {
	return c.NativeCreation
}

// SignOrCreateInscription approves immediately with a deterministic signed
// artifact derived from the prepared one. In native mode it reports a
// deterministic txid as already broadcast.
func (c *Capability) SignOrCreateInscription(_ context.Context, req wallet.SignRequest) (wallet.SignResult, error) {
	if c.CancelPrompts {
		return wallet.SignResult{}, wallet.ErrCanceled
	}
	if c.NativeCreation {
		return wallet.SignResult{
			TxID:      fmt.Sprintf("txid:%s", req.Artifact),
			Broadcast: true,
		}, nil
	}
	return wallet.SignResult{
		SignedArtifact: fmt.Sprintf("signed:%s", req.Artifact),
	}, nil
}
