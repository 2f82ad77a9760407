package network

import (
	"fmt"
	"sync"
)

// Network identifies the active Bitcoin chain.
type Network string

const (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
)

// Endpoints holds the per-network service bases. Zero values fall back to the
// public defaults used by the hosted deployment.
type Endpoints struct {
	EsploraMainnet     string
	EsploraTestnet     string
	ContentHostMainnet string
	ContentHostTestnet string
}

const (
	defaultEsploraMainnet     = "https://blockstream.info/api"
	defaultEsploraTestnet     = "https://blockstream.info/testnet/api"
	defaultContentHostMainnet = "https://ord.xverse.app/content"
	defaultContentHostTestnet = "https://ord-testnet.xverse.app/content"
)

// Context holds the active chain selection and the endpoints derived from it.
// Switching the selection is the session root's job; everything else reads.
type Context struct {
	mu        sync.Mutex
	active    Network
	endpoints Endpoints
}

// NewContext creates a network context with the given starting selection.
func NewContext(active Network, endpoints Endpoints) *Context {
	if endpoints.EsploraMainnet == "" {
		endpoints.EsploraMainnet = defaultEsploraMainnet
	}
	if endpoints.EsploraTestnet == "" {
		endpoints.EsploraTestnet = defaultEsploraTestnet
	}
	if endpoints.ContentHostMainnet == "" {
		endpoints.ContentHostMainnet = defaultContentHostMainnet
	}
	if endpoints.ContentHostTestnet == "" {
		endpoints.ContentHostTestnet = defaultContentHostTestnet
	}
	if active != Testnet {
		active = Mainnet
	}
	return &Context{active: active, endpoints: endpoints}
}

// Active returns the currently selected network.
func (c *Context) Active() Network {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// SetActive switches the chain selection. Only the session root calls this,
// as part of the atomic network-switch reset.
func (c *Context) SetActive(n Network) {
	if n != Testnet {
		n = Mainnet
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = n
}

// EsploraBase returns the UTXO-data endpoint base for the active network.
func (c *Context) EsploraBase() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == Testnet {
		return c.endpoints.EsploraTestnet
	}
	return c.endpoints.EsploraMainnet
}

// WalletToken returns the network token the wallet capability expects,
// matching the casing used by sats-connect style providers.
func (c *Context) WalletToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == Testnet {
		return "Testnet"
	}
	return "Mainnet"
}

// ContentURL derives the preview URL for an inscription on the active network.
func (c *Context) ContentURL(inscriptionID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	host := c.endpoints.ContentHostMainnet
	if c.active == Testnet {
		host = c.endpoints.ContentHostTestnet
	}
	return fmt.Sprintf("%s/%s", host, inscriptionID)
}
