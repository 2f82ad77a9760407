// Package bridge implements the wallet capability over a websocket to an
// external wallet daemon. The daemon owns keys and user prompts; this client
// only correlates requests with responses. The browser original talks to an
// injected provider object; the terminal app talks to a local socket instead.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"ordinal-mint-tui/wallet"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// codeUserRejection is the error code the daemon reports when the user
// dismisses a prompt.
const codeUserRejection = 4001

type request struct {
	ID     uint64      `json:"id"`
	Method string      `json:"method"`
	Params interface{} `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type response struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *rpcError       `json:"error,omitempty"`
}

// Client speaks the bridge protocol. Safe for concurrent calls; responses are
// matched to callers by request id. There is no call timeout: wallet prompts
// stay open until the user acts or the caller's context is canceled.
type Client struct {
	conn   *websocket.Conn
	logger *log.Logger

	nextID  atomic.Uint64
	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[uint64]chan response
	closed  bool
	readErr error
}

var _ wallet.Capability = (*Client)(nil)

// Dial connects to the wallet daemon at url (ws:// or wss://).
func Dial(ctx context.Context, url string, logger *log.Logger) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial wallet bridge: %w", err)
	}
	c := &Client{
		conn:    conn,
		logger:  logger,
		pending: make(map[uint64]chan response),
	}
	go c.readLoop()
	return c, nil
}

// Close tears down the connection and fails all outstanding calls.
func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return c.conn.Close()
}

func (c *Client) readLoop() {
	for {
		var resp response
		if err := c.conn.ReadJSON(&resp); err != nil {
			c.mu.Lock()
			c.readErr = err
			for id, ch := range c.pending {
				close(ch)
				delete(c.pending, id)
			}
			closed := c.closed
			c.mu.Unlock()
			if !closed {
				c.logger.Error("wallet bridge connection lost", "err", err)
			}
			return
		}

		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		if ok {
			delete(c.pending, resp.ID)
		}
		c.mu.Unlock()
		if ok {
			ch <- resp
		}
	}
}

// call issues one request and decodes the result into out. A user rejection
// surfaces as wallet.ErrCanceled.
func (c *Client) call(ctx context.Context, method string, params, out interface{}) error {
	id := c.nextID.Add(1)
	ch := make(chan response, 1)

	c.mu.Lock()
	if c.readErr != nil {
		err := c.readErr
		c.mu.Unlock()
		return fmt.Errorf("wallet bridge: %w", err)
	}
	c.pending[id] = ch
	c.mu.Unlock()

	c.writeMu.Lock()
	err := c.conn.WriteJSON(request{ID: id, Method: method, Params: params})
	c.writeMu.Unlock()
	if err != nil {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return fmt.Errorf("wallet bridge %s: %w", method, err)
	}

	select {
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return ctx.Err()
	case resp, ok := <-ch:
		if !ok {
			return fmt.Errorf("wallet bridge %s: connection lost", method)
		}
		if resp.Error != nil {
			if resp.Error.Code == codeUserRejection {
				return wallet.ErrCanceled
			}
			return fmt.Errorf("wallet bridge %s: %s (code %d)", method, resp.Error.Message, resp.Error.Code)
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(resp.Result, out); err != nil {
			return fmt.Errorf("wallet bridge %s: decode result: %w", method, err)
		}
		return nil
	}
}

type getAddressParams struct {
	Purposes []wallet.Purpose `json:"purposes"`
	Message  string           `json:"message"`
	Network  string           `json:"network"`
}

type getAddressResult struct {
	Addresses []struct {
		Address string `json:"address"`
		Purpose string `json:"purpose"`
	} `json:"addresses"`
}

// GetAddress asks the daemon for an address serving the given purposes.
func (c *Client) GetAddress(ctx context.Context, purposes []wallet.Purpose, networkToken string) (string, error) {
	var result getAddressResult
	params := getAddressParams{
		Purposes: purposes,
		Message:  "Address for receiving ordinals and payment",
		Network:  networkToken,
	}
	if err := c.call(ctx, "wallet_getAddress", params, &result); err != nil {
		return "", err
	}
	if len(result.Addresses) == 0 {
		return "", fmt.Errorf("wallet bridge: no address returned")
	}
	return result.Addresses[0].Address, nil
}

type permissionsResult struct {
	Granted bool `json:"granted"`
}

// RequestPermissions asks for the inscription enumeration grant.
func (c *Client) RequestPermissions(ctx context.Context) (bool, error) {
	var result permissionsResult
	if err := c.call(ctx, "wallet_requestPermissions", nil, &result); err != nil {
		return false, err
	}
	return result.Granted, nil
}

type enumerateParams struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// EnumerateInscriptions fetches one page of the wallet's inscriptions.
func (c *Client) EnumerateInscriptions(ctx context.Context, offset, limit int) (wallet.EnumerationPage, error) {
	var page wallet.EnumerationPage
	if err := c.call(ctx, "ord_getInscriptions", enumerateParams{Offset: offset, Limit: limit}, &page); err != nil {
		return wallet.EnumerationPage{}, err
	}
	return page, nil
}

// SignOrCreateInscription runs the signing handshake. Blocks until the user
// signs, cancels, or ctx is canceled.
func (c *Client) SignOrCreateInscription(ctx context.Context, req wallet.SignRequest) (wallet.SignResult, error) {
	var result wallet.SignResult
	if err := c.call(ctx, "ord_signOrCreateInscription", req, &result); err != nil {
		return wallet.SignResult{}, err
	}
	return result, nil
}
