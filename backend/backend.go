// Package backend is the client for the transaction-construction service.
// The service owns fee logic and transaction format; this client only moves
// JSON and reports failures with the backend's own reason.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Error is a non-2xx response from the preparation service. The reason is
// whatever the backend reported, so it can be surfaced verbatim.
type Error struct {
	Status int
	Reason string
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("backend: status %d", e.Status)
	}
	return fmt.Sprintf("backend: %s (status %d)", e.Reason, e.Status)
}

// PrepareRequest asks the backend to build an unsigned transaction for the
// given content. FileData is base64 and empty for plain-text payloads.
type PrepareRequest struct {
	Content     string `json:"content"`
	ContentType string `json:"contentType"`
	FileData    string `json:"fileData,omitempty"`
	Address     string `json:"address"`
	Network     string `json:"network"`
}

type prepareResponse struct {
	PreparedArtifact string `json:"preparedArtifact"`
	Error            string `json:"error,omitempty"`
}

type broadcastRequest struct {
	SignedArtifact string `json:"signedArtifact"`
	Network        string `json:"network"`
}

type broadcastResponse struct {
	TxID  string `json:"txid"`
	Error string `json:"error,omitempty"`
}

type createInscriptionResponse struct {
	InscriptionRequest string `json:"inscriptionRequest"`
	Error              string `json:"error,omitempty"`
}

// Client talks to the backend preparation service.
type Client struct {
	base   string
	client *http.Client
	logger *log.Logger
}

// NewClient creates a backend client for the given base URL.
func NewClient(base string, logger *log.Logger) *Client {
	return &Client{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// Prepare submits the payload and returns the unsigned artifact (PSBT).
func (c *Client) Prepare(ctx context.Context, req PrepareRequest) (string, error) {
	var resp prepareResponse
	if err := c.post(ctx, "/prepare", req, &resp); err != nil {
		return "", err
	}
	if resp.PreparedArtifact == "" {
		return "", &Error{Status: http.StatusOK, Reason: "empty prepared artifact"}
	}
	return resp.PreparedArtifact, nil
}

// Broadcast submits the signed artifact and returns the transaction id.
func (c *Client) Broadcast(ctx context.Context, signedArtifact, networkToken string) (string, error) {
	var resp broadcastResponse
	req := broadcastRequest{SignedArtifact: signedArtifact, Network: networkToken}
	if err := c.post(ctx, "/broadcast", req, &resp); err != nil {
		return "", err
	}
	if resp.TxID == "" {
		return "", &Error{Status: http.StatusOK, Reason: "empty txid"}
	}
	return resp.TxID, nil
}

// CreateInscription builds an inscription request for wallets that create and
// broadcast inscriptions natively.
func (c *Client) CreateInscription(ctx context.Context, req PrepareRequest) (string, error) {
	var resp createInscriptionResponse
	if err := c.post(ctx, "/create-inscription", req, &resp); err != nil {
		return "", err
	}
	if resp.InscriptionRequest == "" {
		return "", &Error{Status: http.StatusOK, Reason: "empty inscription request"}
	}
	return resp.InscriptionRequest, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("backend %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reason := backendReason(raw)
		c.logger.Error("backend call failed", "path", path, "status", resp.StatusCode, "reason", reason)
		return &Error{Status: resp.StatusCode, Reason: reason}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// backendReason digs the human-readable reason out of an error body, falling
// back to the raw body when it is not JSON.
func backendReason(raw []byte) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &e); err == nil {
		if e.Error != "" {
			return e.Error
		}
		if e.Message != "" {
			return e.Message
		}
	}
	return strings.TrimSpace(string(raw))
}
