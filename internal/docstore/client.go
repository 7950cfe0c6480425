package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client is the HTTP client for the document store service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption customizes client construction.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client (used in tests).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient builds a client for the store at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

type createResponse struct {
	ID string `json:"id"`
}

// Create persists a document and returns its assigned id.
func (c *Client) Create(ctx context.Context, doc InstrumentDocument) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("docstore: encode document: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/documents", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("docstore: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("docstore: create document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("docstore: create document: unexpected status %s", resp.Status)
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("docstore: read response: %w", err)
	}
	var created createResponse
	if err := json.Unmarshal(payload, &created); err != nil {
		return "", fmt.Errorf("docstore: decode response: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("docstore: create document: response missing id")
	}
	return created.ID, nil
}

// Get fetches a document by id.
func (c *Client) Get(ctx context.Context, id string) (InstrumentDocument, error) {
	if strings.TrimSpace(id) == "" {
		return InstrumentDocument{}, fmt.Errorf("docstore: document id is required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/documents/"+id, nil)
	if err != nil {
		return InstrumentDocument{}, fmt.Errorf("docstore: build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return InstrumentDocument{}, fmt.Errorf("docstore: get document %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return InstrumentDocument{}, fmt.Errorf("docstore: get document %s: unexpected status %s", id, resp.Status)
	}
	var doc InstrumentDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return InstrumentDocument{}, fmt.Errorf("docstore: decode document %s: %w", id, err)
	}
	return doc, nil
}
