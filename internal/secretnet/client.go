// Package secretnet runs read-only smart contract queries against a Secret
// Network node's LCD REST gateway.
//
// Contract state on Secret Network is private, so a query is encrypted for
// the enclave before it leaves the process and the reply is decrypted
// locally. Endpoints used:
//   - GET /registration/v1beta1/tx-key: consensus I/O public key
//   - GET /compute/v1beta1/code_hash/by_contract_address/{addr}: contract code hash
//   - GET /compute/v1beta1/query/{addr}?query=...: encrypted smart query
package secretnet

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

const (
	mimeJSON     = "application/json"
	headerAccept = "Accept"

	maxErrorBody = 64 << 10

	codeHashCacheSize = 128
)

var encryptedErrPattern = regexp.MustCompile(`encrypted: ([A-Za-z0-9+/=]+):`)

// Client talks to one LCD endpoint. It is safe for concurrent use.
type Client struct {
	baseURL    string
	chainID    string
	httpClient *http.Client
	enc        *encryptor

	mu           sync.Mutex
	consensusPub []byte
	codeHashes   *lru.Cache
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client (30s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a Client for the node at baseURL serving chainID.
func NewClient(baseURL, chainID string, opts ...Option) (*Client, error) {
	enc, err := newEncryptor(rand.Reader)
	if err != nil {
		return nil, err
	}
	hashes, err := lru.New(codeHashCacheSize)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		chainID: chainID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		enc:        enc,
		codeHashes: hashes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ChainID returns the chain this client was configured for.
func (c *Client) ChainID() string {
	return c.chainID
}

// ─── LCD JSON types ──────────────────────────────────────────────────────────

type txKeyResponse struct {
	Key string `json:"key"`
}

type codeHashResponse struct {
	CodeHash string `json:"code_hash"`
}

type queryResponse struct {
	Data string `json:"data"`
}

type lcdError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// StatusError is returned for non-2xx LCD responses.
type StatusError struct {
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("lcd get %s: status %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("lcd get %s: status %d: %s", e.Path, e.StatusCode, e.Message)
}

// ─── queries ─────────────────────────────────────────────────────────────────

// QueryContract sends query (any JSON-marshalable value) to the contract at
// address and decodes the contract's JSON answer into out.
func (c *Client) QueryContract(ctx context.Context, address string, query, out any) error {
	msg, err := json.Marshal(query)
	if err != nil {
		return fmt.Errorf("encode query: %w", err)
	}

	consensusPub, err := c.txEncryptionKey(ctx)
	if err != nil {
		return err
	}
	codeHash, err := c.CodeHash(ctx, address)
	if err != nil {
		return err
	}

	encrypted, err := c.enc.encrypt(consensusPub, codeHash, msg)
	if err != nil {
		return err
	}
	nonce := encrypted[:nonceSize]

	path := "/compute/v1beta1/query/" + url.PathEscape(address) +
		"?query=" + url.QueryEscape(base64.StdEncoding.EncodeToString(encrypted))

	var resp queryResponse
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return c.decryptError(err, consensusPub, nonce)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(resp.Data)
	if err != nil {
		return fmt.Errorf("decode query response: %w", err)
	}
	plaintext, err := c.enc.decrypt(consensusPub, nonce, ciphertext)
	if err != nil {
		return err
	}

	// The enclave returns the contract answer base64 encoded.
	answer, err := base64.StdEncoding.DecodeString(string(plaintext))
	if err != nil {
		return fmt.Errorf("decode contract answer: %w", err)
	}
	if err := json.Unmarshal(answer, out); err != nil {
		return fmt.Errorf("decode contract answer: %w", err)
	}
	return nil
}

// CodeHash returns the code hash of the contract at address. The most
// recently used hashes are cached.
func (c *Client) CodeHash(ctx context.Context, address string) (string, error) {
	if hash, ok := c.codeHashes.Get(address); ok {
		return hash.(string), nil
	}

	var resp codeHashResponse
	if err := c.getJSON(ctx, "/compute/v1beta1/code_hash/by_contract_address/"+url.PathEscape(address), &resp); err != nil {
		return "", fmt.Errorf("fetch code hash: %w", err)
	}
	hash := strings.ToLower(strings.TrimPrefix(resp.CodeHash, "0x"))
	if hash == "" {
		return "", fmt.Errorf("fetch code hash: empty code hash for %s", address)
	}

	c.codeHashes.Add(address, hash)
	return hash, nil
}

func (c *Client) txEncryptionKey(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	key := c.consensusPub
	c.mu.Unlock()
	if key != nil {
		return key, nil
	}

	var resp txKeyResponse
	if err := c.getJSON(ctx, "/registration/v1beta1/tx-key", &resp); err != nil {
		return nil, fmt.Errorf("fetch tx key: %w", err)
	}
	key, err := base64.StdEncoding.DecodeString(resp.Key)
	if err != nil {
		return nil, fmt.Errorf("decode tx key: %w", err)
	}
	if len(key) != keySize {
		return nil, fmt.Errorf("decode tx key: expected %d bytes, got %d", keySize, len(key))
	}

	c.mu.Lock()
	c.consensusPub = key
	c.mu.Unlock()
	return key, nil
}

// decryptError replaces an encrypted contract error with its plaintext when
// the enclave embedded one in the LCD message.
func (c *Client) decryptError(err error, consensusPub, nonce []byte) error {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return err
	}
	m := encryptedErrPattern.FindStringSubmatch(statusErr.Message)
	if m == nil {
		return err
	}
	ciphertext, decodeErr := base64.StdEncoding.DecodeString(m[1])
	if decodeErr != nil {
		return err
	}
	plaintext, decryptErr := c.enc.decrypt(consensusPub, nonce, ciphertext)
	if decryptErr != nil {
		return err
	}
	return fmt.Errorf("contract error: %s: %w", plaintext, err)
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// getJSON issues a GET to baseURL+path and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("lcd get: build request: %w", err)
	}
	req.Header.Set(headerAccept, mimeJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("lcd get: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newStatusError(path, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("lcd get: decode response: %w", err)
	}
	return nil
}

func newStatusError(path string, resp *http.Response) error {
	// strip the query string, it is a large opaque blob
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	statusErr := &StatusError{Path: path, StatusCode: resp.StatusCode}

	var lcdErr lcdError
	if json.Unmarshal(body, &lcdErr) == nil && lcdErr.Message != "" {
		statusErr.Message = lcdErr.Message
	} else {
		statusErr.Message = strings.TrimSpace(string(body))
	}
	return statusErr
}
