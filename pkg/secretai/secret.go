package secretai

import (
	"context"
	"errors"
	"net/http"

	"secretai/internal/secretnet"
	"secretai/internal/wallet"
)

// Query tags understood by the worker management contract. The URL query
// tag is spelled the way the deployed contract serializes GetURLs.
const (
	queryGetModels = "get_models"
	queryGetURLs   = "get_u_r_ls"
)

// Logger receives debug output from SDK operations.
type Logger interface {
	Debug(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}

// ContractQuerier executes read-only smart contract queries.
type ContractQuerier interface {
	QueryContract(ctx context.Context, address string, query, out any) error
}

// Secret queries the Secret Network worker management contract, which maps
// confidential LLM models to the endpoints serving them.
type Secret struct {
	chainID  string
	nodeURL  string
	contract string
	querier  ContractQuerier
	log      Logger
}

// SecretOption customises a Secret client.
type SecretOption func(*secretOptions)

type secretOptions struct {
	httpClient *http.Client
	querier    ContractQuerier
	logger     Logger
	getenv     func(string) string
	defaults   *Config
}

// WithHTTPClient sets the HTTP client used to reach the node.
func WithHTTPClient(hc *http.Client) SecretOption {
	return func(o *secretOptions) { o.httpClient = hc }
}

// WithQuerier replaces the built-in LCD query transport.
func WithQuerier(q ContractQuerier) SecretOption {
	return func(o *secretOptions) { o.querier = q }
}

// WithLogger attaches a logger for query tracing.
func WithLogger(l Logger) SecretOption {
	return func(o *secretOptions) { o.logger = l }
}

// WithEnv replaces os.Getenv during resolution.
func WithEnv(getenv func(string) string) SecretOption {
	return func(o *secretOptions) { o.getenv = getenv }
}

// WithDefaults replaces the built-in defaults during resolution.
func WithDefaults(defaults Config) SecretOption {
	return func(o *secretOptions) { o.defaults = &defaults }
}

// NewSecret resolves chain id, node URL and contract address (explicit
// value, then environment, then default) and builds the client. Nothing
// is sent over the network until a query is made.
func NewSecret(cfg Config, opts ...SecretOption) (*Secret, error) {
	o := secretOptions{logger: nopLogger{}}
	for _, opt := range opts {
		opt(&o)
	}
	defaults := DefaultConfig()
	if o.defaults != nil {
		defaults = *o.defaults
	}

	resolved := cfg.Resolve(o.getenv, defaults)
	switch {
	case resolved.ChainID == "":
		return nil, &MissingValueError{Var: EnvChainID}
	case resolved.NodeURL == "":
		return nil, &MissingValueError{Var: EnvNodeURL}
	case resolved.WorkerContract == "":
		return nil, &MissingValueError{Var: EnvWorkerContract}
	}

	querier := o.querier
	if querier == nil {
		client, err := secretnet.NewClient(resolved.NodeURL, resolved.ChainID, secretnet.WithHTTPClient(o.httpClient))
		if err != nil {
			return nil, err
		}
		querier = client
	}

	return &Secret{
		chainID:  resolved.ChainID,
		nodeURL:  resolved.NodeURL,
		contract: resolved.WorkerContract,
		querier:  querier,
		log:      o.logger,
	}, nil
}

func (s *Secret) ChainID() string  { return s.chainID }
func (s *Secret) NodeURL() string  { return s.nodeURL }
func (s *Secret) Contract() string { return s.contract }

type modelsResponse struct {
	Models []string `json:"models"`
}

type urlsResponse struct {
	URLs []string `json:"urls"`
}

type urlsQuery struct {
	Model string `json:"model,omitempty"`
}

// ListModels returns the models known to the worker management contract.
func (s *Secret) ListModels(ctx context.Context) ([]string, error) {
	query := map[string]any{queryGetModels: struct{}{}}

	var resp modelsResponse
	if err := s.query(ctx, query, &resp); err != nil {
		return nil, &QueryError{Op: "models", Err: err}
	}
	s.log.Debug("contract %s: %d models", s.contract, len(resp.Models))
	return resp.Models, nil
}

// ListURLs returns the endpoints serving model, or every known endpoint
// when model is empty.
func (s *Secret) ListURLs(ctx context.Context, model string) ([]string, error) {
	query := map[string]any{queryGetURLs: urlsQuery{Model: model}}

	var resp urlsResponse
	if err := s.query(ctx, query, &resp); err != nil {
		return nil, &QueryError{Op: "URLs", Err: err}
	}
	s.log.Debug("contract %s: %d urls for model %q", s.contract, len(resp.URLs), model)
	return resp.URLs, nil
}

func (s *Secret) query(ctx context.Context, query, out any) error {
	s.log.Debug("querying contract %s on %s (%s)", s.contract, s.nodeURL, s.chainID)
	return s.querier.QueryContract(ctx, s.contract, query, out)
}

// PrivateKeyFromMnemonic validates mnemonic and returns the hex encoded
// secp256k1 private key of its first Secret Network account. It performs
// no network access.
func (s *Secret) PrivateKeyFromMnemonic(mnemonic string) (string, error) {
	key, err := deriveKey(mnemonic)
	if err != nil {
		return "", err
	}
	return key.PrivateKeyHex(), nil
}

// AddressFromMnemonic returns the bech32 account address for mnemonic.
func (s *Secret) AddressFromMnemonic(mnemonic string) (string, error) {
	key, err := deriveKey(mnemonic)
	if err != nil {
		return "", err
	}
	return key.Address()
}

func deriveKey(mnemonic string) (*wallet.Key, error) {
	key, err := wallet.FromMnemonic(mnemonic)
	if errors.Is(err, wallet.ErrInvalidMnemonic) {
		return nil, ErrInvalidMnemonic
	}
	return key, err
}
