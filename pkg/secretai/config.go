package secretai

import (
	"os"
	"strings"
)

// Environment variables consulted when a value is not set explicitly.
const (
	EnvAPIKey         = "SECRET_AI_API_KEY"
	EnvChainID        = "SECRET_CHAIN_ID"
	EnvNodeURL        = "SECRET_NODE_URL"
	EnvWorkerContract = "SECRET_WORKER_SMART_CONTRACT"
	EnvLogLevel       = "SECRET_SDK_LOG_LEVEL"
)

// Built-in defaults for the Secret Network testnet deployment.
const (
	DefaultChainID        = "pulsar-3"
	DefaultNodeURL        = "https://pulsar.lcd.secretnodes.com"
	DefaultWorkerContract = "secret18cy3cgnmkft3ayma4nr37wgtj4faxfnrnngrlq"
	DefaultHost           = "http://localhost:11434"
	DefaultLogLevel       = "info"
)

// Config carries every setting the SDK needs. Resolve it once at startup
// and hand it to the constructors; nothing reads the environment later.
type Config struct {
	APIKey         string
	ChainID        string
	NodeURL        string
	WorkerContract string
	LogLevel       string
}

// DefaultConfig returns the built-in defaults. APIKey has none.
func DefaultConfig() Config {
	return Config{
		ChainID:        DefaultChainID,
		NodeURL:        DefaultNodeURL,
		WorkerContract: DefaultWorkerContract,
		LogLevel:       DefaultLogLevel,
	}
}

// Resolve returns a copy of c where each empty field is taken from the
// environment (via getenv) and, failing that, from defaults.
func (c Config) Resolve(getenv func(string) string, defaults Config) Config {
	if getenv == nil {
		getenv = os.Getenv
	}
	pick := func(explicit, envKey, fallback string) string {
		if v := strings.TrimSpace(explicit); v != "" {
			return v
		}
		if v := strings.TrimSpace(getenv(envKey)); v != "" {
			return v
		}
		return fallback
	}

	return Config{
		APIKey:         pick(c.APIKey, EnvAPIKey, defaults.APIKey),
		ChainID:        pick(c.ChainID, EnvChainID, defaults.ChainID),
		NodeURL:        pick(c.NodeURL, EnvNodeURL, defaults.NodeURL),
		WorkerContract: pick(c.WorkerContract, EnvWorkerContract, defaults.WorkerContract),
		LogLevel:       pick(c.LogLevel, EnvLogLevel, defaults.LogLevel),
	}
}

// Overlay returns base with every non-empty field of c copied over it.
func (c Config) Overlay(base Config) Config {
	if c.APIKey != "" {
		base.APIKey = c.APIKey
	}
	if c.ChainID != "" {
		base.ChainID = c.ChainID
	}
	if c.NodeURL != "" {
		base.NodeURL = c.NodeURL
	}
	if c.WorkerContract != "" {
		base.WorkerContract = c.WorkerContract
	}
	if c.LogLevel != "" {
		base.LogLevel = c.LogLevel
	}
	return base
}

// ResolveConfig resolves c against the process environment and the
// built-in defaults.
func ResolveConfig(c Config) Config {
	return c.Resolve(os.Getenv, DefaultConfig())
}
