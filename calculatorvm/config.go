// (c) 2019-2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package calculatorvm

import (
	"errors"
	"fmt"

	log "github.com/inconshreveable/log15"
)

const (
	defaultMempoolSize      = 1024
	defaultMaxBlockTxs      = 256
	defaultAccountCacheSize = 4096
	defaultAPIRateLimit     = 100
	defaultAPIBurst         = 200
	defaultLogLevel         = "info"
)

var errInvalidConfig = errors.New("invalid config")

// Config is the chain config of a calculatorvm chain.
// It is read from the chain's config bytes, which may be YAML or JSON.
type Config struct {
	// Maximum number of txs waiting to be put into a block
	MempoolSize int `yaml:"mempoolSize"`
	// Maximum number of txs in a block built by this node
	MaxBlockTxs int `yaml:"maxBlockTxs"`
	// Number of accounts kept in memory
	AccountCacheSize int `yaml:"accountCacheSize"`
	// Txs per second accepted over the API, and the burst allowed above it
	APIRateLimit float64 `yaml:"apiRateLimit"`
	APIBurst     int     `yaml:"apiBurst"`
	// Minimum level of logs to output
	LogLevel string `yaml:"logLevel"`
}

// DefaultConfig returns the config used for any unset field
func DefaultConfig() Config {
	return Config{
		MempoolSize:      defaultMempoolSize,
		MaxBlockTxs:      defaultMaxBlockTxs,
		AccountCacheSize: defaultAccountCacheSize,
		APIRateLimit:     defaultAPIRateLimit,
		APIBurst:         defaultAPIBurst,
		LogLevel:         defaultLogLevel,
	}
}

// ParseConfig parses [b] on top of the default config
func ParseConfig(b []byte) (Config, error) {
	config := DefaultConfig()
	if len(b) == 0 {
		return config, nil
	}
	if err := unmarshalDocument(b, &config); err != nil {
		return Config{}, fmt.Errorf("couldn't parse config: %w", err)
	}
	return config, config.Validate()
}

// Validate returns an error if the config can't be used
func (c Config) Validate() error {
	switch {
	case c.MempoolSize <= 0:
		return fmt.Errorf("%w: mempoolSize must be positive, got %d", errInvalidConfig, c.MempoolSize)
	case c.MaxBlockTxs <= 0:
		return fmt.Errorf("%w: maxBlockTxs must be positive, got %d", errInvalidConfig, c.MaxBlockTxs)
	case c.AccountCacheSize < 0:
		return fmt.Errorf("%w: accountCacheSize can't be negative, got %d", errInvalidConfig, c.AccountCacheSize)
	case c.APIRateLimit <= 0:
		return fmt.Errorf("%w: apiRateLimit must be positive, got %g", errInvalidConfig, c.APIRateLimit)
	case c.APIBurst <= 0:
		return fmt.Errorf("%w: apiBurst must be positive, got %d", errInvalidConfig, c.APIBurst)
	}
	if _, err := log.LvlFromString(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %s", errInvalidConfig, err)
	}
	return nil
}
