// Package config holds the startup configuration for the mining worker
// process.
package config

import (
	"runtime"

	"github.com/kadena-io/chainweb-mining-worker/chainweb"
	"gitlab.com/NebulousLabs/errors"
)

// Config is the full startup configuration of a worker process.
type Config struct {
	// Cores is the number of parallel search threads per mining job.
	Cores uint16

	// Version selects the network, and with it the digest algorithm.
	Version chainweb.ChainwebVersion

	// Listen is the address the HTTP API binds to.
	Listen string

	// LogFile is the path the worker logs to. Empty means stdout.
	LogFile string
}

// Default returns the configuration a worker starts with when no flags
// are given: all CPUs, the test network, and the conventional API port.
func Default() Config {
	return Config{
		Cores:   uint16(runtime.NumCPU()),
		Version: chainweb.Test,
		Listen:  "localhost:9984",
	}
}

// Validate checks that the configuration can actually run a worker.
func (c Config) Validate() error {
	if c.Cores < 1 {
		return errors.New("config: cores must be at least 1")
	}
	if c.Listen == "" {
		return errors.New("config: a listen address is required")
	}
	return nil
}
