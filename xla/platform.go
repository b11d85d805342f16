package xla

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Platform selects the kind of device a Client runs computations on.
type Platform int

const (
	CPU Platform = iota
	GPU
	TPU
)

// PlatformEnvVar is the environment variable used by DefaultPlatform.
const PlatformEnvVar = "GOXLA_PLATFORM"

// String implements fmt.Stringer.
func (p Platform) String() string {
	switch p {
	case CPU:
		return "cpu"
	case GPU:
		return "gpu"
	case TPU:
		return "tpu"
	}
	return fmt.Sprintf("Platform(%d)", int(p))
}

// ParsePlatform converts a platform name to a Platform. It is case-insensitive and it accepts the aliases
// "host" for CPU and "cuda" for GPU.
func ParsePlatform(name string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "cpu", "host":
		return CPU, nil
	case "gpu", "cuda":
		return GPU, nil
	case "tpu":
		return TPU, nil
	}
	return CPU, errors.Errorf("unknown platform %q, valid values are \"cpu\", \"gpu\" and \"tpu\"", name)
}

// DefaultPlatform returns the platform set with the environment variable $GOXLA_PLATFORM, or CPU if not set.
func DefaultPlatform() (Platform, error) {
	name, found := os.LookupEnv(PlatformEnvVar)
	if !found || name == "" {
		return CPU, nil
	}
	p, err := ParsePlatform(name)
	if err != nil {
		return CPU, errors.WithMessagef(err, "invalid $%s", PlatformEnvVar)
	}
	return p, nil
}

// ClientConfig holds the options used to create a Client with NewClient.
type ClientConfig struct {
	Platform Platform

	// MemoryFraction is the fraction of the GPU memory the client may use. GPU only.
	MemoryFraction float64

	// Preallocate the GPU memory when creating the client. GPU only.
	Preallocate bool

	// MaxInflightComputations is the maximum number of computations enqueued at once. TPU only.
	MaxInflightComputations int
}

// DefaultClientConfig returns the configuration for the DefaultPlatform, with the default options.
// If $GOXLA_PLATFORM is invalid, the error is returned along with a configuration for the CPU.
func DefaultClientConfig() (ClientConfig, error) {
	p, err := DefaultPlatform()
	return ClientConfig{
		Platform:                p,
		MemoryFraction:          0.95,
		Preallocate:             false,
		MaxInflightComputations: 32,
	}, err
}

// WithPlatform returns a copy of the configuration using the given platform.
func (cfg ClientConfig) WithPlatform(p Platform) ClientConfig {
	cfg.Platform = p
	return cfg
}

// WithGPUMemory returns a copy of the configuration with the given GPU memory options.
func (cfg ClientConfig) WithGPUMemory(memoryFraction float64, preallocate bool) ClientConfig {
	cfg.MemoryFraction = memoryFraction
	cfg.Preallocate = preallocate
	return cfg
}

// WithMaxInflightComputations returns a copy of the configuration with the given TPU option.
func (cfg ClientConfig) WithMaxInflightComputations(n int) ClientConfig {
	cfg.MaxInflightComputations = n
	return cfg
}

// Validate checks that the options are in range for the platform.
func (cfg ClientConfig) Validate() error {
	switch cfg.Platform {
	case CPU:
	case GPU:
		if cfg.MemoryFraction <= 0 || cfg.MemoryFraction > 1 {
			return errors.Errorf("GPU memory fraction must be in (0, 1], got %g", cfg.MemoryFraction)
		}
	case TPU:
		if cfg.MaxInflightComputations <= 0 {
			return errors.Errorf("TPU max in-flight computations must be positive, got %d", cfg.MaxInflightComputations)
		}
	default:
		return errors.Errorf("invalid platform %s", cfg.Platform)
	}
	return nil
}
