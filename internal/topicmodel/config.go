package topicmodel

import (
	"fmt"
	"math"
	"runtime"

	"genretopics/internal/domain"
)

// Defaults for the variational fit.
const (
	DefaultTopics           = 5
	DefaultMaxIterations    = 100
	DefaultTolerance        = 1e-4
	DefaultDocMaxIterations = 100
	DefaultDocTolerance     = 1e-3
	DefaultSeed             = 42
)

// Config parameterizes the topic model. Zero values select defaults; Alpha and
// Eta default to 1/Topics.
type Config struct {
	Topics           int
	Alpha            float64
	Eta              float64
	MaxIterations    int
	Tolerance        float64
	DocMaxIterations int
	DocTolerance     float64
	Seed             uint64
	Workers          int
}

// DefaultConfig returns the defaults for k topics.
func DefaultConfig(k int) Config {
	return Config{Topics: k, Seed: DefaultSeed}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.Topics > 0 {
		if c.Alpha == 0 {
			c.Alpha = 1 / float64(c.Topics)
		}
		if c.Eta == 0 {
			c.Eta = 1 / float64(c.Topics)
		}
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if c.Tolerance <= 0 {
		c.Tolerance = DefaultTolerance
	}
	if c.DocMaxIterations <= 0 {
		c.DocMaxIterations = DefaultDocMaxIterations
	}
	if c.DocTolerance <= 0 {
		c.DocTolerance = DefaultDocTolerance
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	return c
}

// Validate reports a configuration the fit cannot run with.
func (c Config) Validate() error {
	c = c.withDefaults()
	switch {
	case c.Topics < 1:
		return fmt.Errorf("%w: topic count must be at least 1, got %d", domain.ErrInvalidConfig, c.Topics)
	case !(c.Alpha > 0) || math.IsInf(c.Alpha, 0):
		return fmt.Errorf("%w: alpha must be positive, got %v", domain.ErrInvalidConfig, c.Alpha)
	case !(c.Eta > 0) || math.IsInf(c.Eta, 0):
		return fmt.Errorf("%w: eta must be positive, got %v", domain.ErrInvalidConfig, c.Eta)
	}
	return nil
}
