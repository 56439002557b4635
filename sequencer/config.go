package sequencer

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/lineseq/changeover"
)

// maxExactNodesLimit mirrors the hard limit of the exact solver.
const maxExactNodesLimit = 24

// Config is the configuration of an Engine.
//
// All duration fields accept standard Go duration strings like "2.5s" or "500ms".
type Config struct {
	// DefaultTimeBudget is the heuristic budget when a request carries none.
	DefaultTimeBudget time.Duration `yaml:"defaultTimeBudget"`

	// ExactThreshold is the largest N routed to Held–Karp under "auto".
	ExactThreshold int `yaml:"exactThreshold"`

	// MaxExactNodes is the largest N the exact solver accepts at all,
	// including forced "heldKarp" and compare requests.
	MaxExactNodes int `yaml:"maxExactNodes"`

	// MissingRulePolicy decides the cost of transitions out of a product
	// without a rule: "zero" (default), "infinite" or "reject".
	MissingRulePolicy changeover.MissingRulePolicy `yaml:"missingRulePolicy"`

	// ProgressStep is the minimal progress increase between two progress events.
	ProgressStep float64 `yaml:"progressStep"`

	// TwoOptMaxPasses caps full 2-opt scans per local search.
	TwoOptMaxPasses int `yaml:"twoOptMaxPasses"`

	// ThreeOptMinIters and ThreeOptItersPerNode size randomized 3-opt.
	ThreeOptMinIters     int `yaml:"threeOptMinIters"`
	ThreeOptItersPerNode int `yaml:"threeOptItersPerNode"`

	// Seed pins the heuristic random stream for every request that does not
	// carry its own seed. 0 draws a fresh seed per request.
	Seed int64 `yaml:"seed"`

	// EventBuffer is the channel capacity of each subscriber.
	EventBuffer int `yaml:"eventBuffer"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() Config {
	return Config{
		DefaultTimeBudget:    2500 * time.Millisecond,
		ExactThreshold:       10,
		MaxExactNodes:        20,
		MissingRulePolicy:    changeover.MissingZero,
		ProgressStep:         0.02,
		TwoOptMaxPasses:      50,
		ThreeOptMinIters:     40,
		ThreeOptItersPerNode: 4,
		Seed:                 0,
		EventBuffer:          64,
	}
}

// SetDefaults fills in zero-valued fields with production defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.DefaultTimeBudget == 0 {
		cfg.DefaultTimeBudget = defaults.DefaultTimeBudget
	}
	if cfg.ExactThreshold == 0 {
		cfg.ExactThreshold = defaults.ExactThreshold
	}
	if cfg.MaxExactNodes == 0 {
		cfg.MaxExactNodes = defaults.MaxExactNodes
	}
	if cfg.ProgressStep == 0 {
		cfg.ProgressStep = defaults.ProgressStep
	}
	if cfg.TwoOptMaxPasses == 0 {
		cfg.TwoOptMaxPasses = defaults.TwoOptMaxPasses
	}
	if cfg.ThreeOptMinIters == 0 {
		cfg.ThreeOptMinIters = defaults.ThreeOptMinIters
	}
	if cfg.ThreeOptItersPerNode == 0 {
		cfg.ThreeOptItersPerNode = defaults.ThreeOptItersPerNode
	}
	if cfg.EventBuffer == 0 {
		cfg.EventBuffer = defaults.EventBuffer
	}
}

// Validate checks the configuration for consistency.
//
// Rules:
//   - DefaultTimeBudget > 0
//   - 0 ≤ ExactThreshold ≤ MaxExactNodes ≤ 24
//   - 0 < ProgressStep ≤ 1
//   - non-negative local-search knobs and EventBuffer
//
// Returns:
//   - error: wraps ErrInvalidConfig, nil if valid
func (cfg *Config) Validate() error {
	if cfg.DefaultTimeBudget <= 0 {
		return fmt.Errorf("%w: defaultTimeBudget must be > 0, got %v", ErrInvalidConfig, cfg.DefaultTimeBudget)
	}
	if cfg.MaxExactNodes < 0 || cfg.MaxExactNodes > maxExactNodesLimit {
		return fmt.Errorf("%w: maxExactNodes must be in [0,%d], got %d", ErrInvalidConfig, maxExactNodesLimit, cfg.MaxExactNodes)
	}
	if cfg.ExactThreshold < 0 || cfg.ExactThreshold > cfg.MaxExactNodes {
		return fmt.Errorf("%w: exactThreshold (%d) must be in [0, maxExactNodes=%d]",
			ErrInvalidConfig, cfg.ExactThreshold, cfg.MaxExactNodes)
	}
	if cfg.ProgressStep <= 0 || cfg.ProgressStep > 1 {
		return fmt.Errorf("%w: progressStep must be in (0,1], got %v", ErrInvalidConfig, cfg.ProgressStep)
	}
	if cfg.TwoOptMaxPasses < 0 || cfg.ThreeOptMinIters < 0 || cfg.ThreeOptItersPerNode < 0 {
		return fmt.Errorf("%w: local search knobs must be non-negative", ErrInvalidConfig)
	}
	if cfg.EventBuffer < 0 {
		return fmt.Errorf("%w: eventBuffer must be non-negative, got %d", ErrInvalidConfig, cfg.EventBuffer)
	}
	if cfg.MissingRulePolicy > changeover.MissingReject {
		return fmt.Errorf("%w: %w: %d", ErrInvalidConfig, changeover.ErrUnknownPolicy, cfg.MissingRulePolicy)
	}

	return nil
}

// ParseConfig decodes YAML, applies defaults and validates the result.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	SetDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadConfig reads a YAML file and returns a defaulted, validated Config.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}

	return ParseConfig(data)
}
