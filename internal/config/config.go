// Package config loads and validates the single structured configuration
// document the decision engine runs from (spec.md §6), the way the teacher's
// config package validates a StrategyConfig before any strategy is built.
package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SymbolSpec holds the per-symbol contract constants.
type SymbolSpec struct {
	TickSize       float64  `yaml:"tick_size"`
	SessionWindows []string `yaml:"session_windows"`
}

// Tolerances holds the MenthorQ proximity tolerances in ticks, by level
// class (spec.md §4.6).
type Tolerances struct {
	GammaWall  float64 `yaml:"gamma_wall"`
	HVL        float64 `yaml:"hvl"`
	Gex        float64 `yaml:"gex"`
	BlindSpots float64 `yaml:"blind_spots"`
	Swing      float64 `yaml:"swing"`
}

// LeadershipGate is one row of the vix-regime-dependent gate table from
// spec.md §4.4: (soft, hard, bonus_factor, extra_of_confirms).
type LeadershipGate struct {
	Soft        float64 `yaml:"soft"`
	Hard        float64 `yaml:"hard"`
	BonusFactor float64 `yaml:"bonus_factor"`
	ExtraOF     int     `yaml:"extra_of"`
}

// Thresholds holds the MIA gate, entry, correlation-floor, and leadership
// thresholds (spec.md §4.7, §4.8).
type Thresholds struct {
	MiaLong                float64                   `yaml:"mia_long"`
	MiaShort               float64                   `yaml:"mia_short"`
	Entry                  float64                   `yaml:"entry"`
	CorrelationFloorByVix  map[string]float64        `yaml:"correlation_floor_by_vix"`
	LeadershipByVix        map[string]LeadershipGate `yaml:"leadership_by_vix"`
}

// Weights holds the SignalFuser blend weights (spec.md §4.8); must sum to 1.0.
type Weights struct {
	MQ        float64 `yaml:"mq"`
	OF        float64 `yaml:"of"`
	Structure float64 `yaml:"structure"`
}

// Sizing holds the position-sizing knobs (spec.md §4.7, §4.9).
type Sizing struct {
	VixCaps      map[string]float64 `yaml:"vix_caps"`
	StopAtrK     map[string]float64 `yaml:"stop_atr_k"`
	MinStopTicks float64            `yaml:"min_stop_ticks"`
}

// Risk holds the daily risk-management gates (spec.md §6).
type Risk struct {
	CooldownAfterStop   time.Duration `yaml:"cooldown_after_stop"`
	DailyLossLimit      float64       `yaml:"daily_loss_limit"`
	DailyTradesLimit    int           `yaml:"daily_trades_limit"`
	MaxConsecutiveLosses int          `yaml:"max_consecutive_losses"`
}

// Ingestion holds the ChartTail/Unifier tunables (spec.md §4.1, §5).
type Ingestion struct {
	ChartDir           string `yaml:"chart_dir"`
	ReorderWindowMs    int    `yaml:"reorder_window_ms"`
	DedupeWindow       int    `yaml:"dedupe_window"`
	RotateOnDateChange bool   `yaml:"rotate_on_date_change"`
	QueueCapacity      int    `yaml:"queue_capacity"`
	MaxRetries         int    `yaml:"max_retries"`
}

// StalenessWindows mirrors types.StalenessWindows for YAML decoding.
type StalenessWindows struct {
	Gamma     time.Duration `yaml:"gamma"`
	BlindSpot time.Duration `yaml:"blind_spot"`
	Swing     time.Duration `yaml:"swing"`
}

// Config is the full decision-engine configuration document.
type Config struct {
	LogLevel string `yaml:"log_level"`

	SymbolSpecs map[string]SymbolSpec `yaml:"symbol_specs"`
	Tolerances  Tolerances            `yaml:"tolerances"`
	Thresholds  Thresholds            `yaml:"thresholds"`
	Weights     Weights               `yaml:"weights"`
	Sizing      Sizing                `yaml:"sizing"`
	Risk        Risk                  `yaml:"risk"`
	Ingestion   Ingestion             `yaml:"ingestion"`

	Staleness StalenessWindows `yaml:"staleness"`

	AllowWeak        bool          `yaml:"allow_weak"`
	PremiumThreshold float64       `yaml:"premium_threshold"`
	PatternLookback  int           `yaml:"pattern_lookback"`
	ATRPeriod        int           `yaml:"atr_period"`
	DecisionTick     time.Duration `yaml:"decision_tick"`
	SoftDeadline     time.Duration `yaml:"soft_deadline"`
	HardDeadline     time.Duration `yaml:"hard_deadline"`
	ShutdownGrace    time.Duration `yaml:"shutdown_grace"`
}

// Load reads and parses a YAML config document from path, applies defaults
// for any zero-valued tunables, and validates the result.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration with every spec-stated default applied;
// Load unmarshals on top of this so a YAML document only needs to override
// what it wants to change.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Tolerances: Tolerances{
			GammaWall: 3, HVL: 5, Gex: 5, BlindSpots: 4, Swing: 8,
		},
		Thresholds: Thresholds{
			MiaLong:  0.20,
			MiaShort: -0.20,
			Entry:    0.70,
			CorrelationFloorByVix: map[string]float64{
				"low": 0.3, "mid": 0.3, "high": 0.4, "extreme": 0.5,
			},
			LeadershipByVix: map[string]LeadershipGate{
				"low":     {Soft: 0.50, Hard: 1.40, BonusFactor: 1.05, ExtraOF: 0},
				"mid":     {Soft: 0.50, Hard: 1.30, BonusFactor: 1.05, ExtraOF: 0},
				"high":    {Soft: 0.50, Hard: 1.10, BonusFactor: 1.00, ExtraOF: 1},
				"extreme": {Soft: 0.40, Hard: 1.00, BonusFactor: 1.00, ExtraOF: 1},
			},
		},
		Weights: Weights{MQ: 0.55, OF: 0.30, Structure: 0.15},
		Sizing: Sizing{
			VixCaps: map[string]float64{
				"low": 1.0, "mid": 0.6, "high": 0.4, "extreme": 0.25,
			},
			StopAtrK: map[string]float64{
				"low": 0.8, "mid": 0.8, "high": 1.2, "extreme": 1.6,
			},
			MinStopTicks: 8,
		},
		Risk: Risk{
			CooldownAfterStop:    15 * time.Minute,
			DailyLossLimit:       0,
			DailyTradesLimit:     0,
			MaxConsecutiveLosses: 0,
		},
		Ingestion: Ingestion{
			ReorderWindowMs:    200,
			DedupeWindow:       10000,
			RotateOnDateChange: true,
			QueueCapacity:      10000,
			MaxRetries:         10,
		},
		Staleness: StalenessWindows{
			Gamma:     30 * time.Minute,
			BlindSpot: 20 * time.Minute,
			Swing:     2 * time.Hour,
		},
		AllowWeak:        false,
		PremiumThreshold: 0.75,
		PatternLookback:  20,
		ATRPeriod:        14,
		DecisionTick:     100 * time.Millisecond,
		SoftDeadline:     50 * time.Millisecond,
		HardDeadline:     200 * time.Millisecond,
		ShutdownGrace:    5 * time.Second,
	}
}

// Validate checks the configuration for the invariants spec.md requires
// (weights summing to 1.0, tick sizes positive, thresholds ordered).
// Following the teacher's config.Validate, every violation is reported
// rather than bailing on the first one.
func (c *Config) Validate() error {
	var errs []string

	if len(c.SymbolSpecs) == 0 {
		errs = append(errs, "symbol_specs: at least one symbol must be configured")
	}
	for sym, spec := range c.SymbolSpecs {
		if spec.TickSize <= 0 {
			errs = append(errs, fmt.Sprintf("symbol_specs[%s].tick_size must be > 0", sym))
		}
	}

	sum := c.Weights.MQ + c.Weights.OF + c.Weights.Structure
	if math.Abs(sum-1.0) > 1e-9 {
		errs = append(errs, fmt.Sprintf("weights must sum to 1.0, got %.6f", sum))
	}
	if c.Weights.MQ < 0 || c.Weights.OF < 0 || c.Weights.Structure < 0 {
		errs = append(errs, "weights must be non-negative")
	}

	if c.Thresholds.Entry <= 0 || c.Thresholds.Entry > 1 {
		errs = append(errs, "thresholds.entry must be in (0, 1]")
	}
	if c.Thresholds.MiaLong <= c.Thresholds.MiaShort {
		errs = append(errs, "thresholds.mia_long must be greater than thresholds.mia_short")
	}

	if c.Sizing.MinStopTicks <= 0 {
		errs = append(errs, "sizing.min_stop_ticks must be > 0")
	}
	for regime, cap := range c.Sizing.VixCaps {
		if cap <= 0 || cap > 1 {
			errs = append(errs, fmt.Sprintf("sizing.vix_caps[%s] must be in (0, 1]", regime))
		}
	}

	if c.Risk.CooldownAfterStop < 0 {
		errs = append(errs, "risk.cooldown_after_stop must be >= 0")
	}

	if c.Ingestion.ReorderWindowMs <= 0 {
		errs = append(errs, "ingestion.reorder_window_ms must be > 0")
	}
	if c.Ingestion.DedupeWindow <= 0 {
		errs = append(errs, "ingestion.dedupe_window must be > 0")
	}
	if c.Ingestion.ChartDir == "" {
		errs = append(errs, "ingestion.chart_dir must be set")
	}

	if c.PremiumThreshold <= 0 || c.PremiumThreshold > 1 {
		errs = append(errs, "premium_threshold must be in (0, 1]")
	}
	if c.ATRPeriod <= 0 {
		errs = append(errs, "atr_period must be > 0")
	}
	if c.PatternLookback <= 0 {
		errs = append(errs, "pattern_lookback must be > 0")
	}
	if c.SoftDeadline <= 0 || c.HardDeadline <= 0 || c.SoftDeadline > c.HardDeadline {
		errs = append(errs, "soft_deadline must be > 0 and <= hard_deadline")
	}

	if len(errs) == 0 {
		return nil
	}
	msg := "invalid configuration:"
	for _, e := range errs {
		msg += "\n  - " + e
	}
	return fmt.Errorf("%s", msg)
}
