package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/stitts-dev/tennis-sim/internal/optimizer"
	"github.com/stitts-dev/tennis-sim/internal/pipeline"
	"github.com/stitts-dev/tennis-sim/internal/simulator"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	// Server
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Redis
	RedisURL string        `mapstructure:"REDIS_URL"`
	CacheTTL time.Duration `mapstructure:"CACHE_TTL"`

	// Simulation
	PreMatchVariance  float64 `mapstructure:"PRE_MATCH_VARIANCE"`
	InMatchVariance   float64 `mapstructure:"IN_MATCH_VARIANCE"`
	NumSimulations    int     `mapstructure:"NUM_SIMULATIONS"`
	SimulationWorkers int     `mapstructure:"SIMULATION_WORKERS"`
	Seed              uint64  `mapstructure:"SEED"`

	// Optimization
	BucketSize       int `mapstructure:"BUCKET_SIZE"`
	NumLineups       int `mapstructure:"NUM_LINEUPS"`
	PoolMultiple     int `mapstructure:"POOL_MULTIPLE"`
	SalaryCap        int `mapstructure:"SALARY_CAP"`
	RosterSize       int `mapstructure:"ROSTER_SIZE"`
	MinUniquePlayers int `mapstructure:"MIN_UNIQUE_PLAYERS"`

	// Files
	RosterPath string `mapstructure:"ROSTER_PATH"`
	SalaryPath string `mapstructure:"SALARY_PATH"`
	OutputDir  string `mapstructure:"OUTPUT_DIR"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8082")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("REDIS_URL", "") // empty disables the result cache
	v.SetDefault("CACHE_TTL", "1h")

	v.SetDefault("PRE_MATCH_VARIANCE", 0.5)
	v.SetDefault("IN_MATCH_VARIANCE", 0.2)
	v.SetDefault("NUM_SIMULATIONS", 1000)
	v.SetDefault("SIMULATION_WORKERS", 4)
	v.SetDefault("SEED", 1)

	v.SetDefault("BUCKET_SIZE", 20)
	v.SetDefault("NUM_LINEUPS", 20)
	v.SetDefault("POOL_MULTIPLE", 1)
	v.SetDefault("SALARY_CAP", 50000)
	v.SetDefault("ROSTER_SIZE", 6)
	v.SetDefault("MIN_UNIQUE_PLAYERS", 1)

	v.SetDefault("ROSTER_PATH", "data/processed/sim_prepped.csv")
	v.SetDefault("SALARY_PATH", "data/raw/pool.csv")
	v.SetDefault("OUTPUT_DIR", "data/processed")
}

// LoadConfig reads .env from the working directory or its parent, then the environment
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")

	setDefaults(v)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects settings the pipeline cannot run with
func (c *Config) Validate() error {
	switch {
	case c.PreMatchVariance < 0 || c.InMatchVariance < 0:
		return fmt.Errorf("%w: variance intensities must be non-negative", ErrInvalidConfig)
	case c.NumSimulations < 1:
		return fmt.Errorf("%w: NUM_SIMULATIONS must be at least 1", ErrInvalidConfig)
	case c.BucketSize < 1:
		return fmt.Errorf("%w: BUCKET_SIZE must be at least 1", ErrInvalidConfig)
	case c.RosterSize < 1:
		return fmt.Errorf("%w: ROSTER_SIZE must be at least 1", ErrInvalidConfig)
	case c.SalaryCap < 0:
		return fmt.Errorf("%w: SALARY_CAP must not be negative", ErrInvalidConfig)
	case c.MinUniquePlayers < 0 || c.MinUniquePlayers > c.RosterSize:
		return fmt.Errorf("%w: MIN_UNIQUE_PLAYERS must be within [0, %d]", ErrInvalidConfig, c.RosterSize)
	case c.NumLineups < 1:
		return fmt.Errorf("%w: NUM_LINEUPS must be at least 1", ErrInvalidConfig)
	case c.PoolMultiple < 1:
		return fmt.Errorf("%w: POOL_MULTIPLE must be at least 1", ErrInvalidConfig)
	case c.SimulationWorkers < 1:
		return fmt.Errorf("%w: SIMULATION_WORKERS must be at least 1", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// SimulationSettings projects the config onto the slate simulator
func (c *Config) SimulationSettings() simulator.Settings {
	return simulator.Settings{
		PreMatchVariance: c.PreMatchVariance,
		InMatchVariance:  c.InMatchVariance,
		NumSimulations:   c.NumSimulations,
		Workers:          c.SimulationWorkers,
		Seed:             c.Seed,
	}
}

// OptimizerSettings projects the config onto the lineup builder
func (c *Config) OptimizerSettings() optimizer.Settings {
	return optimizer.Settings{
		BucketSize:       c.BucketSize,
		NumLineups:       c.NumLineups,
		PoolMultiple:     c.PoolMultiple,
		SalaryCap:        c.SalaryCap,
		RosterSize:       c.RosterSize,
		MinUniquePlayers: c.MinUniquePlayers,
		Workers:          c.SimulationWorkers,
		Seed:             c.Seed,
	}
}

// PipelineSettings bundles both stage settings for a full run
func (c *Config) PipelineSettings() pipeline.Settings {
	return pipeline.Settings{
		Simulation: c.SimulationSettings(),
		Optimizer:  c.OptimizerSettings(),
	}
}
