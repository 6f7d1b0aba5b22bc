package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/serious-social/conviction/internal/domain"
)

// Config es la configuración completa del servicio.
type Config struct {
	Market    MarketConfig    `yaml:"market"`
	Simulator SimulatorConfig `yaml:"simulator"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
}

// MarketConfig es la plantilla de parámetros para mercados nuevos.
type MarketConfig struct {
	LockPeriodHours         int    `yaml:"lock_period_hours"`
	MinRewardDurationHours  int    `yaml:"min_reward_duration_hours"`
	MaxSRPBps               uint64 `yaml:"max_srp_bps"`
	MaxUserRewardBps        uint64 `yaml:"max_user_reward_bps"`
	EntryFeeBaseBps         uint64 `yaml:"entry_fee_base_bps"`
	EntryFeeMaxBps          uint64 `yaml:"entry_fee_max_bps"`
	EntryFeeScale           uint64 `yaml:"entry_fee_scale"`
	AuthorPremiumBps uint64 `yaml:"author_premium_bps"`
	// Puntero para distinguir "ausente" (default) de 0 explícito (deshabilita
	// el early withdraw).
	EarlyWithdrawPenaltyBps *uint64 `yaml:"early_withdraw_penalty_bps"`
	MinStake                uint64 `yaml:"min_stake"`
	MaxStake                uint64 `yaml:"max_stake"`
	YieldEscrow             bool   `yaml:"yield_escrow"`
}

// SimulatorConfig controla el escenario del modo -simulate.
type SimulatorConfig struct {
	Markets      int     `yaml:"markets"`
	Actors       int     `yaml:"actors"`
	Ops          int     `yaml:"ops"`
	OpsPerSec    float64 `yaml:"ops_per_sec"`
	Seed         int64   `yaml:"seed"`
	MintPerActor uint64  `yaml:"mint_per_actor"`
	AuthorStake  uint64  `yaml:"author_stake"`
	TimeStepSecs uint64  `yaml:"time_step_seconds"`
}

// StorageConfig controla dónde se persisten eventos y estados.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
// Con path vacío se usan solo defaults y entorno.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	params := cfg.MarketParams()
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: market params: %w", err)
	}

	return &cfg, nil
}

// MarketParams materializa la plantilla de mercado como parámetros de dominio.
func (c *Config) MarketParams() domain.MarketParams {
	return domain.MarketParams{
		LockPeriod:              time.Duration(c.Market.LockPeriodHours) * time.Hour,
		MinRewardDuration:       time.Duration(c.Market.MinRewardDurationHours) * time.Hour,
		MaxSRPBps:               c.Market.MaxSRPBps,
		MaxUserRewardBps:        c.Market.MaxUserRewardBps,
		EntryFeeBaseBps:         c.Market.EntryFeeBaseBps,
		EntryFeeMaxBps:          c.Market.EntryFeeMaxBps,
		EntryFeeScale:           c.Market.EntryFeeScale,
		AuthorPremiumBps:        c.Market.AuthorPremiumBps,
		EarlyWithdrawPenaltyBps: *c.Market.EarlyWithdrawPenaltyBps,
		MinStake:                c.Market.MinStake,
		MaxStake:                c.Market.MaxStake,
		YieldEscrow:             c.Market.YieldEscrow,
	}
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("SIM_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Simulator.Seed = seed
		}
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	def := domain.DefaultMarketParams()

	if cfg.Market.LockPeriodHours <= 0 {
		cfg.Market.LockPeriodHours = int(def.LockPeriod / time.Hour)
	}
	if cfg.Market.MinRewardDurationHours <= 0 {
		cfg.Market.MinRewardDurationHours = int(def.MinRewardDuration / time.Hour)
	}
	if cfg.Market.MaxSRPBps == 0 {
		cfg.Market.MaxSRPBps = def.MaxSRPBps
	}
	if cfg.Market.MaxUserRewardBps == 0 {
		cfg.Market.MaxUserRewardBps = def.MaxUserRewardBps
	}
	if cfg.Market.EntryFeeBaseBps == 0 {
		cfg.Market.EntryFeeBaseBps = def.EntryFeeBaseBps
	}
	if cfg.Market.EntryFeeMaxBps == 0 {
		cfg.Market.EntryFeeMaxBps = def.EntryFeeMaxBps
	}
	if cfg.Market.EntryFeeScale == 0 {
		cfg.Market.EntryFeeScale = def.EntryFeeScale
	}
	if cfg.Market.AuthorPremiumBps == 0 {
		cfg.Market.AuthorPremiumBps = def.AuthorPremiumBps
	}
	if cfg.Market.MinStake == 0 {
		cfg.Market.MinStake = def.MinStake
	}
	if cfg.Market.MaxStake == 0 {
		cfg.Market.MaxStake = def.MaxStake
	}
	if cfg.Market.EarlyWithdrawPenaltyBps == nil {
		penalty := def.EarlyWithdrawPenaltyBps
		cfg.Market.EarlyWithdrawPenaltyBps = &penalty
	}

	if cfg.Simulator.Markets <= 0 {
		cfg.Simulator.Markets = 3
	}
	if cfg.Simulator.Actors <= 0 {
		cfg.Simulator.Actors = 8
	}
	if cfg.Simulator.Ops <= 0 {
		cfg.Simulator.Ops = 200
	}
	if cfg.Simulator.OpsPerSec <= 0 {
		cfg.Simulator.OpsPerSec = 50
	}
	if cfg.Simulator.Seed == 0 {
		cfg.Simulator.Seed = 42
	}
	if cfg.Simulator.MintPerActor == 0 {
		cfg.Simulator.MintPerActor = 1_000_000
	}
	if cfg.Simulator.AuthorStake == 0 {
		cfg.Simulator.AuthorStake = 10_000
	}
	if cfg.Simulator.TimeStepSecs == 0 {
		cfg.Simulator.TimeStepSecs = 3_600
	}

	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "conviction.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
