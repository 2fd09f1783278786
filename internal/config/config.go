package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Engine   EngineConfig   `toml:"engine"`
	Database DatabaseConfig `toml:"database"`
	Care     CareConfig     `toml:"care"`
	Logging  LoggingConfig  `toml:"logging"`
}

type ServerConfig struct {
	Name      string `toml:"name"`
	StartTime int64  // set at boot, not from config
}

type EngineConfig struct {
	TickDuration      time.Duration `toml:"tick_duration"`
	MaxUpdatesPerTick int           `toml:"max_updates_per_tick"` // 0 = drain all
	MaxUpdateRetries  int           `toml:"max_update_retries"`
	MinOffline        time.Duration `toml:"min_offline"` // below this, no catch-up
	SaveEveryTicks    int           `toml:"save_every_ticks"`
}

type DatabaseConfig struct {
	Path      string `toml:"path"`
	KeepSaves int    `toml:"keep_saves"`
}

type CareConfig struct {
	MealHunger       float64 `toml:"meal_hunger"`
	MealHappiness    float64 `toml:"meal_happiness"`
	PlayHappiness    float64 `toml:"play_happiness"`
	PlayEnergyCost   float64 `toml:"play_energy_cost"`
	MedicineHealth   float64 `toml:"medicine_health"`
	BattleEnergyCost float64 `toml:"battle_energy_cost"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Server.StartTime = time.Now().Unix()
	return cfg, nil
}

// Default returns the built-in configuration, used when no config file
// exists.
func Default() *Config {
	cfg := defaults()
	cfg.Server.StartTime = time.Now().Unix()
	return cfg
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "PetGo",
		},
		Engine: EngineConfig{
			TickDuration:      time.Minute,
			MaxUpdatesPerTick: 0,
			MaxUpdateRetries:  3,
			MinOffline:        2 * time.Minute,
			SaveEveryTicks:    5,
		},
		Database: DatabaseConfig{
			Path:      "petgo.db",
			KeepSaves: 20,
		},
		Care: CareConfig{
			MealHunger:       30,
			MealHappiness:    10,
			PlayHappiness:    30,
			PlayEnergyCost:   10,
			MedicineHealth:   30,
			BattleEnergyCost: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
