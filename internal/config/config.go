package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

type Config struct {
	LogLevel string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Redis    Redis  `yaml:"redis"`
	Game     Game   `yaml:"game"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// Game holds the only settings the engine itself receives.
type Game struct {
	BoardSize  int           `yaml:"board-size" env:"GAME_BOARD_SIZE" env-default:"3"`
	SessionTTL time.Duration `yaml:"session-ttl" env:"GAME_SESSION_TTL" env-default:"24h"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) Validate() error {
	if that.Game.BoardSize < entity.MinBoardSize {
		return fmt.Errorf("%w: game.board-size %d is below %d",
			apperror.ErrInvalidConfiguration, that.Game.BoardSize, entity.MinBoardSize)
	}

	if that.Game.BoardSize > entity.MaxBoardSize {
		return fmt.Errorf("%w: game.board-size %d is above %d",
			apperror.ErrInvalidConfiguration, that.Game.BoardSize, entity.MaxBoardSize)
	}

	if that.Game.SessionTTL < 0 {
		return fmt.Errorf("%w: game.session-ttl must not be negative", apperror.ErrInvalidConfiguration)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
