package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"fiveinrow/internal/camera"
	"fiveinrow/internal/storage"
)

type Config struct {
	LogLevel string  `yaml:"log-level" env:"LOG_LEVEL"`
	HTTP     HTTP    `yaml:"http"`
	Storage  Storage `yaml:"storage"`
	Game     Game    `yaml:"game"`
	Camera   Camera  `yaml:"camera"`
	Session  Session `yaml:"session"`
	// WebDir serves front-end assets from disk instead of the embedded copy.
	WebDir string `yaml:"web-dir" env:"WEB_DIR"`
}

type HTTP struct {
	Addr         string        `yaml:"addr" env:"HTTP_ADDR"`
	ReadTimeout  time.Duration `yaml:"read-timeout" env:"HTTP_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write-timeout" env:"HTTP_WRITE_TIMEOUT"`
}

type Storage struct {
	Driver     string `yaml:"driver" env:"STORAGE_DRIVER"`
	SQLitePath string `yaml:"sqlite-path" env:"DB_PATH"`
	Redis      Redis  `yaml:"redis"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST"`
	Port string `yaml:"port" env:"REDIS_PORT"`
	DB   int    `yaml:"db" env:"REDIS_DB"`
}

type Game struct {
	WinLength int `yaml:"win-length" env:"WIN_LENGTH"`
}

type Camera struct {
	GridSize       int     `yaml:"grid-size" env:"GRID_SIZE"`
	CellSize       float64 `yaml:"cell-size" env:"CELL_SIZE"`
	MobileCellSize float64 `yaml:"mobile-cell-size" env:"MOBILE_CELL_SIZE"`
	MinCellSize    float64 `yaml:"min-cell-size" env:"MIN_CELL_SIZE"`
	MaxCellSize    float64 `yaml:"max-cell-size" env:"MAX_CELL_SIZE"`
	ZoomStep       float64 `yaml:"zoom-step" env:"ZOOM_STEP"`
	ClickThreshold float64 `yaml:"click-threshold" env:"CLICK_THRESHOLD"`
}

type Session struct {
	CleanupInterval time.Duration `yaml:"cleanup-interval" env:"SESSION_CLEANUP_INTERVAL"`
	MaxIdle         time.Duration `yaml:"max-idle" env:"SESSION_MAX_IDLE"`
}

// Default is the configuration used for anything the file and environment
// leave unset.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		HTTP: HTTP{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Storage: Storage{
			Driver:     storage.DriverSQLite,
			SQLitePath: "fiveinrow.db",
			Redis:      Redis{Host: "localhost", Port: "6379"},
		},
		Game: Game{WinLength: 5},
		Camera: Camera{
			GridSize:       15,
			CellSize:       40,
			MobileCellSize: 28,
			MinCellSize:    20,
			MaxCellSize:    72,
			ZoomStep:       4,
			ClickThreshold: 5,
		},
		Session: Session{
			CleanupInterval: time.Minute,
			MaxIdle:         time.Hour,
		},
	}
}

// Load reads the YAML file at path, overlaid by environment variables. A
// missing file is not an error: defaults and the environment are used.
func Load(path string) (*Config, error) {
	// defaults are filled in first so explicit zeros from the file or the
	// environment survive into Validate
	conf := Default()
	var err error
	if _, statErr := os.Stat(path); path != "" && statErr == nil {
		err = cleanenv.ReadConfig(path, conf)
	} else {
		err = cleanenv.ReadEnv(conf)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return conf, nil
}

// MustLoad is Load that panics on error.
func MustLoad(path string) *Config {
	conf, err := Load(path)
	if err != nil {
		panic(err)
	}
	return conf
}

func (c *Config) Validate() error {
	var errs []error
	if c.Game.WinLength < 1 {
		errs = append(errs, fmt.Errorf("win-length must be positive, got %d", c.Game.WinLength))
	}
	if c.Storage.Driver != storage.DriverSQLite && c.Storage.Driver != storage.DriverRedis {
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}
	if c.Session.CleanupInterval <= 0 {
		errs = append(errs, fmt.Errorf("cleanup-interval must be positive, got %v", c.Session.CleanupInterval))
	}
	if c.Session.MaxIdle <= 0 {
		errs = append(errs, fmt.Errorf("max-idle must be positive, got %v", c.Session.MaxIdle))
	}
	if c.Camera.CellSize < c.Camera.MinCellSize || c.Camera.CellSize > c.Camera.MaxCellSize {
		errs = append(errs, fmt.Errorf("cell-size %v outside [%v, %v]", c.Camera.CellSize, c.Camera.MinCellSize, c.Camera.MaxCellSize))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if err := c.CameraConfig().Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log-level: %w", err)
	}
	return level, nil
}

func (c *Config) CameraConfig() camera.Config {
	return camera.Config{
		GridSize:       c.Camera.GridSize,
		CellSize:       c.Camera.CellSize,
		MinCellSize:    c.Camera.MinCellSize,
		MaxCellSize:    c.Camera.MaxCellSize,
		ZoomStep:       c.Camera.ZoomStep,
		ClickThreshold: c.Camera.ClickThreshold,
	}
}

func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Driver:     c.Storage.Driver,
		SQLitePath: c.Storage.SQLitePath,
		RedisAddr:  c.Storage.Redis.Addr(),
		RedisDB:    c.Storage.Redis.DB,
	}
}

func (r Redis) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// NewLogger builds the JSON logger used by the binaries, writing to stdout.
func (c *Config) NewLogger() *slog.Logger {
	return c.NewLoggerTo(os.Stdout)
}

func (c *Config) NewLoggerTo(w io.Writer) *slog.Logger {
	level, _ := c.Level()
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
