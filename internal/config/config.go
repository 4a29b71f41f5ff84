package config

import (
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/painterhq/painter/internal/camera"
	"github.com/painterhq/painter/internal/engine"
	"github.com/painterhq/painter/internal/geom"
	"github.com/painterhq/painter/internal/tool"
)

type Config struct {
	Port           int     `envconfig:"PORT" default:"8080"`
	LogLevel       string  `envconfig:"LOG_LEVEL" default:"info"`
	DataDir        string  `envconfig:"DATA_DIR" default:"./data"`
	StoreDriver    string  `envconfig:"STORE_DRIVER" default:"sqlite"`
	SQLitePath     string  `envconfig:"SQLITE_PATH" default:"./data/painter.db"`
	DatabaseURL    string  `envconfig:"DATABASE_URL" default:""`
	AllowedOrigins string  `envconfig:"ALLOWED_ORIGINS" default:"localhost:5173,localhost:3000"`
	ViewportWidth  int     `envconfig:"VIEWPORT_WIDTH" default:"1280"`
	ViewportHeight int     `envconfig:"VIEWPORT_HEIGHT" default:"720"`
	BrushWidth     float64 `envconfig:"BRUSH_WIDTH" default:"3"`
	EraserRadius   float64 `envconfig:"ERASER_RADIUS" default:"7.5"`
	MinSampleDist  float64 `envconfig:"MIN_SAMPLE_DISTANCE" default:"2"`
	HitTolerance   float64 `envconfig:"HIT_TOLERANCE" default:"4"`
	HistoryDepth   int     `envconfig:"HISTORY_DEPTH" default:"100"`
	ThumbnailSize  int     `envconfig:"THUMBNAIL_SIZE" default:"256"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SlogLevel maps LOG_LEVEL onto a slog level. Unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Origins splits ALLOWED_ORIGINS into websocket origin patterns.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// ToolParams builds the tool parameters from the configured sizes.
func (c *Config) ToolParams() tool.Params {
	p := tool.DefaultParams()
	p.BrushWidth = c.BrushWidth
	p.EraserRadius = c.EraserRadius
	p.MinSampleDistance = c.MinSampleDist
	p.HitTolerance = c.HitTolerance
	return p
}

// EngineOptions builds the options for a new engine in mode.
func (c *Config) EngineOptions(mode geom.Mode, logger *slog.Logger) engine.Options {
	return engine.Options{
		Mode:         mode,
		Viewport:     camera.NewViewport(c.ViewportWidth, c.ViewportHeight),
		Params:       c.ToolParams(),
		HistoryDepth: c.HistoryDepth,
		Logger:       logger,
	}
}
