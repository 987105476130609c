package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgallion1/docpager/internal/layout"
	"github.com/dgallion1/docpager/internal/paginate"
)

type Config struct {
	Port string

	// Auth
	DocpagerAPIKey string

	// Pagination
	PageHeightThreshold float64
	ShrinkRatio         float64
	FullMeasureDebounce time.Duration
	LongPause           time.Duration
	MinBreakGapChars    int

	// Layout
	ViewportWidth float64
	FontSize      float64
	LineHeight    float64

	// Sessions
	MaxSessions int
	SessionTTL  time.Duration

	// Upload limits
	MaxUploadBytes int64

	// Stats
	PassStatsWindow time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	pd := paginate.DefaultOptions()
	ld := layout.DefaultOptions()
	cfg := Config{
		Port: envOr("PORT", "8091"),

		DocpagerAPIKey: os.Getenv("DOCPAGER_API_KEY"),

		PageHeightThreshold: envFloat("PAGE_HEIGHT_THRESHOLD", pd.PageHeightThreshold),
		ShrinkRatio:         envFloat("SHRINK_RATIO", pd.ShrinkRatio),
		FullMeasureDebounce: envDuration("FULL_MEASURE_DEBOUNCE", pd.FullMeasureDebounce),
		LongPause:           envDuration("LONG_PAUSE", pd.LongPause),
		MinBreakGapChars:    envInt("MIN_BREAK_GAP_CHARS", pd.MinBreakGapChars),

		ViewportWidth: envFloat("VIEWPORT_WIDTH", ld.Width),
		FontSize:      envFloat("FONT_SIZE", ld.FontSize),
		LineHeight:    envFloat("LINE_HEIGHT", ld.LineHeight),

		MaxSessions: envInt("MAX_SESSIONS", 100),
		SessionTTL:  envDuration("SESSION_TTL", 1*time.Hour),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		PassStatsWindow: envDuration("PASS_STATS_WINDOW", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.PageHeightThreshold <= 0 {
		cfg.PageHeightThreshold = pd.PageHeightThreshold
	}
	if cfg.ShrinkRatio <= 0 || cfg.ShrinkRatio > 1 {
		cfg.ShrinkRatio = pd.ShrinkRatio
	}
	if cfg.FullMeasureDebounce <= 0 {
		cfg.FullMeasureDebounce = pd.FullMeasureDebounce
	}
	if cfg.LongPause <= 0 {
		cfg.LongPause = pd.LongPause
	}
	if cfg.MinBreakGapChars < 0 {
		cfg.MinBreakGapChars = pd.MinBreakGapChars
	}
	if cfg.ViewportWidth <= 0 {
		cfg.ViewportWidth = ld.Width
	}
	if cfg.FontSize <= 0 {
		cfg.FontSize = ld.FontSize
	}
	if cfg.LineHeight <= 0 {
		cfg.LineHeight = ld.LineHeight
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 100
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 1 * time.Hour
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.PassStatsWindow <= 0 {
		cfg.PassStatsWindow = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.DocpagerAPIKey == "" {
		return fmt.Errorf("DOCPAGER_API_KEY is required")
	}
	return nil
}

// Pagination returns the controller options.
func (c Config) Pagination() paginate.Options {
	return paginate.Options{
		PageHeightThreshold: c.PageHeightThreshold,
		ShrinkRatio:         c.ShrinkRatio,
		FullMeasureDebounce: c.FullMeasureDebounce,
		LongPause:           c.LongPause,
		MinBreakGapChars:    c.MinBreakGapChars,
	}
}

// Layout returns the layout options at the configured viewport width.
func (c Config) Layout() layout.Options {
	o := layout.DefaultOptions()
	o.Width = c.ViewportWidth
	o.FontSize = c.FontSize
	o.LineHeight = c.LineHeight
	return o
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
