package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DOCPAGER_API_KEY", "")
	t.Setenv("PORT", "")
	cfg := Load()
	if cfg.Port != "8091" {
		t.Errorf("expected port 8091, got %s", cfg.Port)
	}
	if cfg.PageHeightThreshold != 1122 || cfg.ShrinkRatio != 0.9 {
		t.Errorf("expected A4 threshold 1122 and ratio 0.9, got %v and %v", cfg.PageHeightThreshold, cfg.ShrinkRatio)
	}
	if cfg.FullMeasureDebounce != 300*time.Millisecond {
		t.Errorf("expected 300ms debounce, got %s", cfg.FullMeasureDebounce)
	}
	if cfg.MaxSessions != 100 || cfg.SessionTTL != time.Hour {
		t.Errorf("expected 100 sessions for 1h, got %d for %s", cfg.MaxSessions, cfg.SessionTTL)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected a missing API key to fail validation")
	}
}

func TestLoad_EnvOverridesAndClamping(t *testing.T) {
	t.Setenv("DOCPAGER_API_KEY", "k")
	t.Setenv("PAGE_HEIGHT_THRESHOLD", "900")
	t.Setenv("SHRINK_RATIO", "1.5")
	t.Setenv("FULL_MEASURE_DEBOUNCE", "50ms")
	t.Setenv("MIN_BREAK_GAP_CHARS", "-1")
	t.Setenv("VIEWPORT_WIDTH", "not-a-number")
	t.Setenv("MAX_SESSIONS", "0")

	cfg := Load()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.PageHeightThreshold != 900 {
		t.Errorf("expected threshold 900, got %v", cfg.PageHeightThreshold)
	}
	if cfg.ShrinkRatio != 0.9 {
		t.Errorf("expected out-of-range ratio to fall back to 0.9, got %v", cfg.ShrinkRatio)
	}
	if cfg.MinBreakGapChars != 5 {
		t.Errorf("expected negative gap to fall back to 5, got %d", cfg.MinBreakGapChars)
	}
	if cfg.ViewportWidth != 794 {
		t.Errorf("expected unparsable width to fall back to 794, got %v", cfg.ViewportWidth)
	}
	if cfg.MaxSessions != 100 {
		t.Errorf("expected 100 sessions, got %d", cfg.MaxSessions)
	}

	p := cfg.Pagination()
	if p.PageHeightThreshold != 900 || p.FullMeasureDebounce != 50*time.Millisecond {
		t.Errorf("expected pagination options from env, got %+v", p)
	}
	if l := cfg.Layout(); l.Width != 794 || l.FontSize != 16 {
		t.Errorf("expected layout width 794 and font 16, got %v and %v", l.Width, l.FontSize)
	}
}
