package infer

import (
	"fmt"

	"github.com/ncruces/go-strftime"
)

// Mode decides what happens to cells a committed conversion could not parse.
type Mode string

const (
	ModeBestEffort Mode = "best-effort"
	ModeStrict     Mode = "strict"
)

type Config struct {
	// ConfidenceThreshold is the minimum share of parsed cells, over all
	// rows including missing ones, for Fast to commit a column.
	ConfidenceThreshold float64 `mapstructure:"threshold"`

	// DateFormats are strftime patterns tried in order by Fast.
	DateFormats []string `mapstructure:"date_formats"`

	Mode Mode `mapstructure:"mode"`
}

func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: 0.8,
		DateFormats:         []string{"%Y-%m-%d", "%Y%m%d", "%Y/%m/%d"},
		Mode:                ModeBestEffort,
	}
}

// Validate checks the threshold range, the mode and every date pattern.
func (c Config) Validate() error {
	if c.ConfidenceThreshold <= 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence threshold must be in (0, 1], got %v", c.ConfidenceThreshold)
	}
	switch c.Mode {
	case ModeBestEffort, ModeStrict:
	default:
		return fmt.Errorf("unsupported mode: %s", c.Mode)
	}
	for _, f := range c.DateFormats {
		if _, err := strftime.Layout(f); err != nil {
			return fmt.Errorf("invalid date format %q: %w", f, err)
		}
	}
	return nil
}
