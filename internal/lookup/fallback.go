package lookup

import (
	"context"
	"log/slog"
)

// FallbackBreachLookup tries the primary source and substitutes the
// fallback when the primary fails. The failure is logged, never
// surfaced; callers can tell which source answered from Breach.Source.
type FallbackBreachLookup struct {
	Primary  BreachLookup
	Fallback BreachLookup
	Logger   *slog.Logger
}

func NewFallbackBreachLookup(primary, fallback BreachLookup, logger *slog.Logger) *FallbackBreachLookup {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackBreachLookup{Primary: primary, Fallback: fallback, Logger: logger}
}

func (f *FallbackBreachLookup) FindBreaches(ctx context.Context, email string) ([]Breach, error) {
	breaches, err := f.Primary.FindBreaches(ctx, email)
	if err != nil {
		f.Logger.Warn("breach lookup failed, using synthetic fallback", "error", err)
		return f.Fallback.FindBreaches(ctx, email)
	}
	return breaches, nil
}
