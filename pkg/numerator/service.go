// Package numerator provides document auto-numbering.
package numerator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"fleettrack/internal/core/id"
)

// Strategy defines the numbering generation strategy.
type Strategy int

const (
	// StrategyStrict uses UPSERT ... RETURNING for every number.
	// Sequential without gaps; suitable for accounting-grade documents.
	StrategyStrict Strategy = iota

	// StrategyCached allocates ranges of numbers in memory.
	// Faster; may leave gaps across restarts. Fine for internal documents.
	StrategyCached
)

// Options configuration for number generation.
type Options struct {
	Strategy Strategy

	// RangeSize is how many numbers a Cached allocation reserves. Default 50.
	RangeSize int64
}

// DefaultOptions returns standard options (Strict).
func DefaultOptions() *Options {
	return &Options{Strategy: StrategyStrict}
}

// Querier is the minimal database surface the numerator needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Config holds numbering configuration for one document kind.
type Config struct {
	// Prefix added to all numbers (e.g. "SE")
	Prefix string

	// IncludeYear inserts the year between prefix and counter
	IncludeYear bool

	// PadWidth is the minimum counter width (default 6)
	PadWidth int

	// ResetPeriod: "year", "month", "never"
	ResetPeriod string
}

// DefaultConfig returns the house format: PREFIX-XXXXXX, never reset.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		PadWidth:    6,
		ResetPeriod: "never",
	}
}

type cachedRange struct {
	current int64
	max     int64
}

// Service hands out document numbers backed by the sys_sequences table.
// Sequences are scoped per organization, so the same prefix counts
// independently in every org.
type Service struct {
	querier Querier

	cacheMu sync.Mutex
	ranges  map[string]*cachedRange
}

// New creates a numerator service.
func New(querier Querier) *Service {
	return &Service{
		querier: querier,
		ranges:  make(map[string]*cachedRange),
	}
}

// Next generates the next number for prefix in org using the default config.
func (s *Service) Next(ctx context.Context, orgID id.ID, prefix string) (string, error) {
	return s.GetNextNumber(ctx, orgID, DefaultConfig(prefix), nil, time.Now().UTC())
}

// GetNextNumber generates the next document number, e.g. SE-000001.
func (s *Service) GetNextNumber(ctx context.Context, orgID id.ID, cfg Config, opts *Options, period time.Time) (string, error) {
	if s == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}
	if opts == nil {
		opts = DefaultOptions()
	}

	key := buildKey(orgID, cfg, period)

	var (
		num int64
		err error
	)
	switch opts.Strategy {
	case StrategyCached:
		num, err = s.getNextCached(ctx, key, opts)
	default:
		num, err = s.getNextStrict(ctx, key)
	}
	if err != nil {
		return "", err
	}

	return formatNumber(cfg, period, num), nil
}

// SetNextNumber forces the counter value (migration and seed use).
func (s *Service) SetNextNumber(ctx context.Context, orgID id.ID, cfg Config, period time.Time, value int64) error {
	key := buildKey(orgID, cfg, period)

	var result int64
	err := s.querier.QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET current_val = $2
		RETURNING current_val
	`, key, value).Scan(&result)

	s.cacheMu.Lock()
	delete(s.ranges, key)
	s.cacheMu.Unlock()

	return err
}

func (s *Service) getNextStrict(ctx context.Context, key string) (int64, error) {
	var num int64
	err := s.querier.QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
		RETURNING current_val
	`, key).Scan(&num)
	if err != nil {
		return 0, fmt.Errorf("next number: %w", err)
	}
	return num, nil
}

func (s *Service) getNextCached(ctx context.Context, key string, opts *Options) (int64, error) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	rng, exists := s.ranges[key]
	if !exists {
		rng = &cachedRange{}
		s.ranges[key] = rng
	}

	if rng.current >= rng.max {
		size := opts.RangeSize
		if size <= 0 {
			size = 50
		}

		// current_val tracks the last value handed out, so bumping it by
		// size reserves the range (newMax-size, newMax].
		var newMax int64
		err := s.querier.QueryRow(ctx, `
			INSERT INTO sys_sequences (key, current_val)
			VALUES ($1, $2)
			ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + $2
			RETURNING current_val
		`, key, size).Scan(&newMax)
		if err != nil {
			return 0, fmt.Errorf("reserve range: %w", err)
		}

		rng.current = newMax - size
		rng.max = newMax
	}

	rng.current++
	return rng.current, nil
}

func buildKey(orgID id.ID, cfg Config, period time.Time) string {
	key := cfg.Prefix
	switch cfg.ResetPeriod {
	case "month":
		key = fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006_01"))
	case "year":
		key = fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006"))
	}
	return fmt.Sprintf("%s:%s", orgID, key)
}

func formatNumber(cfg Config, period time.Time, num int64) string {
	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 6
	}

	if cfg.IncludeYear {
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("2006"), padWidth, num)
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, padWidth, num)
}

// ParseNumber extracts the numeric part from a formatted number.
// Returns -1 if parsing fails.
func ParseNumber(formatted string) int64 {
	var num int64
	patterns := []string{
		"%*[^-]-%*d-%d",
		"%*[^-]-%d",
	}
	for _, pattern := range patterns {
		if _, err := fmt.Sscanf(formatted, pattern, &num); err == nil {
			return num
		}
	}
	return -1
}
