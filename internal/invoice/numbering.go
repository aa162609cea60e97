package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// FinancialYear derives the Indian fiscal-year label for a date. The fiscal
// year starts in April: January–March belong to the year ending that
// calendar year, April onward to the year starting it.
func FinancialYear(t time.Time) string {
	year := t.Year()
	if int(t.Month()) >= 4 {
		return fmt.Sprintf("%d-%d", year, year+1)
	}
	return fmt.Sprintf("%d-%d", year-1, year)
}

// FormatInvoiceNumber builds the human-readable invoice number
// SF/<calendarYear>/<4-digit sequence>. Uniqueness is not guaranteed here;
// the unique index on invoices.invoice_number is the authority, and a
// collision surfaces as ErrDuplicateInvoice at create time.
func FormatInvoiceNumber(seq int64, t time.Time) string {
	return fmt.Sprintf("SF/%d/%04d", t.Year(), seq)
}

// Sequencer hands out the next candidate sequence number for a financial
// year. Best effort only; the store's unique index remains the authority.
type Sequencer interface {
	Next(ctx context.Context, financialYear string) (int64, error)
}

// RedisSequencer allocates sequence numbers with a per-financial-year INCR
// so concurrent workers rarely collide on the candidate number.
type RedisSequencer struct {
	rdb *redis.Client
}

func NewRedisSequencer(rdb *redis.Client) *RedisSequencer {
	return &RedisSequencer{rdb: rdb}
}

func (s *RedisSequencer) Next(ctx context.Context, financialYear string) (int64, error) {
	key := "invoice:seq:" + financialYear
	seq, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis sequence incr failed: %w", err)
	}
	return seq, nil
}
