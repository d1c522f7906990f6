package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

const (
	gateReserved = 1
	gateSoldOut  = 0
	gateHolder   = 2
	gateNoStock  = 3
	minHolderTTL = time.Minute
)

// KEYS[1] stock counter, KEYS[2] holder marker, ARGV[1] marker ttl in ms.
var reserveScript = goredis.NewScript(`
if redis.call('exists', KEYS[2]) == 1 then
	return 2
end
local stock = redis.call('get', KEYS[1])
if not stock then
	return 3
end
if tonumber(stock) <= 0 then
	return 0
end
redis.call('decr', KEYS[1])
redis.call('set', KEYS[2], '1', 'PX', ARGV[1])
return 1
`)

// The unit only goes back when the marker was still there, so a double
// release cannot inflate stock.
var releaseScript = goredis.NewScript(`
if redis.call('del', KEYS[2]) == 1 and redis.call('exists', KEYS[1]) == 1 then
	redis.call('incr', KEYS[1])
end
return 0
`)

// ClaimGate keeps a per-template stock counter and a per-user holder marker
// so sold-out templates and repeated claims are rejected before Postgres.
// Postgres stays authoritative: the gate only ever says no early.
type ClaimGate struct {
	rdb *goredis.Client
}

func NewClaimGate(rdb *goredis.Client) *ClaimGate {
	return &ClaimGate{rdb: rdb}
}

func stockKey(couponID int64) string {
	return fmt.Sprintf("coupon:gate:stock:{%d}", couponID)
}

func holderKey(couponID, userID int64) string {
	return fmt.Sprintf("coupon:gate:holder:{%d}:%d", couponID, userID)
}

// Reserve returns true when a unit was taken. A template with no stock
// loaded passes through unreserved.
func (g *ClaimGate) Reserve(ctx context.Context, couponID, userID int64, ttl time.Duration) (bool, error) {
	if ttl < minHolderTTL {
		ttl = minHolderTTL
	}
	code, err := reserveScript.Run(ctx, g.rdb,
		[]string{stockKey(couponID), holderKey(couponID, userID)},
		ttl.Milliseconds(),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("claim gate reserve: %w", err)
	}

	switch code {
	case gateReserved:
		return true, nil
	case gateNoStock:
		return false, nil
	case gateSoldOut:
		return false, domain.ErrExhausted
	case gateHolder:
		return false, domain.ErrAlreadyClaimed
	default:
		return false, fmt.Errorf("unknown result code from claim gate: %d", code)
	}
}

// Release undoes a reservation whose database claim failed.
func (g *ClaimGate) Release(ctx context.Context, couponID, userID int64) error {
	err := releaseScript.Run(ctx, g.rdb, []string{stockKey(couponID), holderKey(couponID, userID)}).Err()
	if err != nil {
		return fmt.Errorf("claim gate release: %w", err)
	}
	return nil
}

// Forget drops the holder marker once the instance is used; the unit stays
// consumed and the user may claim again.
func (g *ClaimGate) Forget(ctx context.Context, couponID, userID int64) error {
	if err := g.rdb.Del(ctx, holderKey(couponID, userID)).Err(); err != nil {
		return fmt.Errorf("claim gate forget: %w", err)
	}
	return nil
}

// Reconcile overwrites the stock counters with the remaining units read from
// the database.
func (g *ClaimGate) Reconcile(ctx context.Context, stock map[int64]int) error {
	if len(stock) == 0 {
		return nil
	}
	pipe := g.rdb.Pipeline()
	for couponID, remaining := range stock {
		pipe.Set(ctx, stockKey(couponID), remaining, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("claim gate reconcile: %w", err)
	}
	return nil
}
