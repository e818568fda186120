package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AvailabilityStore is the read projection of available seats per time slot.
// The intake frontend polls it; the capacity service rewrites it after every
// reservation or release. Losing it is harmless, the ledger table stays
// authoritative.
type AvailabilityStore interface {
	SetAvailable(ctx context.Context, visitDate time.Time, timeSlot string, available int) error
	GetAvailable(ctx context.Context, visitDate time.Time, timeSlot string) (int, bool, error)
	Close() error
}

type redisAvailability struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAvailabilityStore(addr, password string, db int, ttl time.Duration) (AvailabilityStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &redisAvailability{client: client, ttl: ttl}, nil
}

func slotKey(visitDate time.Time, timeSlot string) string {
	return fmt.Sprintf("availability:%s:%s", visitDate.Format("2006-01-02"), timeSlot)
}

func (r *redisAvailability) SetAvailable(ctx context.Context, visitDate time.Time, timeSlot string, available int) error {
	if err := r.client.Set(ctx, slotKey(visitDate, timeSlot), available, r.ttl).Err(); err != nil {
		return fmt.Errorf("set availability projection: %w", err)
	}
	return nil
}

func (r *redisAvailability) GetAvailable(ctx context.Context, visitDate time.Time, timeSlot string) (int, bool, error) {
	val, err := r.client.Get(ctx, slotKey(visitDate, timeSlot)).Int()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get availability projection: %w", err)
	}
	return val, true, nil
}

func (r *redisAvailability) Close() error {
	return r.client.Close()
}
