package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	scheduledSetKey  = "scheduled_notifications"
	deadLetterSetKey = "scheduled_notifications_dead"
)

// ScheduleRepository holds deferred notification ids in a sorted set keyed
// by delivery time. Entries are peeked, dispatched, and only then
// acknowledged, so a crash mid-sweep cannot drop a queued send.
type ScheduleRepository struct {
	client *redis.Client
}

func NewScheduleRepository(client *redis.Client) *ScheduleRepository {
	return &ScheduleRepository{
		client: client,
	}
}

// Enqueue schedules a notification for delivery at deliverAt. Re-enqueueing
// the same id just moves its delivery time.
func (r *ScheduleRepository) Enqueue(ctx context.Context, notificationID uint, deliverAt time.Time) error {
	err := r.client.ZAdd(ctx, scheduledSetKey, redis.Z{
		Score:  float64(deliverAt.UnixMilli()),
		Member: strconv.FormatUint(uint64(notificationID), 10),
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to enqueue scheduled notification: %w", err)
	}

	return nil
}

// Due returns the ids of all notifications due by now, earliest first,
// without removing them.
func (r *ScheduleRepository) Due(ctx context.Context, now time.Time) ([]uint, error) {
	members, err := r.client.ZRangeByScore(ctx, scheduledSetKey, &redis.ZRangeBy{
		Min: "0",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read due notifications: %w", err)
	}

	ids := make([]uint, 0, len(members))
	for _, member := range members {
		id, err := strconv.ParseUint(member, 10, 64)
		if err != nil {
			// A malformed member can never dispatch; drop it.
			r.client.ZRem(ctx, scheduledSetKey, member)
			continue
		}
		ids = append(ids, uint(id))
	}

	return ids, nil
}

// Ack removes a dispatched (or terminally skipped) entry from the queue.
func (r *ScheduleRepository) Ack(ctx context.Context, notificationID uint) error {
	err := r.client.ZRem(ctx, scheduledSetKey, strconv.FormatUint(uint64(notificationID), 10)).Err()
	if err != nil {
		return fmt.Errorf("failed to ack scheduled notification: %w", err)
	}

	return nil
}

// DeadLetter moves an entry that has exhausted its retry budget to the
// dead-letter set, keyed by when it was parked.
func (r *ScheduleRepository) DeadLetter(ctx context.Context, notificationID uint, now time.Time) error {
	member := strconv.FormatUint(uint64(notificationID), 10)

	pipe := r.client.TxPipeline()
	pipe.ZRem(ctx, scheduledSetKey, member)
	pipe.ZAdd(ctx, deadLetterSetKey, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: member,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to dead-letter notification: %w", err)
	}

	return nil
}
