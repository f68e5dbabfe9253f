package provisioning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/go-petr/pet-roulette/internal/domain"
)

// RedisOutbox keeps provisioning tasks in a Redis list.
//
// Tasks are pushed on the left and claimed from the right into a processing
// list under key + ":processing", where they stay until acknowledged. Tasks
// that will not be retried go to a dead letter list under key + ":dead".
type RedisOutbox struct {
	client        redis.Cmdable
	key           string
	processingKey string
	deadKey       string
}

// NewRedisOutbox returns an outbox stored under key.
func NewRedisOutbox(client redis.Cmdable, key string) *RedisOutbox {
	return &RedisOutbox{
		client:        client,
		key:           key,
		processingKey: key + ":processing",
		deadKey:       key + ":dead",
	}
}

func encode(task domain.ProvisionTask) (string, error) {
	data, err := json.Marshal(task)
	if err != nil {
		return "", fmt.Errorf("marshal task %s: %w", task.ID, err)
	}

	return string(data), nil
}

// Push queues task for a retry.
func (o *RedisOutbox) Push(ctx context.Context, task domain.ProvisionTask) error {
	data, err := encode(task)
	if err != nil {
		return err
	}

	return o.client.LPush(ctx, o.key, data).Err()
}

// ErrCorruptTask is returned by Claim for a queued payload that does not
// decode. The payload has been moved to the dead letters.
var ErrCorruptTask = errors.New("corrupt provisioning task")

// Claim is a task taken from the outbox and not acknowledged yet.
type Claim struct {
	Task    domain.ProvisionTask
	payload string
}

// Claim moves the oldest queued task to the processing list. It reports
// false when the outbox is empty.
func (o *RedisOutbox) Claim(ctx context.Context) (Claim, bool, error) {
	var claim Claim

	data, err := o.client.RPopLPush(ctx, o.key, o.processingKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return claim, false, nil
		}

		return claim, false, err
	}

	claim.payload = data

	if err := json.Unmarshal([]byte(data), &claim.Task); err != nil {
		if err := o.quarantine(ctx, data); err != nil {
			return claim, false, err
		}

		return claim, false, fmt.Errorf("%w: %v", ErrCorruptTask, err)
	}

	return claim, true, nil
}

func (o *RedisOutbox) quarantine(ctx context.Context, data string) error {
	if err := o.client.LPush(ctx, o.deadKey, data).Err(); err != nil {
		return err
	}

	return o.client.LRem(ctx, o.processingKey, 1, data).Err()
}

// Ack drops a claimed task from the processing list.
func (o *RedisOutbox) Ack(ctx context.Context, claim Claim) error {
	return o.client.LRem(ctx, o.processingKey, 1, claim.payload).Err()
}

// Recover requeues every claimed task that was never acknowledged and
// returns how many were moved.
func (o *RedisOutbox) Recover(ctx context.Context) (int64, error) {
	var n int64

	for {
		err := o.client.RPopLPush(ctx, o.processingKey, o.key).Err()
		if errors.Is(err, redis.Nil) {
			return n, nil
		}

		if err != nil {
			return n, err
		}

		n++
	}
}

// Bury moves task to the dead letters.
func (o *RedisOutbox) Bury(ctx context.Context, task domain.ProvisionTask) error {
	data, err := encode(task)
	if err != nil {
		return err
	}

	return o.client.LPush(ctx, o.deadKey, data).Err()
}

// Len returns the number of queued tasks.
func (o *RedisOutbox) Len(ctx context.Context) (int64, error) {
	return o.client.LLen(ctx, o.key).Result()
}

// Audit returns the list lengths and at most limit queued and dead tasks, newest first.
func (o *RedisOutbox) Audit(ctx context.Context, limit int64) (domain.OutboxReport, error) {
	var (
		report domain.OutboxReport
		err    error
	)

	if report.Pending, err = o.client.LLen(ctx, o.key).Result(); err != nil {
		return report, err
	}

	if report.InFlight, err = o.client.LLen(ctx, o.processingKey).Result(); err != nil {
		return report, err
	}

	if report.DeadLetter, err = o.client.LLen(ctx, o.deadKey).Result(); err != nil {
		return report, err
	}

	if report.Items, err = o.list(ctx, o.key, limit); err != nil {
		return report, err
	}

	if report.Dead, err = o.list(ctx, o.deadKey, limit); err != nil {
		return report, err
	}

	return report, nil
}

func (o *RedisOutbox) list(ctx context.Context, key string, limit int64) ([]domain.ProvisionTask, error) {
	items := []domain.ProvisionTask{}

	if limit <= 0 {
		return items, nil
	}

	values, err := o.client.LRange(ctx, key, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}

	for _, v := range values {
		var task domain.ProvisionTask
		if err := json.Unmarshal([]byte(v), &task); err != nil {
			task = domain.ProvisionTask{LastError: fmt.Sprintf("%v: %v", ErrCorruptTask, err)}
		}

		items = append(items, task)
	}

	return items, nil
}
