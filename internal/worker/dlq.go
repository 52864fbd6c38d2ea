package worker

// Jobs that exhaust their retries land in a dead-letter list, one per source
// queue (dlq:{queue}), where an operator can inspect or replay them.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry is the failed job plus enough context to diagnose it.
type DLQEntry struct {
	Queue    string          `json:"queue"`
	JobType  string          `json:"job_type"`
	Payload  json.RawMessage `json:"payload"`
	Error    string          `json:"error"`
	Attempts int             `json:"attempts"`
	FailedAt time.Time       `json:"failed_at"`
}

// SendToDLQ parks a job that exceeded maxAttempts. Best-effort: a Redis
// failure here is logged and the job is lost, matching the at-most-once
// guarantee of the report/email pipeline.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, job Job, cause error) {
	entry := DLQEntry{
		Queue:    queue,
		JobType:  job.Type,
		Payload:  job.Payload,
		Error:    cause.Error(),
		Attempts: job.Attempts,
		FailedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}

	key := DLQPrefix + queue
	if err := rdb.LPush(ctx, key, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", key).Msg("dlq: failed to push entry")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("job_type", job.Type).
		Str("error", entry.Error).
		Int("attempts", job.Attempts).
		Msg("dlq: job moved to dead letter queue")
}

// DLQLength reports the dead-letter depth for one source queue.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}
