package entity

import (
	"encoding/json"
	"time"
)

type DLQJob struct {
	JobID              string          `bson:"job_id"`
	Type               string          `bson:"type"`
	Payload            json.RawMessage `bson:"payload"`
	Status             string          `bson:"status"` // pending, retried, failed
	RetryCount         int             `bson:"retry_count"`
	OriginalRetryCount int             `bson:"original_retry_count"`
	ErrorMsg           string          `bson:"error_msg"`
	CreatedAt          time.Time       `bson:"created_at"`
	ExpireAt           time.Time       `bson:"expire_at"`
}
