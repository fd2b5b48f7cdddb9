package telemetry

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/oklog/ulid/v2"
)

// SQSSink publishes events onto the analytics queue.
type SQSSink struct {
	SQS      *sqs.Client
	QueueURL string
}

type event struct {
	ID        string         `json:"id"`
	EventType string         `json:"event_type"`
	Data      map[string]any `json:"data"`
	CreatedAt string         `json:"created_at"`
}

func (s *SQSSink) SendEvent(ctx context.Context, eventType string, data map[string]any) error {
	now := time.Now().UTC()
	body, err := json.Marshal(event{
		ID:        "event_" + ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		EventType: eventType,
		Data:      data,
		CreatedAt: now.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	msg := string(body)
	_, err = s.SQS.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    &s.QueueURL,
		MessageBody: &msg,
	})
	return err
}
