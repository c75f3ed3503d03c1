package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"snippethub-backend/internal/shared"
)

// Client wraps asynq for the API side. All enqueue helpers are typed so
// payload shapes live in one place (internal/shared).
type Client struct {
	inner *asynq.Client
}

func NewClient(redisAddr, redisPassword string, redisDB int) *Client {
	return &Client{
		inner: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     redisAddr,
			Password: redisPassword,
			DB:       redisDB,
		}),
	}
}

func (c *Client) enqueue(ctx context.Context, taskType string, payload interface{}, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", taskType, err)
	}

	task := asynq.NewTask(taskType, data)
	if _, err := c.inner.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}

func (c *Client) EnqueueWelcomeEmail(ctx context.Context, p shared.WelcomeEmailPayload) error {
	return c.enqueue(ctx, shared.TypeSendWelcomeEmail, p, asynq.Queue("default"))
}

func (c *Client) EnqueuePublishedEmail(ctx context.Context, p shared.PublishedEmailPayload) error {
	return c.enqueue(ctx, shared.TypeSendPublishedEmail, p, asynq.Queue("default"))
}

func (c *Client) EnqueueProcessUpload(ctx context.Context, p shared.ProcessUploadPayload) error {
	return c.enqueue(ctx, shared.TypeProcessUpload, p, asynq.Queue("high"))
}

func (c *Client) Close() error {
	return c.inner.Close()
}
