package notify

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
)

// PubSub publishes completion notifications to a Cloud Pub/Sub topic.
type PubSub struct {
	topic *pubsub.Topic
}

// NewPubSub builds a PubSub notifier for the given project and topic.
func NewPubSub(ctx context.Context, projectID, topicName string) (*PubSub, error) {
	if projectID == "" || topicName == "" {
		return nil, fmt.Errorf("pubsub project id and topic name are required")
	}
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	return &PubSub{topic: client.Topic(topicName)}, nil
}

// NewPubSubWithTopic wraps an existing topic (primarily for testing).
func NewPubSubWithTopic(topic *pubsub.Topic) *PubSub {
	return &PubSub{topic: topic}
}

// Notify publishes the message and waits for the server-assigned ID.
func (p *PubSub) Notify(ctx context.Context, message string) error {
	if p.topic == nil {
		return fmt.Errorf("pubsub topic is not configured")
	}
	result := p.topic.Publish(ctx, &pubsub.Message{Data: []byte(message)})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}
