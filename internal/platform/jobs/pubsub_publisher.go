package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/pubsub"

	"github.com/net-super/api/internal/services"
)

// PubSubNewsletterPublisher publishes newsletter dispatch jobs to a Pub/Sub topic.
// A worker outside this API fans the mailing out to subscribed customers.
type PubSubNewsletterPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

// NewPubSubNewsletterPublisher constructs a Pub/Sub backed newsletter job publisher.
func NewPubSubNewsletterPublisher(topic *pubsub.Topic) (*PubSubNewsletterPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub newsletter publisher: topic is required")
	}
	return &PubSubNewsletterPublisher{
		topic:   topic,
		marshal: json.Marshal,
	}, nil
}

// PublishNewsletterJob enqueues a newsletter dispatch message on the configured topic.
func (p *PubSubNewsletterPublisher) PublishNewsletterJob(ctx context.Context, message services.NewsletterJobMessage) (string, error) {
	if p == nil || p.topic == nil {
		return "", errors.New("pubsub newsletter publisher: not initialised")
	}

	data, err := p.marshal(message)
	if err != nil {
		return "", fmt.Errorf("marshal newsletter job: %w", err)
	}

	attrs := make(map[string]string)
	setAttr(attrs, "newsletterId", message.NewsletterID)
	setAttr(attrs, "sellerId", message.SellerID)

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	})

	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish newsletter job: %w", err)
	}
	return id, nil
}

func setAttr(attrs map[string]string, key string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		attrs[key] = v
	}
}
