package jobs

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/net-super/api/internal/services"
)

func TestPubSubNewsletterPublisherPublishesMessage(t *testing.T) {
	ctx := context.Background()
	srv := pstest.NewServer()
	defer srv.Close()

	client, err := pubsub.NewClient(ctx, "test-project",
		option.WithEndpoint(srv.Addr),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	if err != nil {
		t.Fatalf("pubsub.NewClient: %v", err)
	}
	defer func() {
		_ = client.Close()
	}()

	topic, err := client.CreateTopic(ctx, "newsletter-dispatch")
	if err != nil {
		t.Fatalf("CreateTopic: %v", err)
	}

	publisher, err := NewPubSubNewsletterPublisher(topic)
	if err != nil {
		t.Fatalf("NewPubSubNewsletterPublisher: %v", err)
	}

	queuedAt := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	msg := services.NewsletterJobMessage{
		NewsletterID: "nl_test",
		SellerID:     "seller-1",
		Subject:      "旬の野菜セット入荷",
		QueuedAt:     queuedAt,
	}

	if _, err := publisher.PublishNewsletterJob(ctx, msg); err != nil {
		t.Fatalf("PublishNewsletterJob: %v", err)
	}

	messages := srv.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}

	var payload services.NewsletterJobMessage
	if err := json.Unmarshal(messages[0].Data, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.NewsletterID != msg.NewsletterID || payload.SellerID != msg.SellerID {
		t.Fatalf("unexpected payload %#v", payload)
	}
	if attr := messages[0].Attributes["newsletterId"]; attr != "nl_test" {
		t.Fatalf("expected newsletterId attribute, got %q", attr)
	}
	if _, ok := messages[0].Attributes["body"]; ok {
		t.Fatalf("body attribute should not be present")
	}
}
