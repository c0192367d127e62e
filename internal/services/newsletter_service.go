package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/net-super/api/internal/repositories"
)

// ErrNewsletterInvalidInput indicates the caller supplied invalid input.
var ErrNewsletterInvalidInput = errors.New("newsletter service: invalid input")

// ErrNewsletterUnavailable indicates the mailing store cannot fulfil the request.
var ErrNewsletterUnavailable = errors.New("newsletter service: unavailable")

// ErrNewsletterDispatchFailed indicates the mailing was recorded but the
// delivery job could not be enqueued.
var ErrNewsletterDispatchFailed = errors.New("newsletter service: dispatch failed")

const maxNewsletterSubjectLength = 200

// NewsletterServiceDeps wires the mailing store and job publisher.
type NewsletterServiceDeps struct {
	Newsletters repositories.NewsletterRepository
	Publisher   NewsletterJobPublisher
	Clock       func() time.Time
	Logger      func(context.Context, string, map[string]any)
}

type newsletterService struct {
	newsletters repositories.NewsletterRepository
	publisher   NewsletterJobPublisher
	sanitizer   *bluemonday.Policy
	now         func() time.Time
	logger      func(context.Context, string, map[string]any)
}

var _ NewsletterService = (*newsletterService)(nil)

// NewNewsletterService constructs a NewsletterService enforcing dependency validation.
func NewNewsletterService(deps NewsletterServiceDeps) (NewsletterService, error) {
	if deps.Newsletters == nil {
		return nil, errors.New("newsletter service: newsletter repository is required")
	}
	if deps.Publisher == nil {
		return nil, errors.New("newsletter service: job publisher is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &newsletterService{
		newsletters: deps.Newsletters,
		publisher:   deps.Publisher,
		sanitizer:   bluemonday.UGCPolicy(),
		now:         func() time.Time { return clock().UTC() },
		logger:      logger,
	}, nil
}

// Send records the mailing and enqueues the delivery job. Bodies are
// sanitised before storage; the delivery worker renders them as-is.
func (s *newsletterService) Send(ctx context.Context, cmd SendNewsletterCommand) (Newsletter, error) {
	if s == nil || s.newsletters == nil {
		return Newsletter{}, ErrNewsletterUnavailable
	}
	seller := strings.TrimSpace(cmd.SellerID)
	if seller == "" {
		return Newsletter{}, fmt.Errorf("%w: seller id is required", ErrNewsletterInvalidInput)
	}
	subject := strings.TrimSpace(cmd.Subject)
	if subject == "" || len([]rune(subject)) > maxNewsletterSubjectLength {
		return Newsletter{}, fmt.Errorf("%w: subject is required", ErrNewsletterInvalidInput)
	}
	body := strings.TrimSpace(s.sanitizer.Sanitize(cmd.Body))
	if body == "" {
		return Newsletter{}, fmt.Errorf("%w: body is required", ErrNewsletterInvalidInput)
	}

	saved, err := s.newsletters.Insert(ctx, Newsletter{
		SellerID: seller,
		Subject:  subject,
		Body:     body,
		ImageURL: strings.TrimSpace(cmd.ImageURL),
		SentAt:   s.now(),
	})
	if err != nil {
		return Newsletter{}, fmt.Errorf("%w: %v", ErrNewsletterUnavailable, err)
	}

	messageID, err := s.publisher.PublishNewsletterJob(ctx, NewsletterJobMessage{
		NewsletterID: saved.ID,
		SellerID:     saved.SellerID,
		Subject:      saved.Subject,
		QueuedAt:     s.now(),
	})
	if err != nil {
		s.logger(ctx, "newsletter.dispatch_failed", map[string]any{
			"newsletterId": saved.ID,
			"sellerId":     saved.SellerID,
			"error":        err.Error(),
		})
		return saved, fmt.Errorf("%w: %v", ErrNewsletterDispatchFailed, err)
	}

	s.logger(ctx, "newsletter.dispatched", map[string]any{
		"newsletterId": saved.ID,
		"sellerId":     saved.SellerID,
		"messageId":    messageID,
	})
	return saved, nil
}

// ListBySeller returns the seller's mailings, most recent first.
func (s *newsletterService) ListBySeller(ctx context.Context, sellerID string) ([]Newsletter, error) {
	if s == nil || s.newsletters == nil {
		return nil, ErrNewsletterUnavailable
	}
	seller := strings.TrimSpace(sellerID)
	if seller == "" {
		return nil, fmt.Errorf("%w: seller id is required", ErrNewsletterInvalidInput)
	}

	newsletters, err := s.newsletters.ListBySeller(ctx, seller)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNewsletterUnavailable, err)
	}
	return newsletters, nil
}
