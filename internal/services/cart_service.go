package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/net-super/api/internal/repositories"
)

// ErrCartInvalidInput indicates the caller supplied invalid input.
var ErrCartInvalidInput = errors.New("cart service: invalid input")

// ErrCartUnavailable indicates the cart store cannot fulfil the request.
var ErrCartUnavailable = errors.New("cart service: unavailable")

// CartServiceDeps wires the cart store for cart operations.
type CartServiceDeps struct {
	Repository repositories.CartRepository
	Clock      func() time.Time
	Logger     func(context.Context, string, map[string]any)
}

type cartService struct {
	repo   repositories.CartRepository
	now    func() time.Time
	logger func(context.Context, string, map[string]any)
}

var _ CartService = (*cartService)(nil)

// NewCartService constructs a CartService enforcing dependency validation.
func NewCartService(deps CartServiceDeps) (CartService, error) {
	if deps.Repository == nil {
		return nil, errors.New("cart service: repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &cartService{
		repo:   deps.Repository,
		now:    func() time.Time { return clock().UTC() },
		logger: logger,
	}, nil
}

// GetCart loads the persisted cart. An account without a cart document gets an
// empty cart, not an error.
func (s *cartService) GetCart(ctx context.Context, userID string) (Cart, error) {
	if s == nil || s.repo == nil {
		return Cart{}, ErrCartUnavailable
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return Cart{}, fmt.Errorf("%w: user id is required", ErrCartInvalidInput)
	}

	cart, err := s.repo.Get(ctx, uid)
	if err != nil {
		if repositories.IsNotFound(err) {
			return Cart{UserID: uid, Lines: []CartLine{}}, nil
		}
		return Cart{}, fmt.Errorf("%w: %v", ErrCartUnavailable, err)
	}
	return cart, nil
}

// ReplaceCart overwrites the persisted cart with the supplied snapshot.
// Writes are last-write-wins across tabs; the most recent replace is the cart.
func (s *cartService) ReplaceCart(ctx context.Context, cmd ReplaceCartCommand) (Cart, error) {
	if s == nil || s.repo == nil {
		return Cart{}, ErrCartUnavailable
	}
	uid := strings.TrimSpace(cmd.UserID)
	if uid == "" {
		return Cart{}, fmt.Errorf("%w: user id is required", ErrCartInvalidInput)
	}
	lines, err := validateCartLines(cmd.Lines)
	if err != nil {
		return Cart{}, err
	}

	saved, err := s.repo.Save(ctx, Cart{UserID: uid, Lines: lines})
	if err != nil {
		return Cart{}, fmt.Errorf("%w: %v", ErrCartUnavailable, err)
	}

	s.logger(ctx, "cart.replaced", map[string]any{
		"userId":    uid,
		"lineCount": len(lines),
	})
	return saved, nil
}

// MergeGuestCart folds a pre-login guest cart into the account cart: account
// lines keep their position, quantities of shared products are summed, and
// guest-only lines append in their original order. The read-merge-write runs
// inside the repository's transactional Update so a concurrent replace from
// another tab cannot interleave with the merge.
func (s *cartService) MergeGuestCart(ctx context.Context, cmd MergeGuestCartCommand) (Cart, error) {
	if s == nil || s.repo == nil {
		return Cart{}, ErrCartUnavailable
	}
	uid := strings.TrimSpace(cmd.UserID)
	if uid == "" {
		return Cart{}, fmt.Errorf("%w: user id is required", ErrCartInvalidInput)
	}
	guestLines, err := validateCartLines(cmd.GuestLines)
	if err != nil {
		return Cart{}, err
	}

	saved, err := s.repo.Update(ctx, uid, func(account Cart) Cart {
		account.Lines = mergeCartLines(account.Lines, guestLines)
		return account
	})
	if err != nil {
		return Cart{}, fmt.Errorf("%w: %v", ErrCartUnavailable, err)
	}

	s.logger(ctx, "cart.merged", map[string]any{
		"userId":     uid,
		"guestLines": len(guestLines),
		"lineCount":  len(saved.Lines),
	})
	return saved, nil
}

func validateCartLines(lines []CartLine) ([]CartLine, error) {
	out := make([]CartLine, 0, len(lines))
	for i, line := range lines {
		id := strings.TrimSpace(line.ProductID)
		if id == "" {
			return nil, fmt.Errorf("%w: line %d has no product id", ErrCartInvalidInput, i)
		}
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: line %d has non-positive quantity", ErrCartInvalidInput, i)
		}
		line.ProductID = id
		out = append(out, line)
	}
	return out, nil
}

func mergeCartLines(account []CartLine, guest []CartLine) []CartLine {
	merged := make([]CartLine, len(account))
	copy(merged, account)

	index := make(map[string]int, len(merged))
	for i, line := range merged {
		index[line.ProductID] = i
	}

	for _, line := range guest {
		if i, ok := index[line.ProductID]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}
	return merged
}
