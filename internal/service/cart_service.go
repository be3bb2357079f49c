package service

import (
	"context"
	"fmt"
	"time"

	"bazaar/internal/model"
	"bazaar/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// cartService implements CartService.
type cartService struct {
	cartRepo     repository.CartRepository
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
	logger       zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	wishlistRepo repository.WishlistRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo:     cartRepo,
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
		logger:       logger.With().Str("service", "cart").Logger(),
	}
}

func (s *cartService) List(ctx context.Context, actor model.Actor) (*model.CartView, error) {
	lines, err := s.cartRepo.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	view := &model.CartView{Items: lines, Total: decimal.Zero}
	if view.Items == nil {
		view.Items = []model.CartLine{}
	}
	for _, l := range lines {
		view.Total = view.Total.Add(l.LineTotal)
	}
	return view, nil
}

// Add puts a product in the cart, adding to the quantity of an existing entry.
func (s *cartService) Add(ctx context.Context, actor model.Actor, req model.AddToCartRequest) (*model.CartEntry, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireActiveProduct(ctx, req.ProductID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry := &model.CartEntry{
		ID:        uuid.New(),
		UserID:    actor.UserID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.cartRepo.AddOrIncrement(ctx, nil, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, actor model.Actor, id uuid.UUID, req model.UpdateCartRequest) (*model.CartEntry, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.ownedEntry(ctx, actor, id); err != nil {
		return nil, err
	}

	entry, err := s.cartRepo.UpdateQuantity(ctx, id, req.Quantity)
	if err != nil {
		if err == model.ErrNotFound {
			return nil, model.ErrCartEntryNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (s *cartService) Remove(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if _, err := s.ownedEntry(ctx, actor, id); err != nil {
		return err
	}
	return s.cartRepo.Delete(ctx, nil, id)
}

// MoveToWishlist records the product in the wishlist, unless already there,
// and deletes the cart entry in one transaction.
func (s *cartService) MoveToWishlist(ctx context.Context, actor model.Actor, id uuid.UUID) (err error) {
	entry, err := s.ownedEntry(ctx, actor, id)
	if err != nil {
		return err
	}

	tx, err := s.cartRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to move cart entry: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	wish := &model.WishlistEntry{
		ID:        uuid.New(),
		UserID:    actor.UserID,
		ProductID: entry.ProductID,
		CreatedAt: time.Now().UTC(),
	}
	if err = s.wishlistRepo.CreateIfAbsent(ctx, tx, wish); err != nil {
		return err
	}
	if err = s.cartRepo.Delete(ctx, tx, id); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to move cart entry: %w", err)
	}

	s.logger.Debug().
		Str("user_id", actor.UserID.String()).
		Str("product_id", entry.ProductID.String()).
		Msg("cart entry moved to wishlist")
	return nil
}

func (s *cartService) ownedEntry(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.CartEntry, error) {
	entry, err := s.cartRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, model.ErrCartEntryNotFound
	}
	if err := authorizeLookup(actor, Resource{Kind: OwnedByUser, OwnerID: entry.UserID}, model.ErrCartEntryNotFound); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *cartService) requireActiveProduct(ctx context.Context, id uuid.UUID) error {
	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get product: %w", err)
	}
	if p == nil || !p.IsActive {
		return model.ErrProductNotFound
	}
	return nil
}

// wishlistService implements WishlistService.
type wishlistService struct {
	wishlistRepo repository.WishlistRepository
	cartRepo     repository.CartRepository
	productRepo  repository.ProductRepository
	logger       zerolog.Logger
}

// NewWishlistService creates a new wishlist service.
func NewWishlistService(
	wishlistRepo repository.WishlistRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) WishlistService {
	return &wishlistService{
		wishlistRepo: wishlistRepo,
		cartRepo:     cartRepo,
		productRepo:  productRepo,
		logger:       logger.With().Str("service", "wishlist").Logger(),
	}
}

func (s *wishlistService) List(ctx context.Context, actor model.Actor) ([]model.WishlistEntry, error) {
	entries, err := s.wishlistRepo.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []model.WishlistEntry{}
	}
	return entries, nil
}

func (s *wishlistService) Add(ctx context.Context, actor model.Actor, req model.AddToWishlistRequest) (*model.WishlistEntry, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	p, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if p == nil || !p.IsActive {
		return nil, model.ErrProductNotFound
	}

	entry := &model.WishlistEntry{
		ID:        uuid.New(),
		UserID:    actor.UserID,
		ProductID: req.ProductID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.wishlistRepo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *wishlistService) Remove(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if _, err := s.ownedEntry(ctx, actor, id); err != nil {
		return err
	}
	return s.wishlistRepo.Delete(ctx, nil, id)
}

// MoveToCart adds one of the product to the cart and deletes the wishlist
// entry in one transaction.
func (s *wishlistService) MoveToCart(ctx context.Context, actor model.Actor, id uuid.UUID) (_ *model.CartEntry, err error) {
	if _, err := s.ownedEntry(ctx, actor, id); err != nil {
		return nil, err
	}

	tx, err := s.wishlistRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to move wishlist entry: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	wish, err := s.wishlistRepo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if wish == nil {
		err = model.ErrNotFound
		return nil, err
	}

	now := time.Now().UTC()
	entry := &model.CartEntry{
		ID:        uuid.New(),
		UserID:    actor.UserID,
		ProductID: wish.ProductID,
		Quantity:  1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err = s.cartRepo.AddOrIncrement(ctx, tx, entry); err != nil {
		return nil, err
	}
	if err = s.wishlistRepo.Delete(ctx, tx, id); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to move wishlist entry: %w", err)
	}
	return entry, nil
}

func (s *wishlistService) ownedEntry(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.WishlistEntry, error) {
	entry, err := s.wishlistRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, model.ErrNotFound
	}
	if err := authorizeLookup(actor, Resource{Kind: OwnedByUser, OwnerID: entry.UserID}, model.ErrNotFound); err != nil {
		return nil, err
	}
	return entry, nil
}
