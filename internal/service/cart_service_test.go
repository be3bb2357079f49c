package service

import (
	"context"
	"testing"

	"bazaar/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCartService_List(t *testing.T) {
	ctx := context.Background()
	cartRepo := new(MockCartRepository)
	svc := NewCartService(cartRepo, new(MockWishlistRepository), new(MockProductRepository), zerolog.Nop())
	user := model.Actor{UserID: uuid.New()}

	lines := []model.CartLine{
		{CartEntry: model.CartEntry{ID: uuid.New(), Quantity: 2}, ProductPrice: decimal.RequireFromString("10.25"), LineTotal: decimal.RequireFromString("20.50")},
		{CartEntry: model.CartEntry{ID: uuid.New(), Quantity: 1}, ProductPrice: decimal.RequireFromString("4.50"), LineTotal: decimal.RequireFromString("4.50")},
	}
	cartRepo.On("ListByUser", ctx, user.UserID).Return(lines, nil)

	view, err := svc.List(ctx, user)

	require.NoError(t, err)
	assert.Len(t, view.Items, 2)
	assert.Equal(t, "25.00", view.Total.StringFixed(2))
}

func TestCartService_Add(t *testing.T) {
	ctx := context.Background()
	user := model.Actor{UserID: uuid.New()}

	t.Run("Defaults quantity to one", func(t *testing.T) {
		cartRepo := new(MockCartRepository)
		productRepo := new(MockProductRepository)
		svc := NewCartService(cartRepo, new(MockWishlistRepository), productRepo, zerolog.Nop())
		product := &model.Product{ID: uuid.New(), IsActive: true}

		productRepo.On("GetByID", ctx, product.ID).Return(product, nil)
		cartRepo.On("AddOrIncrement", ctx, nil, mock.MatchedBy(func(e *model.CartEntry) bool {
			return e.Quantity == 1 && e.UserID == user.UserID && e.ProductID == product.ID
		})).Return(nil)

		entry, err := svc.Add(ctx, user, model.AddToCartRequest{ProductID: product.ID})

		require.NoError(t, err)
		assert.Equal(t, 1, entry.Quantity)
		cartRepo.AssertExpectations(t)
	})

	t.Run("Inactive product", func(t *testing.T) {
		cartRepo := new(MockCartRepository)
		productRepo := new(MockProductRepository)
		svc := NewCartService(cartRepo, new(MockWishlistRepository), productRepo, zerolog.Nop())
		product := &model.Product{ID: uuid.New()}

		productRepo.On("GetByID", ctx, product.ID).Return(product, nil)

		_, err := svc.Add(ctx, user, model.AddToCartRequest{ProductID: product.ID, Quantity: 3})

		require.ErrorIs(t, err, model.ErrProductNotFound)
		cartRepo.AssertNotCalled(t, "AddOrIncrement", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCartService_Ownership(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	entry := &model.CartEntry{ID: uuid.New(), UserID: owner, ProductID: uuid.New(), Quantity: 1}

	t.Run("Stranger cannot update", func(t *testing.T) {
		cartRepo := new(MockCartRepository)
		svc := NewCartService(cartRepo, new(MockWishlistRepository), new(MockProductRepository), zerolog.Nop())
		cartRepo.On("GetByID", ctx, entry.ID).Return(entry, nil)

		_, err := svc.UpdateQuantity(ctx, model.Actor{UserID: uuid.New()}, entry.ID, model.UpdateCartRequest{Quantity: 4})

		require.ErrorIs(t, err, model.ErrCartEntryNotFound)
		cartRepo.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Owner removes", func(t *testing.T) {
		cartRepo := new(MockCartRepository)
		svc := NewCartService(cartRepo, new(MockWishlistRepository), new(MockProductRepository), zerolog.Nop())
		cartRepo.On("GetByID", ctx, entry.ID).Return(entry, nil)
		cartRepo.On("Delete", ctx, nil, entry.ID).Return(nil)

		require.NoError(t, svc.Remove(ctx, model.Actor{UserID: owner}, entry.ID))
		cartRepo.AssertExpectations(t)
	})

	t.Run("Zero quantity rejected", func(t *testing.T) {
		cartRepo := new(MockCartRepository)
		svc := NewCartService(cartRepo, new(MockWishlistRepository), new(MockProductRepository), zerolog.Nop())

		_, err := svc.UpdateQuantity(ctx, model.Actor{UserID: owner}, entry.ID, model.UpdateCartRequest{Quantity: 0})

		assert.True(t, model.IsValidation(err))
	})
}

func TestCartService_MoveToWishlist(t *testing.T) {
	ctx := context.Background()
	user := model.Actor{UserID: uuid.New()}
	entry := &model.CartEntry{ID: uuid.New(), UserID: user.UserID, ProductID: uuid.New(), Quantity: 2}

	cartRepo := new(MockCartRepository)
	wishlistRepo := new(MockWishlistRepository)
	tx := new(MockTx)
	svc := NewCartService(cartRepo, wishlistRepo, new(MockProductRepository), zerolog.Nop())

	cartRepo.On("GetByID", ctx, entry.ID).Return(entry, nil)
	cartRepo.On("BeginTx", ctx).Return(tx, nil)
	wishlistRepo.On("CreateIfAbsent", ctx, tx, mock.MatchedBy(func(w *model.WishlistEntry) bool {
		return w.ProductID == entry.ProductID && w.UserID == user.UserID
	})).Return(nil)
	cartRepo.On("Delete", ctx, tx, entry.ID).Return(nil)
	tx.On("Commit", ctx).Return(nil)

	require.NoError(t, svc.MoveToWishlist(ctx, user, entry.ID))
	cartRepo.AssertExpectations(t)
	wishlistRepo.AssertExpectations(t)
	tx.AssertNotCalled(t, "Rollback", mock.Anything)
}

func TestWishlistService_MoveToCart(t *testing.T) {
	ctx := context.Background()
	user := model.Actor{UserID: uuid.New()}
	wish := &model.WishlistEntry{ID: uuid.New(), UserID: user.UserID, ProductID: uuid.New()}

	t.Run("Success", func(t *testing.T) {
		cartRepo := new(MockCartRepository)
		wishlistRepo := new(MockWishlistRepository)
		tx := new(MockTx)
		svc := NewWishlistService(wishlistRepo, cartRepo, new(MockProductRepository), zerolog.Nop())

		wishlistRepo.On("GetByID", ctx, wish.ID).Return(wish, nil)
		wishlistRepo.On("BeginTx", ctx).Return(tx, nil)
		wishlistRepo.On("GetForUpdate", ctx, tx, wish.ID).Return(wish, nil)
		cartRepo.On("AddOrIncrement", ctx, tx, mock.MatchedBy(func(e *model.CartEntry) bool {
			return e.Quantity == 1 && e.ProductID == wish.ProductID
		})).Return(nil)
		wishlistRepo.On("Delete", ctx, tx, wish.ID).Return(nil)
		tx.On("Commit", ctx).Return(nil)

		entry, err := svc.MoveToCart(ctx, user, wish.ID)

		require.NoError(t, err)
		assert.Equal(t, wish.ProductID, entry.ProductID)
		wishlistRepo.AssertExpectations(t)
		cartRepo.AssertExpectations(t)
	})

	t.Run("Entry vanished under lock", func(t *testing.T) {
		cartRepo := new(MockCartRepository)
		wishlistRepo := new(MockWishlistRepository)
		tx := new(MockTx)
		svc := NewWishlistService(wishlistRepo, cartRepo, new(MockProductRepository), zerolog.Nop())

		wishlistRepo.On("GetByID", ctx, wish.ID).Return(wish, nil)
		wishlistRepo.On("BeginTx", ctx).Return(tx, nil)
		wishlistRepo.On("GetForUpdate", ctx, tx, wish.ID).Return(nil, nil)
		tx.On("Rollback", ctx).Return(nil)

		_, err := svc.MoveToCart(ctx, user, wish.ID)

		require.ErrorIs(t, err, model.ErrNotFound)
		cartRepo.AssertNotCalled(t, "AddOrIncrement", mock.Anything, mock.Anything, mock.Anything)
		tx.AssertExpectations(t)
	})
}

func TestWishlistService_Add(t *testing.T) {
	ctx := context.Background()
	user := model.Actor{UserID: uuid.New()}
	product := &model.Product{ID: uuid.New(), IsActive: true}

	wishlistRepo := new(MockWishlistRepository)
	productRepo := new(MockProductRepository)
	svc := NewWishlistService(wishlistRepo, new(MockCartRepository), productRepo, zerolog.Nop())

	productRepo.On("GetByID", ctx, product.ID).Return(product, nil)
	wishlistRepo.On("Create", ctx, mock.Anything).Return(model.ErrAlreadyInWishlist)

	_, err := svc.Add(ctx, user, model.AddToWishlistRequest{ProductID: product.ID})

	require.ErrorIs(t, err, model.ErrAlreadyInWishlist)
}
