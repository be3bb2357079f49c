package repository

import (
	"context"

	"bazaar/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// UserRepository defines the interface for account data access operations.
type UserRepository interface {
	// Create inserts a user. Returns model.ErrEmailExists on a duplicate email.
	Create(ctx context.Context, user *model.User) error

	// GetByEmail retrieves a user by email, or nil when absent.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// GetByID retrieves a user by ID, or nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// CategoryRepository defines the interface for category and subcategory access.
type CategoryRepository interface {
	CreateCategory(ctx context.Context, c *model.Category) error
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error)
	CreateSubcategory(ctx context.Context, s *model.Subcategory) error
	ListSubcategories(ctx context.Context, categoryID uuid.UUID) ([]model.Subcategory, error)
	GetSubcategory(ctx context.Context, id uuid.UUID) (*model.Subcategory, error)
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	TxBeginner

	// GetAll retrieves active products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID, or nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetForUpdate retrieves and row-locks a product within tx.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Product, error)

	// ListByVendor retrieves every product owned by vendorID.
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]model.Product, error)

	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, p *model.Product) error

	// AddImage inserts an image. The first image of a product becomes its main image.
	AddImage(ctx context.Context, img *model.ProductImage) error
	ListImages(ctx context.Context, productID uuid.UUID) ([]model.ProductImage, error)

	// DecrementStock lowers stock for each item, never below zero.
	DecrementStock(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error
}

// CartRepository defines the interface for cart data access operations.
type CartRepository interface {
	TxBeginner

	// ListByUser returns the user's entries joined with current product prices.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CartLine, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.CartEntry, error)

	// AddOrIncrement inserts the entry, or adds its quantity to the existing
	// (user, product) row. q is a transaction, or nil to use the pool.
	AddOrIncrement(ctx context.Context, q DBTX, entry *model.CartEntry) error
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) (*model.CartEntry, error)
	Delete(ctx context.Context, q DBTX, id uuid.UUID) error

	// LockForCheckout row-locks the requested entries that belong to userID and
	// returns them with the product price read under the lock.
	LockForCheckout(ctx context.Context, tx pgx.Tx, userID uuid.UUID, ids []uuid.UUID) ([]CheckoutLine, error)

	// DeleteEntries removes consumed entries within tx.
	DeleteEntries(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) error
}

// WishlistRepository defines the interface for wishlist data access operations.
type WishlistRepository interface {
	TxBeginner

	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.WishlistEntry, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.WishlistEntry, error)

	// GetForUpdate retrieves and row-locks an entry within tx.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.WishlistEntry, error)

	// Create inserts an entry. Returns model.ErrAlreadyInWishlist on a duplicate.
	Create(ctx context.Context, entry *model.WishlistEntry) error

	// CreateIfAbsent inserts an entry unless (user, product) already exists.
	CreateIfAbsent(ctx context.Context, tx pgx.Tx, entry *model.WishlistEntry) error
	Delete(ctx context.Context, q DBTX, id uuid.UUID) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	TxBeginner

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// CreateDelivery inserts the delivery row of an order.
	CreateDelivery(ctx context.Context, tx pgx.Tx, d *model.Delivery) error

	// SetGatewayOrder stores a new gateway order id and sets status to PENDING.
	// Returns false when the order is neither PENDING nor FAILED.
	SetGatewayOrder(ctx context.Context, tx pgx.Tx, id uuid.UUID, gatewayOrderID string) (bool, error)

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// GetForUpdate retrieves and row-locks an order within tx.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// GetItems retrieves the items of an order.
	GetItems(ctx context.Context, q DBTX, orderID uuid.UUID) ([]model.OrderItem, error)

	// ListByUser retrieves a user's orders, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)

	// MarkPaid moves a PENDING order to PAID. Returns false when the order was
	// not PENDING.
	MarkPaid(ctx context.Context, tx pgx.Tx, id uuid.UUID, paymentID, signature string) (bool, error)

	// TransitionStatus moves an order from one status to another. Returns false
	// when the order was not in from.
	TransitionStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to model.OrderStatus) (bool, error)

	// HasPaidPurchase reports whether userID has a PAID order containing productID.
	HasPaidPurchase(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}

// DeliveryRepository defines the interface for delivery data access operations.
type DeliveryRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Delivery, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Delivery, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.DeliveryStatus, deliveredOn *model.Date) (*model.Delivery, error)
}

// QuoteRepository defines the interface for quote data access operations.
type QuoteRepository interface {
	Create(ctx context.Context, q *model.Quote) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Quote, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Quote, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]model.Quote, error)
	// Answer applies a vendor response to a pending quote and reports
	// whether the quote was still pending.
	Answer(ctx context.Context, q *model.Quote) (bool, error)
}

// RentalRepository defines the interface for rental data access operations.
type RentalRepository interface {
	TxBeginner

	Create(ctx context.Context, tx pgx.Tx, r *model.Rental) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Rental, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Rental, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Rental, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]model.Rental, error)

	// ListBlocking returns approved or active rentals of productID that overlap
	// the given range, excluding excludeID.
	ListBlocking(ctx context.Context, q DBTX, productID uuid.UUID, want model.DateRange, excludeID uuid.UUID) ([]model.Rental, error)
	Update(ctx context.Context, tx pgx.Tx, r *model.Rental) error
}

// ReviewRepository defines the interface for review data access operations.
type ReviewRepository interface {
	// Create inserts a review. Returns model.ErrDuplicateReview when the user
	// already reviewed the product.
	Create(ctx context.Context, r *model.Review) error
	ListApproved(ctx context.Context, productID uuid.UUID) ([]model.Review, error)

	// ApprovedStarCounts counts approved reviews of productID per star value.
	ApprovedStarCounts(ctx context.Context, productID uuid.UUID) (model.StarCounts, error)
}

// VendorRepository defines aggregate queries over a vendor's catalog.
type VendorRepository interface {
	Dashboard(ctx context.Context, vendorID uuid.UUID) (*model.VendorDashboard, error)
}

// CheckoutLine is a locked cart entry with the price read at checkout.
type CheckoutLine struct {
	Entry       model.CartEntry
	ProductName string
	Price       decimal.Decimal
}
