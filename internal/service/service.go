package service

import (
	"context"
	"io"

	"bazaar/internal/model"

	"github.com/google/uuid"
)

// AuthService defines account registration and token handling.
type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error)

	// ParseToken validates a bearer token and returns the caller it names.
	ParseToken(token string) (model.Actor, error)
}

// CatalogService defines operations for categories, products and images.
type CatalogService interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, actor model.Actor, req model.CategoryRequest) (*model.Category, error)
	ListSubcategories(ctx context.Context, categoryID uuid.UUID) ([]model.Subcategory, error)
	CreateSubcategory(ctx context.Context, actor model.Actor, req model.CategoryRequest) (*model.Subcategory, error)

	// ListProducts retrieves active products with pagination.
	ListProducts(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetProduct retrieves a product with its images and review summary.
	GetProduct(ctx context.Context, id uuid.UUID) (*model.ProductDetail, error)
	CreateProduct(ctx context.Context, actor model.Actor, req model.ProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, actor model.Actor, id uuid.UUID, req model.ProductRequest) (*model.Product, error)

	// AddImage stores an uploaded picture and records it against the product.
	AddImage(ctx context.Context, actor model.Actor, productID uuid.UUID, upload model.ImageUpload) (*model.ProductImage, error)
}

// CartService defines operations on the caller's cart.
type CartService interface {
	List(ctx context.Context, actor model.Actor) (*model.CartView, error)
	Add(ctx context.Context, actor model.Actor, req model.AddToCartRequest) (*model.CartEntry, error)
	UpdateQuantity(ctx context.Context, actor model.Actor, id uuid.UUID, req model.UpdateCartRequest) (*model.CartEntry, error)
	Remove(ctx context.Context, actor model.Actor, id uuid.UUID) error

	// MoveToWishlist replaces a cart entry with a wishlist entry.
	MoveToWishlist(ctx context.Context, actor model.Actor, id uuid.UUID) error
}

// WishlistService defines operations on the caller's wishlist.
type WishlistService interface {
	List(ctx context.Context, actor model.Actor) ([]model.WishlistEntry, error)
	Add(ctx context.Context, actor model.Actor, req model.AddToWishlistRequest) (*model.WishlistEntry, error)
	Remove(ctx context.Context, actor model.Actor, id uuid.UUID) error

	// MoveToCart adds the product to the cart and drops the wishlist entry.
	MoveToCart(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.CartEntry, error)
}

// OrderService defines order placement and retrieval.
type OrderService interface {
	// CreateOrder checks out cart entries and opens a gateway order.
	CreateOrder(ctx context.Context, actor model.Actor, req model.CreateOrderRequest) (*model.CheckoutResponse, error)

	// CreateFromWishlist checks out a single wishlist entry with quantity 1.
	CreateFromWishlist(ctx context.Context, actor model.Actor, req model.OrderFromWishlistRequest) (*model.CheckoutResponse, error)

	// RetryPayment opens a new gateway order for a PENDING or FAILED order.
	RetryPayment(ctx context.Context, actor model.Actor, orderID uuid.UUID) (*model.CheckoutResponse, error)

	List(ctx context.Context, actor model.Actor) ([]model.Order, error)
	Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.OrderDetail, error)

	// UpdateStatus cancels or refunds an order. Staff only.
	UpdateStatus(ctx context.Context, actor model.Actor, id uuid.UUID, req model.OrderStatusRequest) (*model.Order, error)
}

// PaymentService confirms payments reported by the gateway.
type PaymentService interface {
	ConfirmPayment(ctx context.Context, req model.PaymentWebhookRequest) (*model.PaymentResult, error)
}

// DeliveryService defines delivery tracking.
type DeliveryService interface {
	Track(ctx context.Context, actor model.Actor, deliveryID uuid.UUID) (*model.DeliveryTracking, error)
	UpdateStatus(ctx context.Context, actor model.Actor, deliveryID uuid.UUID, req model.DeliveryStatusRequest) (*model.Delivery, error)
}

// QuoteService defines quote requests and vendor responses.
type QuoteService interface {
	Create(ctx context.Context, actor model.Actor, req model.CreateQuoteRequest) (*model.Quote, error)
	ListMine(ctx context.Context, actor model.Actor) ([]model.Quote, error)
	ListForVendor(ctx context.Context, actor model.Actor) ([]model.Quote, error)
	Respond(ctx context.Context, actor model.Actor, id uuid.UUID, req model.VendorQuoteRequest) (*model.Quote, error)
}

// RentalService defines rental availability, booking and vendor responses.
type RentalService interface {
	Availability(ctx context.Context, productID uuid.UUID, want model.DateRange) (*model.Availability, error)
	Create(ctx context.Context, actor model.Actor, req model.CreateRentalRequest) (*model.Rental, error)
	ListMine(ctx context.Context, actor model.Actor) ([]model.Rental, error)
	ListForVendor(ctx context.Context, actor model.Actor) ([]model.Rental, error)
	Respond(ctx context.Context, actor model.Actor, id uuid.UUID, req model.VendorRentalRequest) (*model.Rental, error)
}

// ReviewService defines product reviews and their aggregates.
type ReviewService interface {
	Create(ctx context.Context, actor model.Actor, productID uuid.UUID, req model.CreateReviewRequest) (*model.Review, error)
	List(ctx context.Context, productID uuid.UUID) ([]model.Review, error)
	Stats(ctx context.Context, productID uuid.UUID) (*model.ReviewStats, error)
}

// VendorService defines the vendor's aggregate views.
type VendorService interface {
	Dashboard(ctx context.Context, actor model.Actor) (*model.VendorDashboard, error)

	// ExportProducts writes the vendor's products as an xlsx workbook.
	ExportProducts(ctx context.Context, actor model.Actor, w io.Writer) error
}
