package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"bazaar/internal/middleware"
	"bazaar/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

func stringBody(s string) io.Reader {
	return strings.NewReader(s)
}

func asActor(r *http.Request, a model.Actor) *http.Request {
	return r.WithContext(middleware.WithActor(r.Context(), a))
}

// MockAuthService is a mock implementation of AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthResponse), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthResponse), args.Error(1)
}

func (m *MockAuthService) ParseToken(token string) (model.Actor, error) {
	args := m.Called(token)
	return args.Get(0).(model.Actor), args.Error(1)
}

// MockCatalogService is a mock implementation of CatalogService.
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	categories, _ := args.Get(0).([]model.Category)
	return categories, args.Error(1)
}

func (m *MockCatalogService) CreateCategory(ctx context.Context, actor model.Actor, req model.CategoryRequest) (*model.Category, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCatalogService) ListSubcategories(ctx context.Context, categoryID uuid.UUID) ([]model.Subcategory, error) {
	args := m.Called(ctx, categoryID)
	subcategories, _ := args.Get(0).([]model.Subcategory)
	return subcategories, args.Error(1)
}

func (m *MockCatalogService) CreateSubcategory(ctx context.Context, actor model.Actor, req model.CategoryRequest) (*model.Subcategory, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subcategory), args.Error(1)
}

func (m *MockCatalogService) ListProducts(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	products, _ := args.Get(0).([]model.Product)
	return products, args.Error(1)
}

func (m *MockCatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*model.ProductDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductDetail), args.Error(1)
}

func (m *MockCatalogService) CreateProduct(ctx context.Context, actor model.Actor, req model.ProductRequest) (*model.Product, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockCatalogService) UpdateProduct(ctx context.Context, actor model.Actor, id uuid.UUID, req model.ProductRequest) (*model.Product, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockCatalogService) AddImage(ctx context.Context, actor model.Actor, productID uuid.UUID, upload model.ImageUpload) (*model.ProductImage, error) {
	args := m.Called(ctx, actor, productID, upload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductImage), args.Error(1)
}

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) List(ctx context.Context, actor model.Actor) (*model.CartView, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartView), args.Error(1)
}

func (m *MockCartService) Add(ctx context.Context, actor model.Actor, req model.AddToCartRequest) (*model.CartEntry, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartEntry), args.Error(1)
}

func (m *MockCartService) UpdateQuantity(ctx context.Context, actor model.Actor, id uuid.UUID, req model.UpdateCartRequest) (*model.CartEntry, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartEntry), args.Error(1)
}

func (m *MockCartService) Remove(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockCartService) MoveToWishlist(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

// MockWishlistService is a mock implementation of WishlistService.
type MockWishlistService struct {
	mock.Mock
}

func (m *MockWishlistService) List(ctx context.Context, actor model.Actor) ([]model.WishlistEntry, error) {
	args := m.Called(ctx, actor)
	entries, _ := args.Get(0).([]model.WishlistEntry)
	return entries, args.Error(1)
}

func (m *MockWishlistService) Add(ctx context.Context, actor model.Actor, req model.AddToWishlistRequest) (*model.WishlistEntry, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WishlistEntry), args.Error(1)
}

func (m *MockWishlistService) Remove(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockWishlistService) MoveToCart(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.CartEntry, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartEntry), args.Error(1)
}

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, actor model.Actor, req model.CreateOrderRequest) (*model.CheckoutResponse, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutResponse), args.Error(1)
}

func (m *MockOrderService) CreateFromWishlist(ctx context.Context, actor model.Actor, req model.OrderFromWishlistRequest) (*model.CheckoutResponse, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutResponse), args.Error(1)
}

func (m *MockOrderService) RetryPayment(ctx context.Context, actor model.Actor, orderID uuid.UUID) (*model.CheckoutResponse, error) {
	args := m.Called(ctx, actor, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutResponse), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, actor model.Actor) ([]model.Order, error) {
	args := m.Called(ctx, actor)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.OrderDetail, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderDetail), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, actor model.Actor, id uuid.UUID, req model.OrderStatusRequest) (*model.Order, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

// MockPaymentService is a mock implementation of PaymentService.
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) ConfirmPayment(ctx context.Context, req model.PaymentWebhookRequest) (*model.PaymentResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentResult), args.Error(1)
}

// MockRentalService is a mock implementation of RentalService.
type MockRentalService struct {
	mock.Mock
}

func (m *MockRentalService) Availability(ctx context.Context, productID uuid.UUID, want model.DateRange) (*model.Availability, error) {
	args := m.Called(ctx, productID, want)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Availability), args.Error(1)
}

func (m *MockRentalService) Create(ctx context.Context, actor model.Actor, req model.CreateRentalRequest) (*model.Rental, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Rental), args.Error(1)
}

func (m *MockRentalService) ListMine(ctx context.Context, actor model.Actor) ([]model.Rental, error) {
	args := m.Called(ctx, actor)
	rentals, _ := args.Get(0).([]model.Rental)
	return rentals, args.Error(1)
}

func (m *MockRentalService) ListForVendor(ctx context.Context, actor model.Actor) ([]model.Rental, error) {
	args := m.Called(ctx, actor)
	rentals, _ := args.Get(0).([]model.Rental)
	return rentals, args.Error(1)
}

func (m *MockRentalService) Respond(ctx context.Context, actor model.Actor, id uuid.UUID, req model.VendorRentalRequest) (*model.Rental, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Rental), args.Error(1)
}

// MockVendorService is a mock implementation of VendorService.
type MockVendorService struct {
	mock.Mock
}

func (m *MockVendorService) Dashboard(ctx context.Context, actor model.Actor) (*model.VendorDashboard, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VendorDashboard), args.Error(1)
}

func (m *MockVendorService) ExportProducts(ctx context.Context, actor model.Actor, w io.Writer) error {
	args := m.Called(ctx, actor, w)
	if body, ok := args.Get(1).(string); ok {
		io.WriteString(w, body)
	}
	return args.Error(0)
}

// MockDeliveryService is a mock implementation of DeliveryService.
type MockDeliveryService struct {
	mock.Mock
}

func (m *MockDeliveryService) Track(ctx context.Context, actor model.Actor, deliveryID uuid.UUID) (*model.DeliveryTracking, error) {
	args := m.Called(ctx, actor, deliveryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeliveryTracking), args.Error(1)
}

func (m *MockDeliveryService) UpdateStatus(ctx context.Context, actor model.Actor, deliveryID uuid.UUID, req model.DeliveryStatusRequest) (*model.Delivery, error) {
	args := m.Called(ctx, actor, deliveryID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Delivery), args.Error(1)
}

// MockReviewService is a mock implementation of ReviewService.
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) Create(ctx context.Context, actor model.Actor, productID uuid.UUID, req model.CreateReviewRequest) (*model.Review, error) {
	args := m.Called(ctx, actor, productID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Review), args.Error(1)
}

func (m *MockReviewService) List(ctx context.Context, productID uuid.UUID) ([]model.Review, error) {
	args := m.Called(ctx, productID)
	reviews, _ := args.Get(0).([]model.Review)
	return reviews, args.Error(1)
}

func (m *MockReviewService) Stats(ctx context.Context, productID uuid.UUID) (*model.ReviewStats, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReviewStats), args.Error(1)
}

// MockQuoteService is a mock implementation of QuoteService.
type MockQuoteService struct {
	mock.Mock
}

func (m *MockQuoteService) Create(ctx context.Context, actor model.Actor, req model.CreateQuoteRequest) (*model.Quote, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quote), args.Error(1)
}

func (m *MockQuoteService) ListMine(ctx context.Context, actor model.Actor) ([]model.Quote, error) {
	args := m.Called(ctx, actor)
	quotes, _ := args.Get(0).([]model.Quote)
	return quotes, args.Error(1)
}

func (m *MockQuoteService) ListForVendor(ctx context.Context, actor model.Actor) ([]model.Quote, error) {
	args := m.Called(ctx, actor)
	quotes, _ := args.Get(0).([]model.Quote)
	return quotes, args.Error(1)
}

func (m *MockQuoteService) Respond(ctx context.Context, actor model.Actor, id uuid.UUID, req model.VendorQuoteRequest) (*model.Quote, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quote), args.Error(1)
}
