package router

import (
	"net/http"

	"bazaar/internal/handler"
	"bazaar/internal/middleware"

	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Health   *handler.HealthHandler
	Auth     *handler.AuthHandler
	Product  *handler.ProductHandler
	Cart     *handler.CartHandler
	Order    *handler.OrderHandler
	Payment  *handler.PaymentHandler
	Delivery *handler.DeliveryHandler
	Quote    *handler.QuoteHandler
	Rental   *handler.RentalHandler
	Review   *handler.ReviewHandler
	Vendor   *handler.VendorHandler

	// Realtime serves the staff order feed. Optional.
	Realtime http.Handler
	// Media serves locally stored images under /media/. Optional.
	Media http.Handler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, tokens middleware.TokenParser, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	user := func(fn http.HandlerFunc) http.Handler { return middleware.RequireAuth(fn) }
	staff := func(fn http.HandlerFunc) http.Handler { return middleware.RequireStaff(fn) }
	vendor := func(fn http.HandlerFunc) http.Handler { return middleware.RequireVendor(fn) }

	// Probes
	mux.HandleFunc("GET /health", h.Health.Live)
	mux.HandleFunc("GET /ready", h.Health.Ready)

	// Accounts
	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)

	// Catalog
	mux.HandleFunc("GET /api/categories", h.Product.ListCategories)
	mux.Handle("POST /api/categories", staff(h.Product.CreateCategory))
	mux.HandleFunc("GET /api/categories/{id}/subcategories", h.Product.ListSubcategories)
	mux.Handle("POST /api/subcategories", staff(h.Product.CreateSubcategory))
	mux.HandleFunc("GET /api/products", h.Product.List)
	mux.HandleFunc("GET /api/products/{id}", h.Product.GetByID)
	mux.Handle("POST /api/products", vendor(h.Product.Create))
	mux.Handle("PUT /api/products/{id}", vendor(h.Product.Update))
	mux.Handle("POST /api/products/{id}/images", vendor(h.Product.UploadImage))

	// Rentals and reviews hang off the product
	mux.HandleFunc("GET /api/products/{id}/availability", h.Rental.Availability)
	mux.HandleFunc("GET /api/products/{id}/stats", h.Review.Stats)
	mux.HandleFunc("GET /api/products/{id}/reviews", h.Review.List)
	mux.Handle("POST /api/products/{id}/reviews", user(h.Review.Create))

	// Cart and wishlist
	mux.Handle("GET /api/cart", user(h.Cart.List))
	mux.Handle("POST /api/cart", user(h.Cart.Add))
	mux.Handle("PUT /api/cart/{id}", user(h.Cart.Update))
	mux.Handle("DELETE /api/cart/{id}", user(h.Cart.Remove))
	mux.Handle("POST /api/cart/{id}/move-to-wishlist", user(h.Cart.MoveToWishlist))
	mux.Handle("GET /api/wishlist", user(h.Cart.ListWishlist))
	mux.Handle("POST /api/wishlist", user(h.Cart.AddToWishlist))
	mux.Handle("DELETE /api/wishlist/{id}", user(h.Cart.RemoveFromWishlist))
	mux.Handle("POST /api/wishlist/{id}/move-to-cart", user(h.Cart.MoveToCart))

	// Orders
	mux.Handle("POST /api/orders", user(h.Order.Create))
	mux.Handle("GET /api/orders", user(h.Order.List))
	mux.Handle("GET /api/orders/{id}", user(h.Order.GetByID))
	mux.Handle("POST /api/orders/from-wishlist", user(h.Order.CreateFromWishlist))
	mux.Handle("POST /api/orders/{id}/retry-payment", user(h.Order.RetryPayment))
	mux.Handle("POST /api/orders/{id}/status", staff(h.Order.UpdateStatus))

	// Gateway callback; the signature is the credential
	mux.HandleFunc("POST /api/payments/webhook", h.Payment.Webhook)

	// Deliveries
	mux.Handle("GET /api/deliveries/{id}/track", user(h.Delivery.Track))
	mux.Handle("PUT /api/deliveries/{id}/status", staff(h.Delivery.UpdateStatus))

	// Quotes
	mux.Handle("GET /api/quotes", user(h.Quote.ListMine))
	mux.Handle("POST /api/quotes", user(h.Quote.Create))
	mux.Handle("GET /api/vendor/quotes", vendor(h.Quote.ListForVendor))
	mux.Handle("PUT /api/vendor/quotes/{id}", vendor(h.Quote.Respond))

	// Rentals
	mux.Handle("GET /api/rentals", user(h.Rental.ListMine))
	mux.Handle("POST /api/rentals", user(h.Rental.Create))
	mux.Handle("GET /api/vendor/rentals", vendor(h.Rental.ListForVendor))
	mux.Handle("PUT /api/vendor/rentals/{id}", vendor(h.Rental.Respond))

	// Vendor dashboard
	mux.Handle("GET /api/vendor/dashboard", vendor(h.Vendor.Dashboard))
	mux.Handle("GET /api/vendor/products/export", vendor(h.Vendor.ExportProducts))

	if h.Realtime != nil {
		mux.Handle("GET /ws/orders", middleware.RequireStaff(h.Realtime))
	}
	if h.Media != nil {
		mux.Handle("GET /media/", http.StripPrefix("/media/", h.Media))
	}

	// Apply middleware in order: Recovery -> RequestID -> Logging -> CORS -> Authenticate
	var handler http.Handler = mux
	handler = middleware.Authenticate(tokens, logger)(handler)
	handler = middleware.CORS(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID(logger)(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
