package model

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product types.
const (
	ProductTypeNew    = "new"
	ProductTypeUsed   = "used"
	ProductTypeRental = "rental"
)

// Selling methods.
const (
	SellingDirect = "direct"
	SellingQuote  = "quote"
	SellingBoth   = "both"
)

// Category is a top-level catalog grouping.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Subcategory belongs to exactly one Category.
type Subcategory struct {
	ID          uuid.UUID `json:"id"`
	CategoryID  uuid.UUID `json:"category_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Product is a vendor listing.
type Product struct {
	ID                uuid.UUID        `json:"id"`
	VendorID          uuid.UUID        `json:"vendor_id"`
	CategoryID        uuid.UUID        `json:"category_id"`
	SubcategoryID     uuid.UUID        `json:"subcategory_id"`
	Name              string           `json:"name"`
	Slug              string           `json:"slug"`
	Description       *string          `json:"description,omitempty"`
	Manufacturer      *string          `json:"manufacturer,omitempty"`
	Model             *string          `json:"model,omitempty"`
	Price             decimal.Decimal  `json:"price"`
	Type              string           `json:"type"`
	SellingMethod     string           `json:"selling_method"`
	IsActive          bool             `json:"is_active"`
	StockQuantity     int              `json:"stock_quantity"`
	MinOrderQuantity  int              `json:"min_order_quantity"`
	IsRentalAvailable bool             `json:"is_rental_available"`
	RentalPricePerDay *decimal.Decimal `json:"rental_price_per_day,omitempty"`
	MinRentalDays     int              `json:"min_rental_days"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// AllowsQuotes reports whether buyers may request a quote.
func (p *Product) AllowsQuotes() bool {
	return p.SellingMethod == SellingQuote || p.SellingMethod == SellingBoth
}

// ProductImage is an uploaded picture of a product.
type ProductImage struct {
	ID         uuid.UUID `json:"id"`
	ProductID  uuid.UUID `json:"product_id"`
	URL        string    `json:"url"`
	StorageKey string    `json:"-"`
	IsMain     bool      `json:"is_main"`
	AltText    *string   `json:"alt_text,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ProductDetail is a product with its images and review summary.
type ProductDetail struct {
	Product
	Images        []ProductImage `json:"images"`
	AverageRating *float64       `json:"average_rating"`
	ReviewCount   int            `json:"review_count"`
}

// CategoryRequest is used for both categories and subcategories.
type CategoryRequest struct {
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description *string    `json:"description,omitempty"`
}

func (r *CategoryRequest) Validate() error {
	var v Validator
	v.Required(r.Name, "name")
	if r.Slug == "" {
		r.Slug = Slugify(r.Name)
	}
	v.Check(IsSlug(r.Slug), "slug", "Enter a valid slug of letters, numbers, hyphens or underscores.")
	return v.Err()
}

// ProductRequest is the payload for creating or replacing a product.
type ProductRequest struct {
	CategoryID        uuid.UUID        `json:"category_id"`
	SubcategoryID     uuid.UUID        `json:"subcategory_id"`
	Name              string           `json:"name"`
	Slug              string           `json:"slug"`
	Description       *string          `json:"description,omitempty"`
	Manufacturer      *string          `json:"manufacturer,omitempty"`
	Model             *string          `json:"model,omitempty"`
	Price             decimal.Decimal  `json:"price"`
	Type              string           `json:"type"`
	SellingMethod     string           `json:"selling_method"`
	IsActive          *bool            `json:"is_active,omitempty"`
	StockQuantity     int              `json:"stock_quantity"`
	MinOrderQuantity  int              `json:"min_order_quantity"`
	IsRentalAvailable bool             `json:"is_rental_available"`
	RentalPricePerDay *decimal.Decimal `json:"rental_price_per_day,omitempty"`
	MinRentalDays     int              `json:"min_rental_days"`
}

// Validate applies defaults and checks the product rules.
func (r *ProductRequest) Validate() error {
	if r.Type == "" {
		r.Type = ProductTypeNew
	}
	if r.SellingMethod == "" {
		r.SellingMethod = SellingQuote
	}
	if r.MinOrderQuantity == 0 {
		r.MinOrderQuantity = 1
	}
	if r.MinRentalDays == 0 {
		r.MinRentalDays = 1
	}
	if r.Slug == "" {
		r.Slug = Slugify(r.Name)
	}

	var v Validator
	v.Required(r.Name, "name")
	v.Check(IsSlug(r.Slug), "slug", "Enter a valid slug of letters, numbers, hyphens or underscores.")
	v.Check(r.CategoryID != uuid.Nil, "category_id", "This field is required.")
	v.Check(r.SubcategoryID != uuid.Nil, "subcategory_id", "This field is required.")
	v.Check(r.Price.IsPositive(), "price", "Price must be greater than zero.")
	v.Check(r.Type == ProductTypeNew || r.Type == ProductTypeUsed || r.Type == ProductTypeRental,
		"type", "Type must be one of new, used, rental.")
	v.Check(r.SellingMethod == SellingDirect || r.SellingMethod == SellingQuote || r.SellingMethod == SellingBoth,
		"selling_method", "Selling method must be one of direct, quote, both.")
	v.Check(r.StockQuantity >= 0, "stock_quantity", "Stock quantity cannot be negative.")
	v.Check(r.MinOrderQuantity >= 1, "min_order_quantity", "Minimum order quantity must be at least 1.")
	v.Check(r.MinRentalDays >= 1, "min_rental_days", "Minimum rental days must be at least 1.")
	if r.IsRentalAvailable {
		if r.RentalPricePerDay == nil {
			v.Add("rental_price_per_day", "Rental price per day is required for rental products.")
		} else {
			v.Check(r.RentalPricePerDay.IsPositive(), "rental_price_per_day", "Rental price per day must be greater than zero.")
		}
	}
	return v.Err()
}

// Apply copies the request onto p.
func (r *ProductRequest) Apply(p *Product) {
	p.CategoryID = r.CategoryID
	p.SubcategoryID = r.SubcategoryID
	p.Name = strings.TrimSpace(r.Name)
	p.Slug = r.Slug
	p.Description = r.Description
	p.Manufacturer = r.Manufacturer
	p.Model = r.Model
	p.Price = r.Price
	p.Type = r.Type
	p.SellingMethod = r.SellingMethod
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
	p.StockQuantity = r.StockQuantity
	p.MinOrderQuantity = r.MinOrderQuantity
	p.IsRentalAvailable = r.IsRentalAvailable
	p.RentalPricePerDay = r.RentalPricePerDay
	p.MinRentalDays = r.MinRentalDays
}

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:[-_][a-z0-9]+)*$`)
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
)

// IsSlug reports whether s is a well-formed slug.
func IsSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// Slugify derives a slug from a display name.
func Slugify(name string) string {
	s := nonSlugChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return strings.Trim(s, "-")
}

// ImageUpload is a product picture received from a vendor.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
	AltText     *string
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

func (u ImageUpload) Validate() error {
	var v Validator
	v.Check(len(u.Data) > 0, "image", "An image file is required.")
	_, ok := imageExtensions[u.ContentType]
	v.Check(ok, "image", "Upload a valid image. Supported types are jpeg, png, gif, webp.")
	return v.Err()
}

// Extension returns the file extension for the upload's content type.
func (u ImageUpload) Extension() string {
	return imageExtensions[u.ContentType]
}
