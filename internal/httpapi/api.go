// Package httpapi exposes the storefront over HTTP: the customer-facing
// catalog, cart, coupon and checkout routes plus the owner admin console.
package httpapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/urbanelite/storefront/internal/domain/account"
	"github.com/urbanelite/storefront/internal/domain/catalog"
	"github.com/urbanelite/storefront/internal/domain/checkout"
	"github.com/urbanelite/storefront/internal/domain/coupon"
	"github.com/urbanelite/storefront/internal/domain/review"
	"github.com/urbanelite/storefront/internal/payment"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product responses.
	// When empty, image paths are returned as stored in the database.
	ImageBaseURL string
	// SecureCookies sets the Secure flag on auth cookies.
	SecureCookies bool
}

// Handler routes HTTP requests to the domain services.
type Handler struct {
	cfg      Config
	tokens   *TokenManager
	validate *validator.Validate

	accounts    *account.Service
	accountRepo account.Repository
	owners      *account.OwnerService
	products    catalog.Repository
	coupons     coupon.Repository
	checkout    *checkout.Service
	orders      checkout.OrderStore
	reviews     *review.Service
	intents     payment.IntentCreator
	verifier    *payment.Verifier
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cfg Config,
	tokens *TokenManager,
	accounts *account.Service,
	accountRepo account.Repository,
	owners *account.OwnerService,
	products catalog.Repository,
	coupons coupon.Repository,
	checkoutSvc *checkout.Service,
	orders checkout.OrderStore,
	reviews *review.Service,
	intents payment.IntentCreator,
	verifier *payment.Verifier,
) *Handler {
	return &Handler{
		cfg:         cfg,
		tokens:      tokens,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		accounts:    accounts,
		accountRepo: accountRepo,
		owners:      owners,
		products:    products,
		coupons:     coupons,
		checkout:    checkoutSvc,
		orders:      orders,
		reviews:     reviews,
		intents:     intents,
		verifier:    verifier,
	}
}

// Routes registers every route on a fresh mux. Customer routes requiring a
// session are wrapped with requireAccount; the admin console with requireOwner.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Public.
	mux.HandleFunc("POST /users/register", h.handleRegister)
	mux.HandleFunc("POST /users/login", h.handleLogin)
	mux.HandleFunc("GET /users/logout", h.handleLogout)
	mux.HandleFunc("GET /products", h.handleListProducts)
	mux.HandleFunc("POST /shop/filter", h.handleFilterProducts)
	mux.HandleFunc("GET /search", h.handleSearch)
	mux.HandleFunc("GET /product/{id}", h.handleGetProduct)
	mux.HandleFunc("GET /api/reviews/{productID}", h.handleProductReviews)

	// Customer session.
	mux.Handle("GET /cart", h.requireAccount(h.handleViewCart))
	mux.Handle("GET /addtocart/{productID}", h.requireAccount(h.handleAddToCart))
	mux.Handle("GET /removefromcart/{productID}", h.requireAccount(h.handleRemoveFromCart))
	mux.Handle("GET /addtowishlist/{productID}", h.requireAccount(h.handleAddToWishlist))
	mux.Handle("GET /removefromwishlist/{productID}", h.requireAccount(h.handleRemoveFromWishlist))
	mux.Handle("GET /wishlist", h.requireAccount(h.handleViewWishlist))
	mux.Handle("GET /account", h.requireAccount(h.handleGetProfile))
	mux.Handle("POST /update-profile", h.requireAccount(h.handleUpdateProfile))
	mux.Handle("POST /change-password", h.requireAccount(h.handleChangePassword))
	mux.Handle("POST /apply-coupon", h.requireAccount(h.handleApplyCoupon))
	mux.Handle("POST /remove-coupon", h.requireAccount(h.handleRemoveCoupon))
	mux.Handle("GET /checkout", h.requireAccount(h.handleCheckoutQuote))
	mux.Handle("POST /process-payment", h.requireAccount(h.handleProcessPayment))
	mux.Handle("POST /payment/create-order", h.requireAccount(h.handleCreatePaymentOrder))
	mux.Handle("POST /payment/verify-payment", h.requireAccount(h.handleVerifyPayment))
	mux.Handle("GET /orders", h.requireAccount(h.handleListOrders))
	mux.Handle("GET /my-reviews", h.requireAccount(h.handleMyReviews))
	mux.Handle("POST /submit-review/{productID}", h.requireAccount(h.handleSubmitReview))

	// Admin console.
	mux.HandleFunc("POST /owners/login", h.handleOwnerLogin)
	mux.Handle("GET /owners/stats", h.requireOwner(h.handleOwnerStats))
	mux.Handle("GET /owners/orders", h.requireOwner(h.handleOwnerOrders))
	mux.Handle("GET /owners/reviews", h.requireOwner(h.handleOwnerReviews))
	mux.Handle("GET /owners/products", h.requireOwner(h.handleOwnerListProducts))
	mux.Handle("POST /owners/products", h.requireOwner(h.handleOwnerCreateProduct))
	mux.Handle("PUT /owners/products/{id}", h.requireOwner(h.handleOwnerUpdateProduct))
	mux.Handle("DELETE /owners/products/{id}", h.requireOwner(h.handleOwnerDeleteProduct))
	mux.Handle("GET /owners/coupons", h.requireOwner(h.handleOwnerListCoupons))
	mux.Handle("POST /owners/coupons", h.requireOwner(h.handleOwnerCreateCoupon))
	mux.Handle("PUT /owners/coupons/{code}", h.requireOwner(h.handleOwnerUpdateCoupon))
	mux.Handle("DELETE /owners/coupons/{code}", h.requireOwner(h.handleOwnerDeleteCoupon))

	return mux
}
