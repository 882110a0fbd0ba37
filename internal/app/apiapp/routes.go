package apiapp

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/viraj01032007/setmystay/backend/internal/config"
	"github.com/viraj01032007/setmystay/backend/internal/domain/enums"
	authsvc "github.com/viraj01032007/setmystay/backend/internal/services/auth"
	entsvc "github.com/viraj01032007/setmystay/backend/internal/services/entitlements"
	intentsvc "github.com/viraj01032007/setmystay/backend/internal/services/intents"
	listingsvc "github.com/viraj01032007/setmystay/backend/internal/services/listings"
	mediasvc "github.com/viraj01032007/setmystay/backend/internal/services/media"
	paymentsvc "github.com/viraj01032007/setmystay/backend/internal/services/payments"
	promosvc "github.com/viraj01032007/setmystay/backend/internal/services/promos"
	savedsvc "github.com/viraj01032007/setmystay/backend/internal/services/saved"
	"github.com/viraj01032007/setmystay/backend/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService        *authsvc.Service
	EntitlementService *entsvc.Service
	PaymentService     *paymentsvc.Service
	SavedService       *savedsvc.Service
	ListingService     *listingsvc.Service
	IntentService      *intentsvc.Service
	PromoService       *promosvc.Service
	MediaService       *mediasvc.Service
	Logger             *zap.Logger
	Config             config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	configHandler := handlers.NewConfigHandler(deps.Config.Remote)
	authHandler := handlers.NewAuthHandler(deps.AuthService, deps.IntentService)
	listingsHandler := handlers.NewListingsHandler(deps.ListingService, deps.EntitlementService, deps.SavedService)
	purchaseHandler := handlers.NewPurchaseHandler(deps.PaymentService)
	savedHandler := handlers.NewSavedHandler(deps.SavedService)
	meHandler := handlers.NewMeHandler(deps.EntitlementService)
	promoHandler := handlers.NewPromoHandler(deps.PromoService)
	intentsHandler := handlers.NewIntentsHandler(deps.IntentService)
	mediaHandler := handlers.NewMediaHandler(deps.MediaService)
	moderationHandler := handlers.NewModerationHandler(deps.ListingService)

	authMW := AuthMiddleware(deps.AuthService, deps.Logger)
	optionalAuthMW := OptionalAuthMiddleware(deps.AuthService)
	staffRoleMW := RequireRole(enums.RoleStaff, enums.RoleAdmin)

	r.Get("/healthz", healthHandler.Get)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/config", configHandler.Get)

	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)
	r.Post("/auth/refresh", authHandler.Refresh)
	r.With(authMW).Post("/auth/logout", authHandler.Logout)
	r.With(authMW).Post("/auth/logout_all", authHandler.LogoutAll)

	r.Post("/intents", intentsHandler.Remember)

	r.With(optionalAuthMW).Get("/listings", listingsHandler.Browse)
	r.With(optionalAuthMW).Get("/listings/{listingID}", listingsHandler.Get)
	r.Get("/listings/{listingID}/photos", mediaHandler.PhotosList)

	// Gated actions: anonymous requests get a 401 naming the action so the
	// client can raise a sign-in wall and record the intent.
	r.With(optionalAuthMW, RequireGate("list_property", "please sign in to list your property")).
		Post("/listings", listingsHandler.Submit)
	r.With(optionalAuthMW, RequireGate("unlock_contact", "please sign in to unlock contact details")).
		Post("/listings/{listingID}/unlock", listingsHandler.Unlock)
	r.With(optionalAuthMW, RequireGate("save_listing", "please sign in to save listings")).
		Post("/listings/{listingID}/save", savedHandler.Toggle)
	r.With(optionalAuthMW, RequireGate("purchase_plan", "please sign in to purchase a plan")).
		Post("/purchases", purchaseHandler.Create)

	r.With(authMW).Post("/listings/{listingID}/photos", mediaHandler.PhotoUpload)

	r.Get("/plans", purchaseHandler.Plans)
	r.Post("/purchases/webhook", purchaseHandler.Webhook)
	r.With(authMW).Get("/purchases", purchaseHandler.History)

	r.With(authMW).Get("/me/entitlements", meHandler.Entitlements)
	r.With(authMW).Get("/me/saved", savedHandler.List)
	r.With(authMW).Get("/me/promo", promoHandler.Fetch)

	r.Route("/moderation", func(r chi.Router) {
		r.Use(authMW, staffRoleMW)
		r.Post("/listings/{listingID}/approve", moderationHandler.Approve)
		r.Post("/listings/{listingID}/reject", moderationHandler.Reject)
	})
}
