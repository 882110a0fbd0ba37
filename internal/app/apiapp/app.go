package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/viraj01032007/setmystay/backend/internal/config"
	s3infra "github.com/viraj01032007/setmystay/backend/internal/infra/s3"
	"github.com/viraj01032007/setmystay/backend/internal/infra/telegram"
	pgrepo "github.com/viraj01032007/setmystay/backend/internal/repo/postgres"
	redrepo "github.com/viraj01032007/setmystay/backend/internal/repo/redis"
	authsvc "github.com/viraj01032007/setmystay/backend/internal/services/auth"
	entsvc "github.com/viraj01032007/setmystay/backend/internal/services/entitlements"
	intentsvc "github.com/viraj01032007/setmystay/backend/internal/services/intents"
	listingsvc "github.com/viraj01032007/setmystay/backend/internal/services/listings"
	mediasvc "github.com/viraj01032007/setmystay/backend/internal/services/media"
	paymentsvc "github.com/viraj01032007/setmystay/backend/internal/services/payments"
	promosvc "github.com/viraj01032007/setmystay/backend/internal/services/promos"
	savedsvc "github.com/viraj01032007/setmystay/backend/internal/services/saved"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	sessionRepo := redrepo.NewSessionRepo(redisClient)
	kvRepo := redrepo.NewKVRepo(redisClient, log)

	userRepo := pgrepo.NewUserRepo(pool)
	entitlementRepo := pgrepo.NewEntitlementRepo(pool)
	purchaseRepo := pgrepo.NewPurchaseRepo(pool)
	savedRepo := pgrepo.NewSavedRepo(pool)
	listingRepo := pgrepo.NewListingRepo(pool)
	photoRepo := pgrepo.NewPhotoRepo(pool)

	var notifier *telegram.Notifier
	if n, err := telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.StaffChatID); err != nil {
		log.Warn("telegram notifier init failed, staff alerts disabled", zap.Error(err))
	} else {
		notifier = n
	}

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager, sessionRepo, userRepo, cfg.Auth.RefreshTTL)
	authService.AttachSessionData(entitlementRepo, purchaseRepo, savedRepo)

	entitlementService := entsvc.NewService(entsvc.Dependencies{
		Store:    entitlementRepo,
		Listings: listingRepo,
		Log:      log,
	})
	paymentService := paymentsvc.NewService(paymentsvc.Dependencies{
		Store: purchaseRepo,
		Plans: cfg.Remote.Plans,
		Log:   log,
	})
	savedService := savedsvc.NewService(savedsvc.Dependencies{
		Store:    savedRepo,
		Listings: listingRepo,
		Log:      log,
	})
	listingService := listingsvc.NewService(listingsvc.Dependencies{
		Store:        listingRepo,
		Entitlements: entitlementRepo,
		Notifier:     notifier,
		Cfg:          cfg.Remote.Listing,
		Log:          log,
	})
	intentService := intentsvc.NewService(kvRepo, cfg.Remote.Intents.TTL, log)
	promoService := promosvc.NewService(kvRepo, cfg.Remote.Promo, cfg.Auth.RefreshTTL, log)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Region:    cfg.S3.Region,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	mediaStorage := mediasvc.NewS3Storage(s3Client, cfg.S3.Bucket)
	mediaService := mediasvc.NewService(photoRepo, listingRepo, mediaStorage)

	RegisterRoutes(r, Dependencies{
		AuthService:        authService,
		EntitlementService: entitlementService,
		PaymentService:     paymentService,
		SavedService:       savedService,
		ListingService:     listingService,
		IntentService:      intentService,
		PromoService:       promoService,
		MediaService:       mediaService,
		Logger:             log,
		Config:             cfg,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
