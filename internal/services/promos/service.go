package promos

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/viraj01032007/setmystay/backend/internal/config"
)

// Promo is the one-time upsell card shown during a session.
type Promo struct {
	Title    string
	Body     string
	ShowPath string
	Delay    time.Duration
}

type FlagStore interface {
	FlagOnce(ctx context.Context, key string, ttl time.Duration) bool
}

type Service struct {
	flags FlagStore
	cfg   config.PromoConfig
	ttl   time.Duration
	log   *zap.Logger
}

// NewService builds the promo gate. ttl bounds how long the shown flag
// lives; it should match the session lifetime so a fresh login sees the
// promo again.
func NewService(flags FlagStore, cfg config.PromoConfig, ttl time.Duration, log *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{flags: flags, cfg: cfg, ttl: ttl, log: log}
}

// Fetch returns the promo the first time it is called for a session and
// nothing afterwards. The once-per-session guard is a redis SETNX keyed by
// the session id, so concurrent requests cannot both win.
func (s *Service) Fetch(ctx context.Context, sid string) (Promo, bool) {
	sid = strings.TrimSpace(sid)
	if sid == "" || s.cfg.Title == "" {
		return Promo{}, false
	}

	if !s.flags.FlagOnce(ctx, "promo_shown:"+sid, s.ttl) {
		return Promo{}, false
	}

	s.log.Debug("promo shown", zap.String("sid", sid))

	return Promo{
		Title:    s.cfg.Title,
		Body:     s.cfg.Body,
		ShowPath: s.cfg.ShowPath,
		Delay:    s.cfg.Delay,
	}, true
}
