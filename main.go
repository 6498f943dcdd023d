package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/yourorg/assumables-api/geocode"
	httpapi "github.com/yourorg/assumables-api/http"
	"github.com/yourorg/assumables-api/internal/auth"
	"github.com/yourorg/assumables-api/internal/env"
	"github.com/yourorg/assumables-api/internal/events"
	"github.com/yourorg/assumables-api/internal/listings"
	"github.com/yourorg/assumables-api/internal/logger"
	"github.com/yourorg/assumables-api/internal/notify"
	"github.com/yourorg/assumables-api/internal/redisx"
	"github.com/yourorg/assumables-api/internal/store"
)

func main() {
	_ = godotenv.Load()

	log := logger.New(logger.ParseLevel(env.Get("LOG_LEVEL", "info")), env.GetBool("LOG_JSON", false))

	port := env.GetInt("PORT", 4002)
	dsn := env.Must("PG_DSN")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(dsn)
	if err != nil {
		log.Error("postgres open failed", "err", err)
		os.Exit(1)
	}
	defer st.Close()
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err = st.Ping(pingCtx)
	cancel()
	if err != nil {
		log.Error("postgres unreachable", "err", err)
		os.Exit(1)
	}
	if err := st.Migrate(ctx); err != nil {
		log.Error("migrate failed", "err", err)
		os.Exit(1)
	}

	if email, pw := env.Get("AUTH_SEED_EMAIL", ""), env.Get("AUTH_SEED_PASSWORD", ""); email != "" && pw != "" {
		hash, err := auth.HashPassword(pw)
		if err != nil {
			log.Error("seed password hash failed", "err", err)
			os.Exit(1)
		}
		if err := st.EnsureUser(ctx, strings.ToLower(email), hash); err != nil {
			log.Error("seed user failed", "err", err)
			os.Exit(1)
		}
	}

	rdb := redisx.New(env.Get("REDIS_ADDR", "localhost:6379"), env.Get("REDIS_PASSWORD", ""), env.GetInt("REDIS_DB", 0))
	defer rdb.Close()
	if err := rdb.Ping(ctx); err != nil {
		log.Error("redis unreachable", "err", err)
		os.Exit(1)
	}

	geo := geocode.NewClient(env.Get("GOOGLE_MAPS_KEY", ""), log)
	pub := events.NewInMemory(env.GetInt("EVENT_BUFFER", 256))
	go (&notify.Notifier{Pub: pub, Log: log}).Run(ctx)

	writer := &listings.Writer{Store: st, Geo: geo, Pub: pub, Log: log}
	authSvc := &auth.Service{
		Users:    st,
		Sessions: rdb,
		TTL:      env.GetDuration("SESSION_TTL", time.Hour),
		Log:      log,
	}

	router := BuildRouter(RouterConfig{
		Listings: httpapi.ListingsDeps{
			Writer:    writer,
			Reader:    st,
			Geo:       geo,
			HomeState: env.Get("HOME_STATE", "CO"),
		},
		Auth:           authSvc,
		DisableAuth:    env.GetBool("AUTH_DISABLED", false),
		AllowedOrigins: strings.Split(env.Get("CORS_ORIGINS", "http://localhost:3000"), ","),
		Log:            log,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()

	log.Info("assumables-api listening", "port", port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
