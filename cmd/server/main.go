package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/JimmysRanch/126-sub001/internal/cache"
	"github.com/JimmysRanch/126-sub001/internal/config"
	"github.com/JimmysRanch/126-sub001/internal/httpapi"
	"github.com/JimmysRanch/126-sub001/internal/reports"
	"github.com/JimmysRanch/126-sub001/internal/service"
	"github.com/JimmysRanch/126-sub001/internal/store"
	"github.com/JimmysRanch/126-sub001/internal/store/memory"
	pgstore "github.com/JimmysRanch/126-sub001/internal/store/postgres"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[main] WARN: could not read .env: %v", err)
	}

	cfg := config.Load()
	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatalf("invalid security configuration: %v", err)
	}
	profile, err := config.LoadProfile(cfg.BusinessProfilePath)
	if err != nil {
		log.Fatalf("invalid business profile: %v", err)
	}
	loc, err := profile.Location()
	if err != nil {
		log.Fatalf("invalid business profile: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo store.Repository
	closers := make([]func() error, 0, 2)

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres unavailable (%v) and DATABASE_URL is set; refusing to start with in-memory fallback", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			log.Fatalf("postgres schema migration failed: %v", err)
		}
		repo = pg
		closers = append(closers, pg.Close)
		log.Println("repository: postgres")
	} else {
		repo = memory.NewSeeded(cfg.BusinessID, time.Now().In(loc))
		log.Println("repository: in-memory (demo salon)")
	}

	reportCache := cache.ReportCache(cache.NoopReportCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisReportCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Printf("redis unavailable (%v), using noop cache", err)
		} else {
			reportCache = redisCache
			closers = append(closers, redisCache.Close)
			log.Println("cache: redis")
		}
	} else {
		log.Println("cache: noop")
	}

	engine := reports.NewEngine(costParams(profile))
	svc := service.New(repo, reportCache, engine, service.Options{
		DefaultBusinessID: cfg.BusinessID,
		CacheTTL:          time.Duration(cfg.ReportCacheTTLSeconds) * time.Second,
		Location:          loc,
	})
	auth := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, repo)
	api := httpapi.New(svc, auth, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("reporting API for %q (%s) listening on %s", profile.Name, loc, cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close error: %v", err)
		}
	}

	log.Println("server stopped")
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if strings.TrimSpace(cfg.AllowedOrigin) == "*" {
		return fmt.Errorf("ALLOWED_ORIGIN must name an origin, not *")
	}
	return nil
}

func costParams(profile config.BusinessProfile) reports.CostParams {
	return reports.CostParams{
		COGSRate:          profile.COGSRate,
		CardFeeRate:       profile.CardFeeRate,
		CardFeeFixedCents: profile.CardFeeFixedCents,
		StaffHoursPerDay:  profile.StaffHoursPerDay,
	}
}
