package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"strconv"
	"syscall"

	"restopos/internal/api"
	"restopos/internal/auth"
	"restopos/internal/config"
	"restopos/internal/logger"
	"restopos/internal/menu"
	"restopos/internal/notify"
	"restopos/internal/order"
	"restopos/internal/realtime"
	"restopos/internal/restaurant"
	"restopos/internal/store"
	"restopos/internal/table"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := api.NewClient(cfg.APIBaseURL, cfg.AccessToken)

	settings := restaurant.NewService(restaurant.NewRepository(client))
	if err := settings.Load(ctx); err != nil {
		log.Fatalf("failed to load restaurant settings: %v", err)
	}

	cache := store.NewCache()
	reporter := notify.NewLogReporter()
	notifications := notify.NewLog()

	orders := order.NewService(order.NewRepository(client), settings, reporter, cache)
	tables := table.NewService(table.NewRepository(client), reporter, cache)
	menus := menu.NewService(menu.NewRepository(client))

	// Warm the local collections so the first reads never block on push
	// traffic. Failures here are not fatal; the reconciler converges us.
	if err := orders.Refresh(ctx); err != nil {
		logger.L().Warn("initial order sync failed", zap.Error(err))
	}
	if err := tables.Refresh(ctx); err != nil {
		logger.L().Warn("initial table sync failed", zap.Error(err))
	}
	if err := menus.Refresh(ctx); err != nil {
		logger.L().Warn("initial menu sync failed", zap.Error(err))
	}

	reconciler := realtime.NewReconciler(
		cfg.PushURL, cfg.AccessToken, restaurantID(cfg),
		orders, tables, menus, notifications, cache,
		realtime.WithStateFunc(func(online bool) {
			logger.L().Info("push channel state changed", zap.Bool("online", online))
		}),
	)

	logger.L().Info("pos engine running",
		zap.String("api_base_url", cfg.APIBaseURL),
		zap.String("push_url", cfg.PushURL),
	)

	if err := reconciler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.L().Error("reconciler stopped", zap.Error(err))
	}
}

// restaurantID prefers the explicit env override and falls back to the
// tenant claim baked into the access token.
func restaurantID(cfg *config.Config) uint {
	if cfg.RestaurantID != "" {
		if id, err := strconv.ParseUint(cfg.RestaurantID, 10, 64); err == nil {
			return uint(id)
		}
	}
	if claims, err := auth.Inspect(cfg.AccessToken); err == nil {
		return claims.RestaurantID
	}
	return 0
}
