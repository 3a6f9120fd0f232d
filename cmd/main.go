package main

import (
	"context"

	"github.com/bidcraft/engine/internal/auction/application"
	"github.com/bidcraft/engine/internal/auction/infra/events"
	auctionhttp "github.com/bidcraft/engine/internal/auction/infra/http"
	"github.com/bidcraft/engine/internal/auction/infra/repository/postgres"
	auctionws "github.com/bidcraft/engine/internal/auction/infra/websocket"
	"github.com/bidcraft/engine/internal/shared/config"
	"github.com/bidcraft/engine/internal/shared/db"
	"github.com/bidcraft/engine/internal/shared/db/migrations"
	"github.com/bidcraft/engine/internal/shared/httpserver"
	"github.com/bidcraft/engine/internal/shared/logger"
	"github.com/bidcraft/engine/internal/shared/websocket"
	userpostgres "github.com/bidcraft/engine/internal/user/infra/repository/postgres"
	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting BidCraft engine...")

	cfg := config.Load()
	dsn := cfg.PostgresDSN()

	if err := migrations.Run(dsn); err != nil {
		log.Fatal("Database migration failed", zap.Error(err))
	}
	log.Info("Database migrations completed")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		log.Fatal("Database connection failed", zap.Error(err))
	}
	defer pool.Close()

	listings := postgres.NewListingRepository(pool)
	bids := postgres.NewBidRepository(pool)
	users := userpostgres.NewUserRepository(pool)
	txManager := postgres.NewTxManager(pool)

	hub := websocket.NewHub()
	go hub.Run(ctx)

	publisher := events.NewFanout(events.NewHubPublisher(hub))
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer rdb.Close()
		publisher = events.NewFanout(
			events.NewHubPublisher(hub),
			events.NewRedisPublisher(rdb),
		)
		log.Info("Redis event fanout enabled", zap.String("addr", cfg.RedisAddr))
	}

	service := application.NewAuctionService(
		application.NewPlaceBidUseCase(listings, bids, users, txManager, publisher),
		application.NewWithdrawBidUseCase(listings, bids, txManager),
		application.NewCreateListingUseCase(listings, users),
		application.NewCancelListingUseCase(listings, txManager, publisher),
		application.NewGetListingStateUseCase(listings),
		application.NewListBidsUseCase(listings, bids),
	)

	wsHandler := auctionws.NewAuctionWSHandler(service, hub)
	go wsHandler.ListenForMessages(ctx)

	server := httpserver.NewServer()
	app := server.App()

	auctionhttp.NewHandler(service).Register(app)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/listings/:id", fiberws.New(func(conn *fiberws.Conn) {
		client := &websocket.Client{
			Hub:       hub,
			Conn:      conn,
			Send:      make(chan []byte, 64),
			ListingID: conn.Params("id"),
			ID:        uuid.NewString(),
		}
		hub.RegisterClient(client)
		wsHandler.SendInitialState(ctx, client)
		go client.WritePump(ctx)
		client.ReadPump(ctx)
	}))

	if err := server.Start(cfg.HTTPAddr); err != nil {
		log.Fatal("HTTP server failed", zap.Error(err))
	}
}
