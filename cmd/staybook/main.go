package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"staybook/internal/app/admission"
	"staybook/internal/app/availability"
	"staybook/internal/app/dto"
	"staybook/internal/app/lifecycle"
	"staybook/internal/app/locks"
	"staybook/internal/app/policies"
	"staybook/internal/domain/booking"
	"staybook/internal/domain/offer"
	"staybook/internal/domain/shared/clock"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
	"staybook/internal/infra/broker/kafka"
	"staybook/internal/infra/config"
	mongodb "staybook/internal/infra/db/mongo"
	ginserver "staybook/internal/infra/http/gin"
	"staybook/internal/infra/obs"
	"staybook/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		obs.NewLogger("dev").Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	offers, bookings, ready, err := buildStorage(cfg)
	if err != nil {
		logger.Error("storage init failed", "error", err, "mode", cfg.StorageMode)
		os.Exit(1)
	}
	logger.Info("storage ready", "mode", cfg.StorageMode)

	publisher, closePublisher, err := buildPublisher(cfg, logger)
	if err != nil {
		logger.Error("kafka init failed", "error", err)
		os.Exit(1)
	}
	defer closePublisher()

	clk := clock.System{}
	keyed := locks.NewKeyed()
	calc := availability.NewCalculator(offers, bookings, clk)
	controller := admission.NewController(admission.Config{
		Offers:    offers,
		Bookings:  bookings,
		Calc:      calc,
		Locks:     keyed,
		Publisher: publisher,
		Clock:     clk,
		Logger:    logger,
		Backoff:   cfg.RetryBackoff,
	})
	manager := lifecycle.NewManager(bookings, keyed, publisher, clk, logger)

	if cfg.OffersFixtures != "" {
		if err := loadOfferFixtures(ctx, cfg.OffersFixtures, offers); err != nil {
			logger.Warn("offer fixtures load failed", "error", err, "path", cfg.OffersFixtures)
		} else {
			logger.Info("offer fixtures loaded", "path", cfg.OffersFixtures)
		}
	}

	sweeper := &lifecycle.Sweeper{Manager: manager, Interval: cfg.SweepInterval, Logger: logger}
	go func() {
		if err := sweeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("sweeper stopped", "error", err)
		}
	}()

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Ready: ready}, ginserver.Handlers{
		Booking:      ginserver.BookingHandler{Admission: controller, Lifecycle: manager, Clock: clk},
		Availability: ginserver.AvailabilityHandler{Calc: calc},
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

func buildStorage(cfg config.Config) (offer.Repository, booking.Repository, func() error, error) {
	switch cfg.StorageMode {
	case "mongo":
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, nil, err
		}
		ready := func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(ctx)
		}
		return mongodb.NewOfferRepository(client.DB), mongodb.NewBookingRepository(client.DB), ready, nil
	default:
		return memory.NewOfferRepository(), memory.NewBookingRepository(), func() error { return nil }, nil
	}
}

func buildPublisher(cfg config.Config, logger *slog.Logger) (policies.EventPublisher, func(), error) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("no kafka brokers configured, logging events instead")
		return obs.LogPublisher{Logger: logger}, func() {}, nil
	}
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
	if err != nil {
		return nil, nil, err
	}
	pub := kafka.EventPublisher{Producer: producer, TopicPrefix: cfg.KafkaTopicPrefix, Source: "staybook"}
	return pub, func() { _ = producer.Close() }, nil
}

type offerFixture struct {
	ID            string  `json:"id"`
	ActiveFrom    string  `json:"active_from"`
	ActiveUntil   string  `json:"active_until"`
	PricePerNight float64 `json:"price_per_night"`
	Currency      string  `json:"currency"`
}

func loadOfferFixtures(ctx context.Context, path string, repo offer.Repository) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fixtures []offerFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return err
	}
	for _, f := range fixtures {
		from, err := dto.ParseWireDate(f.ActiveFrom)
		if err != nil {
			return err
		}
		until, err := dto.ParseWireDate(f.ActiveUntil)
		if err != nil {
			return err
		}
		window, err := daterange.New(from, until)
		if err != nil {
			return err
		}
		rate, err := money.FromFloat(f.PricePerNight, f.Currency)
		if err != nil {
			return err
		}
		o, err := offer.New(offer.OfferID(f.ID), window, rate)
		if err != nil {
			return err
		}
		if err := repo.Save(ctx, o); err != nil {
			return err
		}
	}
	return nil
}
