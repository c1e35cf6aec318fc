package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orderdesk/internal/catalog"
	"orderdesk/internal/config"
	"orderdesk/internal/database"
	"orderdesk/internal/handlers"
	"orderdesk/internal/repositories"
	"orderdesk/internal/services"
	"orderdesk/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// orderEventsQueue receives every order.* event published by this process.
const orderEventsQueue = "order_events"

type application struct {
	http    *fiber.App
	closers []func() error
}

// newApplication wires stores, services and the HTTP router from cfg.
func newApplication(ctx context.Context, cfg config.Config, log *zap.Logger) (*application, error) {
	app := &application{}

	orderRepo, userRepo, err := app.openStores(cfg, log)
	if err != nil {
		return nil, err
	}

	cat := catalog.New(cfg.Districts, cfg.Products, cfg.DeliveryTimes)
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	opts := []services.OrderServiceOption{
		services.WithLogger(log),
		services.WithClock(func() time.Time { return time.Now().In(loc) }),
	}

	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQURL,
			Exchange: cfg.Exchange,
			Queue:    orderEventsQueue,
		}, log)
		if err != nil {
			app.close()
			return nil, err
		}
		app.closers = append(app.closers, mq.Close)
		if err := mq.ConsumeOrderEvents(ctx, logOrderEvent(log)); err != nil {
			app.close()
			return nil, err
		}
		opts = append(opts, services.WithPublisher(mq))
	} else {
		log.Info("RABBITMQ_URL not set, order events disabled")
	}

	app.http = handlers.NewRouter(handlers.RouterConfig{
		Auth:          services.NewAuthService(cfg.JWTSecret, cfg.JWTIssuer, log),
		Identity:      services.NewIdentityService(userRepo, orderRepo, log),
		Orders:        services.NewOrderService(orderRepo, userRepo, cat, opts...),
		Logger:        log,
		AllowedOrigin: cfg.FrontendURL,
		RequestLog:    true,
	})
	return app, nil
}

func (a *application) openStores(cfg config.Config, log *zap.Logger) (repositories.OrderRepository, repositories.UserRepository, error) {
	if cfg.DBDriver == config.DriverMemory {
		log.Warn("using in-memory store, data is lost on restart")
		orders := repositories.NewMockOrderRepository()
		return orders, repositories.NewMockUserRepository(orders), nil
	}

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN, log)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	a.closers = append(a.closers, sqlDB.Close)
	log.Info("database ready", zap.String("driver", cfg.DBDriver))
	return repositories.NewGORMOrderRepository(db), repositories.NewGORMUserRepository(db), nil
}

// close releases resources in reverse order of acquisition.
func (a *application) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func logOrderEvent(log *zap.Logger) func(amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		log.Info("order event received",
			zap.String("routing_key", msg.RoutingKey),
			zap.String("message_id", msg.MessageId),
			zap.ByteString("body", msg.Body))
		return nil
	}
}
