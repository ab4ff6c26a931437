package listener

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/mercantil/storefront/internal/cart"
	"github.com/mercantil/storefront/internal/catalog"
	"github.com/mercantil/storefront/pkg/broker"
	"github.com/mercantil/storefront/pkg/logger"
)

// StockListener consumes listing stock-change events, drops the cached
// catalog pages, and clamps every live cart mirror to the new stock.
type StockListener struct {
	consumer *broker.KafkaConsumer
	catalog  catalog.UseCase
	registry *cart.Registry
	logger   logger.Logger
}

func NewStockListener(consumer *broker.KafkaConsumer, cat catalog.UseCase, registry *cart.Registry, log logger.Logger) *StockListener {
	return &StockListener{
		consumer: consumer,
		catalog:  cat,
		registry: registry,
		logger:   log,
	}
}

func (l *StockListener) Start(ctx context.Context) {
	l.logger.Info("starting stock listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("stopping stock listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("failed to read stock message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type StockChangedEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   StockPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type StockPayload struct {
	ListingID string `json:"listing_id"`
	Stock     int    `json:"stock"`
}

func (l *StockListener) processMessage(ctx context.Context, value []byte) {
	var event StockChangedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("failed to unmarshal stock event", zap.Error(err))
		return
	}

	if event.EventType != "StockChanged" {
		return
	}

	l.logger.Info("processing StockChanged event",
		zap.String("listing_id", event.Payload.ListingID),
		zap.Int("stock", event.Payload.Stock),
	)

	if err := l.catalog.InvalidateListings(ctx); err != nil {
		l.logger.Error("failed to invalidate listing cache", zap.Error(err))
	}

	l.registry.Each(func(engine cart.UseCase) {
		engine.ApplyStockLimit(event.Payload.ListingID, event.Payload.Stock)
	})
}
