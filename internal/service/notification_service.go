package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/workorder-service/internal/config"
	"github.com/spec-kit/workorder-service/internal/events"
	"github.com/spec-kit/workorder-service/internal/observability"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventWorkOrderCreated, n.handleWorkOrderCreated)
	n.dispatcher.Subscribe(events.EventWorkOrderAssigned, n.handleWorkOrderAssigned)
	n.dispatcher.Subscribe(events.EventWorkOrderStatusChanged, n.handleWorkOrderStatusChanged)
	n.dispatcher.Subscribe(events.EventWorkOrderUpdated, n.handleWorkOrderUpdated)
}

func (n *NotificationService) handleWorkOrderCreated(ctx context.Context, event events.Event) error {
	n.observe("WorkOrderCreated", event)
	n.logEmailNotification(ctx, event)
	n.logWebhookNotification(ctx, event)
	return nil
}

func (n *NotificationService) handleWorkOrderAssigned(ctx context.Context, event events.Event) error {
	n.observe("WorkOrderAssigned", event)
	n.logEmailNotification(ctx, event)
	return nil
}

func (n *NotificationService) handleWorkOrderStatusChanged(ctx context.Context, event events.Event) error {
	n.observe("WorkOrderStatusChanged", event)
	n.logWebhookNotification(ctx, event)
	return nil
}

func (n *NotificationService) handleWorkOrderUpdated(ctx context.Context, event events.Event) error {
	n.observe("WorkOrderUpdated", event)
	n.logWebhookNotification(ctx, event)
	return nil
}

func (n *NotificationService) observe(msg string, event events.Event) {
	n.metrics.RecordEvent(string(event.Type))
	n.logger.Info(msg,
		zap.String("event_id", event.ID),
		zap.String("work_order_id", event.WorkOrderID),
		zap.String("actor_id", event.Actor.UserID),
		zap.Any("payload", event.Payload),
	)
}

func (n *NotificationService) logEmailNotification(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("email notification",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("work_order_id", event.WorkOrderID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) logWebhookNotification(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("webhook notification",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("work_order_id", event.WorkOrderID),
		zap.String("event_type", string(event.Type)))
}
