package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"wallet-activity-analyzer/internal/domain/entity"
	"wallet-activity-analyzer/internal/infrastructure/config"
	"wallet-activity-analyzer/internal/infrastructure/logger"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSPublisher publishes analytics payloads on the result subject.
type NATSPublisher struct {
	conn   *nats.Conn
	js     nats.JetStreamContext
	config *config.NATSConfig
	logger *logger.Logger
}

// NewNATSPublisher creates a new NATS publisher
func NewNATSPublisher(cfg *config.NATSConfig, logger *logger.Logger) *NATSPublisher {
	return &NATSPublisher{
		config: cfg,
		logger: logger.WithComponent("nats-publisher"),
	}
}

// Connect connects the publisher to NATS
func (p *NATSPublisher) Connect(ctx context.Context) error {
	if !p.config.Enabled {
		p.logger.Info("NATS is disabled, skipping publisher connection")
		return nil
	}

	conn, err := nats.Connect(p.config.URL,
		nats.Name("wallet-activity-analyzer-publisher"),
		nats.Timeout(p.config.ConnectTimeout),
		nats.ReconnectWait(p.config.ReconnectDelay),
		nats.MaxReconnects(p.config.ReconnectAttempts),
	)
	if err != nil {
		return fmt.Errorf("failed to connect publisher to NATS: %w", err)
	}
	p.conn = conn

	if js, err := conn.JetStream(); err == nil {
		p.js = js
	} else {
		p.logger.Warn("JetStream not available for publishing, using core NATS", zap.Error(err))
	}

	p.logger.Info("Publisher connected to NATS", zap.String("subject", p.config.ResultSubject))
	return nil
}

// PublishAnalytics publishes a composed analytics payload.
func (p *NATSPublisher) PublishAnalytics(ctx context.Context, payload *entity.AnalyticsPayload) error {
	if p.conn == nil {
		p.logger.Debug("Publisher not connected, dropping analytics payload")
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal analytics payload: %w", err)
	}

	if p.js != nil {
		if _, err := p.js.Publish(p.config.ResultSubject, data); err != nil {
			return fmt.Errorf("failed to publish analytics payload: %w", err)
		}
	} else if err := p.conn.Publish(p.config.ResultSubject, data); err != nil {
		return fmt.Errorf("failed to publish analytics payload: %w", err)
	}

	p.logger.Info("Published analytics payload",
		zap.Int("wallet_count", payload.Overview.WalletCount),
		zap.Int("bytes", len(data)))
	return nil
}

// Disconnect closes the publisher connection
func (p *NATSPublisher) Disconnect() error {
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
	p.logger.Info("Publisher disconnected from NATS")
	return nil
}
