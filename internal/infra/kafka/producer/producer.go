package producer

import (
	"context"
	"fmt"

	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"

	"github.com/avdeevm/ai-gallery/internal/config"
	"github.com/avdeevm/ai-gallery/internal/events"
)

// Producer publishes gallery events to Kafka. The stored filename is used as
// the message key so all events for one upload stay ordered on one partition.
type Producer struct {
	Client   *wbfkafka.Producer
	strategy retry.Strategy
	cfg      *config.Kafka
}

// New creates a new Producer.
// - cfg: Kafka configuration struct
// - s: retry strategy
func New(
	cfg *config.Kafka,
	s retry.Strategy,
) *Producer {
	producer := wbfkafka.NewProducer(cfg.Brokers, cfg.Topic)

	return &Producer{
		Client:   producer,
		cfg:      cfg,
		strategy: s,
	}
}

// publish wraps the payload in an envelope and sends it with retries.
func (p *Producer) publish(ctx context.Context, key string, t events.Type, payload interface{}) error {
	data, err := events.Wrap(t, payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %v", err)
	}

	if err = p.Client.SendWithRetry(ctx, p.strategy, []byte(key), data); err != nil {
		return fmt.Errorf("failed to send event: %v", err)
	}

	return nil
}

// PreviewReady publishes the preview-ready notification.
func (p *Producer) PreviewReady(ctx context.Context, e events.PreviewReady) error {
	return p.publish(ctx, e.StoredFilename, events.TypePreviewReady, e)
}

// AssetCreated publishes the persisted-asset notification.
func (p *Producer) AssetCreated(ctx context.Context, e events.AssetCreated) error {
	return p.publish(ctx, e.Asset.Filename, events.TypeAssetCreated, e)
}

// AnalysisComplete publishes the annotation notification.
func (p *Producer) AnalysisComplete(ctx context.Context, e events.AnalysisComplete) error {
	return p.publish(ctx, e.StoredFilename, events.TypeAnalysisComplete, e)
}
