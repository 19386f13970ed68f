package adapter

import (
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"

	"github.com/mateusmacedo/go-reservas/pkg/application"
	"github.com/mateusmacedo/go-reservas/pkg/domain"
	channelsAdapter "github.com/mateusmacedo/go-reservas/pkg/infrastructure/channels/adapter"
	watermillLogAdapter "github.com/mateusmacedo/go-reservas/pkg/infrastructure/watermill/adapter"
)

// StreamOptions identifica o consumidor nos grupos dos streams.
// Sem ConsumerGroup cada assinante recebe todas as mensagens.
type StreamOptions struct {
	ConsumerGroup string
	Consumer      string
}

// NewRedisEventBus cria um barramento de eventos sobre Redis Streams; cada evento vira um stream.
func NewRedisEventBus[E domain.Event[D], D any](client redis.UniversalClient, opts StreamOptions, logger application.AppLogger) (*channelsAdapter.WatermillEventBus[E, D], error) {
	wmLogger := watermillLogAdapter.NewWatermillLoggerAdapter(logger)

	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client:     client,
		Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
	}, wmLogger)
	if err != nil {
		return nil, err
	}

	subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
		Client:        client,
		Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
		ConsumerGroup: opts.ConsumerGroup,
		Consumer:      opts.Consumer,
	}, wmLogger)
	if err != nil {
		_ = publisher.Close()
		return nil, err
	}

	return channelsAdapter.NewWatermillEventBus[E, D](publisher, subscriber, logger), nil
}
