package adapter

import (
	"github.com/Shopify/sarama"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"

	"github.com/mateusmacedo/go-reservas/pkg/application"
	"github.com/mateusmacedo/go-reservas/pkg/domain"
	channelsAdapter "github.com/mateusmacedo/go-reservas/pkg/infrastructure/channels/adapter"
	watermillLogAdapter "github.com/mateusmacedo/go-reservas/pkg/infrastructure/watermill/adapter"
)

type Options struct {
	Brokers       []string
	ConsumerGroup string
	ClientID      string
}

// NewSaramaSubscriberConfig devolve a configuração do consumidor: lê desde o offset mais antigo
// e devolve erros pelo canal em vez de só registrá-los.
func NewSaramaSubscriberConfig(clientID string) *sarama.Config {
	saramaConfig := kafka.DefaultSaramaSubscriberConfig()
	saramaConfig.Version = sarama.V1_0_0_0
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	saramaConfig.Consumer.Return.Errors = true
	if clientID != "" {
		saramaConfig.ClientID = clientID
	}
	return saramaConfig
}

// NewKafkaEventBus cria um barramento de eventos sobre Kafka; o nome do evento é o tópico.
func NewKafkaEventBus[E domain.Event[D], D any](opts Options, logger application.AppLogger) (*channelsAdapter.WatermillEventBus[E, D], error) {
	wmLogger := watermillLogAdapter.NewWatermillLoggerAdapter(logger)
	marshaler := kafka.DefaultMarshaler{}

	publisherSarama := kafka.DefaultSaramaSyncPublisherConfig()
	if opts.ClientID != "" {
		publisherSarama.ClientID = opts.ClientID
	}

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:               opts.Brokers,
		Marshaler:             marshaler,
		OverwriteSaramaConfig: publisherSarama,
	}, wmLogger)
	if err != nil {
		return nil, err
	}

	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:               opts.Brokers,
		Unmarshaler:           marshaler,
		ConsumerGroup:         opts.ConsumerGroup,
		OverwriteSaramaConfig: NewSaramaSubscriberConfig(opts.ClientID),
		InitializeTopicDetails: &sarama.TopicDetail{
			NumPartitions:     1,
			ReplicationFactor: 1,
		},
	}, wmLogger)
	if err != nil {
		_ = publisher.Close()
		return nil, err
	}

	return channelsAdapter.NewWatermillEventBus[E, D](publisher, subscriber, logger), nil
}
