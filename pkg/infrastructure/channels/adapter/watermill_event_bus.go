package adapter

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/multierr"

	"github.com/mateusmacedo/go-reservas/pkg/application"
	"github.com/mateusmacedo/go-reservas/pkg/domain"
	watermillLogAdapter "github.com/mateusmacedo/go-reservas/pkg/infrastructure/watermill/adapter"
)

// WatermillEventBus publica eventos num tópico com o nome do evento e, para cada
// manipulador registrado, mantém uma assinatura que reconstrói o evento a partir do payload JSON.
// Serve a qualquer par Publisher/Subscriber do watermill (gochannel, redis streams, kafka).
type WatermillEventBus[E domain.Event[D], D any] struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	handlers   map[string][]application.EventHandler[E, D]
	mu         sync.RWMutex
	logger     application.AppLogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewWatermillEventBus[E domain.Event[D], D any](publisher message.Publisher, subscriber message.Subscriber, logger application.AppLogger) *WatermillEventBus[E, D] {
	ctx, cancel := context.WithCancel(context.Background())
	return &WatermillEventBus[E, D]{
		publisher:  publisher,
		subscriber: subscriber,
		handlers:   make(map[string][]application.EventHandler[E, D]),
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// NewGoChannelEventBus cria o barramento sobre o pub/sub em memória do watermill.
func NewGoChannelEventBus[E domain.Event[D], D any](logger application.AppLogger) *WatermillEventBus[E, D] {
	pubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, watermillLogAdapter.NewWatermillLoggerAdapter(logger))
	return NewWatermillEventBus[E, D](pubSub, pubSub, logger)
}

func (bus *WatermillEventBus[E, D]) RegisterHandler(eventName string, handler application.EventHandler[E, D]) {
	bus.mu.Lock()
	first := len(bus.handlers[eventName]) == 0
	bus.handlers[eventName] = append(bus.handlers[eventName], handler)
	bus.mu.Unlock()

	if !first || bus.subscriber == nil {
		return
	}

	messages, err := bus.subscriber.Subscribe(bus.ctx, eventName)
	if err != nil {
		application.LogError(bus.ctx, bus.logger, "error subscribing to event", err, map[string]interface{}{
			"event_name": eventName,
		})
		return
	}

	bus.wg.Add(1)
	go func() {
		defer bus.wg.Done()
		for msg := range messages {
			bus.handleMessage(eventName, msg)
		}
	}()
}

func (bus *WatermillEventBus[E, D]) handleMessage(eventName string, msg *message.Message) {
	var payload D
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		application.LogError(bus.ctx, bus.logger, "error unmarshalling event payload", err, map[string]interface{}{
			"event_name": eventName,
			"message_id": msg.UUID,
		})
		// payload inválido nunca vai ser processado; confirmar evita reentrega infinita
		msg.Ack()
		return
	}

	typedEvent, ok := interface{}(&dynamicEvent[D]{eventName: eventName, payload: payload}).(E)
	if !ok {
		application.LogError(bus.ctx, bus.logger, "error asserting event type", nil, map[string]interface{}{
			"event_name": eventName,
		})
		msg.Nack()
		return
	}

	bus.mu.RLock()
	handlers := append([]application.EventHandler[E, D](nil), bus.handlers[eventName]...)
	bus.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler.Handle(msg.Context(), typedEvent); err != nil {
			application.LogError(bus.ctx, bus.logger, "error handling event", err, map[string]interface{}{
				"event_name": eventName,
				"message_id": msg.UUID,
			})
			msg.Nack()
			return
		}
	}

	application.LogDebug(bus.ctx, bus.logger, "event handled", map[string]interface{}{
		"event_name": eventName,
		"message_id": msg.UUID,
	})
	msg.Ack()
}

func (bus *WatermillEventBus[E, D]) Publish(ctx context.Context, event E) error {
	eventName := event.EventName()

	payload, err := application.MarshalPayload(event.Payload())
	if err != nil {
		application.LogError(ctx, bus.logger, "error marshalling event payload", err, map[string]interface{}{
			"event_name": eventName,
		})
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_name", eventName)
	if err := bus.publisher.Publish(eventName, msg); err != nil {
		application.LogError(ctx, bus.logger, "error publishing event", err, map[string]interface{}{
			"event_name": eventName,
		})
		return err
	}

	application.LogDebug(ctx, bus.logger, "event published", map[string]interface{}{
		"event_name": eventName,
		"message_id": msg.UUID,
	})
	return nil
}

// Close encerra as assinaturas e fecha publisher e subscriber.
func (bus *WatermillEventBus[E, D]) Close() error {
	bus.cancel()
	var errs error
	if bus.publisher != nil {
		errs = multierr.Append(errs, bus.publisher.Close())
	}
	// gochannel usa o mesmo objeto como publisher e subscriber
	if bus.subscriber != nil && interface{}(bus.subscriber) != interface{}(bus.publisher) {
		errs = multierr.Append(errs, bus.subscriber.Close())
	}
	bus.wg.Wait()
	return errs
}

type dynamicEvent[D any] struct {
	eventName string
	payload   D
}

func (e *dynamicEvent[D]) EventName() string {
	return e.eventName
}

func (e *dynamicEvent[D]) Payload() D {
	return e.payload
}
