package application

import (
	"context"

	"github.com/mateusmacedo/go-reservas/internal/domain"
	pkgApp "github.com/mateusmacedo/go-reservas/pkg/application"
)

// EventBus é o barramento dos eventos de alteração.
type EventBus = pkgApp.EventBus[domain.ChangeEvent, domain.ChangeData]

// PublishChange publica o evento depois da gravação. Uma falha só é registrada:
// a alteração já foi confirmada e não deve ser desfeita por causa do barramento.
func PublishChange(ctx context.Context, bus EventBus, logger pkgApp.AppLogger, name string, data domain.ChangeData) {
	if bus == nil {
		return
	}
	if err := bus.Publish(ctx, domain.NewChangeEvent(name, data)); err != nil {
		pkgApp.LogError(ctx, logger, "Erro ao publicar evento", err, map[string]interface{}{
			"event_name": name,
			"entity_id":  data.EntityID,
		})
	}
}
