// Package audit registra no log estruturado os eventos de alteração publicados pela API.
package audit

import (
	"context"

	"github.com/mateusmacedo/go-reservas/internal/domain"
	pkgApp "github.com/mateusmacedo/go-reservas/pkg/application"
)

type EventBus = pkgApp.EventBus[domain.ChangeEvent, domain.ChangeData]

type changeLogHandler struct {
	logger pkgApp.AppLogger
}

func NewChangeLogHandler(logger pkgApp.AppLogger) pkgApp.EventHandler[domain.ChangeEvent, domain.ChangeData] {
	return &changeLogHandler{logger: logger}
}

func (h *changeLogHandler) Handle(ctx context.Context, event domain.ChangeEvent) error {
	data := event.Payload()
	fields := map[string]interface{}{
		"event_name":  event.EventName(),
		"entity":      data.Entity,
		"entity_id":   data.EntityID,
		"occurred_at": data.OccurredAt,
	}
	if data.ActorID != "" {
		fields["actor_id"] = data.ActorID
	}
	for k, v := range data.Details {
		fields["detail_"+k] = v
	}
	pkgApp.LogInfo(ctx, h.logger, "audit", fields)
	return nil
}

// Register inscreve handler em todos os eventos de alteração.
func Register(bus EventBus, handler pkgApp.EventHandler[domain.ChangeEvent, domain.ChangeData]) {
	for _, name := range domain.ChangeEvents {
		bus.RegisterHandler(name, handler)
	}
}
