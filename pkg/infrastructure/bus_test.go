package infrastructure

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/mateusmacedo/go-reservas/pkg/domain"
	zapAdapter "github.com/mateusmacedo/go-reservas/pkg/infrastructure/zaplogger/adapter"
)

type message struct {
	name string
	data string
}

func (m message) CommandName() string { return m.name }
func (m message) QueryName() string   { return m.name }
func (m message) EventName() string   { return m.name }
func (m message) Payload() string     { return m.data }

type commandFunc func(context.Context, message) error

func (f commandFunc) Handle(ctx context.Context, m message) error { return f(ctx, m) }

type queryFunc func(context.Context, message) (int, error)

func (f queryFunc) Handle(ctx context.Context, m message) (int, error) { return f(ctx, m) }

func TestSimpleCommandBus(t *testing.T) {
	logger := zapAdapter.NewZapAppLoggerFrom(zaptest.NewLogger(t))
	bus := NewSimpleCommandBus[message, string](logger)

	var got string
	bus.RegisterHandler("Save", commandFunc(func(_ context.Context, m message) error {
		got = m.Payload()
		return nil
	}))

	if err := bus.Dispatch(context.Background(), message{name: "Save", data: "lisbon"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if got != "lisbon" {
		t.Errorf("payload = %q", got)
	}

	err := bus.Dispatch(context.Background(), message{name: "Unknown"})
	if !errors.Is(err, ErrHandlerNotFound) {
		t.Errorf("err = %v, want ErrHandlerNotFound", err)
	}
}

func TestSimpleQueryBus(t *testing.T) {
	logger := zapAdapter.NewZapAppLoggerFrom(zaptest.NewLogger(t))
	bus := NewSimpleQueryBus[message, string, int](logger)

	bus.RegisterHandler("Len", queryFunc(func(_ context.Context, m message) (int, error) {
		return len(m.Payload()), nil
	}))
	bus.RegisterHandler("Fail", queryFunc(func(context.Context, message) (int, error) {
		return 0, domain.NewNotFoundError("nada")
	}))
	bus.RegisterHandler("Slow", queryFunc(func(ctx context.Context, _ message) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}))

	n, err := bus.Dispatch(context.Background(), message{name: "Len", data: "porto"})
	if err != nil || n != 5 {
		t.Errorf("len = %d, %v", n, err)
	}

	if _, err := bus.Dispatch(context.Background(), message{name: "Fail"}); !domain.IsKind(err, domain.KindNotFound) {
		t.Errorf("err = %v, want not found", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := bus.Dispatch(ctx, message{name: "Slow"}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}

	if _, err := bus.Dispatch(context.Background(), message{name: "Unknown"}); !errors.Is(err, ErrHandlerNotFound) {
		t.Errorf("err = %v, want ErrHandlerNotFound", err)
	}
}

type eventFunc func(context.Context, message) error

func (f eventFunc) Handle(ctx context.Context, m message) error { return f(ctx, m) }

func TestSimpleEventBusFanOut(t *testing.T) {
	logger := zapAdapter.NewZapAppLoggerFrom(zaptest.NewLogger(t))
	bus := NewSimpleEventBus[message, string](logger)

	var calls int32
	for i := 0; i < 3; i++ {
		bus.RegisterHandler("Changed", eventFunc(func(context.Context, message) error {
			atomic.AddInt32(&calls, 1)
			return nil
		}))
	}

	if err := bus.Publish(context.Background(), message{name: "Changed"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}

	// sem manipuladores não é erro
	if err := bus.Publish(context.Background(), message{name: "Nobody"}); err != nil {
		t.Errorf("publish without handlers: %v", err)
	}

	boom := errors.New("boom")
	bus.RegisterHandler("Broken", eventFunc(func(context.Context, message) error { return boom }))
	if err := bus.Publish(context.Background(), message{name: "Broken"}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}
