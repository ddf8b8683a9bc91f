package shutdown

import (
	"context"
	"os"
	"sync"

	"sealtun/application/logging"
	palSignal "sealtun/infrastructure/PAL/signal"
	"sealtun/presentation/signals"
)

type Handler struct {
	// ctx is the session context; once it is done the handler unsubscribes.
	ctx    context.Context
	cancel context.CancelFunc
	// signalChan is buffered: os/signal never blocks on delivery.
	signalChan     chan os.Signal
	once           sync.Once
	signalProvider palSignal.Provider
	notifier       signals.Notifier
	logger         logging.Logger
}

func NewHandler(
	ctx context.Context,
	cancel context.CancelFunc,
	signalProvider palSignal.Provider,
	notifier signals.Notifier,
	logger logging.Logger,
) signals.Handler {
	return &Handler{
		ctx:            ctx,
		cancel:         cancel,
		signalChan:     make(chan os.Signal, 1),
		signalProvider: signalProvider,
		notifier:       notifier,
		logger:         logger,
	}
}

// Handle subscribes on the first call and returns immediately.
func (h *Handler) Handle() {
	h.once.Do(func() {
		h.notifier.Notify(h.signalChan, h.signalProvider.ShutdownSignals()...)
		go h.wait()
	})
}

func (h *Handler) wait() {
	defer h.notifier.Stop(h.signalChan)
	select {
	case sig := <-h.signalChan:
		h.logger.Printf("%s received, shutting down", sig)
		h.cancel()
	case <-h.ctx.Done():
	}
}
