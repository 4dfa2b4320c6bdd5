package matcher

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/saturnino-fabrica-de-software/facepk/internal/dataset"
	"github.com/saturnino-fabrica-de-software/facepk/internal/domain"
	"github.com/saturnino-fabrica-de-software/facepk/internal/recognizer"
)

// Handle owns the current Model. Readers always see a complete Model;
// reloads build a new one and swap it in.
type Handle struct {
	current  atomic.Pointer[Model]
	reload   sync.Mutex
	trainer  recognizer.Trainer
	registry *domain.Registry
	logger   *slog.Logger
	onFile   func(path string)
}

// NewHandle starts untrained, pointed at root. Call Reload to train.
func NewHandle(trainer recognizer.Trainer, registry *domain.Registry, root string, logger *slog.Logger) *Handle {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	h := &Handle{
		trainer:  trainer,
		registry: registry,
		logger:   logger,
	}
	h.current.Store(&Model{
		labels:  registry.LabelTable(),
		stats:   dataset.Stats{Root: root, PerMember: map[string]int{}},
		backend: trainer.Name(),
		logger:  logger,
	})
	return h
}

// OnFile registers a per-file progress callback used by later reloads
func (h *Handle) OnFile(fn func(path string)) {
	h.reload.Lock()
	defer h.reload.Unlock()
	h.onFile = fn
}

// Load returns the current Model, never nil
func (h *Handle) Load() *Model {
	return h.current.Load()
}

// Store replaces the current Model. A nil m is ignored.
func (h *Handle) Store(m *Model) {
	if m == nil {
		return
	}
	h.replace(m)
}

// replace swaps in m and releases the Model it displaced
func (h *Handle) replace(m *Model) {
	old := h.current.Swap(m)
	if old == nil || old == m {
		return
	}
	if err := old.Close(); err != nil {
		h.logger.Warn("failed to release previous model", slog.Any("error", err))
	}
}

// Root is the photo root of the current Model
func (h *Handle) Root() string {
	return h.Load().Stats().Root
}

// Reload retrains from the current root
func (h *Handle) Reload(ctx context.Context) (*Model, error) {
	return h.ReloadFrom(ctx, "")
}

// ReloadFrom retrains from root and, on success, makes it the current root.
// An empty root means the current one. On error the previous Model stays.
func (h *Handle) ReloadFrom(ctx context.Context, root string) (*Model, error) {
	model, _, err := h.SwapRoot(ctx, root)
	return model, err
}

// SwapRoot is ReloadFrom that also returns the root it replaced. The
// previous root is read under the reload lock, so concurrent swaps each
// see the root they actually replaced.
func (h *Handle) SwapRoot(ctx context.Context, root string) (*Model, string, error) {
	h.reload.Lock()
	defer h.reload.Unlock()

	previous := h.Root()
	if root == "" {
		root = previous
	}

	model, err := Train(ctx, h.trainer, h.registry, root, dataset.LoadOptions{
		Logger: h.logger,
		OnFile: h.onFile,
	})
	if err != nil {
		h.logger.Error("reload failed, keeping previous model",
			slog.String("root", root),
			slog.Any("error", err),
		)
		return nil, previous, err
	}

	h.replace(model)
	return model, previous, nil
}

// Trainer is the backend new models are fitted with
func (h *Handle) Trainer() recognizer.Trainer {
	return h.trainer
}

func (h *Handle) Registry() *domain.Registry {
	return h.registry
}
