package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/facepk/internal/dataset"
	"github.com/saturnino-fabrica-de-software/facepk/internal/domain"
	"github.com/saturnino-fabrica-de-software/facepk/internal/matcher"
	"github.com/saturnino-fabrica-de-software/facepk/internal/recognizer"
	"github.com/saturnino-fabrica-de-software/facepk/internal/ws"
)

type RoundRepositoryInterface interface {
	Create(ctx context.Context, round *domain.Round) error
	Scoreboard(ctx context.Context) (*domain.Scoreboard, error)
}

// EventPublisher receives game events for live spectators
type EventPublisher interface {
	Publish(eventType ws.EventType, data any)
}

// DatasetStatus describes the model currently serving predictions
type DatasetStatus struct {
	Trained   bool           `json:"trained"`
	Backend   string         `json:"backend"`
	Threshold float64        `json:"threshold"`
	Root      string         `json:"root"`
	Samples   int            `json:"samples"`
	PerMember map[string]int `json:"per_member"`
	Skipped   int            `json:"skipped"`
	TrainedAt *time.Time     `json:"trained_at,omitempty"`
}

type GameService struct {
	handle    *matcher.Handle
	rounds    RoundRepositoryInterface
	verdicts  *matcher.Verdicts
	threshold float64
	importDir string
	events    EventPublisher
	logger    *slog.Logger
}

// NewGameService wires the model handle to the optional round history. A
// nil rounds repository disables history.
func NewGameService(handle *matcher.Handle, rounds RoundRepositoryInterface, logger *slog.Logger) *GameService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &GameService{
		handle:    handle,
		rounds:    rounds,
		verdicts:  matcher.NewVerdicts(handle.Registry(), matcher.DefaultLanguage.String()),
		threshold: handle.Trainer().DefaultThreshold(),
		importDir: os.TempDir(),
		logger:    logger,
	}
}

func (s *GameService) WithThreshold(threshold float64) *GameService {
	s.threshold = threshold
	return s
}

func (s *GameService) WithLanguage(lang string) *GameService {
	s.verdicts = matcher.NewVerdicts(s.handle.Registry(), lang)
	return s
}

func (s *GameService) WithImportDir(dir string) *GameService {
	s.importDir = dir
	return s
}

func (s *GameService) WithEvents(events EventPublisher) *GameService {
	s.events = events
	return s
}

func (s *GameService) Threshold() float64 {
	return s.threshold
}

func (s *GameService) HistoryEnabled() bool {
	return s.rounds != nil
}

// Members lists the guessable members in registry order
func (s *GameService) Members() []domain.Member {
	return s.handle.Registry().Members()
}

// Ready reports whether a trained model is serving
func (s *GameService) Ready() bool {
	return s.handle.Load().Trained()
}

// Play runs one round: predict the member in image and judge the guess.
// guess is a display name; empty means the player did not guess.
func (s *GameService) Play(ctx context.Context, image []byte, guess string) (*domain.Round, error) {
	start := time.Now()
	registry := s.handle.Registry()

	var guessKey string
	if guess != "" {
		key, ok := registry.KeyForDisplay(guess)
		if !ok {
			return nil, domain.ErrUnknownMember
		}
		guessKey = key
	}

	model := s.handle.Load()
	match, err := model.PredictImage(ctx, image, s.threshold)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}

	round := &domain.Round{
		ID:               uuid.New(),
		PredictedKey:     match.Key,
		PredictedDisplay: registry.DisplayName(match.Key),
		GuessKey:         guessKey,
		GuessDisplay:     guess,
		Confidence:       match.Confidence,
		Matched:          match.Matched,
		Verdict:          s.verdicts.Verdict(match.Key, guess),
		Backend:          model.Backend(),
		LatencyMs:        time.Since(start).Milliseconds(),
		CreatedAt:        time.Now(),
	}
	if guess != "" {
		correct := match.Matched && guessKey == match.Key
		round.Correct = &correct
	}

	if s.rounds != nil {
		if err := s.rounds.Create(ctx, round); err != nil {
			s.logger.Warn("failed to record round", slog.String("round_id", round.ID.String()), slog.Any("error", err))
		}
	}

	s.publish(ws.EventRoundPlayed, round)

	return round, nil
}

// Status reports the current model without retraining
func (s *GameService) Status() *DatasetStatus {
	return s.status(s.handle.Load())
}

// Reload rebuilds the model from the current photo root
func (s *GameService) Reload(ctx context.Context) (*DatasetStatus, error) {
	model, err := s.handle.Reload(ctx)
	if err != nil {
		return nil, trainError(err)
	}

	status := s.status(model)
	s.publish(ws.EventDatasetReloaded, status)
	return status, nil
}

// ImportArchive unpacks a ZIP of member folders and retrains from it. The
// extracted folder replaces the previous root only if training succeeds.
func (s *GameService) ImportArchive(ctx context.Context, data []byte) (*DatasetStatus, error) {
	root, err := dataset.ImportArchive(data, s.importDir, s.handle.Registry())
	if err != nil {
		return nil, err
	}

	model, previous, err := s.handle.SwapRoot(ctx, root)
	if err != nil {
		s.removeImport(root)
		return nil, trainError(err)
	}

	s.logger.Info("dataset imported",
		slog.String("root", root),
		slog.Int("samples", model.Stats().Samples),
	)
	s.removeImport(previous)

	status := s.status(model)
	s.publish(ws.EventDatasetReloaded, status)
	return status, nil
}

// Scoreboard aggregates the round history
func (s *GameService) Scoreboard(ctx context.Context) (*domain.Scoreboard, error) {
	if s.rounds == nil {
		return nil, domain.ErrHistoryDisabled
	}
	board, err := s.rounds.Scoreboard(ctx)
	if err != nil {
		return nil, fmt.Errorf("load scoreboard: %w", err)
	}
	return board, nil
}

// Verdict phrases an outcome in lang without playing a round
func (s *GameService) Verdict(predictedKey, guess, lang string) string {
	if lang == "" {
		return s.verdicts.Verdict(predictedKey, guess)
	}
	return matcher.NewVerdicts(s.handle.Registry(), lang).Verdict(predictedKey, guess)
}

func (s *GameService) publish(eventType ws.EventType, data any) {
	if s.events != nil {
		s.events.Publish(eventType, data)
	}
}

func (s *GameService) status(model *matcher.Model) *DatasetStatus {
	stats := model.Stats()
	status := &DatasetStatus{
		Trained:   model.Trained(),
		Backend:   model.Backend(),
		Threshold: s.threshold,
		Root:      stats.Root,
		Samples:   stats.Samples,
		PerMember: stats.PerMember,
		Skipped:   stats.Skipped,
	}
	if trainedAt := model.TrainedAt(); !trainedAt.IsZero() {
		status.TrainedAt = &trainedAt
	}
	return status
}

// removeImport deletes the extraction directory that root belongs to, if
// root came from an earlier import. Operator-managed folders are left alone.
func (s *GameService) removeImport(root string) {
	rel, err := filepath.Rel(s.importDir, root)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return
	}
	top := strings.Split(rel, string(filepath.Separator))[0]
	if !strings.HasPrefix(top, "import-") {
		return
	}
	if err := os.RemoveAll(filepath.Join(s.importDir, top)); err != nil {
		s.logger.Warn("failed to remove imported dataset", slog.String("root", root), slog.Any("error", err))
	}
}

func trainError(err error) error {
	if errors.Is(err, recognizer.ErrUnavailable) {
		return domain.ErrRecognizerUnavailable.WithError(err)
	}
	return fmt.Errorf("train: %w", err)
}
