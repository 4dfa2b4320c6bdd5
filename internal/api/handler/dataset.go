package handler

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/facepk/internal/domain"
	"github.com/saturnino-fabrica-de-software/facepk/internal/service"
)

// DatasetService manages the reference photos behind the model
type DatasetService interface {
	Status() *service.DatasetStatus
	Reload(ctx context.Context) (*service.DatasetStatus, error)
	ImportArchive(ctx context.Context, data []byte) (*service.DatasetStatus, error)
}

type DatasetHandler struct {
	service        DatasetService
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewDatasetHandler(service DatasetService, maxUploadBytes int64, logger *slog.Logger) *DatasetHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &DatasetHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Status GET /v1/dataset
func (h *DatasetHandler) Status(c *fiber.Ctx) error {
	return c.JSON(h.service.Status())
}

// Reload POST /v1/dataset/reload - retrain from the current photo folder
func (h *DatasetHandler) Reload(c *fiber.Ctx) error {
	status, err := h.service.Reload(c.Context())
	if err != nil {
		return err
	}

	h.logger.Info("dataset reloaded",
		slog.Int("samples", status.Samples),
		slog.Int("skipped", status.Skipped),
	)

	return c.JSON(status)
}

// Import POST /v1/dataset/import - replace the photos with a ZIP of member folders
func (h *DatasetHandler) Import(c *fiber.Ctx) error {
	archive, err := readUpload(c, "archive", h.maxUploadBytes, domain.ErrInvalidArchive)
	if err != nil {
		return err
	}

	status, err := h.service.ImportArchive(c.Context(), archive)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(status)
}
