package handler

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/facepk/internal/domain"
)

// GameService is what the round endpoints need from the service layer
type GameService interface {
	Members() []domain.Member
	Threshold() float64
	Play(ctx context.Context, image []byte, guess string) (*domain.Round, error)
	Verdict(predictedKey, guess, lang string) string
	Scoreboard(ctx context.Context) (*domain.Scoreboard, error)
}

type GameHandler struct {
	service        GameService
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewGameHandler(service GameService, maxUploadBytes int64, logger *slog.Logger) *GameHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &GameHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// MembersResponse feeds the guess dropdown
type MembersResponse struct {
	Members   []domain.Member `json:"members"`
	Threshold float64         `json:"threshold"`
}

type VerdictResponse struct {
	Verdict string `json:"verdict"`
}

type MemberCountResponse struct {
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
	Count       int64  `json:"count"`
}

type ScoreboardResponse struct {
	TotalRounds   int64                 `json:"total_rounds"`
	MatchedRounds int64                 `json:"matched_rounds"`
	GuessedRounds int64                 `json:"guessed_rounds"`
	Agreements    int64                 `json:"agreements"`
	AgreementRate float64               `json:"agreement_rate"`
	PerMember     []MemberCountResponse `json:"per_member"`
}

// Members GET /v1/members
func (h *GameHandler) Members(c *fiber.Ctx) error {
	return c.JSON(MembersResponse{
		Members:   h.service.Members(),
		Threshold: h.service.Threshold(),
	})
}

// Play POST /v1/rounds - predict the member in "image" and judge "guess"
func (h *GameHandler) Play(c *fiber.Ctx) error {
	image, err := readUpload(c, "image", h.maxUploadBytes, domain.ErrInvalidImage)
	if err != nil {
		return err
	}

	guess := strings.TrimSpace(c.FormValue("guess"))

	round, err := h.service.Play(c.Context(), image, guess)
	if err != nil {
		return err
	}

	return c.JSON(round)
}

// Verdict GET /v1/verdict?predicted=&guess=&lang=
func (h *GameHandler) Verdict(c *fiber.Ctx) error {
	return c.JSON(VerdictResponse{
		Verdict: h.service.Verdict(
			strings.TrimSpace(c.Query("predicted")),
			strings.TrimSpace(c.Query("guess")),
			c.Query("lang"),
		),
	})
}

// Scoreboard GET /v1/scoreboard
func (h *GameHandler) Scoreboard(c *fiber.Ctx) error {
	board, err := h.service.Scoreboard(c.Context())
	if err != nil {
		return err
	}

	names := make(map[string]string)
	for _, m := range h.service.Members() {
		names[m.Key] = m.DisplayName
	}

	perMember := make([]MemberCountResponse, 0, len(board.PerMember))
	for _, mc := range board.PerMember {
		perMember = append(perMember, MemberCountResponse{
			Key:         mc.Key,
			DisplayName: names[mc.Key],
			Count:       mc.Count,
		})
	}

	return c.JSON(ScoreboardResponse{
		TotalRounds:   board.TotalRounds,
		MatchedRounds: board.MatchedRounds,
		GuessedRounds: board.GuessedRounds,
		Agreements:    board.Agreements,
		AgreementRate: board.AgreementRate(),
		PerMember:     perMember,
	})
}
