package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// MemberData is one entry of the guess dropdown
type MemberData struct {
	Key         string `json:"key" example:"yujin"`
	DisplayName string `json:"display_name" example:"安俞真"`
}

// MembersResponse lists the recognizable members
type MembersResponse struct {
	Members   []MemberData `json:"members"`
	Threshold float64      `json:"threshold" example:"80"`
}

// RoundResponse is the outcome of one played round
type RoundResponse struct {
	ID               string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	PredictedKey     string  `json:"predicted_key,omitempty" example:"yujin"`
	PredictedDisplay string  `json:"predicted_display,omitempty" example:"安俞真"`
	GuessKey         string  `json:"guess_key,omitempty" example:"gaeul"`
	GuessDisplay     string  `json:"guess_display,omitempty" example:"秋天"`
	Confidence       float64 `json:"confidence" example:"42.7"`
	Matched          bool    `json:"matched" example:"true"`
	Correct          bool    `json:"correct,omitempty" example:"false"`
	Verdict          string  `json:"verdict" example:"AI 認為是 安俞真，你的答案是 秋天。"`
	Backend          string  `json:"backend" example:"lbph"`
	LatencyMs        int64   `json:"latency_ms" example:"35"`
	CreatedAt        string  `json:"created_at" example:"2024-01-01T00:00:00Z"`
}

// DatasetStatusResponse describes the model currently serving rounds
type DatasetStatusResponse struct {
	Trained   bool           `json:"trained" example:"true"`
	Backend   string         `json:"backend" example:"lbph"`
	Threshold float64        `json:"threshold" example:"80"`
	Root      string         `json:"root" example:"/srv/photos"`
	Samples   int            `json:"samples" example:"42"`
	PerMember map[string]int `json:"per_member"`
	Skipped   int            `json:"skipped" example:"1"`
	TrainedAt string         `json:"trained_at,omitempty" example:"2024-01-01T00:00:00Z"`
}

// MemberCountData is the number of rounds attributed to one member
type MemberCountData struct {
	Key         string `json:"key" example:"yujin"`
	DisplayName string `json:"display_name" example:"安俞真"`
	Count       int64  `json:"count" example:"12"`
}

// ScoreboardResponse aggregates the round history
type ScoreboardResponse struct {
	TotalRounds   int64             `json:"total_rounds" example:"40"`
	MatchedRounds int64             `json:"matched_rounds" example:"33"`
	GuessedRounds int64             `json:"guessed_rounds" example:"30"`
	Agreements    int64             `json:"agreements" example:"21"`
	AgreementRate float64           `json:"agreement_rate" example:"0.7"`
	PerMember     []MemberCountData `json:"per_member"`
}

// VerdictResponse is a formatted verdict line
type VerdictResponse struct {
	Verdict string `json:"verdict" example:"AI 也認為是 安俞真，你答對了！"`
}

// LiveEvent is one message on the spectator feed
type LiveEvent struct {
	Type      string        `json:"type" example:"round.played"`
	Data      RoundResponse `json:"data"`
	Timestamp string        `json:"timestamp" example:"2024-01-01T00:00:00Z"`
}

// HealthResponse is returned by the probes
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Version string `json:"version,omitempty" example:"0.1.0"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"INVALID_IMAGE"`
	Message string `json:"message" example:"Missing, empty or oversized image upload"`
}

var (
	errInternal     = response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error")
	errRateLimited  = response.New(ErrorResponse{Code: "RATE_LIMIT_EXCEEDED", Message: "Too many requests, slow down"}, "429", "Too Many Requests")
	errUnavailable  = response.New(ErrorResponse{Code: "RECOGNIZER_UNAVAILABLE", Message: "Face recognizer backend is unavailable"}, "503", "Service Unavailable")
	errNoHistory    = response.New(ErrorResponse{Code: "HISTORY_DISABLED", Message: "Round history is not configured"}, "404", "Not Found")
	errInvalidImage = response.New(ErrorResponse{Code: "INVALID_IMAGE", Message: "Missing, empty or oversized image upload"}, "422", "Unprocessable Entity")
)

func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "facepk API",
		Version:     "v1.0.0",
		Description: "Guess the member: upload a photo, name who you think it is, and see whether the face matcher agrees",
		Host:        "localhost:7860",
		Path:        "/",
	})

	endpoints := []*endpoint.EndPoint{
		// GET /health
		endpoint.New(
			endpoint.GET,
			"/health",
			endpoint.WithTags("Probes"),
			endpoint.WithSummary("Liveness probe"),
			endpoint.WithDescription("Always ok while the process serves requests"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{}, "200", "Alive"),
			}),
			endpoint.WithErrors([]response.Response{}),
		),

		// GET /ready
		endpoint.New(
			endpoint.GET,
			"/ready",
			endpoint.WithTags("Probes"),
			endpoint.WithSummary("Readiness probe"),
			endpoint.WithDescription("Ready once a model has been trained from at least one reference photo"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{Status: "ready"}, "200", "Model trained"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(HealthResponse{Status: "untrained"}, "503", "No model trained yet"),
			}),
		),

		// GET /v1/members
		endpoint.New(
			endpoint.GET,
			"/v1/members",
			endpoint.WithTags("Game"),
			endpoint.WithSummary("List members"),
			endpoint.WithDescription("Returns the recognizable members in registry order. The display_name is the value to send as guess."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(MembersResponse{}, "200", "Members listed"),
			}),
			endpoint.WithErrors([]response.Response{errInternal}),
		),

		// POST /v1/rounds
		endpoint.New(
			endpoint.POST,
			"/v1/rounds",
			endpoint.WithTags("Game"),
			endpoint.WithSummary("Play a round"),
			endpoint.WithDescription("Multipart form: image (file, required) and guess (member display name, optional). A photo with no recognizable face answers with the no-match verdict, not an error."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(RoundResponse{}, "200", "Round played"),
			}),
			endpoint.WithErrors([]response.Response{
				errInvalidImage,
				response.New(ErrorResponse{Code: "UNKNOWN_MEMBER", Message: "Guess does not match any member"}, "422", "Unprocessable Entity"),
				errRateLimited,
				errInternal,
			}),
		),

		// GET /v1/verdict
		endpoint.New(
			endpoint.GET,
			"/v1/verdict",
			endpoint.WithTags("Game"),
			endpoint.WithSummary("Format a verdict"),
			endpoint.WithDescription("Phrases a prediction and a guess without running the recognizer"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("predicted", parameter.Query, parameter.WithDescription("Predicted member key, empty for no match")),
				parameter.StrParam("guess", parameter.Query, parameter.WithDescription("Guessed display name, empty for no guess")),
				parameter.StrParam("lang", parameter.Query, parameter.WithDescription("BCP 47 language tag (default: server language)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(VerdictResponse{}, "200", "Verdict formatted"),
			}),
			endpoint.WithErrors([]response.Response{errInternal}),
		),

		// GET /v1/scoreboard
		endpoint.New(
			endpoint.GET,
			"/v1/scoreboard",
			endpoint.WithTags("Game"),
			endpoint.WithSummary("Round history scoreboard"),
			endpoint.WithDescription("Aggregates recorded rounds. Requires DATABASE_URL."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ScoreboardResponse{}, "200", "Scoreboard computed"),
			}),
			endpoint.WithErrors([]response.Response{errNoHistory, errInternal}),
		),

		// GET /v1/live
		endpoint.New(
			endpoint.GET,
			"/v1/live",
			endpoint.WithTags("Game"),
			endpoint.WithSummary("Live spectator feed"),
			endpoint.WithDescription("WebSocket. Streams {type, data, timestamp} events: round.played carries a round, dataset.reloaded a dataset status."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(LiveEvent{}, "101", "Switching Protocols"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "HTTP_ERROR", Message: "Upgrade Required"}, "426", "Upgrade Required"),
			}),
		),

		// GET /v1/dataset
		endpoint.New(
			endpoint.GET,
			"/v1/dataset",
			endpoint.WithTags("Dataset"),
			endpoint.WithSummary("Model status"),
			endpoint.WithDescription("Describes the photo folder and the model trained from it"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(DatasetStatusResponse{}, "200", "Status"),
			}),
			endpoint.WithErrors([]response.Response{errInternal}),
		),

		// POST /v1/dataset/reload
		endpoint.New(
			endpoint.POST,
			"/v1/dataset/reload",
			endpoint.WithTags("Dataset"),
			endpoint.WithSummary("Retrain"),
			endpoint.WithDescription("Rereads the photo folder and swaps in the new model. On failure the previous model keeps serving."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(DatasetStatusResponse{}, "200", "Retrained"),
			}),
			endpoint.WithErrors([]response.Response{errRateLimited, errInternal, errUnavailable}),
		),

		// POST /v1/dataset/import
		endpoint.New(
			endpoint.POST,
			"/v1/dataset/import",
			endpoint.WithTags("Dataset"),
			endpoint.WithSummary("Import a photo archive"),
			endpoint.WithDescription("Multipart form: archive (ZIP of <member key>/ folders). Replaces the photo folder once training from it succeeds."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(DatasetStatusResponse{}, "201", "Imported and retrained"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INVALID_ARCHIVE", Message: "Archive could not be extracted"}, "422", "Unprocessable Entity"),
				errRateLimited,
				errInternal,
				errUnavailable,
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
