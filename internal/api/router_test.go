package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/facepk/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/facepk/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/facepk/internal/domain"
	"github.com/saturnino-fabrica-de-software/facepk/internal/matcher"
	"github.com/saturnino-fabrica-de-software/facepk/internal/recognizer/lbph"
	"github.com/saturnino-fabrica-de-software/facepk/internal/service"
	"github.com/saturnino-fabrica-de-software/facepk/internal/testutil"
	"github.com/saturnino-fabrica-de-software/facepk/internal/ws"
)

const yujinDisplay = "\u516a\u771f\u110b\u1172\u110c\u1175\u11ab"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newGame returns a service over root; it is trained only if train is set
func newGame(t *testing.T, root string, train bool) *service.GameService {
	t.Helper()

	tr, err := lbph.NewTrainer(lbph.DefaultConfig())
	require.NoError(t, err)

	handle := matcher.NewHandle(tr, domain.DefaultRegistry(), root, testLogger())
	if train {
		_, err = handle.Reload(context.Background())
		require.NoError(t, err)
	}

	return service.NewGameService(handle, nil, testLogger()).WithImportDir(t.TempDir())
}

func photoRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	testutil.WritePNG(t, filepath.Join(root, "yujin"), "a.png", testutil.Noise(1))
	testutil.WritePNG(t, filepath.Join(root, "gaeul"), "b.png", testutil.Flat(128))
	return root
}

func newTestRouter(t *testing.T, deps *Dependencies) *Router {
	t.Helper()
	r := NewRouter(testLogger(), deps)
	r.Setup()
	t.Cleanup(func() { _ = r.Shutdown() })
	return r
}

func roundRequest(t *testing.T, image []byte, guess string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if guess != "" {
		require.NoError(t, w.WriteField("guess", guess))
	}
	part, err := w.CreateFormFile("image", "photo.png")
	require.NoError(t, err)
	_, err = part.Write(image)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/v1/rounds", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestRouter_Probes(t *testing.T) {
	root := photoRoot(t)

	t.Run("untrained", func(t *testing.T) {
		r := newTestRouter(t, &Dependencies{Game: newGame(t, root, false)})

		resp, err := r.App().Test(httptest.NewRequest("GET", "/health", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		resp, err = r.App().Test(httptest.NewRequest("GET", "/ready", nil))
		require.NoError(t, err)
		assert.Equal(t, 503, resp.StatusCode)
	})

	t.Run("trained", func(t *testing.T) {
		r := newTestRouter(t, &Dependencies{Game: newGame(t, root, true)})

		resp, err := r.App().Test(httptest.NewRequest("GET", "/ready", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("without dependencies", func(t *testing.T) {
		r := newTestRouter(t, nil)

		resp, err := r.App().Test(httptest.NewRequest("GET", "/health", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		resp, err = r.App().Test(httptest.NewRequest("GET", "/v1/members", nil))
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
	})
}

func TestRouter_PlayRound(t *testing.T) {
	r := newTestRouter(t, &Dependencies{Game: newGame(t, photoRoot(t), true)})

	resp, err := r.App().Test(roundRequest(t, testutil.PNG(t, testutil.Noise(1)), yujinDisplay))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	var round domain.Round
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&round))
	assert.Equal(t, "yujin", round.PredictedKey)
	assert.True(t, round.Matched)
	require.NotNil(t, round.Correct)
	assert.True(t, *round.Correct)
	assert.Equal(t, "AI 也認為是 "+yujinDisplay+"，你答對了！", round.Verdict)
	assert.Equal(t, "lbph", round.Backend)
}

func TestRouter_MembersAndDataset(t *testing.T) {
	r := newTestRouter(t, &Dependencies{Game: newGame(t, photoRoot(t), true)})

	resp, err := r.App().Test(httptest.NewRequest("GET", "/v1/members", nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var members handler.MembersResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&members))
	assert.Len(t, members.Members, 6)
	assert.Equal(t, lbph.DefaultThreshold, members.Threshold)

	resp, err = r.App().Test(httptest.NewRequest("GET", "/v1/dataset", nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var status service.DatasetStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.True(t, status.Trained)
	assert.Equal(t, 2, status.Samples)

	resp, err = r.App().Test(httptest.NewRequest("GET", "/v1/scoreboard", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestRouter_RateLimit(t *testing.T) {
	r := newTestRouter(t, &Dependencies{Game: newGame(t, photoRoot(t), true), RateLimitPerMinute: 1})
	photo := testutil.PNG(t, testutil.Noise(1))

	resp, err := r.App().Test(roundRequest(t, photo, ""))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = r.App().Test(roundRequest(t, photo, ""))
	require.NoError(t, err)
	assert.Equal(t, 429, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))

	var body middleware.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", body.Error.Code)

	// read-only routes are not limited
	resp, err = r.App().Test(httptest.NewRequest("GET", "/v1/members", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestRouter_BodyLimit(t *testing.T) {
	r := newTestRouter(t, &Dependencies{Game: newGame(t, photoRoot(t), true), MaxUploadMB: 1})

	resp, err := r.App().Test(roundRequest(t, bytes.Repeat([]byte{0xff}, 2*1024*1024), ""))
	require.NoError(t, err)
	assert.Equal(t, 413, resp.StatusCode)
}

func TestRouter_LiveFeed(t *testing.T) {
	hub := ws.NewHub()
	game := newGame(t, photoRoot(t), true).WithEvents(hub)
	r := newTestRouter(t, &Dependencies{Game: game, Live: hub})

	// plain GET without the upgrade handshake
	resp, err := r.App().Test(httptest.NewRequest("GET", "/v1/live", nil))
	require.NoError(t, err)
	assert.Equal(t, 426, resp.StatusCode)

	// publishing with no spectators must not block a round
	resp, err = r.App().Test(roundRequest(t, testutil.PNG(t, testutil.Noise(1)), ""))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 0, hub.ConnectedClients())
}
