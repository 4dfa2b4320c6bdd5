package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/facepk/internal/domain"
	"github.com/saturnino-fabrica-de-software/facepk/internal/service"
)

// MockDatasetService is a mock implementation of DatasetService
type MockDatasetService struct {
	mock.Mock
}

func (m *MockDatasetService) Status() *service.DatasetStatus {
	args := m.Called()
	return args.Get(0).(*service.DatasetStatus)
}

func (m *MockDatasetService) Reload(ctx context.Context) (*service.DatasetStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DatasetStatus), args.Error(1)
}

func (m *MockDatasetService) ImportArchive(ctx context.Context, data []byte) (*service.DatasetStatus, error) {
	args := m.Called(ctx, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DatasetStatus), args.Error(1)
}

func trainedStatus() *service.DatasetStatus {
	return &service.DatasetStatus{
		Trained:   true,
		Backend:   "lbph",
		Threshold: 80,
		Root:      "/srv/photos",
		Samples:   3,
		PerMember: map[string]int{"yujin": 2, "gaeul": 1},
	}
}

func TestDatasetHandler_Status(t *testing.T) {
	svc := new(MockDatasetService)
	svc.On("Status").Return(trainedStatus())

	app := newTestApp()
	app.Get("/v1/dataset", NewDatasetHandler(svc, 0, testLogger()).Status)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/dataset", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result service.DatasetStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Trained)
	assert.Equal(t, 2, result.PerMember["yujin"])
}

func TestDatasetHandler_Reload(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := new(MockDatasetService)
		svc.On("Reload", mock.Anything).Return(trainedStatus(), nil)

		app := newTestApp()
		app.Post("/v1/dataset/reload", NewDatasetHandler(svc, 0, testLogger()).Reload)

		resp, err := app.Test(httptest.NewRequest("POST", "/v1/dataset/reload", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		svc.AssertExpectations(t)
	})

	t.Run("backend unavailable", func(t *testing.T) {
		svc := new(MockDatasetService)
		svc.On("Reload", mock.Anything).Return(nil, domain.ErrRecognizerUnavailable)

		app := newTestApp()
		app.Post("/v1/dataset/reload", NewDatasetHandler(svc, 0, testLogger()).Reload)

		resp, err := app.Test(httptest.NewRequest("POST", "/v1/dataset/reload", nil))
		require.NoError(t, err)
		assert.Equal(t, 503, resp.StatusCode)
		assert.Equal(t, "RECOGNIZER_UNAVAILABLE", decodeError(t, resp.Body).Error.Code)
	})
}

func TestDatasetHandler_Import(t *testing.T) {
	archive := []byte("PK\x03\x04 pretend zip")

	tests := []struct {
		name       string
		content    []byte
		setupMock  func(*MockDatasetService)
		wantStatus int
		wantCode   string
	}{
		{
			name:    "imported",
			content: archive,
			setupMock: func(m *MockDatasetService) {
				m.On("ImportArchive", mock.Anything, archive).Return(trainedStatus(), nil)
			},
			wantStatus: 201,
		},
		{
			name:       "missing archive part",
			setupMock:  func(m *MockDatasetService) {},
			wantStatus: 422,
			wantCode:   "INVALID_ARCHIVE",
		},
		{
			name:    "malformed archive",
			content: archive,
			setupMock: func(m *MockDatasetService) {
				m.On("ImportArchive", mock.Anything, archive).Return(nil, domain.ErrInvalidArchive)
			},
			wantStatus: 422,
			wantCode:   "INVALID_ARCHIVE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDatasetService)
			tt.setupMock(svc)

			app := newTestApp()
			app.Post("/v1/dataset/import", NewDatasetHandler(svc, 1024, testLogger()).Import)

			body, contentType := multipartBody(t, "archive", tt.content, nil)
			req := httptest.NewRequest("POST", "/v1/dataset/import", body)
			req.Header.Set("Content-Type", contentType)

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, resp.Body).Error.Code)
			}

			svc.AssertExpectations(t)
		})
	}
}
