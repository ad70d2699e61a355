package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tree_backend/internal/feature/history/domain/entity"
	"tree_backend/internal/feature/history/transport/handler"
	"tree_backend/internal/feature/history/transport/http/dto"
	"tree_backend/internal/feature/history/usecase"
	jwtmw "tree_backend/internal/platform/jwt"
)

// mockHistoryUsecase はHistoryUsecaseインターフェースのモック実装です。
type mockHistoryUsecase struct {
	ListHistoryFunc    func(ctx context.Context, deviceID string, limit int) ([]entity.Entry, error)
	DeleteEntryFunc    func(ctx context.Context, deviceID string, id uuid.UUID) error
	AddFavoriteFunc    func(ctx context.Context, deviceID string, historyID uuid.UUID) (*entity.Favorite, error)
	ListFavoritesFunc  func(ctx context.Context, deviceID string) ([]entity.Favorite, error)
	RemoveFavoriteFunc func(ctx context.Context, deviceID string, id uuid.UUID) error
}

func (m *mockHistoryUsecase) ListHistory(ctx context.Context, deviceID string, limit int) ([]entity.Entry, error) {
	return m.ListHistoryFunc(ctx, deviceID, limit)
}

func (m *mockHistoryUsecase) DeleteEntry(ctx context.Context, deviceID string, id uuid.UUID) error {
	return m.DeleteEntryFunc(ctx, deviceID, id)
}

func (m *mockHistoryUsecase) AddFavorite(ctx context.Context, deviceID string, historyID uuid.UUID) (*entity.Favorite, error) {
	return m.AddFavoriteFunc(ctx, deviceID, historyID)
}

func (m *mockHistoryUsecase) ListFavorites(ctx context.Context, deviceID string) ([]entity.Favorite, error) {
	return m.ListFavoritesFunc(ctx, deviceID)
}

func (m *mockHistoryUsecase) RemoveFavorite(ctx context.Context, deviceID string, id uuid.UUID) error {
	return m.RemoveFavoriteFunc(ctx, deviceID, id)
}

const (
	testDevice  = "dev-1"
	testEntryID = "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b"
)

var testTime = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

// setupRouter はJWTミドルウェアの代わりに端末IDを直接セットします。
func setupRouter(uc handler.HistoryUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewHistoryHandler(uc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(jwtmw.ContextDeviceID, testDevice)
		c.Next()
	})
	r.GET("/v1/history", h.List)
	r.DELETE("/v1/history/:id", h.Delete)
	r.GET("/v1/favorites", h.ListFavorites)
	r.POST("/v1/favorites", h.AddFavorite)
	r.DELETE("/v1/favorites/:id", h.RemoveFavorite)
	return r
}

func TestHistoryHandler_List(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		expectedStatus int
		expectedLimit  int
	}{
		{name: "success: default limit", target: "/v1/history", expectedStatus: http.StatusOK, expectedLimit: usecase.MaxEntries},
		{name: "success: explicit limit", target: "/v1/history?limit=5", expectedStatus: http.StatusOK, expectedLimit: 5},
		{name: "error: invalid limit", target: "/v1/history?limit=five", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotLimit int
			var gotDevice string
			uc := &mockHistoryUsecase{
				ListHistoryFunc: func(ctx context.Context, deviceID string, limit int) ([]entity.Entry, error) {
					gotDevice, gotLimit = deviceID, limit
					return []entity.Entry{{
						ID:           uuid.MustParse(testEntryID),
						SpeciesName:  "Acer saccharum",
						CommonName:   "Sugar Maple",
						Confidence:   0.93,
						IdentifiedAt: testTime,
					}}, nil
				},
			}
			w := httptest.NewRecorder()
			setupRouter(uc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				return
			}
			assert.Equal(t, testDevice, gotDevice)
			assert.Equal(t, tt.expectedLimit, gotLimit)

			var got dto.HistoryListResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			require.Equal(t, 1, got.Count)
			assert.Equal(t, testEntryID, got.Entries[0].ID)
			assert.Equal(t, "2024-05-01T09:30:00Z", got.Entries[0].Timestamp)
			assert.Equal(t, []string{}, got.Entries[0].Alternatives)
		})
	}
}

func TestHistoryHandler_Delete(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		mockErr        error
		expectedStatus int
	}{
		{name: "success: deleted", target: "/v1/history/" + testEntryID, expectedStatus: http.StatusNoContent},
		{name: "error: not found", target: "/v1/history/" + testEntryID, mockErr: usecase.ErrEntryNotFound, expectedStatus: http.StatusNotFound},
		{name: "error: invalid id", target: "/v1/history/123", expectedStatus: http.StatusBadRequest},
		{name: "error: storage failure", target: "/v1/history/" + testEntryID, mockErr: errors.New("db down"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockHistoryUsecase{
				DeleteEntryFunc: func(ctx context.Context, deviceID string, id uuid.UUID) error {
					return tt.mockErr
				},
			}
			w := httptest.NewRecorder()
			setupRouter(uc).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, tt.target, nil))
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestHistoryHandler_AddFavorite(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockErr        error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "success: favorite created",
			body:           `{"history_id":"` + testEntryID + `"}`,
			expectedStatus: http.StatusCreated,
			expectedBody: `{"id":"0190a1b2-0000-7000-8000-000000000009","history_id":"` + testEntryID + `",` +
				`"species":"Acer saccharum","common_name":"Sugar Maple","confidence":0.93,` +
				`"timestamp":"2024-05-01T09:30:00Z","added_at":"2024-05-01T10:30:00Z"}`,
		},
		{
			name:           "error: duplicate",
			body:           `{"history_id":"` + testEntryID + `"}`,
			mockErr:        usecase.ErrAlreadyFavorite,
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"error":"既にお気に入りに登録されています"}`,
		},
		{
			name:           "error: history missing",
			body:           `{"history_id":"` + testEntryID + `"}`,
			mockErr:        usecase.ErrEntryNotFound,
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"履歴が見つかりません"}`,
		},
		{
			name:           "error: missing history_id",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"history_idを指定してください"}`,
		},
		{
			name:           "error: malformed history_id",
			body:           `{"history_id":"oak"}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"history_idを指定してください"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockHistoryUsecase{
				AddFavoriteFunc: func(ctx context.Context, deviceID string, historyID uuid.UUID) (*entity.Favorite, error) {
					if tt.mockErr != nil {
						return nil, tt.mockErr
					}
					return &entity.Favorite{
						ID:           uuid.MustParse("0190a1b2-0000-7000-8000-000000000009"),
						DeviceID:     deviceID,
						HistoryID:    historyID,
						SpeciesName:  "Acer saccharum",
						CommonName:   "Sugar Maple",
						Confidence:   0.93,
						IdentifiedAt: testTime,
						CreatedAt:    testTime.Add(time.Hour),
					}, nil
				},
			}
			req := httptest.NewRequest(http.MethodPost, "/v1/favorites", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			setupRouter(uc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestHistoryHandler_Favorites(t *testing.T) {
	t.Run("success: list favorites", func(t *testing.T) {
		uc := &mockHistoryUsecase{
			ListFavoritesFunc: func(ctx context.Context, deviceID string) ([]entity.Favorite, error) {
				return nil, nil
			},
		}
		w := httptest.NewRecorder()
		setupRouter(uc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/favorites", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"favorites":[],"count":0}`, w.Body.String())
	})

	t.Run("error: remove missing favorite", func(t *testing.T) {
		uc := &mockHistoryUsecase{
			RemoveFavoriteFunc: func(ctx context.Context, deviceID string, id uuid.UUID) error {
				return usecase.ErrEntryNotFound
			},
		}
		w := httptest.NewRecorder()
		setupRouter(uc).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/favorites/"+testEntryID, nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("success: remove favorite", func(t *testing.T) {
		uc := &mockHistoryUsecase{
			RemoveFavoriteFunc: func(ctx context.Context, deviceID string, id uuid.UUID) error {
				return nil
			},
		}
		w := httptest.NewRecorder()
		setupRouter(uc).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/favorites/"+testEntryID, nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
