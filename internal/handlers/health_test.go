package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	"bookchat/internal/vectorstore"
	vectorstore_mocks "bookchat/internal/vectorstore/mocks"
)

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		info       *vectorstore.CollectionInfo
		infoErr    error
		wantStatus int
		wantHealth string
	}{
		{
			name:       "healthy",
			info:       &vectorstore.CollectionInfo{VectorSize: 1024, PointsCount: 10, Status: "green"},
			wantStatus: http.StatusOK,
			wantHealth: "healthy",
		},
		{
			name:       "vector store down",
			infoErr:    errors.New("connection refused"),
			wantStatus: http.StatusServiceUnavailable,
			wantHealth: "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := vectorstore_mocks.NewMockVectorStore(ctrl)
			store.EXPECT().Info(gomock.Any(), "c").Return(tt.info, tt.infoErr)

			handler := NewHealthHandler(store, "c")
			req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var resp HealthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Status != tt.wantHealth {
				t.Errorf("health = %q, want %q", resp.Status, tt.wantHealth)
			}
		})
	}
}
