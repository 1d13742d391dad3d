package generate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/postcraft/internal/http/middlewarectx"
	"github.com/magabrotheeeer/postcraft/internal/models"
	generation "github.com/magabrotheeeer/postcraft/internal/services/generation"
)

// MockService реализует интерфейс generate.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Generate(ctx context.Context, userUID, companyUID string, req models.DummyGenerate) (*models.GeneratedPost, error) {
	args := m.Called(ctx, userUID, companyUID, req)
	if post, ok := args.Get(0).(*models.GeneratedPost); ok {
		return post, args.Error(1)
	}
	return nil, args.Error(1)
}

const validBody = `{"platform":"instagram","format":"post","template_uid":"8d7f3c1a-2b4e-4f6a-9c8d-1e2f3a4b5c6d","suggestion":"акция"}`

func TestGenerateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		body           string
		withIdentity   bool
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:         "успешная генерация",
			body:         validBody,
			withIdentity: true,
			setupMock: func(m *MockService) {
				m.On("Generate", mock.Anything, "user-1", "company-1", mock.Anything).
					Return(&models.GeneratedPost{UID: "post-1", Caption: "Открылись!"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"uid":"post-1"`,
		},
		{
			name:           "нет идентификаторов в контексте",
			body:           validBody,
			withIdentity:   false,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"unauthorized"`,
		},
		{
			name:           "некорректный template_uid",
			body:           `{"platform":"instagram","format":"post","template_uid":"not-a-uuid"}`,
			withIdentity:   true,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field TemplateUID can contain only uuid`,
		},
		{
			name:         "нет активного пакета",
			body:         validBody,
			withIdentity: true,
			setupMock: func(m *MockService) {
				m.On("Generate", mock.Anything, "user-1", "company-1", mock.Anything).
					Return(nil, generation.ErrNoActivePack)
			},
			expectedStatus: http.StatusPaymentRequired,
			expectedBody:   `"no active pack"`,
		},
		{
			name:         "квота исчерпана",
			body:         validBody,
			withIdentity: true,
			setupMock: func(m *MockService) {
				m.On("Generate", mock.Anything, "user-1", "company-1", mock.Anything).
					Return(nil, generation.ErrQuotaExceeded)
			},
			expectedStatus: http.StatusTooManyRequests,
			expectedBody:   `"pack quota exceeded"`,
		},
		{
			name:         "сервис генерации недоступен",
			body:         validBody,
			withIdentity: true,
			setupMock: func(m *MockService) {
				m.On("Generate", mock.Anything, "user-1", "company-1", mock.Anything).
					Return(nil, errors.New("webhook timeout"))
			},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   `"could not generate post"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/posts/generate", strings.NewReader(tt.body))
			if tt.withIdentity {
				ctx := context.WithValue(req.Context(), middlewarectx.UserUID, "user-1")
				ctx = context.WithValue(ctx, middlewarectx.CompanyUID, "company-1")
				req = req.WithContext(ctx)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}
