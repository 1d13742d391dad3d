package register

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/postcraft/internal/models"
	"github.com/magabrotheeeer/postcraft/internal/storage"
)

// MockService реализует интерфейс register.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, email, password, firstName, lastName, companyName string) (string, string, string, error) {
	args := m.Called(ctx, email, password, firstName, lastName, companyName)
	return args.String(0), args.String(1), args.String(2), args.Error(3)
}

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Load(ctx context.Context, userUID string) (*models.Snapshot, error) {
	args := m.Called(ctx, userUID)
	if snapshot, ok := args.Get(0).(*models.Snapshot); ok {
		return snapshot, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestRegisterHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	snapshot := &models.Snapshot{
		User:    &models.User{UID: "user-1", Email: "owner@zerno.ru", CompanyUID: "company-1"},
		Company: &models.Company{UID: "company-1", Name: "Кофейня Зерно"},
	}

	tests := []struct {
		name           string
		body           string
		setupMocks     func(*MockService, *MockSessionService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешная регистрация возвращает токен и снимок",
			body: `{"email":"owner@zerno.ru","password":"secret-pass","first_name":"Анна","last_name":"Иванова","company_name":"Кофейня Зерно"}`,
			setupMocks: func(m *MockService, sess *MockSessionService) {
				m.On("Register", mock.Anything, "owner@zerno.ru", "secret-pass", "Анна", "Иванова", "Кофейня Зерно").
					Return("jwt-token", "user-1", "company-1", nil)
				sess.On("Load", mock.Anything, "user-1").Return(snapshot, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"token":"jwt-token"`,
		},
		{
			name:           "некорректный JSON",
			body:           `{"email":`,
			setupMocks:     func(_ *MockService, _ *MockSessionService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"invalid request body"`,
		},
		{
			name:           "короткий пароль не проходит валидацию",
			body:           `{"email":"owner@zerno.ru","password":"short","first_name":"Анна","last_name":"Иванова","company_name":"Кофейня Зерно"}`,
			setupMocks:     func(_ *MockService, _ *MockSessionService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Password is too short`,
		},
		{
			name: "email уже занят",
			body: `{"email":"owner@zerno.ru","password":"secret-pass","first_name":"Анна","last_name":"Иванова","company_name":"Кофейня Зерно"}`,
			setupMocks: func(m *MockService, _ *MockSessionService) {
				m.On("Register", mock.Anything, "owner@zerno.ru", "secret-pass", "Анна", "Иванова", "Кофейня Зерно").
					Return("", "", "", storage.ErrEmailTaken)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"email already registered"`,
		},
		{
			name: "ошибка сервиса",
			body: `{"email":"owner@zerno.ru","password":"secret-pass","first_name":"Анна","last_name":"Иванова","company_name":"Кофейня Зерно"}`,
			setupMocks: func(m *MockService, _ *MockSessionService) {
				m.On("Register", mock.Anything, "owner@zerno.ru", "secret-pass", "Анна", "Иванова", "Кофейня Зерно").
					Return("", "", "", errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"failed to register user"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			mockSessions := new(MockSessionService)
			tt.setupMocks(mockService, mockSessions)

			handler := New(logger, mockService, mockSessions)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())
			mockService.AssertExpectations(t)
			mockSessions.AssertExpectations(t)
		})
	}
}

// После регистрации цепочка загрузки выполняется сразу: в ответе лежит
// снимок с новым пользователем и компанией, пакет отсутствует.
func TestRegisterHandler_ImmediateChainYieldsEmptyPack(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	mockService := new(MockService)
	mockSessions := new(MockSessionService)

	mockService.On("Register", mock.Anything, "owner@zerno.ru", "secret-pass", "Анна", "Иванова", "Кофейня Зерно").
		Return("jwt-token", "user-1", "company-1", nil)
	mockSessions.On("Load", mock.Anything, "user-1").Return(&models.Snapshot{
		User:    &models.User{UID: "user-1", Email: "owner@zerno.ru", CompanyUID: "company-1"},
		Company: &models.Company{UID: "company-1", Name: "Кофейня Зерно"},
		Pack:    nil,
	}, nil)

	handler := New(logger, mockService, mockSessions)
	body := `{"email":"owner@zerno.ru","password":"secret-pass","first_name":"Анна","last_name":"Иванова","company_name":"Кофейня Зерно"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Token   string           `json:"token"`
			Session *models.Snapshot `json:"session"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "jwt-token", resp.Data.Token)
	require.NotNil(t, resp.Data.Session)
	assert.Equal(t, "user-1", resp.Data.Session.User.UID)
	assert.Equal(t, "company-1", resp.Data.Session.Company.UID)
	assert.Nil(t, resp.Data.Session.Pack)
	mockSessions.AssertExpectations(t)
}
