package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/postcraft/internal/models"
)

type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) ListTemplates(ctx context.Context, platform, format string) ([]*models.Template, error) {
	args := m.Called(ctx, platform, format)
	if templates, ok := args.Get(0).([]*models.Template); ok {
		return templates, args.Error(1)
	}
	return nil, args.Error(1)
}

type fakeCache struct {
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (f *fakeCache) Get(key string, result any) (bool, error) {
	raw, ok := f.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, result)
}

func (f *fakeCache) Set(key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = raw
	return nil
}

func TestTemplateService_List_CachesResult(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	mockRepo := new(MockTemplateRepository)
	cache := newFakeCache()
	service := NewTemplateService(mockRepo, cache, logger)

	templates := []*models.Template{
		{UID: "tpl-1", Name: "Анонс акции", Platforms: []string{"instagram"}, Formats: []string{"story"}},
	}
	mockRepo.On("ListTemplates", mock.Anything, "instagram", "story").Return(templates, nil).Once()

	first, err := service.List(context.Background(), "instagram", "story")
	require.NoError(t, err)
	assert.Equal(t, templates, first)

	// Второй вызов обслуживается из кеша, репозиторий не трогается.
	second, err := service.List(context.Background(), "instagram", "story")
	require.NoError(t, err)
	assert.Equal(t, templates, second)

	mockRepo.AssertExpectations(t)
}

func TestTemplateService_List_SeparateKeysPerFilter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	mockRepo := new(MockTemplateRepository)
	cache := newFakeCache()
	service := NewTemplateService(mockRepo, cache, logger)

	mockRepo.On("ListTemplates", mock.Anything, "instagram", "").
		Return([]*models.Template{{UID: "tpl-1"}}, nil).Once()
	mockRepo.On("ListTemplates", mock.Anything, "vk", "").
		Return([]*models.Template{{UID: "tpl-2"}}, nil).Once()

	instagram, err := service.List(context.Background(), "instagram", "")
	require.NoError(t, err)
	vk, err := service.List(context.Background(), "vk", "")
	require.NoError(t, err)

	assert.NotEqual(t, instagram, vk)
	mockRepo.AssertExpectations(t)
}

func TestTemplateService_List_RepositoryError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	mockRepo := new(MockTemplateRepository)
	cache := newFakeCache()
	service := NewTemplateService(mockRepo, cache, logger)

	mockRepo.On("ListTemplates", mock.Anything, "", "").Return(nil, errors.New("db down"))

	templates, err := service.List(context.Background(), "", "")
	require.Error(t, err)
	assert.Nil(t, templates)
}
