package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/postcraft/internal/generator"
	"github.com/magabrotheeeer/postcraft/internal/models"
	"github.com/magabrotheeeer/postcraft/internal/storage"
)

type MockGenerationRepository struct {
	mock.Mock
}

func (m *MockGenerationRepository) GetCompanyByUID(ctx context.Context, uid string) (*models.Company, error) {
	args := m.Called(ctx, uid)
	if company, ok := args.Get(0).(*models.Company); ok {
		return company, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGenerationRepository) GetActivePack(ctx context.Context, companyUID string) (*models.Pack, error) {
	args := m.Called(ctx, companyUID)
	if pack, ok := args.Get(0).(*models.Pack); ok {
		return pack, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGenerationRepository) GetTemplateByUID(ctx context.Context, uid string) (*models.Template, error) {
	args := m.Called(ctx, uid)
	if template, ok := args.Get(0).(*models.Template); ok {
		return template, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGenerationRepository) CreateGeneratedPost(ctx context.Context, post models.GeneratedPost) (string, error) {
	args := m.Called(ctx, post)
	return args.String(0), args.Error(1)
}

func (m *MockGenerationRepository) RemoveGeneratedPost(ctx context.Context, uid string) (int, error) {
	args := m.Called(ctx, uid)
	return args.Int(0), args.Error(1)
}

func (m *MockGenerationRepository) ConsumePackQuota(ctx context.Context, packUID string) (bool, error) {
	args := m.Called(ctx, packUID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGenerationRepository) ListGeneratedPosts(ctx context.Context, companyUID string, limit int) ([]*models.GeneratedPost, error) {
	args := m.Called(ctx, companyUID, limit)
	if posts, ok := args.Get(0).([]*models.GeneratedPost); ok {
		return posts, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, req generator.GenerateRequest) (*generator.GenerateResponse, error) {
	args := m.Called(ctx, req)
	if resp, ok := args.Get(0).(*generator.GenerateResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(routingKey string, message any) error {
	args := m.Called(routingKey, message)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func newTestService(repo *MockGenerationRepository, gen *MockGenerator,
	publisher *MockPublisher, cache *MockCache) *GenerationService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return NewGenerationService(repo, gen, publisher, cache, logger)
}

func validRequest() models.DummyGenerate {
	return models.DummyGenerate{
		Platform:    "instagram",
		Format:      "post",
		TemplateUID: "8d7f3c1a-2b4e-4f6a-9c8d-1e2f3a4b5c6d",
		Suggestion:  "акция к открытию",
	}
}

func TestGenerationService_Generate_Success(t *testing.T) {
	mockRepo := new(MockGenerationRepository)
	mockGen := new(MockGenerator)
	mockPublisher := new(MockPublisher)
	mockCache := new(MockCache)
	service := newTestService(mockRepo, mockGen, mockPublisher, mockCache)
	req := validRequest()

	mockRepo.On("GetActivePack", mock.Anything, "company-1").
		Return(&models.Pack{UID: "pack-1", MonthlyPostsLimit: 30, PostsUsed: 5, Status: models.PackStatusActive}, nil)
	mockRepo.On("GetTemplateByUID", mock.Anything, req.TemplateUID).
		Return(&models.Template{UID: req.TemplateUID, Name: "Анонс акции", BasePrompt: "создай анонс"}, nil)
	mockRepo.On("GetCompanyByUID", mock.Anything, "company-1").
		Return(&models.Company{UID: "company-1", Name: "Кофейня Зерно", Sector: "HoReCa"}, nil)
	mockGen.On("Generate", mock.Anything, mock.MatchedBy(func(r generator.GenerateRequest) bool {
		return r.CompanyName == "Кофейня Зерно" && r.BasePrompt == "создай анонс" &&
			r.Platform == "instagram" && r.Suggestion == "акция к открытию"
	})).Return(&generator.GenerateResponse{
		ImageURL: "https://cdn.example.com/img.png",
		Caption:  "Открылись!",
		Hashtags: []string{"#кофе"},
	}, nil)
	mockRepo.On("CreateGeneratedPost", mock.Anything, mock.Anything).Return("post-1", nil)
	mockRepo.On("ConsumePackQuota", mock.Anything, "pack-1").Return(true, nil)
	mockCache.On("Invalidate", mock.Anything).Return(nil)
	mockPublisher.On("Publish", "post.generated", mock.MatchedBy(func(e models.PostGeneratedEvent) bool {
		return e.PostUID == "post-1" && e.CompanyUID == "company-1"
	})).Return(nil)

	post, err := service.Generate(context.Background(), "user-1", "company-1", req)

	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Equal(t, "post-1", post.UID)
	assert.Equal(t, "Открылись!", post.Caption)
	mockRepo.AssertNotCalled(t, "RemoveGeneratedPost", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
	mockGen.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestGenerationService_Generate_NoActivePack(t *testing.T) {
	mockRepo := new(MockGenerationRepository)
	mockGen := new(MockGenerator)
	service := newTestService(mockRepo, mockGen, new(MockPublisher), new(MockCache))

	mockRepo.On("GetActivePack", mock.Anything, "company-1").Return(nil, storage.ErrNotFound)

	post, err := service.Generate(context.Background(), "user-1", "company-1", validRequest())

	require.ErrorIs(t, err, ErrNoActivePack)
	assert.Nil(t, post)
	mockGen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGenerationService_Generate_QuotaExhaustedBeforeCall(t *testing.T) {
	mockRepo := new(MockGenerationRepository)
	mockGen := new(MockGenerator)
	service := newTestService(mockRepo, mockGen, new(MockPublisher), new(MockCache))

	mockRepo.On("GetActivePack", mock.Anything, "company-1").
		Return(&models.Pack{UID: "pack-1", MonthlyPostsLimit: 30, PostsUsed: 30, Status: models.PackStatusActive}, nil)

	post, err := service.Generate(context.Background(), "user-1", "company-1", validRequest())

	require.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Nil(t, post)
	// Внешний сервис не вызывается при исчерпанной квоте.
	mockGen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGenerationService_Generate_WebhookFailureConsumesNothing(t *testing.T) {
	mockRepo := new(MockGenerationRepository)
	mockGen := new(MockGenerator)
	service := newTestService(mockRepo, mockGen, new(MockPublisher), new(MockCache))
	req := validRequest()

	mockRepo.On("GetActivePack", mock.Anything, "company-1").
		Return(&models.Pack{UID: "pack-1", MonthlyPostsLimit: 30, PostsUsed: 5, Status: models.PackStatusActive}, nil)
	mockRepo.On("GetTemplateByUID", mock.Anything, req.TemplateUID).
		Return(&models.Template{UID: req.TemplateUID, Name: "Анонс акции"}, nil)
	mockRepo.On("GetCompanyByUID", mock.Anything, "company-1").
		Return(&models.Company{UID: "company-1", Name: "Кофейня Зерно"}, nil)
	mockGen.On("Generate", mock.Anything, mock.Anything).Return(nil, errors.New("webhook timeout"))

	post, err := service.Generate(context.Background(), "user-1", "company-1", req)

	require.Error(t, err)
	assert.Nil(t, post)
	// Неудачная генерация не списывает квоту и не оставляет записей.
	mockRepo.AssertNotCalled(t, "CreateGeneratedPost", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "ConsumePackQuota", mock.Anything, mock.Anything)
}

func TestGenerationService_Generate_LostQuotaRaceRemovesPost(t *testing.T) {
	mockRepo := new(MockGenerationRepository)
	mockGen := new(MockGenerator)
	mockPublisher := new(MockPublisher)
	service := newTestService(mockRepo, mockGen, mockPublisher, new(MockCache))
	req := validRequest()

	mockRepo.On("GetActivePack", mock.Anything, "company-1").
		Return(&models.Pack{UID: "pack-1", MonthlyPostsLimit: 30, PostsUsed: 29, Status: models.PackStatusActive}, nil)
	mockRepo.On("GetTemplateByUID", mock.Anything, req.TemplateUID).
		Return(&models.Template{UID: req.TemplateUID, Name: "Анонс акции"}, nil)
	mockRepo.On("GetCompanyByUID", mock.Anything, "company-1").
		Return(&models.Company{UID: "company-1", Name: "Кофейня Зерно"}, nil)
	mockGen.On("Generate", mock.Anything, mock.Anything).
		Return(&generator.GenerateResponse{ImageURL: "https://cdn.example.com/img.png", Caption: "Пост"}, nil)
	mockRepo.On("CreateGeneratedPost", mock.Anything, mock.Anything).Return("post-1", nil)
	// Конкурирующий запрос занял последний слот.
	mockRepo.On("ConsumePackQuota", mock.Anything, "pack-1").Return(false, nil)
	mockRepo.On("RemoveGeneratedPost", mock.Anything, "post-1").Return(1, nil)

	post, err := service.Generate(context.Background(), "user-1", "company-1", req)

	require.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Nil(t, post)
	mockRepo.AssertExpectations(t)
	mockPublisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestGenerationService_Generate_UnknownTemplate(t *testing.T) {
	mockRepo := new(MockGenerationRepository)
	mockGen := new(MockGenerator)
	service := newTestService(mockRepo, mockGen, new(MockPublisher), new(MockCache))
	req := validRequest()

	mockRepo.On("GetActivePack", mock.Anything, "company-1").
		Return(&models.Pack{UID: "pack-1", MonthlyPostsLimit: 30, PostsUsed: 5, Status: models.PackStatusActive}, nil)
	mockRepo.On("GetTemplateByUID", mock.Anything, req.TemplateUID).Return(nil, storage.ErrNotFound)

	post, err := service.Generate(context.Background(), "user-1", "company-1", req)

	require.ErrorIs(t, err, ErrTemplateNotFound)
	assert.Nil(t, post)
	mockGen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGenerationService_Generate_PublishFailureDoesNotFailRequest(t *testing.T) {
	mockRepo := new(MockGenerationRepository)
	mockGen := new(MockGenerator)
	mockPublisher := new(MockPublisher)
	mockCache := new(MockCache)
	service := newTestService(mockRepo, mockGen, mockPublisher, mockCache)
	req := validRequest()

	mockRepo.On("GetActivePack", mock.Anything, "company-1").
		Return(&models.Pack{UID: "pack-1", MonthlyPostsLimit: 30, PostsUsed: 5, Status: models.PackStatusActive}, nil)
	mockRepo.On("GetTemplateByUID", mock.Anything, req.TemplateUID).
		Return(&models.Template{UID: req.TemplateUID, Name: "Анонс акции"}, nil)
	mockRepo.On("GetCompanyByUID", mock.Anything, "company-1").
		Return(&models.Company{UID: "company-1", Name: "Кофейня Зерно"}, nil)
	mockGen.On("Generate", mock.Anything, mock.Anything).
		Return(&generator.GenerateResponse{ImageURL: "https://cdn.example.com/img.png", Caption: "Пост"}, nil)
	mockRepo.On("CreateGeneratedPost", mock.Anything, mock.Anything).Return("post-1", nil)
	mockRepo.On("ConsumePackQuota", mock.Anything, "pack-1").Return(true, nil)
	mockCache.On("Invalidate", mock.Anything).Return(nil)
	mockPublisher.On("Publish", "post.generated", mock.Anything).Return(errors.New("broker down"))

	post, err := service.Generate(context.Background(), "user-1", "company-1", req)

	require.NoError(t, err)
	require.NotNil(t, post)
}

func TestGenerationService_ListRecent_LimitBounds(t *testing.T) {
	mockRepo := new(MockGenerationRepository)
	service := newTestService(mockRepo, new(MockGenerator), new(MockPublisher), new(MockCache))

	mockRepo.On("ListGeneratedPosts", mock.Anything, "company-1", 20).
		Return([]*models.GeneratedPost{}, nil).Once()
	mockRepo.On("ListGeneratedPosts", mock.Anything, "company-1", 100).
		Return([]*models.GeneratedPost{}, nil).Once()

	_, err := service.ListRecent(context.Background(), "company-1", 0)
	require.NoError(t, err)
	_, err = service.ListRecent(context.Background(), "company-1", 500)
	require.NoError(t, err)

	mockRepo.AssertExpectations(t)
}
