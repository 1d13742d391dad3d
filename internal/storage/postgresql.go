// Package storage реализует хранилище данных на основе PostgreSQL:
// пользователи, компании, тарифные пакеты, шаблоны контента и
// сгенерированные посты. Списки строк (услуги, теги, хештеги)
// хранятся в колонках JSONB.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/postcraft/internal/models"
)

var (
	// ErrNotFound возвращается, когда запрошенная строка отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken возвращается при регистрации на уже занятый email.
	ErrEmailTaken = errors.New("email already registered")
)

const pgUniqueViolation = "23505"

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'generated_posts'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table generated_posts missing or query error: %w", err)
	}
	return nil
}

func marshalStrings(items []string) ([]byte, error) {
	if items == nil {
		items = []string{}
	}
	return json.Marshal(items)
}

func unmarshalStrings(raw []byte) ([]string, error) {
	var items []string
	if len(raw) == 0 {
		return []string{}, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ===== USER / COMPANY PROVISIONING =====

// CreateUserWithCompany создает компанию с пустым профилем и пользователя,
// ссылающегося на неё, в одной транзакции. Частично созданных учетных
// записей при сбое не остаётся.
func (s *Storage) CreateUserWithCompany(ctx context.Context, user models.User, companyName string) (string, string, error) {
	const op = "storage.CreateUserWithCompany"
	select {
	case <-ctx.Done():
		return "", "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	companyUID := uuid.New().String()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO companies (uid, name) VALUES ($1, $2)`,
		companyUID, companyName)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	userUID := uuid.New().String()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (uid, email, password_hash, first_name, last_name, role, company_uid)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		userUID, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Role, companyUID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return "", "", fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return userUID, companyUID, nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"

	query := `SELECT uid, email, password_hash, first_name, last_name, role, company_uid, created_at
	          FROM users WHERE email = $1`
	row := s.DB.QueryRowContext(ctx, query, email)

	var result models.User
	if err := row.Scan(&result.UID, &result.Email, &result.PasswordHash, &result.FirstName,
		&result.LastName, &result.Role, &result.CompanyUID, &result.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// GetUserByUID возвращает пользователя по идентификатору.
func (s *Storage) GetUserByUID(ctx context.Context, uid string) (*models.User, error) {
	const op = "storage.GetUserByUID"

	query := `SELECT uid, email, password_hash, first_name, last_name, role, company_uid, created_at
	          FROM users WHERE uid = $1`
	row := s.DB.QueryRowContext(ctx, query, uid)

	var result models.User
	if err := row.Scan(&result.UID, &result.Email, &result.PasswordHash, &result.FirstName,
		&result.LastName, &result.Role, &result.CompanyUID, &result.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// ===== COMPANY METHODS =====

// GetCompanyByUID возвращает профиль компании по идентификатору.
func (s *Storage) GetCompanyByUID(ctx context.Context, uid string) (*models.Company, error) {
	const op = "storage.GetCompanyByUID"

	query := `SELECT uid, name, sector, services, target_audience, primary_color,
	                 secondary_color, logo_url, tone_of_voice, visual_style, created_at
	          FROM companies WHERE uid = $1`
	row := s.DB.QueryRowContext(ctx, query, uid)

	var result models.Company
	var services []byte
	if err := row.Scan(&result.UID, &result.Name, &result.Sector, &services,
		&result.TargetAudience, &result.PrimaryColor, &result.SecondaryColor,
		&result.LogoURL, &result.ToneOfVoice, &result.VisualStyle, &result.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var err error
	if result.Services, err = unmarshalStrings(services); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// UpdateCompany заменяет все изменяемые поля профиля компании одним
// запросом и возвращает количество изменённых строк.
func (s *Storage) UpdateCompany(ctx context.Context, uid string, company models.Company) (int, error) {
	const op = "storage.UpdateCompany"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	services, err := marshalStrings(company.Services)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE companies
	          SET name = $1, sector = $2, services = $3, target_audience = $4,
	              primary_color = $5, secondary_color = $6, logo_url = $7,
	              tone_of_voice = $8, visual_style = $9
	          WHERE uid = $10`
	result, err := s.DB.ExecContext(ctx, query,
		company.Name, company.Sector, services, company.TargetAudience,
		company.PrimaryColor, company.SecondaryColor, company.LogoURL,
		company.ToneOfVoice, company.VisualStyle, uid)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ===== PACK METHODS =====

// CreatePack вставляет новый тарифный пакет и возвращает его идентификатор.
func (s *Storage) CreatePack(ctx context.Context, pack models.Pack) (string, error) {
	const op = "storage.CreatePack"

	uid := uuid.New().String()
	query := `INSERT INTO packs (uid, company_uid, pack_type, monthly_posts_limit, posts_used, price, status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.DB.ExecContext(ctx, query,
		uid, pack.CompanyUID, pack.PackType, pack.MonthlyPostsLimit, pack.PostsUsed, pack.Price, pack.Status)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// GetActivePack возвращает пакет компании со статусом active.
// Отсутствие такого пакета — ErrNotFound; вызывающая сторона решает,
// считать ли это ошибкой.
func (s *Storage) GetActivePack(ctx context.Context, companyUID string) (*models.Pack, error) {
	const op = "storage.GetActivePack"

	query := `SELECT uid, company_uid, pack_type, monthly_posts_limit, posts_used, price, status
	          FROM packs WHERE company_uid = $1 AND status = $2`
	row := s.DB.QueryRowContext(ctx, query, companyUID, models.PackStatusActive)

	var result models.Pack
	if err := row.Scan(&result.UID, &result.CompanyUID, &result.PackType,
		&result.MonthlyPostsLimit, &result.PostsUsed, &result.Price, &result.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// ConsumePackQuota атомарно расходует одну генерацию из пакета.
// Возвращает false, если лимит уже исчерпан: условие в WHERE исключает
// гонку read-modify-write между параллельными сессиями одной компании.
func (s *Storage) ConsumePackQuota(ctx context.Context, packUID string) (bool, error) {
	const op = "storage.ConsumePackQuota"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE packs
	          SET posts_used = posts_used + 1
	          WHERE uid = $1 AND posts_used < monthly_posts_limit AND status = $2`
	result, err := s.DB.ExecContext(ctx, query, packUID, models.PackStatusActive)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected == 1, nil
}

// ===== TEMPLATE METHODS =====

// ListTemplates возвращает шаблоны, применимые к заданным платформе и
// формату: оба тега должны содержаться в соответствующих списках шаблона.
// Пустое значение фильтра не ограничивает выборку.
func (s *Storage) ListTemplates(ctx context.Context, platform, format string) ([]*models.Template, error) {
	const op = "storage.ListTemplates"

	query := `SELECT uid, name, category, base_prompt, thumbnail_url, sectors, platforms, formats
	          FROM templates
	          WHERE ($1 = '' OR platforms ? $1)
	            AND ($2 = '' OR formats ? $2)
	          ORDER BY category, name`
	rows, err := s.DB.QueryContext(ctx, query, platform, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Template
	for rows.Next() {
		var item models.Template
		var sectors, platforms, formats []byte
		if err := rows.Scan(&item.UID, &item.Name, &item.Category, &item.BasePrompt,
			&item.ThumbnailURL, &sectors, &platforms, &formats); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if item.Sectors, err = unmarshalStrings(sectors); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if item.Platforms, err = unmarshalStrings(platforms); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if item.Formats, err = unmarshalStrings(formats); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetTemplateByUID возвращает шаблон по идентификатору.
func (s *Storage) GetTemplateByUID(ctx context.Context, uid string) (*models.Template, error) {
	const op = "storage.GetTemplateByUID"

	query := `SELECT uid, name, category, base_prompt, thumbnail_url, sectors, platforms, formats
	          FROM templates WHERE uid = $1`
	row := s.DB.QueryRowContext(ctx, query, uid)

	var result models.Template
	var sectors, platforms, formats []byte
	if err := row.Scan(&result.UID, &result.Name, &result.Category, &result.BasePrompt,
		&result.ThumbnailURL, &sectors, &platforms, &formats); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var err error
	if result.Sectors, err = unmarshalStrings(sectors); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if result.Platforms, err = unmarshalStrings(platforms); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if result.Formats, err = unmarshalStrings(formats); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// ===== GENERATED POST METHODS =====

// CreateGeneratedPost вставляет запись об успешной генерации и возвращает её идентификатор.
func (s *Storage) CreateGeneratedPost(ctx context.Context, post models.GeneratedPost) (string, error) {
	const op = "storage.CreateGeneratedPost"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	hashtags, err := marshalStrings(post.Hashtags)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	uid := uuid.New().String()
	query := `INSERT INTO generated_posts
	              (uid, company_uid, platform, format, template_uid, suggestion, image_url, caption, hashtags)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = s.DB.ExecContext(ctx, query,
		uid, post.CompanyUID, post.Platform, post.Format, post.TemplateUID,
		post.Suggestion, post.ImageURL, post.Caption, hashtags)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// RemoveGeneratedPost удаляет запись генерации. Используется только как
// компенсация, когда расход квоты проигрывает гонку параллельной сессии.
func (s *Storage) RemoveGeneratedPost(ctx context.Context, uid string) (int, error) {
	const op = "storage.RemoveGeneratedPost"

	result, err := s.DB.ExecContext(ctx, `DELETE FROM generated_posts WHERE uid = $1`, uid)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListGeneratedPosts возвращает последние посты компании, сначала новые.
func (s *Storage) ListGeneratedPosts(ctx context.Context, companyUID string, limit int) ([]*models.GeneratedPost, error) {
	const op = "storage.ListGeneratedPosts"

	query := `SELECT uid, company_uid, platform, format, template_uid, suggestion,
	                 image_url, caption, hashtags, created_at
	          FROM generated_posts
	          WHERE company_uid = $1
	          ORDER BY created_at DESC
	          LIMIT $2`
	rows, err := s.DB.QueryContext(ctx, query, companyUID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.GeneratedPost
	for rows.Next() {
		var item models.GeneratedPost
		var hashtags []byte
		if err := rows.Scan(&item.UID, &item.CompanyUID, &item.Platform, &item.Format,
			&item.TemplateUID, &item.Suggestion, &item.ImageURL, &item.Caption,
			&hashtags, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if item.Hashtags, err = unmarshalStrings(hashtags); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
