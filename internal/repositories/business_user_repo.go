package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gavin100305/Auraflix-sub000/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateEmail is returned by Create when the email unique constraint
// fires. The constraint is the only uniqueness check: two concurrent
// registrations for the same email resolve inside Postgres, not here.
var ErrDuplicateEmail = errors.New("business with this email already exists")

// ErrNotFound is returned when no business user matches the lookup.
var ErrNotFound = errors.New("business user not found")

// Database is the subset of pgxpool.Pool the repository uses. pgxmock
// implements it for tests.
type Database interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type BusinessUserRepository interface {
	Create(ctx context.Context, user *models.BusinessUser) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BusinessUser, error)
	GetByEmail(ctx context.Context, email string) (*models.BusinessUser, error)
	UpdateSuggestions(ctx context.Context, id uuid.UUID, payload json.RawMessage) error
	UpdateProfile(ctx context.Context, user *models.BusinessUser) error
	ListStaleSuggestions(ctx context.Context, olderThanHours int, limit int) ([]*models.BusinessUser, error)
}

type businessUserRepo struct {
	db Database
}

func NewBusinessUserRepo(db Database) BusinessUserRepository {
	return &businessUserRepo{db: db}
}

const businessUserColumns = `id, business_name, email, password_hash, business_category, description,
		contact_phone, contact_address, website,
		social_instagram, social_twitter, social_linkedin,
		suggested_influencers, created_at, updated_at`

func (r *businessUserRepo) Create(ctx context.Context, user *models.BusinessUser) error {
	query := `
		INSERT INTO business_users (id, business_name, email, password_hash, business_category, description,
			contact_phone, contact_address, website,
			social_instagram, social_twitter, social_linkedin,
			suggested_influencers, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.BusinessName, user.Email, user.PasswordHash, user.BusinessCategory, user.Description,
		user.Contact.Phone, user.Contact.Address, user.Website,
		user.SocialMedia.Instagram, user.SocialMedia.Twitter, user.SocialMedia.LinkedIn,
		user.SuggestedInfluencers,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create business user: %w", err)
	}
	return nil
}

func (r *businessUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.BusinessUser, error) {
	query := `
		SELECT ` + businessUserColumns + `
		FROM business_users
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *businessUserRepo) GetByEmail(ctx context.Context, email string) (*models.BusinessUser, error) {
	query := `
		SELECT ` + businessUserColumns + `
		FROM business_users
		WHERE email = $1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, email))
}

func (r *businessUserRepo) scanOne(row pgx.Row) (*models.BusinessUser, error) {
	user := &models.BusinessUser{}
	err := row.Scan(
		&user.ID, &user.BusinessName, &user.Email, &user.PasswordHash, &user.BusinessCategory, &user.Description,
		&user.Contact.Phone, &user.Contact.Address, &user.Website,
		&user.SocialMedia.Instagram, &user.SocialMedia.Twitter, &user.SocialMedia.LinkedIn,
		&user.SuggestedInfluencers, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *businessUserRepo) UpdateSuggestions(ctx context.Context, id uuid.UUID, payload json.RawMessage) error {
	query := `
		UPDATE business_users
		SET suggested_influencers = $1, updated_at = NOW()
		WHERE id = $2
	`
	tag, err := r.db.Exec(ctx, query, payload, id)
	if err != nil {
		return fmt.Errorf("failed to update suggestions: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *businessUserRepo) UpdateProfile(ctx context.Context, user *models.BusinessUser) error {
	query := `
		UPDATE business_users
		SET business_name = $1, business_category = $2, description = $3,
			contact_phone = $4, contact_address = $5, website = $6,
			social_instagram = $7, social_twitter = $8, social_linkedin = $9,
			updated_at = NOW()
		WHERE id = $10
	`
	tag, err := r.db.Exec(ctx, query,
		user.BusinessName, user.BusinessCategory, user.Description,
		user.Contact.Phone, user.Contact.Address, user.Website,
		user.SocialMedia.Instagram, user.SocialMedia.Twitter, user.SocialMedia.LinkedIn,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update business user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListStaleSuggestions returns businesses whose stored payload has not been
// refreshed within the given window. Used by the background refresh sweep.
func (r *businessUserRepo) ListStaleSuggestions(ctx context.Context, olderThanHours int, limit int) ([]*models.BusinessUser, error) {
	query := `
		SELECT ` + businessUserColumns + `
		FROM business_users
		WHERE updated_at < NOW() - ($1 * INTERVAL '1 hour')
		ORDER BY updated_at ASC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, olderThanHours, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.BusinessUser
	for rows.Next() {
		user := &models.BusinessUser{}
		if err := rows.Scan(
			&user.ID, &user.BusinessName, &user.Email, &user.PasswordHash, &user.BusinessCategory, &user.Description,
			&user.Contact.Phone, &user.Contact.Address, &user.Website,
			&user.SocialMedia.Instagram, &user.SocialMedia.Twitter, &user.SocialMedia.LinkedIn,
			&user.SuggestedInfluencers, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

var _ Database = (*pgxpool.Pool)(nil)
