package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/worknest/worknest-engine/pkg/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Upsert inserts the user or refreshes email, name and image of an
	// existing row with the same id. Preferences are never touched.
	Upsert(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePreferences(ctx context.Context, userID uuid.UUID, prefs models.UserPreferences) error
}

type userRepository struct{}

// NewUserRepository creates a new user repository.
func NewUserRepository() UserRepository {
	return &userRepository{}
}

var _ UserRepository = (*userRepository)(nil)

const userColumns = `u.id, u.email, u.name, u.image, u.preferences, u.created_at, u.updated_at`

func (r *userRepository) Upsert(ctx context.Context, user *models.User) error {
	q, err := querier(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	query := `
		INSERT INTO users (id, email, name, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email,
		    name = EXCLUDED.name,
		    image = EXCLUDED.image,
		    updated_at = EXCLUDED.updated_at
		RETURNING preferences, created_at, updated_at`

	var prefs []byte
	err = q.QueryRow(ctx, query, user.ID, user.Email, user.Name, user.Image, now).
		Scan(&prefs, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", translate(err, "User"))
	}

	return decodePreferences(prefs, &user.Preferences)
}

func (r *userRepository) GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1`, userID)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users u WHERE u.email = $1`, email)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	q, err := querier(ctx)
	if err != nil {
		return nil, err
	}

	user, err := scanUser(q.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, translate(err, "User")
	}
	return user, nil
}

func (r *userRepository) UpdatePreferences(ctx context.Context, userID uuid.UUID, prefs models.UserPreferences) error {
	q, err := querier(ctx)
	if err != nil {
		return err
	}

	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	result, err := q.Exec(ctx,
		`UPDATE users SET preferences = $1, updated_at = $2 WHERE id = $3`,
		data, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update preferences: %w", err)
	}
	if result.RowsAffected() == 0 {
		return translate(pgx.ErrNoRows, "User")
	}
	return nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	var prefs []byte
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Image,
		&prefs,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := decodePreferences(prefs, &user.Preferences); err != nil {
		return nil, err
	}
	return &user, nil
}

func decodePreferences(data []byte, prefs *models.UserPreferences) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, prefs); err != nil {
		return fmt.Errorf("failed to unmarshal preferences: %w", err)
	}
	return nil
}

// joinedUser scans the columns of a LEFT JOINed users row, which are all
// NULL when there is no match.
type joinedUser struct {
	ID    *uuid.UUID
	Email *string
	Name  *string
	Image *string
}

func (j *joinedUser) dest() []any {
	return []any{&j.ID, &j.Email, &j.Name, &j.Image}
}

func (j *joinedUser) user() *models.User {
	if j.ID == nil {
		return nil
	}
	u := &models.User{ID: *j.ID}
	if j.Email != nil {
		u.Email = *j.Email
	}
	if j.Name != nil {
		u.Name = *j.Name
	}
	if j.Image != nil {
		u.Image = *j.Image
	}
	return u
}
