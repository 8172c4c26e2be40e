// internal/profile/repository.go

package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/imadgeboyega/campusconnect-backend/internal/common/utils"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var ErrProfileNotFound = fmt.Errorf("profile %w", utils.ErrNotFound)

// Reader is the read side of the user store used by the engines
type Reader interface {
	GetProfile(ctx context.Context, userID string) (*UserProfile, error)
	GetProfiles(ctx context.Context, userIDs []string) (map[string]*UserProfile, error)
	ListProfiles(ctx context.Context) ([]*UserProfile, error)
}

// postgresRepository implements Reader using PostgreSQL. db may be a *sqlx.DB
// or a *sqlx.Tx.
type postgresRepository struct {
	db sqlx.ExtContext
}

// NewPostgresRepository creates a new PostgreSQL profile reader
func NewPostgresRepository(db sqlx.ExtContext) Reader {
	return &postgresRepository{db: db}
}

type profileRow struct {
	ID          string          `db:"id"`
	DisplayName string          `db:"display_name"`
	AvatarURL   sql.NullString  `db:"avatar_url"`
	Interests   pq.StringArray  `db:"interests"`
	Latitude    sql.NullFloat64 `db:"latitude"`
	Longitude   sql.NullFloat64 `db:"longitude"`
	Preferences Preferences     `db:"preferences"`
	University  sql.NullString  `db:"university"`
	Year        sql.NullString  `db:"year"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func (r profileRow) toProfile() *UserProfile {
	p := &UserProfile{
		ID:          r.ID,
		DisplayName: r.DisplayName,
		Interests:   []string(r.Interests),
		Preferences: r.Preferences,
		University:  r.University.String,
		Year:        r.Year.String,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.AvatarURL.Valid {
		p.AvatarURL = &r.AvatarURL.String
	}
	if r.Latitude.Valid && r.Longitude.Valid {
		p.Location = &Location{Lat: r.Latitude.Float64, Lon: r.Longitude.Float64}
	}
	return p
}

const selectProfile = `
	SELECT
		u.id, u.display_name, u.avatar_url, u.interests,
		u.latitude, u.longitude, u.preferences,
		u.university, u.year, u.created_at, u.updated_at
	FROM users u`

// GetProfile retrieves a profile by user ID
func (r *postgresRepository) GetProfile(ctx context.Context, userID string) (*UserProfile, error) {
	var row profileRow
	err := sqlx.GetContext(ctx, r.db, &row, selectProfile+` WHERE u.id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return row.toProfile(), nil
}

// GetProfiles retrieves the profiles that exist among userIDs, keyed by id
func (r *postgresRepository) GetProfiles(ctx context.Context, userIDs []string) (map[string]*UserProfile, error) {
	out := make(map[string]*UserProfile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	var rows []profileRow
	err := sqlx.SelectContext(ctx, r.db, &rows, selectProfile+` WHERE u.id = ANY($1)`, pq.Array(userIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to get profiles: %w", err)
	}
	for _, row := range rows {
		out[row.ID] = row.toProfile()
	}
	return out, nil
}

// ListProfiles returns every user, oldest first
func (r *postgresRepository) ListProfiles(ctx context.Context) ([]*UserProfile, error) {
	var rows []profileRow
	err := sqlx.SelectContext(ctx, r.db, &rows, selectProfile+` ORDER BY u.created_at, u.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	profiles := make([]*UserProfile, 0, len(rows))
	for _, row := range rows {
		profiles = append(profiles, row.toProfile())
	}
	return profiles, nil
}
