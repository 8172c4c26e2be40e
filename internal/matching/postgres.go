// internal/matching/postgres.go

package matching

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/imadgeboyega/campusconnect-backend/internal/common/database"
	"github.com/imadgeboyega/campusconnect-backend/internal/events"
	"github.com/imadgeboyega/campusconnect-backend/internal/friends"
	"github.com/imadgeboyega/campusconnect-backend/internal/messaging"
	"github.com/imadgeboyega/campusconnect-backend/internal/profile"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const maxTxAttempts = 3

type postgresRepository struct {
	profileReader
	edgeRepository
	engagementReader
	conversationRepository

	db sqlx.ExtContext
}

// NewPostgresRepository creates a repository bound to db, which may be a
// *sqlx.DB or a *sqlx.Tx
func NewPostgresRepository(db sqlx.ExtContext) Repository {
	return &postgresRepository{
		profileReader:          profile.NewPostgresRepository(db),
		edgeRepository:         friends.NewPostgresRepository(db),
		engagementReader:       events.NewPostgresRepository(db),
		conversationRepository: messaging.NewPostgresRepository(db),
		db:                     db,
	}
}

type postgresStore struct {
	Repository
	db *sqlx.DB
}

// NewPostgresStore creates a Store whose transactions run at serializable
// isolation and are retried on serialization failures
func NewPostgresStore(db *sqlx.DB) Store {
	return &postgresStore{Repository: NewPostgresRepository(db), db: db}
}

func (s *postgresStore) WithTx(ctx context.Context, fn func(Repository) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = database.RunInTx(ctx, s.db, opts, func(tx *sqlx.Tx) error {
			return fn(NewPostgresRepository(tx))
		})
		if err == nil || !isRetryable(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt*25) * time.Millisecond):
		}
	}
	return err
}

// isRetryable reports serialization failures and deadlocks
func isRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "40001" || pqErr.Code == "40P01"
}

func (r *postgresRepository) LockUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "match:"+userID); err != nil {
		return fmt.Errorf("failed to lock user: %w", err)
	}
	return nil
}

type suggestionRow struct {
	ID                string            `db:"id"`
	SuggestedToUserID string            `db:"suggested_to_user_id"`
	SuggestedUserID   string            `db:"suggested_user_id"`
	MatchScore        int               `db:"match_score"`
	Reasons           pq.StringArray    `db:"reasons"`
	ConnectionDetails ConnectionDetails `db:"connection_details"`
	Status            SuggestionStatus  `db:"status"`
	RejectReason      sql.NullString    `db:"reject_reason"`
	CreatedAt         time.Time         `db:"created_at"`
	ViewedAt          sql.NullTime      `db:"viewed_at"`
	RespondedAt       sql.NullTime      `db:"responded_at"`
}

func (r suggestionRow) toSuggestion() *MatchSuggestion {
	s := &MatchSuggestion{
		ID:                r.ID,
		SuggestedToUserID: r.SuggestedToUserID,
		SuggestedUserID:   r.SuggestedUserID,
		MatchScore:        r.MatchScore,
		Reasons:           []string(r.Reasons),
		ConnectionDetails: r.ConnectionDetails,
		Status:            r.Status,
		CreatedAt:         r.CreatedAt,
	}
	if r.RejectReason.Valid {
		s.RejectReason = &r.RejectReason.String
	}
	if r.ViewedAt.Valid {
		s.ViewedAt = &r.ViewedAt.Time
	}
	if r.RespondedAt.Valid {
		s.RespondedAt = &r.RespondedAt.Time
	}
	return s
}

const selectSuggestion = `
	SELECT id, suggested_to_user_id, suggested_user_id, match_score, reasons,
	       connection_details, status, reject_reason, created_at, viewed_at, responded_at
	FROM match_suggestions`

// CreateSuggestion relies on the partial unique index
// match_suggestions_active_pair (suggested_to_user_id, suggested_user_id)
// WHERE status IN ('pending', 'viewed')
func (r *postgresRepository) CreateSuggestion(ctx context.Context, s *MatchSuggestion) error {
	query := `
		INSERT INTO match_suggestions (
			id, suggested_to_user_id, suggested_user_id, match_score, reasons,
			connection_details, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (suggested_to_user_id, suggested_user_id)
			WHERE status IN ('pending', 'viewed')
		DO NOTHING`

	res, err := r.db.ExecContext(ctx, query,
		s.ID, s.SuggestedToUserID, s.SuggestedUserID, s.MatchScore,
		pq.Array(s.Reasons), s.ConnectionDetails, s.Status, s.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateSuggestion
		}
		return fmt.Errorf("failed to create suggestion: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrDuplicateSuggestion
	}
	return nil
}

func (r *postgresRepository) GetSuggestion(ctx context.Context, id string) (*MatchSuggestion, error) {
	var row suggestionRow
	err := sqlx.GetContext(ctx, r.db, &row, selectSuggestion+` WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSuggestionNotFound
		}
		return nil, fmt.Errorf("failed to get suggestion: %w", err)
	}
	return row.toSuggestion(), nil
}

func (r *postgresRepository) UpdateSuggestion(ctx context.Context, s *MatchSuggestion) error {
	query := `
		UPDATE match_suggestions
		SET status = $2, viewed_at = $3, responded_at = $4, reject_reason = $5
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, s.ID, s.Status, s.ViewedAt, s.RespondedAt, s.RejectReason)
	if err != nil {
		return fmt.Errorf("failed to update suggestion: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrSuggestionNotFound
	}
	return nil
}

func (r *postgresRepository) RecentActiveSuggestionsFor(ctx context.Context, toUserID string, since time.Time) ([]*MatchSuggestion, error) {
	query := selectSuggestion + `
		WHERE suggested_to_user_id = $1
		  AND status IN ('pending', 'viewed')
		  AND created_at >= $2`
	return r.selectSuggestions(ctx, query, toUserID, since)
}

func (r *postgresRepository) ListSuggestions(ctx context.Context, toUserID string, statuses []SuggestionStatus, limit int) ([]*MatchSuggestion, error) {
	query := selectSuggestion + `
		WHERE suggested_to_user_id = $1 AND status = ANY($2)
		ORDER BY created_at DESC, id
		LIMIT $3`
	return r.selectSuggestions(ctx, query, toUserID, pq.Array(statusStrings(statuses)), limit)
}

func (r *postgresRepository) SuggestionsBetween(ctx context.Context, a, b string, statuses ...SuggestionStatus) ([]*MatchSuggestion, error) {
	query := selectSuggestion + `
		WHERE ((suggested_to_user_id = $1 AND suggested_user_id = $2)
		    OR (suggested_to_user_id = $2 AND suggested_user_id = $1))`
	args := []interface{}{a, b}
	if len(statuses) > 0 {
		query += ` AND status = ANY($3)`
		args = append(args, pq.Array(statusStrings(statuses)))
	}
	return r.selectSuggestions(ctx, query+` ORDER BY created_at`, args...)
}

func (r *postgresRepository) selectSuggestions(ctx context.Context, query string, args ...interface{}) ([]*MatchSuggestion, error) {
	var rows []suggestionRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}
	out := make([]*MatchSuggestion, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toSuggestion())
	}
	return out, nil
}

func (r *postgresRepository) CountSuggestionsByStatus(ctx context.Context, toUserID string) (map[SuggestionStatus]int, error) {
	var rows []struct {
		Status SuggestionStatus `db:"status"`
		Count  int              `db:"count"`
	}
	query := `
		SELECT status, COUNT(*) AS count
		FROM match_suggestions
		WHERE suggested_to_user_id = $1
		GROUP BY status`
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, toUserID); err != nil {
		return nil, fmt.Errorf("failed to count suggestions: %w", err)
	}

	counts := make(map[SuggestionStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *postgresRepository) ExpireSuggestions(ctx context.Context, cutoff time.Time, reason string, at time.Time) (int, error) {
	query := `
		UPDATE match_suggestions
		SET status = 'rejected', reject_reason = $2, responded_at = $3
		WHERE status IN ('pending', 'viewed') AND created_at < $1`

	res, err := r.db.ExecContext(ctx, query, cutoff, reason, at)
	if err != nil {
		return 0, fmt.Errorf("failed to expire suggestions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return int(n), nil
}

func (r *postgresRepository) CreateInteraction(ctx context.Context, i *MatchInteraction) error {
	metadata, err := json.Marshal(i.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode interaction metadata: %w", err)
	}

	query := `
		INSERT INTO match_interactions (id, from_user_id, to_user_id, action, suggestion_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query,
		i.ID, i.FromUserID, i.ToUserID, i.Action, i.SuggestionID, metadata, i.Timestamp); err != nil {
		return fmt.Errorf("failed to record interaction: %w", err)
	}
	return nil
}

func statusStrings(statuses []SuggestionStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
