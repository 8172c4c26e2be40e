// internal/friends/repository.go

package friends

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/imadgeboyega/campusconnect-backend/internal/common/database"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// EdgeReader is the read side of the friend edge store
type EdgeReader interface {
	// EdgesOf returns edges where userID is either end, optionally limited
	// to the given statuses
	EdgesOf(ctx context.Context, userID string, statuses ...EdgeStatus) ([]*FriendEdge, error)
	// EdgesBetween returns edges between a and b in either direction
	EdgesBetween(ctx context.Context, a, b string) ([]*FriendEdge, error)
}

// Repository defines friend edge data access
type Repository interface {
	EdgeReader
	GetEdge(ctx context.Context, id string) (*FriendEdge, error)
	CreateEdge(ctx context.Context, edge *FriendEdge) error
	UpdateEdgeStatus(ctx context.Context, id string, status EdgeStatus, respondedAt time.Time) error
	DeleteEdge(ctx context.Context, id string) error
}

// Store is a Repository that can run a unit of work atomically
type Store interface {
	Repository
	WithTx(ctx context.Context, fn func(Repository) error) error
}

// postgresRepository implements Repository using PostgreSQL
type postgresRepository struct {
	db sqlx.ExtContext
}

// NewPostgresRepository creates a repository bound to db, which may be a
// *sqlx.DB or a *sqlx.Tx
func NewPostgresRepository(db sqlx.ExtContext) Repository {
	return &postgresRepository{db: db}
}

type postgresStore struct {
	Repository
	db *sqlx.DB
}

// NewPostgresStore creates a transactional friend edge store
func NewPostgresStore(db *sqlx.DB) Store {
	return &postgresStore{Repository: NewPostgresRepository(db), db: db}
}

func (s *postgresStore) WithTx(ctx context.Context, fn func(Repository) error) error {
	return database.RunInTx(ctx, s.db, nil, func(tx *sqlx.Tx) error {
		return fn(NewPostgresRepository(tx))
	})
}

const selectEdge = `
	SELECT id, requester_id, receiver_id, status, created_at, responded_at
	FROM friend_edges`

func (r *postgresRepository) EdgesOf(ctx context.Context, userID string, statuses ...EdgeStatus) ([]*FriendEdge, error) {
	query := selectEdge + ` WHERE (requester_id = $1 OR receiver_id = $1)`
	args := []interface{}{userID}
	if len(statuses) > 0 {
		query += ` AND status = ANY($2)`
		args = append(args, pq.Array(statusStrings(statuses)))
	}
	query += ` ORDER BY created_at`

	var edges []*FriendEdge
	if err := sqlx.SelectContext(ctx, r.db, &edges, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list friend edges: %w", err)
	}
	return edges, nil
}

func (r *postgresRepository) EdgesBetween(ctx context.Context, a, b string) ([]*FriendEdge, error) {
	query := selectEdge + `
		WHERE (requester_id = $1 AND receiver_id = $2)
		   OR (requester_id = $2 AND receiver_id = $1)
		ORDER BY created_at`

	var edges []*FriendEdge
	if err := sqlx.SelectContext(ctx, r.db, &edges, query, a, b); err != nil {
		return nil, fmt.Errorf("failed to list edges between users: %w", err)
	}
	return edges, nil
}

func (r *postgresRepository) GetEdge(ctx context.Context, id string) (*FriendEdge, error) {
	var edge FriendEdge
	err := sqlx.GetContext(ctx, r.db, &edge, selectEdge+` WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEdgeNotFound
		}
		return nil, fmt.Errorf("failed to get friend edge: %w", err)
	}
	return &edge, nil
}

func (r *postgresRepository) CreateEdge(ctx context.Context, edge *FriendEdge) error {
	query := `
		INSERT INTO friend_edges (id, requester_id, receiver_id, status, created_at, responded_at)
		VALUES (:id, :requester_id, :receiver_id, :status, :created_at, :responded_at)`

	if _, err := sqlx.NamedExecContext(ctx, r.db, query, edge); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrEdgeExists
		}
		return fmt.Errorf("failed to create friend edge: %w", err)
	}
	return nil
}

func (r *postgresRepository) UpdateEdgeStatus(ctx context.Context, id string, status EdgeStatus, respondedAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE friend_edges SET status = $2, responded_at = $3 WHERE id = $1`,
		id, status, respondedAt)
	if err != nil {
		return fmt.Errorf("failed to update friend edge: %w", err)
	}
	return requireAffected(res)
}

func (r *postgresRepository) DeleteEdge(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM friend_edges WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete friend edge: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrEdgeNotFound
	}
	return nil
}

func statusStrings(statuses []EdgeStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
