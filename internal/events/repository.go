// internal/events/repository.go

package events

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// EngagementReader reads a user's behavioral history
type EngagementReader interface {
	// EngagementsOf returns every RSVP and favorite of the user
	EngagementsOf(ctx context.Context, userID string) ([]*EngagementRecord, error)
}

// Repository defines event data access needed by the recommendation engine
type Repository interface {
	EngagementReader
	// ListUpcomingEvents returns events starting after from
	ListUpcomingEvents(ctx context.Context, from time.Time) ([]*EventRecord, error)
	GetEventsByIDs(ctx context.Context, ids []string) ([]*EventRecord, error)
}

// postgresRepository implements Repository using PostgreSQL
type postgresRepository struct {
	db sqlx.ExtContext
}

// NewPostgresRepository creates a new PostgreSQL event repository
func NewPostgresRepository(db sqlx.ExtContext) Repository {
	return &postgresRepository{db: db}
}

type eventRow struct {
	ID                string          `db:"id"`
	Title             string          `db:"title"`
	Description       sql.NullString  `db:"description"`
	Categories        pq.StringArray  `db:"categories"`
	StartDate         time.Time       `db:"start_date"`
	EndDate           time.Time       `db:"end_date"`
	LocationName      sql.NullString  `db:"location_name"`
	Latitude          sql.NullFloat64 `db:"latitude"`
	Longitude         sql.NullFloat64 `db:"longitude"`
	IsVirtual         bool            `db:"is_virtual"`
	OrganizerID       sql.NullString  `db:"organizer_id"`
	OrganizerName     sql.NullString  `db:"organizer_name"`
	OrganizerVerified bool            `db:"organizer_verified"`
	IsFree            bool            `db:"is_free"`
	PriceAmount       sql.NullFloat64 `db:"price_amount"`
	PriceCurrency     sql.NullString  `db:"price_currency"`
	RSVPCount         int             `db:"rsvp_count"`
	CreatedAt         time.Time       `db:"created_at"`
}

func (r eventRow) toEvent() *EventRecord {
	e := &EventRecord{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description.String,
		Categories:  []string(r.Categories),
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Organizer: Organizer{
			ID:       r.OrganizerID.String,
			Name:     r.OrganizerName.String,
			Verified: r.OrganizerVerified,
		},
		Price: Price{
			IsFree:   r.IsFree,
			Amount:   r.PriceAmount.Float64,
			Currency: r.PriceCurrency.String,
		},
		RSVPCount: r.RSVPCount,
		CreatedAt: r.CreatedAt,
	}
	if r.IsVirtual || (r.Latitude.Valid && r.Longitude.Valid) {
		e.Location = &EventLocation{
			Name:      r.LocationName.String,
			Lat:       r.Latitude.Float64,
			Lon:       r.Longitude.Float64,
			IsVirtual: r.IsVirtual,
		}
	}
	return e
}

// rsvp_count is derived from active RSVPs so it tracks RSVP changes
const selectEvent = `
	SELECT
		e.id, e.title, e.description, e.categories, e.start_date, e.end_date,
		e.location_name, e.latitude, e.longitude, e.is_virtual,
		e.organizer_id, o.name AS organizer_name, COALESCE(o.verified, false) AS organizer_verified,
		e.is_free, e.price_amount, e.price_currency, e.created_at,
		(SELECT COUNT(*) FROM event_rsvps r
		  WHERE r.event_id = e.id AND r.status IN ('going', 'interested')) AS rsvp_count
	FROM events e
	LEFT JOIN organizers o ON o.id = e.organizer_id`

func (r *postgresRepository) ListUpcomingEvents(ctx context.Context, from time.Time) ([]*EventRecord, error) {
	var rows []eventRow
	err := sqlx.SelectContext(ctx, r.db, &rows, selectEvent+`
		WHERE e.start_date > $1 AND e.is_cancelled = false
		ORDER BY e.start_date`, from)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming events: %w", err)
	}
	return toEvents(rows), nil
}

func (r *postgresRepository) GetEventsByIDs(ctx context.Context, ids []string) ([]*EventRecord, error) {
	if len(ids) == 0 {
		return []*EventRecord{}, nil
	}
	var rows []eventRow
	err := sqlx.SelectContext(ctx, r.db, &rows, selectEvent+` WHERE e.id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	return toEvents(rows), nil
}

func (r *postgresRepository) EngagementsOf(ctx context.Context, userID string) ([]*EngagementRecord, error) {
	query := `
		SELECT user_id, event_id, 'rsvp' AS kind, status, created_at
		FROM event_rsvps WHERE user_id = $1
		UNION ALL
		SELECT user_id, event_id, 'favorite' AS kind, 'favorited' AS status, created_at
		FROM event_favorites WHERE user_id = $1
		ORDER BY created_at`

	var records []*EngagementRecord
	if err := sqlx.SelectContext(ctx, r.db, &records, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list engagements: %w", err)
	}
	return records, nil
}

func toEvents(rows []eventRow) []*EventRecord {
	out := make([]*EventRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEvent())
	}
	return out
}
