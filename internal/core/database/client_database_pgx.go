package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/markdave123-py/sermonchat/internal/core"
	"github.com/markdave123-py/sermonchat/internal/models"
)

// DatabaseClient stores sermons in Postgres. Each create is a single INSERT,
// so concurrent admins can never overwrite each other.
type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, databaseURL string) (*DatabaseClient, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

const sermonColumns = `id, title, speaker, source_type, url, sermon_date, tags, status, created_at`

func (c *DatabaseClient) CreateSermon(ctx context.Context, sermon *models.Sermon) error {
	if sermon == nil {
		return errors.New("nil sermon")
	}
	tags, err := encodeTags(sermon.Tags)
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO sermons (` + sermonColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9)
	`
	_, err = c.db.ExecContext(ctx, q,
		sermon.ID, sermon.Title, sermon.Speaker, string(sermon.SourceType), sermon.URL,
		sermon.Date, tags, string(sermon.Status), sermon.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert sermon: %w", err)
	}
	return nil
}

func (c *DatabaseClient) ListSermons(ctx context.Context) ([]models.Sermon, error) {
	const q = `SELECT ` + sermonColumns + ` FROM sermons ORDER BY seq ASC`
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list sermons: %w", err)
	}
	defer rows.Close()

	out := []models.Sermon{}
	for rows.Next() {
		s, err := scanSermon(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) GetSermonByID(ctx context.Context, id string) (*models.Sermon, error) {
	const q = `SELECT ` + sermonColumns + ` FROM sermons WHERE id = $1`
	s, err := scanSermon(c.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrSermonNotFound
	}
	return s, err
}

func (c *DatabaseClient) UpdateSermonStatus(ctx context.Context, id string, from, to models.SermonStatus) (*models.Sermon, error) {
	const q = `
		UPDATE sermons
		SET status = $3, status_changed_at = now()
		WHERE id = $1 AND status = $2
		RETURNING ` + sermonColumns
	s, err := scanSermon(c.db.QueryRowContext(ctx, q, id, string(from), string(to)))
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update sermon status: %w", err)
	}

	// Nothing matched: either the sermon is gone or its status moved on.
	current, getErr := c.GetSermonByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, fmt.Errorf("%w: sermon %s is %s", core.ErrInvalidTransition, id, current.Status)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSermon(row rowScanner) (*models.Sermon, error) {
	var (
		s          models.Sermon
		sourceType string
		status     string
		tags       []byte
	)
	if err := row.Scan(&s.ID, &s.Title, &s.Speaker, &sourceType, &s.URL, &s.Date, &tags, &status, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.SourceType = models.SourceKind(sourceType)
	s.Status = models.SermonStatus(status)
	decoded, err := decodeTags(tags)
	if err != nil {
		return nil, fmt.Errorf("sermon %s: %w", s.ID, err)
	}
	s.Tags = decoded
	s.CreatedAt = s.CreatedAt.UTC()
	return &s, nil
}

func encodeTags(tags models.TagList) (string, error) {
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(raw []byte) (models.TagList, error) {
	if len(raw) == 0 {
		return models.TagList{}, nil
	}
	var tags models.TagList
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return tags, nil
}

var _ core.SermonStore = (*DatabaseClient)(nil)
