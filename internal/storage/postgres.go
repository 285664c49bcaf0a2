package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/xaenox/maeum/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the lib/pq key/value connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresStorage(ctx context.Context, config DatabaseConfig, logger *zap.Logger) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", config.DSN())
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	storage := &PostgresStorage{db: db, logger: logger}

	if err := storage.initializeSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}

	logger.Info("Connected to PostgreSQL",
		zap.String("host", config.Host),
		zap.Int("port", config.Port),
		zap.String("dbname", config.DBName))
	return storage, nil
}

func (s *PostgresStorage) initializeSchema(ctx context.Context) error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}
	return nil
}

// SaveDiary upserts on (owner_id, entry_date); the stored ID is written back
// to entry.
func (s *PostgresStorage) SaveDiary(ctx context.Context, entry *models.DiaryEntry) error {
	prepareDiary(entry)

	query := `
		INSERT INTO diary_entries (id, owner_id, entry_date, emotions, content, feedback, weather, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (owner_id, entry_date) DO UPDATE
		SET emotions = EXCLUDED.emotions,
		    content = EXCLUDED.content,
		    feedback = EXCLUDED.feedback,
		    weather = EXCLUDED.weather,
		    created_at = EXCLUDED.created_at
		RETURNING id`

	err := s.db.QueryRowContext(ctx, query,
		entry.ID,
		entry.OwnerID,
		entry.Date,
		pq.Array(entry.Emotions),
		entry.Content,
		entry.Feedback,
		entry.Weather,
		entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("error saving diary entry: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

const selectDiary = `
	SELECT id, owner_id, entry_date, emotions, content, feedback, weather, created_at
	FROM diary_entries`

func scanDiary(row rowScanner) (*models.DiaryEntry, error) {
	entry := &models.DiaryEntry{}
	var (
		date     time.Time
		emotions []string
	)
	err := row.Scan(
		&entry.ID,
		&entry.OwnerID,
		&date,
		pq.Array(&emotions),
		&entry.Content,
		&entry.Feedback,
		&entry.Weather,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if emotions == nil {
		emotions = []string{}
	}
	entry.Date = date.Format(models.DiaryDateLayout)
	entry.Emotions = emotions
	return entry, nil
}

func (s *PostgresStorage) GetDiary(ctx context.Context, ownerID, id string) (*models.DiaryEntry, error) {
	entry, err := scanDiary(s.db.QueryRowContext(ctx, selectDiary+` WHERE id = $1 AND owner_id = $2`, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying diary entry: %w", err)
	}
	return entry, nil
}

func (s *PostgresStorage) ListDiaries(ctx context.Context, ownerID string, since time.Time) ([]*models.DiaryEntry, error) {
	query := selectDiary + `
		WHERE owner_id = $1 AND entry_date >= $2
		ORDER BY entry_date DESC, created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, ownerID, sinceDate(since))
	if err != nil {
		return nil, fmt.Errorf("error querying diary entries: %w", err)
	}
	defer rows.Close()

	entries := []*models.DiaryEntry{}
	for rows.Next() {
		entry, err := scanDiary(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning diary entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating diary entries: %w", err)
	}
	return entries, nil
}

func (s *PostgresStorage) DeleteDiary(ctx context.Context, ownerID, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM diary_entries WHERE id = $1 AND owner_id = $2`, id, ownerID)
	return checkDeleted(result, err, "diary_entries")
}

func (s *PostgresStorage) deleteByID(ctx context.Context, table, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = $1", id)
	return checkDeleted(result, err, table)
}

func checkDeleted(result sql.Result, err error, table string) error {
	if err != nil {
		return fmt.Errorf("error deleting from %s: %w", table, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStorage) CreatePost(ctx context.Context, post *models.CommunityPost) error {
	if err := preparePost(post); err != nil {
		return err
	}

	query := `
		INSERT INTO community_posts (id, content, emotion, comments, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := s.db.ExecContext(ctx, query, post.ID, post.Content, post.Emotion, post.Comments, post.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating post: %w", err)
	}
	post.Likes = 0
	return nil
}

const selectPost = `
	SELECT p.id, p.content, p.emotion, p.comments, p.created_at,
	       (SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id)
	FROM community_posts p`

func scanPost(row rowScanner) (*models.CommunityPost, error) {
	post := &models.CommunityPost{}
	err := row.Scan(&post.ID, &post.Content, &post.Emotion, &post.Comments, &post.CreatedAt, &post.Likes)
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostgresStorage) ListPosts(ctx context.Context) ([]*models.CommunityPost, error) {
	rows, err := s.db.QueryContext(ctx, selectPost+` ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("error querying posts: %w", err)
	}
	defer rows.Close()

	posts := []*models.CommunityPost{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}
	return posts, nil
}

func (s *PostgresStorage) ToggleLike(ctx context.Context, postID, viewerID string) (*models.CommunityPost, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM community_posts WHERE id = $1 FOR UPDATE`, postID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, ErrNotFound
	}
	if err != nil {
		return nil, false, fmt.Errorf("error locking post: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND viewer_id = $2`, postID, viewerID)
	if err != nil {
		return nil, false, fmt.Errorf("error removing like: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("error getting rows affected: %w", err)
	}

	liked := removed == 0
	if liked {
		if _, err := tx.ExecContext(ctx, `INSERT INTO post_likes (post_id, viewer_id) VALUES ($1, $2)`, postID, viewerID); err != nil {
			return nil, false, fmt.Errorf("error adding like: %w", err)
		}
	}

	post, err := scanPost(tx.QueryRowContext(ctx, selectPost+` WHERE p.id = $1`, postID))
	if err != nil {
		return nil, false, fmt.Errorf("error reloading post: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("error committing like: %w", err)
	}
	return post, liked, nil
}

func (s *PostgresStorage) DeletePost(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "community_posts", id)
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
