package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"notetutor/types"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MaxFoldersPerUser is a hard cap enforced at creation time, not a soft limit.
const MaxFoldersPerUser = 3

var (
	ErrFolderLimit = errors.New("folder limit reached")
	ErrNotFound    = errors.New("not found")
)

// NoteStorer is the persistence boundary for folders and notes. The
// retrieval core only ever reads through FetchNotesByFolder.
type NoteStorer interface {
	CreateFolder(ctx context.Context, folder types.Folder) (*types.Folder, error)
	ListFolders(ctx context.Context, userID string) ([]types.Folder, error)
	GetFolder(ctx context.Context, userID string, folderID uuid.UUID) (*types.Folder, error)
	DeleteFolder(ctx context.Context, userID string, folderID uuid.UUID) error
	CreateNote(ctx context.Context, note types.Note) (*types.Note, error)
	UpdateNote(ctx context.Context, note types.Note) (*types.Note, error)
	DeleteNote(ctx context.Context, userID string, noteID uuid.UUID) error
	FetchNotesByFolder(ctx context.Context, userID string, folderID uuid.UUID) ([]types.Note, error)
}

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func (p *PostgresStore) Init(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS folders (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE
	);

	CREATE INDEX IF NOT EXISTS idx_folders_user_id ON folders(user_id);

	CREATE TABLE IF NOT EXISTS notes (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		folder_id UUID NOT NULL REFERENCES folders(id) ON DELETE CASCADE,
		title TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE
	);

	CREATE INDEX IF NOT EXISTS idx_notes_folder_id ON notes(folder_id);
	`
	_, err := p.pool.Exec(ctx, query)
	return err
}

// CreateFolder inserts a folder after checking the per-user cap under a
// per-user advisory lock, so concurrent creates cannot exceed the cap.
func (p *PostgresStore) CreateFolder(ctx context.Context, folder types.Folder) (*types.Folder, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Serialize creates per user; count-then-insert alone can race two
	// concurrent requests past the cap.
	if _, err := tx.Exec(ctx,
		"SELECT pg_advisory_xact_lock(hashtext($1))", folder.UserID,
	); err != nil {
		return nil, fmt.Errorf("lock user folders: %w", err)
	}

	var count int
	if err := tx.QueryRow(ctx,
		"SELECT count(*) FROM folders WHERE user_id = $1", folder.UserID,
	).Scan(&count); err != nil {
		return nil, fmt.Errorf("count folders: %w", err)
	}
	if count >= MaxFoldersPerUser {
		return nil, ErrFolderLimit
	}

	folder.ID = uuid.New()
	folder.CreatedAt = time.Now()
	if _, err := tx.Exec(ctx,
		"INSERT INTO folders (id, user_id, name, created_at) VALUES ($1, $2, $3, $4)",
		folder.ID, folder.UserID, folder.Name, folder.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert folder: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &folder, nil
}

func (p *PostgresStore) ListFolders(ctx context.Context, userID string) ([]types.Folder, error) {
	rows, err := p.pool.Query(ctx,
		"SELECT id, user_id, name, created_at FROM folders WHERE user_id = $1 ORDER BY created_at", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	folders := []types.Folder{}
	for rows.Next() {
		var f types.Folder
		if err := rows.Scan(&f.ID, &f.UserID, &f.Name, &f.CreatedAt); err != nil {
			return nil, err
		}
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

func (p *PostgresStore) GetFolder(ctx context.Context, userID string, folderID uuid.UUID) (*types.Folder, error) {
	var f types.Folder
	err := p.pool.QueryRow(ctx,
		"SELECT id, user_id, name, created_at FROM folders WHERE id = $1 AND user_id = $2",
		folderID, userID,
	).Scan(&f.ID, &f.UserID, &f.Name, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// DeleteFolder removes the folder; its notes go with it via the cascade.
func (p *PostgresStore) DeleteFolder(ctx context.Context, userID string, folderID uuid.UUID) error {
	tag, err := p.pool.Exec(ctx,
		"DELETE FROM folders WHERE id = $1 AND user_id = $2", folderID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) CreateNote(ctx context.Context, note types.Note) (*types.Note, error) {
	if _, err := p.GetFolder(ctx, note.UserID, note.FolderID); err != nil {
		return nil, err
	}

	note.ID = uuid.New()
	note.UpdatedAt = time.Now()
	_, err := p.pool.Exec(ctx,
		"INSERT INTO notes (id, user_id, folder_id, title, content, updated_at) VALUES ($1, $2, $3, $4, $5, $6)",
		note.ID, note.UserID, note.FolderID, note.Title, note.Content, note.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	return &note, nil
}

func (p *PostgresStore) UpdateNote(ctx context.Context, note types.Note) (*types.Note, error) {
	note.UpdatedAt = time.Now()
	tag, err := p.pool.Exec(ctx,
		"UPDATE notes SET title = $1, content = $2, updated_at = $3 WHERE id = $4 AND user_id = $5",
		note.Title, note.Content, note.UpdatedAt, note.ID, note.UserID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return &note, nil
}

func (p *PostgresStore) DeleteNote(ctx context.Context, userID string, noteID uuid.UUID) error {
	tag, err := p.pool.Exec(ctx,
		"DELETE FROM notes WHERE id = $1 AND user_id = $2", noteID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) FetchNotesByFolder(ctx context.Context, userID string, folderID uuid.UUID) ([]types.Note, error) {
	rows, err := p.pool.Query(ctx,
		"SELECT id, user_id, folder_id, title, content, updated_at FROM notes WHERE folder_id = $1 AND user_id = $2 ORDER BY updated_at",
		folderID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []types.Note{}
	for rows.Next() {
		var n types.Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.FolderID, &n.Title, &n.Content, &n.UpdatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (p *PostgresStore) Close() error {
	if p.pool != nil {
		p.pool.Close()
		log.Println("Postgres connection pool is closed")
	}
	return nil
}
