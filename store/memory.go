package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"notetutor/types"

	"github.com/google/uuid"
)

// MemoryStore keeps folders and notes in process memory. It backs tests and
// lets the server run without Postgres configured.
type MemoryStore struct {
	mu      sync.RWMutex
	folders map[uuid.UUID]types.Folder
	notes   map[uuid.UUID]types.Note
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		folders: make(map[uuid.UUID]types.Folder),
		notes:   make(map[uuid.UUID]types.Note),
	}
}

func (m *MemoryStore) CreateFolder(_ context.Context, folder types.Folder) (*types.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, f := range m.folders {
		if f.UserID == folder.UserID {
			count++
		}
	}
	if count >= MaxFoldersPerUser {
		return nil, ErrFolderLimit
	}

	folder.ID = uuid.New()
	folder.CreatedAt = time.Now()
	m.folders[folder.ID] = folder
	return &folder, nil
}

func (m *MemoryStore) ListFolders(_ context.Context, userID string) ([]types.Folder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	folders := []types.Folder{}
	for _, f := range m.folders {
		if f.UserID == userID {
			folders = append(folders, f)
		}
	}
	sort.Slice(folders, func(i, j int) bool {
		return folders[i].CreatedAt.Before(folders[j].CreatedAt)
	})
	return folders, nil
}

func (m *MemoryStore) GetFolder(_ context.Context, userID string, folderID uuid.UUID) (*types.Folder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.folders[folderID]
	if !ok || f.UserID != userID {
		return nil, ErrNotFound
	}
	return &f, nil
}

// DeleteFolder cascades to the folder's notes, mirroring the SQL schema.
func (m *MemoryStore) DeleteFolder(_ context.Context, userID string, folderID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.folders[folderID]
	if !ok || f.UserID != userID {
		return ErrNotFound
	}
	delete(m.folders, folderID)
	for id, n := range m.notes {
		if n.FolderID == folderID {
			delete(m.notes, id)
		}
	}
	return nil
}

func (m *MemoryStore) CreateNote(_ context.Context, note types.Note) (*types.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.folders[note.FolderID]
	if !ok || f.UserID != note.UserID {
		return nil, ErrNotFound
	}

	note.ID = uuid.New()
	note.UpdatedAt = time.Now()
	m.notes[note.ID] = note
	return &note, nil
}

func (m *MemoryStore) UpdateNote(_ context.Context, note types.Note) (*types.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.notes[note.ID]
	if !ok || existing.UserID != note.UserID {
		return nil, ErrNotFound
	}
	existing.Title = note.Title
	existing.Content = note.Content
	existing.UpdatedAt = time.Now()
	m.notes[note.ID] = existing
	return &existing, nil
}

func (m *MemoryStore) DeleteNote(_ context.Context, userID string, noteID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.notes[noteID]
	if !ok || n.UserID != userID {
		return ErrNotFound
	}
	delete(m.notes, noteID)
	return nil
}

func (m *MemoryStore) FetchNotesByFolder(_ context.Context, userID string, folderID uuid.UUID) ([]types.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	notes := []types.Note{}
	for _, n := range m.notes {
		if n.FolderID == folderID && n.UserID == userID {
			notes = append(notes, n)
		}
	}
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].UpdatedAt.Before(notes[j].UpdatedAt)
	})
	return notes, nil
}
