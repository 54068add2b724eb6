package store

import (
	"context"
	"sync"
	"testing"

	"notetutor/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreFolderCap(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < MaxFoldersPerUser; i++ {
		_, err := s.CreateFolder(ctx, types.Folder{UserID: "alice", Name: "Subject"})
		require.NoError(t, err)
	}

	_, err := s.CreateFolder(ctx, types.Folder{UserID: "alice", Name: "One too many"})
	assert.ErrorIs(t, err, ErrFolderLimit)

	// The cap is per user.
	_, err = s.CreateFolder(ctx, types.Folder{UserID: "bob", Name: "Subject"})
	assert.NoError(t, err)

	folders, err := s.ListFolders(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, folders, MaxFoldersPerUser)
}

func TestMemoryStoreFolderCapUnderConcurrency(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.CreateFolder(ctx, types.Folder{UserID: "alice", Name: "Subject"})
		}()
	}
	wg.Wait()

	folders, err := s.ListFolders(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, folders, MaxFoldersPerUser)
}

func TestMemoryStoreGetFolderScopedToUser(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	folder, err := s.CreateFolder(ctx, types.Folder{UserID: "alice", Name: "Biology"})
	require.NoError(t, err)

	got, err := s.GetFolder(ctx, "alice", folder.ID)
	require.NoError(t, err)
	assert.Equal(t, "Biology", got.Name)

	_, err = s.GetFolder(ctx, "bob", folder.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetFolder(ctx, "alice", uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreNoteLifecycle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	folder, err := s.CreateFolder(ctx, types.Folder{UserID: "alice", Name: "Biology"})
	require.NoError(t, err)

	note, err := s.CreateNote(ctx, types.Note{
		UserID:   "alice",
		FolderID: folder.ID,
		Title:    "Cells",
		Content:  "The mitochondria is the powerhouse of the cell.",
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, note.ID)

	note.Content = "Updated content."
	updated, err := s.UpdateNote(ctx, *note)
	require.NoError(t, err)
	assert.Equal(t, "Updated content.", updated.Content)

	notes, err := s.FetchNotesByFolder(ctx, "alice", folder.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Updated content.", notes[0].Content)

	require.NoError(t, s.DeleteNote(ctx, "alice", note.ID))
	notes, err = s.FetchNotesByFolder(ctx, "alice", folder.ID)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestMemoryStoreCreateNoteRequiresOwnFolder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	folder, err := s.CreateFolder(ctx, types.Folder{UserID: "alice", Name: "Biology"})
	require.NoError(t, err)

	_, err = s.CreateNote(ctx, types.Note{UserID: "bob", FolderID: folder.ID, Content: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.CreateNote(ctx, types.Note{UserID: "alice", FolderID: uuid.New(), Content: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDeleteFolderCascades(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	folder, err := s.CreateFolder(ctx, types.Folder{UserID: "alice", Name: "Biology"})
	require.NoError(t, err)
	keep, err := s.CreateFolder(ctx, types.Folder{UserID: "alice", Name: "History"})
	require.NoError(t, err)

	doomed, err := s.CreateNote(ctx, types.Note{UserID: "alice", FolderID: folder.ID, Content: "gone"})
	require.NoError(t, err)
	kept, err := s.CreateNote(ctx, types.Note{UserID: "alice", FolderID: keep.ID, Content: "stays"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteFolder(ctx, "alice", folder.ID))

	assert.ErrorIs(t, s.DeleteNote(ctx, "alice", doomed.ID), ErrNotFound)

	notes, err := s.FetchNotesByFolder(ctx, "alice", keep.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, kept.ID, notes[0].ID)
}
