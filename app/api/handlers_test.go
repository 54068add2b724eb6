package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"notetutor/model"
	"notetutor/rag"
	"notetutor/store"
	"notetutor/types"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	reply string
	err   error
	calls int
}

func (f *fakeProvider) Complete(_ context.Context, _ string, _ []model.Message) (string, error) {
	f.calls++
	return f.reply, f.err
}

func newTestApp(noteStore store.NoteStorer, provider model.TextProvider) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})

	chat := NewChatHandler(noteStore, provider, rag.DefaultChunkSize)
	study := NewStudyHandler(noteStore, rag.NewStudySetGenerator(provider, rag.DefaultChunkSize))
	grade := NewGradeHandler(rag.NewGrader(provider))
	folders := NewFolderHandler(noteStore)

	v1 := app.Group("/api/v1")
	v1.Post("/chat", chat.HandleChat)
	v1.Post("/study", study.HandleStudy)
	v1.Post("/grade", grade.HandleGrade)
	v1.Post("/folders", folders.HandleCreateFolder)
	v1.Get("/folders", folders.HandleListFolders)
	v1.Delete("/folders/:id", folders.HandleDeleteFolder)

	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func seedFolder(t *testing.T, s store.NoteStorer, name string, contents ...string) *types.Folder {
	t.Helper()
	ctx := context.Background()
	folder, err := s.CreateFolder(ctx, types.Folder{UserID: DefaultUserID, Name: name})
	require.NoError(t, err)
	for i, content := range contents {
		_, err := s.CreateNote(ctx, types.Note{
			UserID:   DefaultUserID,
			FolderID: folder.ID,
			Title:    fmt.Sprintf("%s note %d", name, i+1),
			Content:  content,
		})
		require.NoError(t, err)
	}
	return folder
}

func TestChatMissingMessageRejected(t *testing.T) {
	provider := &fakeProvider{}
	app := newTestApp(store.NewMemoryStore(), provider)

	resp := postJSON(t, app, "/api/v1/chat", fiber.Map{"folder_id": uuid.New().String()})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Zero(t, provider.calls)

	var body ValidationError
	decodeBody(t, resp, &body)
	assert.Contains(t, body.Errors, "Message")
}

func TestChatUnknownFolder(t *testing.T) {
	app := newTestApp(store.NewMemoryStore(), &fakeProvider{})

	resp := postJSON(t, app, "/api/v1/chat", fiber.Map{
		"message":   "hello",
		"folder_id": uuid.New().String(),
	})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestChatInvalidFolderID(t *testing.T) {
	app := newTestApp(store.NewMemoryStore(), &fakeProvider{})

	resp := postJSON(t, app, "/api/v1/chat", fiber.Map{
		"message":   "hello",
		"folder_id": "not-a-uuid",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestChatWithoutProviderReturnsCannedReply(t *testing.T) {
	s := store.NewMemoryStore()
	folder := seedFolder(t, s, "Biology", "The mitochondria is the powerhouse of the cell.")
	app := newTestApp(s, nil)

	resp := postJSON(t, app, "/api/v1/chat", fiber.Map{
		"message":   "What is the powerhouse of the cell?",
		"folder_id": folder.ID.String(),
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body types.ChatResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, ProviderDownReply, body.Reply)
}

func TestChatRendersGroundedAnswer(t *testing.T) {
	s := store.NewMemoryStore()
	folder := seedFolder(t, s, "Biology", "The mitochondria is the powerhouse of the cell.")
	provider := &fakeProvider{reply: `{
		"spoken_answer": "The mitochondria is the powerhouse of the cell.",
		"citations": [{"id": "Biology note 1, Chunk 1", "evidence_snippet": "powerhouse of the cell"}],
		"confidence": "High"
	}`}
	app := newTestApp(s, provider)

	resp := postJSON(t, app, "/api/v1/chat", fiber.Map{
		"message":   "What is the powerhouse of the cell?",
		"folder_id": folder.ID.String(),
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, provider.calls)

	var body types.ChatResponse
	decodeBody(t, resp, &body)
	assert.Contains(t, body.Reply, "powerhouse of the cell")
	assert.Contains(t, body.Reply, "Supporting Evidence:")
	assert.Contains(t, body.Reply, "[Biology note 1, Chunk 1]")
}

func TestChatRefusalPassesThroughVerbatim(t *testing.T) {
	s := store.NewMemoryStore()
	folder := seedFolder(t, s, "Biology", "Notes about cells.")
	provider := &fakeProvider{reply: `{
		"spoken_answer": "Not found in your notes for Biology",
		"citations": [],
		"confidence": "Low"
	}`}
	app := newTestApp(s, provider)

	resp := postJSON(t, app, "/api/v1/chat", fiber.Map{
		"message":   "Who won the 1998 World Cup?",
		"folder_id": folder.ID.String(),
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body types.ChatResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "Not found in your notes for Biology", body.Reply)
}

func TestChatMalformedOutputDegrades(t *testing.T) {
	s := store.NewMemoryStore()
	folder := seedFolder(t, s, "Biology", "Notes about cells.")
	app := newTestApp(s, &fakeProvider{reply: "sure! the answer is mitochondria"})

	resp := postJSON(t, app, "/api/v1/chat", fiber.Map{
		"message":   "What is the powerhouse of the cell?",
		"folder_id": folder.ID.String(),
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body types.ChatResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, rag.FallbackReply, body.Reply)
}

func TestChatUpstreamFailure(t *testing.T) {
	s := store.NewMemoryStore()
	folder := seedFolder(t, s, "Biology", "Notes about cells.")
	app := newTestApp(s, &fakeProvider{err: errors.New("connection refused")})

	resp := postJSON(t, app, "/api/v1/chat", fiber.Map{
		"message":   "anything",
		"folder_id": folder.ID.String(),
	})
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}

func TestStudyEmptyFolderShortCircuits(t *testing.T) {
	s := store.NewMemoryStore()
	folder := seedFolder(t, s, "Biology")
	provider := &fakeProvider{}
	app := newTestApp(s, provider)

	resp := postJSON(t, app, "/api/v1/study", fiber.Map{"folder_id": folder.ID.String()})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Zero(t, provider.calls)

	var set types.StudySet
	decodeBody(t, resp, &set)
	assert.Equal(t, "Biology", set.Subject)
	assert.Empty(t, set.MCQs)
	assert.Empty(t, set.ShortAnswerQuestions)
	assert.Equal(t, rag.EmptyStudyMessage, set.Message)
}

func TestStudyMalformedOutputDegrades(t *testing.T) {
	s := store.NewMemoryStore()
	folder := seedFolder(t, s, "Biology", "Notes about cells.")
	app := newTestApp(s, &fakeProvider{reply: "here are some questions: 1) ..."})

	resp := postJSON(t, app, "/api/v1/study", fiber.Map{"folder_id": folder.ID.String()})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var set types.StudySet
	decodeBody(t, resp, &set)
	assert.Empty(t, set.MCQs)
	assert.Equal(t, rag.FallbackReply, set.Message)
}

func TestStudyTemplatedWithoutProvider(t *testing.T) {
	s := store.NewMemoryStore()
	folder := seedFolder(t, s, "Biology",
		"The mitochondria is the powerhouse of the cell.",
		"Photosynthesis happens in chloroplasts.")
	app := newTestApp(s, nil)

	resp := postJSON(t, app, "/api/v1/study", fiber.Map{"folder_id": folder.ID.String()})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var set types.StudySet
	decodeBody(t, resp, &set)
	assert.NotEmpty(t, set.MCQs)
	assert.Empty(t, set.Message)
	for _, q := range set.MCQs {
		assert.Equal(t, "A", q.CorrectOption)
	}
}

func TestGradeMissingUserAnswerRejected(t *testing.T) {
	provider := &fakeProvider{reply: `{"score": 10, "feedback": "f"}`}
	app := newTestApp(store.NewMemoryStore(), provider)

	resp := postJSON(t, app, "/api/v1/grade", fiber.Map{
		"question":     "What is the powerhouse of the cell?",
		"model_answer": "The mitochondria.",
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Zero(t, provider.calls)

	var body ValidationError
	decodeBody(t, resp, &body)
	assert.Contains(t, body.Errors, "UserAnswer")
}

func TestGradeSuccess(t *testing.T) {
	app := newTestApp(store.NewMemoryStore(),
		&fakeProvider{reply: `{"score": 8, "feedback": "Close, but mention the membrane."}`})

	resp := postJSON(t, app, "/api/v1/grade", fiber.Map{
		"question":     "What is the powerhouse of the cell?",
		"model_answer": "The mitochondria.",
		"user_answer":  "mitochondria",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result types.GradeResult
	decodeBody(t, resp, &result)
	assert.Equal(t, 8, result.Score)
	assert.Equal(t, "Close, but mention the membrane.", result.Feedback)
}

func TestGradeWithoutProviderUnavailable(t *testing.T) {
	app := newTestApp(store.NewMemoryStore(), nil)

	resp := postJSON(t, app, "/api/v1/grade", fiber.Map{
		"question":     "q",
		"model_answer": "m",
		"user_answer":  "a",
	})
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestFolderLimitOverHTTP(t *testing.T) {
	app := newTestApp(store.NewMemoryStore(), nil)

	for i := 0; i < store.MaxFoldersPerUser; i++ {
		resp := postJSON(t, app, "/api/v1/folders", fiber.Map{"name": fmt.Sprintf("Subject %d", i)})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}

	resp := postJSON(t, app, "/api/v1/folders", fiber.Map{"name": "One too many"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestFoldersScopedByUserHeader(t *testing.T) {
	s := store.NewMemoryStore()
	seedFolder(t, s, "Biology")
	app := newTestApp(s, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/folders", nil)
	req.Header.Set("X-User-ID", "someone-else")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var folders []types.Folder
	decodeBody(t, resp, &folders)
	assert.Empty(t, folders)
}
