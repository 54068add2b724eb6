package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"

	"notetutor/app/api"
	"notetutor/app/middleware"
	"notetutor/loader"
	"notetutor/model"
	"notetutor/rag"
	"notetutor/store"
	"notetutor/types"

	"github.com/gofiber/fiber/v2"
)

var config = fiber.Config{
	ErrorHandler: api.ErrorHandler,
	BodyLimit:    32 * 1024 * 1024, // uploads
}

type Server struct {
	cfg    types.Config
	logger *slog.Logger
	app    *fiber.App
}

func NewServer(cfg types.Config) *Server {
	return &Server{
		cfg:    cfg,
		logger: slog.Default(),
	}
}

// ConfigFromEnv collects the service settings. Every provider setting is
// optional; missing ones select a degraded mode instead of failing startup.
func ConfigFromEnv() types.Config {
	cfg := types.Config{
		ListenAddr:  os.Getenv("SERVER_ADDR"),
		ChunkSize:   rag.DefaultChunkSize,
		GeminiModel: os.Getenv("GEMINI_MODEL"),
		SpeechSTT:   os.Getenv("SPEECH_STT_URL"),
		SpeechTTS:   os.Getenv("SPEECH_TTS_URL"),
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if v := os.Getenv("CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ChunkSize = n
		}
	}
	if host := os.Getenv("PG_HOST"); host != "" {
		port, _ := strconv.Atoi(os.Getenv("PG_PORT"))
		cfg.PostgresURL = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			host, port, os.Getenv("PG_USER"), os.Getenv("PG_PASS"), os.Getenv("PG_DB_NAME"))
	}
	return cfg
}

func (s *Server) Stop() {
	if s.app != nil {
		if err := s.app.Shutdown(); err != nil {
			s.logger.Error("error during shutdown", "error", err.Error())
		}
	}
	s.logger.Info("server stopped")
}

func (s *Server) Run() {
	ctx := context.Background()

	noteStore := s.buildStore(ctx)
	provider := s.buildProvider(ctx)

	extractor := loader.NewExtractor(os.Getenv("PDF_CONVERTER_URL"))
	speech := model.NewSpeechClient(s.cfg.SpeechSTT, s.cfg.SpeechTTS)

	var (
		app           = fiber.New(config)
		checkHandler  = api.NewCheckHandler()
		chatHandler   = api.NewChatHandler(noteStore, provider, s.cfg.ChunkSize)
		studyHandler  = api.NewStudyHandler(noteStore, rag.NewStudySetGenerator(provider, s.cfg.ChunkSize))
		gradeHandler  = api.NewGradeHandler(rag.NewGrader(provider))
		folderHandler = api.NewFolderHandler(noteStore)
		noteHandler   = api.NewNoteHandler(noteStore, extractor)
		speechHandler = api.NewSpeechHandler(speech)
		check         = app.Group("/check")
		apiv1         = app.Group("/api/v1")
	)
	s.app = app

	app.Use(middleware.RequestLogger(s.logger))

	check.Get("/healthy", checkHandler.HandleHealthy)

	apiv1.Post("/chat", chatHandler.HandleChat)
	apiv1.Post("/study", studyHandler.HandleStudy)
	apiv1.Post("/grade", gradeHandler.HandleGrade)

	apiv1.Post("/folders", folderHandler.HandleCreateFolder)
	apiv1.Get("/folders", folderHandler.HandleListFolders)
	apiv1.Delete("/folders/:id", folderHandler.HandleDeleteFolder)

	apiv1.Post("/folders/:id/notes", noteHandler.HandleCreateNote)
	apiv1.Get("/folders/:id/notes", noteHandler.HandleListNotes)
	apiv1.Post("/folders/:id/upload", noteHandler.HandleUpload)
	apiv1.Put("/notes/:id", noteHandler.HandleUpdateNote)
	apiv1.Delete("/notes/:id", noteHandler.HandleDeleteNote)

	apiv1.Post("/speech/transcribe", speechHandler.HandleTranscribe)
	apiv1.Post("/speech/synthesize", speechHandler.HandleSynthesize)

	if err := app.Listen(s.cfg.ListenAddr); err != nil {
		s.logger.Error("error to start server", "error", err.Error())
	}
}

func (s *Server) buildStore(ctx context.Context) store.NoteStorer {
	if s.cfg.PostgresURL == "" {
		s.logger.Warn("PG_HOST not set, using in-memory note store")
		return store.NewMemoryStore()
	}

	pg, err := store.NewPostgresStore(ctx, s.cfg.PostgresURL)
	if err != nil {
		log.Fatal("error to connect to Postgres database ", err)
	}
	if err := pg.Init(ctx); err != nil {
		log.Fatal("error to create tables ", err)
	}
	return pg
}

func (s *Server) buildProvider(ctx context.Context) model.TextProvider {
	provider, err := model.NewGeminiProvider(ctx, s.cfg.GeminiModel)
	if errors.Is(err, model.ErrNotConfigured) {
		s.logger.Warn("GEMINI_API_KEY not set, chat runs degraded and study sets use the templated generator")
		return nil
	}
	if err != nil {
		log.Fatal("error to create gemini client ", err)
	}
	return provider
}
