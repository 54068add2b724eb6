package types

import (
	"time"

	"github.com/google/uuid"
)

// Folder groups a user's notes by subject. A user owns at most
// store.MaxFoldersPerUser folders; the store enforces that at creation.
type Folder struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Note is a single free-text note owned by a folder. Notes are deleted
// together with their folder.
type Note struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	FolderID  uuid.UUID `json:"folder_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Chunk is the unit of retrieval: a bounded slice of a note's text.
// Chunks are derived per request and never persisted.
type Chunk struct {
	NoteTitle string `json:"note_title"`
	Index     int    `json:"index"` // 1-based within the source note
	Text      string `json:"text"`
}

// ScoredChunk carries a chunk's lexical relevance to one query.
type ScoredChunk struct {
	Chunk
	Score int `json:"score"`
}

// ConversationTurn is one prior exchange in a chat, role "user" or "assistant".
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Citation ties an answer fragment to a literal snippet of note evidence.
type Citation struct {
	ID              string `json:"id"`
	EvidenceSnippet string `json:"evidence_snippet"`
}

// GroundedAnswer is the structured output the generative model must emit
// for a chat turn.
type GroundedAnswer struct {
	SpokenAnswer string     `json:"spoken_answer"`
	Citations    []Citation `json:"citations"`
	Confidence   string     `json:"confidence"`
}

// MCQ is a four-option multiple-choice question with its answer key.
type MCQ struct {
	Question      string            `json:"question"`
	Options       map[string]string `json:"options"` // labels A-D
	CorrectOption string            `json:"correct_option"`
	Explanation   string            `json:"explanation"`
	Citations     []Citation        `json:"citations"`
}

// SAQ is a short-answer question with a model answer to grade against.
type SAQ struct {
	Question    string     `json:"question"`
	ModelAnswer string     `json:"model_answer"`
	Citations   []Citation `json:"citations"`
}

// StudySet is a generated practice exam over one folder's notes.
// Message is set only when the folder had no notes to draw from.
type StudySet struct {
	Subject              string   `json:"subject"`
	MCQs                 []MCQ    `json:"mcqs"`
	ShortAnswerQuestions []SAQ    `json:"short_answer_questions"`
	References           []string `json:"references"`
	Message              string   `json:"message,omitempty"`
}

// GradeResult is the outcome of grading one free-text answer.
type GradeResult struct {
	Score    int    `json:"score"` // 0..10
	Feedback string `json:"feedback"`
}

// ChatResponse is the caller-facing chat reply.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// Config collects the service settings read from the environment at startup.
type Config struct {
	ListenAddr  string
	PostgresURL string
	ChunkSize   int
	GeminiModel string
	SpeechSTT   string
	SpeechTTS   string
}
