package interfaces

import (
	"context"

	"github.com/kyamadi/ai-chat-service/internal/models"
)

// PipelineStage identifies where a chat request is in the response pipeline
type PipelineStage string

const (
	StageComposing  PipelineStage = "composing"
	StageSearching  PipelineStage = "searching"
	StageExtracting PipelineStage = "extracting"
	StageAssembling PipelineStage = "assembling"
	StageGenerating PipelineStage = "generating"
	StagePersisting PipelineStage = "persisting"
	StageDone       PipelineStage = "done"
)

// StageEvent is the payload published on EventPipelineStage
type StageEvent struct {
	ProjectID string        `json:"project_id"`
	Stage     PipelineStage `json:"stage"`
	Detail    string        `json:"detail,omitempty"`
}

// ChatResult is the outcome of a full pipeline run
type ChatResult struct {
	// UserMessage is the persisted user turn
	UserMessage *models.Message

	// AssistantMessage is the persisted assistant turn. Nil when
	// generation failed and nothing was persisted.
	AssistantMessage *models.Message

	// Answer is the assistant response text, or the fixed fallback
	// message when generation failed
	Answer string

	// Articles are the stored sources linked to the assistant turn,
	// in search result order
	Articles []*models.Article

	// Degraded reports that the run completed without search context
	// (search failed, returned nothing, or extraction yielded no bodies)
	Degraded bool
}

// ChatService runs the search-augmented response pipeline for a project
type ChatService interface {
	// Respond executes the full pipeline for a user prompt: persist the
	// user turn, compose a search query, search, extract, assemble the
	// LLM context, generate, then persist the assistant turn and its
	// article links. Generation failure returns a result with a fallback
	// answer and no persisted assistant turn, not an error.
	Respond(ctx context.Context, projectID, prompt string) (*ChatResult, error)
}
