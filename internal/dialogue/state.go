// Package dialogue holds the conversation orchestration core: the per-session
// state record and the controller that sequences profile collection, metric
// computation, intent routing and responder dispatch. One State belongs to
// exactly one session and is mutated only by the controller.
package dialogue

import (
	"strings"
	"time"

	"github.com/Alejandro-houlu/Can-eat-not/internal/intent"
	"github.com/Alejandro-houlu/Can-eat-not/internal/llm"
	"github.com/Alejandro-houlu/Can-eat-not/internal/nutrition"
	"github.com/Alejandro-houlu/Can-eat-not/internal/profile"
	"github.com/Alejandro-houlu/Can-eat-not/internal/responder"
)

// Phase drives the controller's per-turn dispatch.
type Phase int

const (
	PhaseCollectingProfile Phase = iota
	PhaseAwaitingRequest
	PhaseProcessingRequest
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseCollectingProfile:
		return "collecting_profile"
	case PhaseAwaitingRequest:
		return "awaiting_request"
	case PhaseProcessingRequest:
		return "processing_request"
	case PhaseDone:
		return "done"
	}
	return "unknown"
}

// Speaker tags for history turns.
const (
	SpeakerUser  = "user"
	SpeakerCoach = "coach"
)

// Turn is one exchanged message. History is append-only and never truncated
// here; trimming for prompt context is the backend wrapper's concern.
type Turn struct {
	Speaker string
	Text    string
	At      time.Time
}

// State is the single mutable record threaded through every turn of one
// session. Profile and Metrics become immutable once set: the controller
// computes Metrics exactly once, immediately after the profile completes.
type State struct {
	Profile       profile.Profile
	Metrics       *nutrition.Metrics
	Phase         Phase
	PendingIntent *intent.Intent
	LastResult    *responder.Result
	History       []Turn
}

// NewState creates the empty state a session starts with.
func NewState() *State {
	return &State{Phase: PhaseCollectingProfile}
}

// append records one turn in the history.
func (s *State) append(speaker, text string, at time.Time) {
	s.History = append(s.History, Turn{Speaker: speaker, Text: text, At: at})
}

// historyForPrompt converts the history into the backend's context format.
func (s *State) historyForPrompt() []llm.HistoryTurn {
	turns := make([]llm.HistoryTurn, 0, len(s.History))
	for _, t := range s.History {
		turns = append(turns, llm.HistoryTurn{Speaker: t.Speaker, Text: t.Text})
	}
	return turns
}

var exitWords = map[string]struct{}{
	"exit": {}, "quit": {}, ":q": {}, "bye": {},
}

// IsExitWord reports whether an utterance is one of the session-ending words.
// Ending the session is the host's decision; the controller never terminates
// on its own.
func IsExitWord(utterance string) bool {
	_, ok := exitWords[strings.ToLower(strings.TrimSpace(utterance))]
	return ok
}
