package dialogue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Alejandro-houlu/Can-eat-not/internal/intent"
	"github.com/Alejandro-houlu/Can-eat-not/internal/llm"
	"github.com/Alejandro-houlu/Can-eat-not/internal/nutrition"
	"github.com/Alejandro-houlu/Can-eat-not/internal/profile"
	"github.com/Alejandro-houlu/Can-eat-not/internal/responder"
	"github.com/rs/zerolog"
)

// ErrInvariant signals a programming error (e.g. a turn processed in an
// impossible phase). It is the only error ProcessTurn can return; every
// user-facing or backend failure is absorbed into the emitted text.
var ErrInvariant = errors.New("dialogue invariant violated")

const fallbackText = "Something went wrong on my side, but we can keep going. Tell me again?"

// Controller owns the turn loop over one or more isolated sessions. It is the
// sole writer of any State it is handed; sessions never share state, so no
// locking happens here.
type Controller struct {
	classifier *intent.Classifier
	dispatcher *responder.Dispatcher
	renderer   Renderer
	metaSink   func(llm.AgentMeta)
	log        zerolog.Logger
	now        func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithRenderer replaces the plain renderer, e.g. with the coach persona.
func WithRenderer(r Renderer) Option {
	return func(c *Controller) { c.renderer = r }
}

// WithMetaSink registers a callback invoked with the AgentMeta of every
// backend call, for metrics recording.
func WithMetaSink(sink func(llm.AgentMeta)) Option {
	return func(c *Controller) { c.metaSink = sink }
}

// NewController wires the controller with its collaborators.
func NewController(classifier *intent.Classifier, dispatcher *responder.Dispatcher, log zerolog.Logger, opts ...Option) *Controller {
	c := &Controller{
		classifier: classifier,
		dispatcher: dispatcher,
		renderer:   PlainRenderer{},
		log:        log,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open emits the session-opening turn: a greeting plus the first profile
// question. Call once before the first user utterance.
func (c *Controller) Open(st *State) string {
	field, _ := st.Profile.NextField()
	text := c.render(Reply{Kind: ReplyGreeting, Field: field})
	st.append(SpeakerCoach, text, c.now())
	return text
}

// End marks the session closed and emits the farewell. Idempotent.
func (c *Controller) End(st *State) string {
	st.Phase = PhaseDone
	text := c.render(Reply{Kind: ReplyGoodbye})
	st.append(SpeakerCoach, text, c.now())
	return text
}

// ProcessTurn is the single entry point: it feeds one user utterance through
// the state machine and returns the emitted text. The returned text is never
// empty. State transitions are atomic: a failed stage leaves everything but
// the history exactly as before.
func (c *Controller) ProcessTurn(ctx context.Context, st *State, utterance string) (string, error) {
	if st == nil {
		return "", fmt.Errorf("%w: nil state", ErrInvariant)
	}
	if st.Phase == PhaseDone {
		return c.render(Reply{Kind: ReplyGoodbye}), nil
	}

	st.append(SpeakerUser, utterance, c.now())

	c.log.Debug().
		Stringer("phase", st.Phase).
		Bool("profile_complete", st.Profile.Complete()).
		Bool("has_metrics", st.Metrics != nil).
		Msg("routing turn")

	var reply Reply
	switch st.Phase {
	case PhaseCollectingProfile:
		reply = c.collectTurn(st, utterance)
	case PhaseAwaitingRequest:
		reply = c.requestTurn(ctx, st, utterance)
	default:
		// PhaseProcessingRequest never survives across turns: dispatch runs
		// synchronously inside requestTurn.
		return "", fmt.Errorf("%w: turn processed in phase %s", ErrInvariant, st.Phase)
	}

	text := c.render(reply)
	if text == "" {
		text = fallbackText
	}
	st.append(SpeakerCoach, text, c.now())
	return text, nil
}

// collectTurn feeds one utterance to the profile collector and, on
// completion, runs the metrics engine and advances the phase.
func (c *Controller) collectTurn(st *State, utterance string) Reply {
	field, ok := st.Profile.NextField()
	if !ok {
		// Complete profile in collecting phase cannot happen; recover by
		// advancing instead of failing the session.
		st.Phase = PhaseAwaitingRequest
		return Reply{Kind: ReplyClarify}
	}

	updated, err := profile.Collect(st.Profile, field, utterance)
	if err != nil {
		var verr *profile.ValidationError
		if errors.As(err, &verr) {
			return Reply{Kind: ReplyFieldInvalid, Field: verr.Field, Reason: verr.Reason}
		}
		return Reply{Kind: ReplyFieldInvalid, Field: field, Reason: err.Error()}
	}

	st.Profile = updated
	if !st.Profile.Complete() {
		next, _ := st.Profile.NextField()
		return Reply{Kind: ReplyAskField, Field: next}
	}

	// Profile just completed: compute metrics exactly once, synchronously.
	m := nutrition.Compute(st.Profile)
	st.Metrics = &m
	st.Phase = PhaseAwaitingRequest
	c.log.Info().
		Float64("bmi", m.BMI).
		Float64("tdee", m.TDEE).
		Int("target_calories", m.TargetCalories).
		Msg("profile complete, metrics derived")
	return Reply{Kind: ReplyMetricsReady, Metrics: st.Metrics}
}

// requestTurn classifies the utterance and, for recognized intents, runs the
// dispatch and synthesis in the same turn.
func (c *Controller) requestTurn(ctx context.Context, st *State, utterance string) Reply {
	if st.Metrics == nil {
		// Metrics absent iff profile incomplete; in AwaitingRequest both must
		// be present.
		c.log.Error().Msg("awaiting request without derived metrics")
		return Reply{Kind: ReplyApology, Reason: "internal state error"}
	}

	it := c.classifier.Classify(ctx, utterance)
	if it.Kind == intent.Unrecognized {
		return Reply{Kind: ReplyClarify}
	}

	st.PendingIntent = &it
	st.Phase = PhaseProcessingRequest

	result, err := c.dispatcher.Dispatch(ctx, it, utterance, *st.Metrics, st.historyForPrompt())
	c.sinkMeta(result.Meta)

	// Dispatch resolves within the turn: both branches return to awaiting.
	st.Phase = PhaseAwaitingRequest
	st.PendingIntent = nil

	if err != nil {
		c.log.Warn().Err(err).Str("intent", it.Kind.String()).Msg("responder dispatch failed")
		return Reply{Kind: ReplyApology, Reason: err.Error()}
	}

	st.LastResult = &result
	reply := c.synthesize(st)
	st.LastResult = nil
	return reply
}

// synthesize combines LastResult and the derived metrics into the final
// recommendation reply.
func (c *Controller) synthesize(st *State) Reply {
	result := st.LastResult

	if result.Intent == intent.MealPlanning {
		return Reply{Kind: ReplyAdvice, Result: result}
	}

	reply := Reply{Kind: ReplyFoodVerdict, Result: result, Metrics: st.Metrics}
	if result.Analysis != nil && result.Analysis.HasEstimate {
		reply.Percent = st.Metrics.PercentOfTarget(result.Analysis.TotalCalories)
		reply.Verdict = verdictFor(reply.Percent)
		c.log.Info().
			Str("food", result.Analysis.FoodItem).
			Int("calories", result.Analysis.TotalCalories).
			Float64("percent_of_target", reply.Percent).
			Msg("verdict synthesized")
	}
	return reply
}

func (c *Controller) render(r Reply) string {
	return c.renderer.Render(r)
}

func (c *Controller) sinkMeta(meta llm.AgentMeta) {
	if c.metaSink == nil || meta.AgentName == "" {
		return
	}
	c.metaSink(meta)
}
