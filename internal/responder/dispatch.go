// Package responder invokes the specialized responders for classified
// intents and normalizes whatever the backend returns into a structured
// result. Backend text is never trusted to be well-formed: numeric data is
// extracted best-effort and missing numbers degrade to raw text.
package responder

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/Alejandro-houlu/Can-eat-not/internal/intent"
	"github.com/Alejandro-houlu/Can-eat-not/internal/llm"
	"github.com/Alejandro-houlu/Can-eat-not/internal/nutrition"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
)

//go:embed mealplan_prompt.md
var mealPlanPrompt string

//go:embed food_prompt.md
var foodPrompt string

const analysisCacheSize = 128

// FoodAnalysis is the structured estimate for one food request. HasEstimate
// is false when numeric extraction failed and only the raw text is usable.
type FoodAnalysis struct {
	FoodItem      string
	Quantity      string
	TotalCalories int
	ProteinG      float64
	CarbsG        float64
	FatG          float64
	Notes         string
	HasEstimate   bool
}

// Result is the normalized output of one responder invocation.
type Result struct {
	Intent   intent.Kind
	Text     string
	Analysis *FoodAnalysis
	Meta     llm.AgentMeta
}

// Error reports a failed responder invocation. The dialogue controller
// apologizes and re-offers the same phase; state is not advanced.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("responder failed: %s", e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// Dispatcher owns the two responders and the analysis cache.
type Dispatcher struct {
	backend       *llm.Backend
	log           zerolog.Logger
	mealPlanTmpl  *template.Template
	foodTmpl      *template.Template
	analysisCache *lru.Cache[string, FoodAnalysis]
}

// NewDispatcher builds a Dispatcher around a backend.
func NewDispatcher(backend *llm.Backend, log zerolog.Logger) *Dispatcher {
	cache, _ := lru.New[string, FoodAnalysis](analysisCacheSize)
	return &Dispatcher{
		backend:       backend,
		log:           log,
		mealPlanTmpl:  template.Must(template.New("mealplan").Parse(mealPlanPrompt)),
		foodTmpl:      template.Must(template.New("food").Parse(foodPrompt)),
		analysisCache: cache,
	}
}

// Dispatch invokes the responder for a recognized intent. Unrecognized
// intents are a programming error here; the router filters them out first.
func (d *Dispatcher) Dispatch(ctx context.Context, it intent.Intent, request string, metrics nutrition.Metrics, history []llm.HistoryTurn) (Result, error) {
	switch it.Kind {
	case intent.MealPlanning:
		return d.mealPlanAdvice(ctx, request, metrics, history)
	case intent.FoodConsumption:
		return d.analyzeFood(ctx, it.FoodQuery, metrics)
	default:
		return Result{}, &Error{Reason: "no responder for unrecognized intent"}
	}
}

func (d *Dispatcher) mealPlanAdvice(ctx context.Context, request string, metrics nutrition.Metrics, history []llm.HistoryTurn) (Result, error) {
	prompt, err := render(d.mealPlanTmpl, struct {
		Request string
		Metrics nutrition.Metrics
	}{Request: request, Metrics: metrics})
	if err != nil {
		return Result{}, &Error{Reason: "failed to build meal plan prompt", Err: err}
	}

	resp, meta, err := d.backend.Generate(ctx, "MealPlanner", prompt, history, llm.GenerateOptions{
		Temperature: 0.6,
		MaxTokens:   600,
	})
	if err != nil {
		return Result{Meta: meta}, &Error{Reason: "meal plan generation failed", Err: err}
	}

	return Result{
		Intent: intent.MealPlanning,
		Text:   strings.TrimSpace(resp.Content),
		Meta:   meta,
	}, nil
}

func (d *Dispatcher) analyzeFood(ctx context.Context, foodQuery string, metrics nutrition.Metrics) (Result, error) {
	key := normalizeQuery(foodQuery)
	if cached, ok := d.analysisCache.Get(key); ok {
		d.log.Debug().Str("food", key).Msg("food analysis cache hit")
		return Result{Intent: intent.FoodConsumption, Text: cached.Notes, Analysis: &cached}, nil
	}

	prompt, err := render(d.foodTmpl, struct {
		FoodQuery string
		Metrics   nutrition.Metrics
	}{FoodQuery: foodQuery, Metrics: metrics})
	if err != nil {
		return Result{}, &Error{Reason: "failed to build food analysis prompt", Err: err}
	}

	resp, meta, err := d.backend.Generate(ctx, "FoodSpecialist", prompt, nil, llm.GenerateOptions{
		Temperature: 0.2,
		MaxTokens:   400,
	})
	if err != nil {
		return Result{Meta: meta}, &Error{Reason: "food analysis failed", Err: err}
	}

	analysis := ExtractAnalysis(resp.Content, foodQuery)
	if analysis.HasEstimate {
		d.analysisCache.Add(key, analysis)
	} else {
		d.log.Debug().Str("food", foodQuery).Msg("no numeric estimate extracted, presenting raw text")
	}

	return Result{
		Intent:   intent.FoodConsumption,
		Text:     strings.TrimSpace(resp.Content),
		Analysis: &analysis,
		Meta:     meta,
	}, nil
}

func normalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
