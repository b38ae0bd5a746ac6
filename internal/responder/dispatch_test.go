package responder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Alejandro-houlu/Can-eat-not/internal/intent"
	"github.com/Alejandro-houlu/Can-eat-not/internal/llm"
	"github.com/Alejandro-houlu/Can-eat-not/internal/nutrition"
	"github.com/Alejandro-houlu/Can-eat-not/internal/profile"
	"github.com/rs/zerolog"
)

type stubGenerator struct {
	reply string
	err   error
	calls int
}

func (s *stubGenerator) GenerateContent(ctx context.Context, prompt string, opts llm.GenerateOptions) (llm.ContentResponse, error) {
	s.calls++
	if s.err != nil {
		return llm.ContentResponse{}, s.err
	}
	return llm.ContentResponse{
		Content: s.reply,
		Usage:   llm.TokenUsage{PromptTokens: 20, CompletionTokens: 10, Model: "stub"},
	}, nil
}

func testMetrics() nutrition.Metrics {
	return nutrition.Compute(profile.Profile{
		Age: 25, Sex: profile.SexMale, HeightCm: 180, WeightKg: 75,
		ActivityLevel: profile.ActivityModerate,
	})
}

func newDispatcher(gen llm.TextGenerator) *Dispatcher {
	backend := llm.NewBackend(gen, time.Second, zerolog.Nop())
	return NewDispatcher(backend, zerolog.Nop())
}

func TestDispatchMealPlanning(t *testing.T) {
	gen := &stubGenerator{reply: "Eat more vegetables and lean protein."}
	d := newDispatcher(gen)

	res, err := d.Dispatch(context.Background(), intent.Intent{Kind: intent.MealPlanning}, "give me a meal plan", testMetrics(), nil)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if res.Text != "Eat more vegetables and lean protein." {
		t.Errorf("text = %q", res.Text)
	}
	if res.Analysis != nil {
		t.Error("meal planning result should carry no food analysis")
	}
	if res.Meta.AgentName != "MealPlanner" {
		t.Errorf("agent name = %q", res.Meta.AgentName)
	}
}

func TestDispatchFoodConsumption(t *testing.T) {
	gen := &stubGenerator{reply: `{"food_item": "pizza", "quantity": "1 slice", "total_calories": 280, "macros": {"protein_g": 12, "carbs_g": 36, "fat_g": 10}, "nutritional_notes": "Greasy but manageable."}`}
	d := newDispatcher(gen)

	it := intent.Intent{Kind: intent.FoodConsumption, FoodQuery: "1 slice of pizza"}
	res, err := d.Dispatch(context.Background(), it, "i want to eat 1 slice of pizza", testMetrics(), nil)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if res.Analysis == nil || !res.Analysis.HasEstimate {
		t.Fatal("expected a numeric analysis")
	}
	if res.Analysis.TotalCalories != 280 {
		t.Errorf("calories = %d, want 280", res.Analysis.TotalCalories)
	}
}

func TestDispatchFoodAnalysisCached(t *testing.T) {
	gen := &stubGenerator{reply: `{"food_item": "apple", "total_calories": 95}`}
	d := newDispatcher(gen)

	it := intent.Intent{Kind: intent.FoodConsumption, FoodQuery: "An  Apple"}
	if _, err := d.Dispatch(context.Background(), it, "can i eat an apple", testMetrics(), nil); err != nil {
		t.Fatal(err)
	}
	// Same food, different casing and spacing: must hit the cache.
	it2 := intent.Intent{Kind: intent.FoodConsumption, FoodQuery: "an apple"}
	res, err := d.Dispatch(context.Background(), it2, "can i eat an apple", testMetrics(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times, want 1 (cache hit)", gen.calls)
	}
	if res.Analysis == nil || res.Analysis.TotalCalories != 95 {
		t.Errorf("cached analysis = %+v", res.Analysis)
	}
}

func TestDispatchExtractionFailureDegrades(t *testing.T) {
	gen := &stubGenerator{reply: "Honestly it depends on the portion."}
	d := newDispatcher(gen)

	it := intent.Intent{Kind: intent.FoodConsumption, FoodQuery: "mystery stew"}
	res, err := d.Dispatch(context.Background(), it, "can i eat mystery stew", testMetrics(), nil)
	if err != nil {
		t.Fatalf("extraction failure must not be an error: %v", err)
	}
	if res.Analysis == nil || res.Analysis.HasEstimate {
		t.Error("expected analysis without estimate")
	}
	if res.Text == "" {
		t.Error("raw text must be preserved for degraded presentation")
	}
}

func TestDispatchBackendErrorBecomesResponderError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("down")}
	d := newDispatcher(gen)

	it := intent.Intent{Kind: intent.FoodConsumption, FoodQuery: "pizza"}
	_, err := d.Dispatch(context.Background(), it, "can i eat pizza", testMetrics(), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	var rerr *Error
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *responder.Error, got %T", err)
	}
	var berr *llm.BackendError
	if !errors.As(err, &berr) {
		t.Error("responder error should wrap the backend error")
	}
}

func TestDispatchUnrecognizedIntent(t *testing.T) {
	d := newDispatcher(&stubGenerator{reply: "x"})
	_, err := d.Dispatch(context.Background(), intent.Intent{Kind: intent.Unrecognized}, "??", testMetrics(), nil)
	if err == nil {
		t.Fatal("expected error dispatching unrecognized intent")
	}
}

func TestDispatchNoEstimateNotCached(t *testing.T) {
	gen := &stubGenerator{reply: "no numbers here"}
	d := newDispatcher(gen)

	it := intent.Intent{Kind: intent.FoodConsumption, FoodQuery: "mystery stew"}
	d.Dispatch(context.Background(), it, "can i eat mystery stew", testMetrics(), nil)
	d.Dispatch(context.Background(), it, "can i eat mystery stew", testMetrics(), nil)
	if gen.calls != 2 {
		t.Errorf("generator called %d times, want 2 (failed extraction must not be cached)", gen.calls)
	}
}
