package services_test

import (
	"context"
	"testing"

	"recognizer/internal/services"
)

func TestItemContextCarriesScope(t *testing.T) {
	ctx := services.NewItemContext(context.Background(), 42, "req-123")
	ctx = services.WithStage(ctx, "recognize")

	if id, ok := services.ItemIDFromContext(ctx); !ok || id != 42 {
		t.Fatalf("unexpected item id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "recognize" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestStageDoesNotLeakToParent(t *testing.T) {
	parent := services.NewItemContext(context.Background(), 7, "")
	child := services.WithStage(parent, "extract")
	if _, ok := services.StageFromContext(parent); ok {
		t.Fatal("parent context should not see child stage")
	}
	if stage, _ := services.StageFromContext(child); stage != "extract" {
		t.Fatalf("unexpected child stage %q", stage)
	}
	if _, ok := services.RequestIDFromContext(child); ok {
		t.Fatal("expected no request id")
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	if services.WithStage(ctx, "") != ctx || services.WithRequestID(ctx, "") != ctx {
		t.Fatal("blank values should return the same context")
	}
	if _, ok := services.ScopeFromContext(ctx); ok {
		t.Fatal("expected no scope")
	}
}
