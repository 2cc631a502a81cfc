package policy

import (
	"context"
	"testing"
)

func TestDefaultPolicyAllowsPDF(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngine(ctx, DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	decision, err := engine.Evaluate(ctx, UploadInput{
		Filename:  "handbook.pdf",
		MediaType: "application/pdf",
		SizeBytes: 1024,
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if decision != "allow" {
		t.Fatalf("expected allow, got %s", decision)
	}
}

func TestDefaultPolicyBlocksBinaries(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngine(ctx, DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	decision, err := engine.Evaluate(ctx, UploadInput{
		Filename:  "tool.exe",
		MediaType: "application/octet-stream",
		SizeBytes: 1024,
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if decision != "block" {
		t.Fatalf("expected block, got %s", decision)
	}
}

func TestDefaultPolicyBlocksOversize(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngine(ctx, DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	decision, err := engine.Evaluate(ctx, UploadInput{
		Filename:  "big.pdf",
		MediaType: "application/pdf",
		SizeBytes: 50 * 1024 * 1024,
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if decision != "block" {
		t.Fatalf("expected block, got %s", decision)
	}
}
