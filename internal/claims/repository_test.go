package claims

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultFixtureLoads(t *testing.T) {
	repo, err := DefaultFixture()
	if err != nil {
		t.Fatalf("default fixture: %v", err)
	}
	items, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 8 {
		t.Fatalf("expected 8 fixture claims, got %d", len(items))
	}
	first := items[0]
	if first.ID != "0001" {
		t.Fatalf("first claim id = %q, want 0001", first.ID)
	}
	if first.ClaimType != TypeCollision || first.Status != StatusHITLReview {
		t.Fatalf("unexpected first claim: %+v", first)
	}
	if len(first.Corrections) != 2 || first.Corrections[0].Status != CorrectionPending {
		t.Fatalf("expected two pending corrections, got %+v", first.Corrections)
	}
	if first.ClaimAmount == nil || *first.ClaimAmount != 8500 {
		t.Fatalf("expected claim amount 8500, got %v", first.ClaimAmount)
	}
	if first.CreatedAt.IsZero() {
		t.Fatalf("expected createdAt to be decoded")
	}
}

func TestGetByIDMissingClaim(t *testing.T) {
	repo, err := DefaultFixture()
	if err != nil {
		t.Fatalf("default fixture: %v", err)
	}
	_, err = repo.GetByID(context.Background(), "9999")
	if !errors.Is(err, ErrClaimNotFound) {
		t.Fatalf("expected ErrClaimNotFound, got %v", err)
	}
}

func TestListReturnsCopies(t *testing.T) {
	repo, err := DefaultFixture()
	if err != nil {
		t.Fatalf("default fixture: %v", err)
	}
	ctx := context.Background()
	items, _ := repo.List(ctx)
	items[0].Corrections[0].Status = CorrectionApproved
	items[0].ExtractedFields[0].Value = "mutated"
	again, err := repo.GetByID(ctx, "0001")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.Corrections[0].Status != CorrectionPending {
		t.Fatalf("fixture correction mutated through List result")
	}
	if again.ExtractedFields[0].Value == "mutated" {
		t.Fatalf("fixture field mutated through List result")
	}
}

func TestLoadFixtureRejectsInvalidData(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "unknown status",
			doc:  "claims:\n  - id: a\n    claimType: fire\n    status: closed\n",
			want: "unknown status",
		},
		{
			name: "confidence out of range",
			doc:  "claims:\n  - id: a\n    claimType: fire\n    status: pending\n    confidence: 101\n",
			want: "outside [0,100]",
		},
		{
			name: "negative flags",
			doc:  "claims:\n  - id: a\n    claimType: fire\n    status: pending\n    flagsCount: -1\n",
			want: "negative flag count",
		},
		{
			name: "duplicate id",
			doc:  "claims:\n  - id: a\n    claimType: fire\n    status: pending\n  - id: a\n    claimType: theft\n    status: pending\n",
			want: "duplicate claim id",
		},
		{
			name: "unsupported version",
			doc:  "version: 7\nclaims: []\n",
			want: "version 7",
		},
		{
			name: "unknown agent",
			doc:  "claims:\n  - id: a\n    claimType: fire\n    status: pending\n    agentMessages:\n      - id: m\n        agent: robot\n        type: info\n",
			want: "unknown agent",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFixture([]byte(tt.doc))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadFixtureFileOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "claims.yaml")
	doc := "version: 1\nclaims:\n  - id: x1\n    claimType: other\n    status: pending\n    confidence: 50\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	repo, err := LoadFixtureFile(path)
	if err != nil {
		t.Fatalf("load fixture file: %v", err)
	}
	if repo.Len() != 1 {
		t.Fatalf("expected 1 claim, got %d", repo.Len())
	}
	if _, err := LoadFixtureFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

type countingRepo struct {
	Repository
	lists int
	gets  int
}

func (c *countingRepo) List(ctx context.Context) ([]Claim, error) {
	c.lists++
	return c.Repository.List(ctx)
}

func (c *countingRepo) GetByID(ctx context.Context, id string) (Claim, error) {
	c.gets++
	return c.Repository.GetByID(ctx, id)
}

func TestCachedRepositoryMemoizes(t *testing.T) {
	base, err := DefaultFixture()
	if err != nil {
		t.Fatalf("default fixture: %v", err)
	}
	counter := &countingRepo{Repository: base}
	repo := NewCachedRepository(counter, 0, 0)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := repo.List(ctx); err != nil {
			t.Fatalf("list: %v", err)
		}
		if _, err := repo.GetByID(ctx, "0003"); err != nil {
			t.Fatalf("get: %v", err)
		}
	}
	if counter.lists != 1 || counter.gets != 1 {
		t.Fatalf("expected one backend call each, got lists=%d gets=%d", counter.lists, counter.gets)
	}
	items, _ := repo.List(ctx)
	items[0].Status = StatusRejected
	again, _ := repo.List(ctx)
	if again[0].Status == StatusRejected {
		t.Fatalf("cached list shared memory with caller")
	}
	if _, err := repo.GetByID(ctx, "nope"); !errors.Is(err, ErrClaimNotFound) {
		t.Fatalf("expected not found through cache, got %v", err)
	}
	repo.Flush()
	if _, err := repo.List(ctx); err != nil {
		t.Fatalf("list after flush: %v", err)
	}
	if counter.lists != 2 {
		t.Fatalf("expected reload after flush, got %d list calls", counter.lists)
	}
}

func TestParseEnums(t *testing.T) {
	if got, err := ParseClaimType(" Flood "); err != nil || got != TypeFlood {
		t.Fatalf("ParseClaimType = %q, %v", got, err)
	}
	if _, err := ParseClaimType("meteor"); err == nil {
		t.Fatalf("expected error for unknown claim type")
	}
	if got, err := ParseStatus("HITL_REVIEW"); err != nil || got != StatusHITLReview {
		t.Fatalf("ParseStatus = %q, %v", got, err)
	}
	if StatusHITLReview.Label() != "HITL Review" {
		t.Fatalf("unexpected label %q", StatusHITLReview.Label())
	}
	if AgentCAG.Label() != "CAG Agent" || AgentVerifier.Label() != "Verifier Agent" {
		t.Fatalf("unexpected agent labels")
	}
}
