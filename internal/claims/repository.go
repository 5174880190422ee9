package claims

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrClaimNotFound is returned when a claim id is not present in the repository.
var ErrClaimNotFound = errors.New("claims: claim not found")

const fixtureVersion = 1

//go:embed fixture/claims.yaml
var defaultFixture []byte

// Repository is the read side of the claim store. Views depend on this
// interface so a real backend can replace the fixture.
type Repository interface {
	List(ctx context.Context) ([]Claim, error)
	GetByID(ctx context.Context, id string) (Claim, error)
}

type fixtureFile struct {
	Version int     `yaml:"version"`
	Claims  []Claim `yaml:"claims"`
}

// FixtureRepository serves claims from a fixture decoded once at startup.
// The underlying slice is never mutated after construction.
type FixtureRepository struct {
	claims []Claim
	index  map[string]int
}

var _ Repository = (*FixtureRepository)(nil)

// NewFixtureRepository builds a repository from already decoded claims.
func NewFixtureRepository(items []Claim) (*FixtureRepository, error) {
	repo := &FixtureRepository{
		claims: make([]Claim, 0, len(items)),
		index:  make(map[string]int, len(items)),
	}
	for i, claim := range items {
		claim.ID = strings.TrimSpace(claim.ID)
		if err := claim.Validate(); err != nil {
			return nil, fmt.Errorf("claims: fixture[%d]: %w", i, err)
		}
		if _, dup := repo.index[claim.ID]; dup {
			return nil, fmt.Errorf("claims: fixture[%d]: duplicate claim id %q", i, claim.ID)
		}
		repo.index[claim.ID] = len(repo.claims)
		repo.claims = append(repo.claims, claim.Clone())
	}
	return repo, nil
}

// LoadFixture decodes a YAML fixture document.
func LoadFixture(data []byte) (*FixtureRepository, error) {
	var parsed fixtureFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("claims: parse fixture: %w", err)
	}
	if parsed.Version == 0 {
		parsed.Version = fixtureVersion
	}
	if parsed.Version != fixtureVersion {
		return nil, fmt.Errorf("claims: fixture version %d not supported", parsed.Version)
	}
	return NewFixtureRepository(parsed.Claims)
}

// LoadFixtureFile reads a fixture from disk. An empty path selects the
// fixture bundled with the binary.
func LoadFixtureFile(path string) (*FixtureRepository, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultFixture()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("claims: read fixture %s: %w", path, err)
	}
	return LoadFixture(data)
}

// DefaultFixture returns the bundled mock dataset.
func DefaultFixture() (*FixtureRepository, error) {
	return LoadFixture(defaultFixture)
}

// List returns copies of every claim in fixture order.
func (r *FixtureRepository) List(ctx context.Context) ([]Claim, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Claim, len(r.claims))
	for i, claim := range r.claims {
		out[i] = claim.Clone()
	}
	return out, nil
}

// GetByID returns a copy of the claim with the given id.
func (r *FixtureRepository) GetByID(ctx context.Context, id string) (Claim, error) {
	if err := ctx.Err(); err != nil {
		return Claim{}, err
	}
	idx, ok := r.index[strings.TrimSpace(id)]
	if !ok {
		return Claim{}, fmt.Errorf("%w: %s", ErrClaimNotFound, id)
	}
	return r.claims[idx].Clone(), nil
}

// Len reports how many claims the fixture holds.
func (r *FixtureRepository) Len() int {
	return len(r.claims)
}
