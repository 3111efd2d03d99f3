package reconciler

import (
	"context"
	"errors"
	"fmt"

	"github.com/Houeta/pricewatch/internal/models"
	"github.com/Houeta/pricewatch/internal/repository"
)

// NamePrefixLen is how many leading characters of a candidate name are used for fuzzy matching.
const NamePrefixLen = 30

// Matcher finds the stored product a candidate refers to. It returns nil without an
// error when nothing matches.
type Matcher interface {
	Match(ctx context.Context, shopID string, candidate models.Candidate) (*models.Product, error)
}

// NameFinder looks up the oldest product of a shop whose name contains a fragment.
type NameFinder interface {
	FindProductByName(ctx context.Context, shopID, fragment string) (*models.Product, error)
}

// URLFinder looks up a product of a shop by its canonical URL.
type URLFinder interface {
	FindProductByURL(ctx context.Context, shopID, url string) (*models.Product, error)
}

// FuzzyNameMatcher matches on a case-insensitive containment of the first
// NamePrefixLen characters of the candidate name. When several products match,
// the oldest one wins.
type FuzzyNameMatcher struct {
	finder NameFinder
}

func NewFuzzyNameMatcher(finder NameFinder) *FuzzyNameMatcher {
	return &FuzzyNameMatcher{finder: finder}
}

func (m *FuzzyNameMatcher) Match(
	ctx context.Context, shopID string, candidate models.Candidate,
) (*models.Product, error) {
	const opn = "reconciler.FuzzyNameMatcher.Match"

	product, err := m.finder.FindProductByName(ctx, shopID, namePrefix(candidate.Name))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil //nolint:nilnil // no match is not an error
		}
		return nil, fmt.Errorf("%s: %w", opn, err)
	}

	return product, nil
}

// URLMatcher matches on the exact product URL.
type URLMatcher struct {
	finder URLFinder
}

func NewURLMatcher(finder URLFinder) *URLMatcher {
	return &URLMatcher{finder: finder}
}

func (m *URLMatcher) Match(ctx context.Context, shopID string, candidate models.Candidate) (*models.Product, error) {
	const opn = "reconciler.URLMatcher.Match"

	product, err := m.finder.FindProductByURL(ctx, shopID, candidate.URL)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil //nolint:nilnil // no match is not an error
		}
		return nil, fmt.Errorf("%s: %w", opn, err)
	}

	return product, nil
}

func namePrefix(name string) string {
	runes := []rune(name)
	if len(runes) > NamePrefixLen {
		runes = runes[:NamePrefixLen]
	}

	return string(runes)
}
