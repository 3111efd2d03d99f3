// Package sites holds the per-shop scraping configuration. Onboarding a shop means adding an
// entry here (or to a sites file), never new scraping code.
package sites

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

var ErrUnknownSite = errors.New("unknown site")

// Selectors are CSS selectors used to pull candidate records out of a listing page.
type Selectors struct {
	Container string `yaml:"container"`
	Name      string `yaml:"name"`
	Price     string `yaml:"price"`
	Link      string `yaml:"link"`
}

// Site is the static configuration of one supported shop.
type Site struct {
	ID           string            `yaml:"-"`
	Name         string            `yaml:"name"`
	BaseURL      string            `yaml:"base_url"`
	Selectors    Selectors         `yaml:"selectors"`
	DefaultPaths []string          `yaml:"default_paths"`
	Categories   map[string]string `yaml:"categories"` // category slug -> category path
}

// ResolvePaths returns the category paths to scrape. A slug known to the site wins over a raw
// path, and with neither the configured defaults are returned in order.
func (s Site) ResolvePaths(categorySlug, categoryPath string) []string {
	if mapped, ok := s.Categories[categorySlug]; ok && categorySlug != "" {
		return []string{mapped}
	}
	if categoryPath != "" {
		return []string{categoryPath}
	}

	return slices.Clone(s.DefaultPaths)
}

// URL joins the base URL with a category path.
func (s Site) URL(path string) string {
	return s.BaseURL + path
}

func (s Site) validate() error {
	switch {
	case s.Name == "":
		return errors.New("name is empty")
	case s.BaseURL == "":
		return errors.New("base_url is empty")
	case s.Selectors.Container == "" || s.Selectors.Name == "" || s.Selectors.Price == "" || s.Selectors.Link == "":
		return errors.New("all of container, name, price and link selectors are required")
	case len(s.DefaultPaths) == 0:
		return errors.New("at least one default path is required")
	}

	return nil
}

// Registry is an immutable set of sites keyed by identifier.
type Registry struct {
	sites map[string]Site
}

// NewRegistry validates the given sites and builds a registry from them.
func NewRegistry(sites map[string]Site) (*Registry, error) {
	const opn = "sites.NewRegistry"

	copied := make(map[string]Site, len(sites))
	for id, site := range sites {
		site.ID = id
		if err := site.validate(); err != nil {
			return nil, fmt.Errorf("%s: site %q: %w", opn, id, err)
		}
		site.DefaultPaths = slices.Clone(site.DefaultPaths)
		categories := make(map[string]string, len(site.Categories))
		for slug, path := range site.Categories {
			categories[slug] = path
		}
		site.Categories = categories
		copied[id] = site
	}

	return &Registry{sites: copied}, nil
}

// Lookup returns the site registered under id.
func (r *Registry) Lookup(id string) (Site, error) {
	site, ok := r.sites[id]
	if !ok {
		return Site{}, fmt.Errorf("%w: %q", ErrUnknownSite, id)
	}

	return site, nil
}

// IDs returns every registered identifier in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.sites))
	for id := range r.sites {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

// CategorySlugs returns the union of category slugs across all sites, sorted.
func (r *Registry) CategorySlugs() []string {
	seen := make(map[string]struct{})
	for _, site := range r.sites {
		for slug := range site.Categories {
			seen[slug] = struct{}{}
		}
	}
	slugs := make([]string, 0, len(seen))
	for slug := range seen {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	return slugs
}
