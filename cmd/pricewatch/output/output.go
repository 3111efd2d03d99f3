// Package output renders command results for the terminal.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/Houeta/pricewatch/internal/models"
	"github.com/Houeta/pricewatch/internal/sites"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Color styles for terminal output
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#7C3AED")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	primaryStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
)

// Registry is the read side of the site registry.
type Registry interface {
	Lookup(id string) (sites.Site, error)
	IDs() []string
}

// SiteEntry is one registry row.
type SiteEntry struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	BaseURL    string   `json:"baseUrl"`
	Categories []string `json:"categories"`
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

// SiteList flattens the registry in identifier order.
func SiteList(reg Registry) []SiteEntry {
	ids := reg.IDs()
	out := make([]SiteEntry, 0, len(ids))
	for _, id := range ids {
		site, err := reg.Lookup(id)
		if err != nil {
			continue
		}
		out = append(out, SiteEntry{
			ID:         id,
			Name:       site.Name,
			BaseURL:    site.BaseURL,
			Categories: slices.Sorted(maps.Keys(site.Categories)),
		})
	}

	return out
}

// Sites prints every registered site with its category slugs.
func Sites(w io.Writer, reg Registry) {
	for _, entry := range SiteList(reg) {
		fmt.Fprintf(w, "%s %s\n", primaryStyle.Render(entry.ID), mutedStyle.Render(entry.Name+" "+entry.BaseURL))
		if len(entry.Categories) > 0 {
			fmt.Fprintf(w, "  %s\n", strings.Join(entry.Categories, ", "))
		}
	}
}

// RunResult prints one line per scraped path followed by its item failures.
func RunResult(w io.Writer, site string, res *models.RunResult) {
	fmt.Fprintln(w, primaryStyle.Render("Scrape "+site))

	for _, path := range res.Results {
		category := "-"
		if path.Category != nil {
			category = *path.Category
		}

		switch {
		case !path.Success:
			fmt.Fprintf(w, "%s %s [%s] %s\n", errorStyle.Render("✗"), path.Path, category, path.Error)
		case len(path.Failures) > 0:
			fmt.Fprintf(w, "%s %s [%s] %d products, %d failed\n",
				warningStyle.Render("⚠"), path.Path, category, count(path), len(path.Failures))
		default:
			fmt.Fprintf(w, "%s %s [%s] %d products\n", successStyle.Render("✓"), path.Path, category, count(path))
		}

		for _, failure := range path.Failures {
			fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("    %s: %s", failure.Name, failure.Error)))
		}
	}
}

func count(path models.PathResult) int {
	if path.Count == nil {
		return 0
	}

	return *path.Count
}
