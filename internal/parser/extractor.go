package parser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/Houeta/pricewatch/internal/models"
	"github.com/Houeta/pricewatch/internal/sites"
	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

// MaxCandidates caps how many containers are read from one page.
const MaxCandidates = 10

var (
	priceNoise  = regexp.MustCompile(`[^\d.,]`)
	priceNumber = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)`)
)

// Extractor turns listing markup into candidate records using a site's selectors.
type Extractor struct {
	log *slog.Logger
}

func NewExtractor(log *slog.Logger) *Extractor {
	return &Extractor{log: log}
}

// Extract parses markup and returns at most MaxCandidates valid candidates in page order.
// Containers without a name, a positive price or a link are dropped silently.
func (e *Extractor) Extract(ctx context.Context, markup io.Reader, site sites.Site) ([]models.Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(markup)
	if err != nil {
		return nil, fmt.Errorf("data cannot be parsed as HTML: %w", err)
	}

	var candidates []models.Candidate
	sel := site.Selectors

	doc.Find(sel.Container).EachWithBreak(func(idx int, s *goquery.Selection) bool {
		if idx >= MaxCandidates {
			return false
		}

		href, _ := s.Find(sel.Link).First().Attr("href")
		candidate := models.Candidate{
			Name:  strings.TrimSpace(s.Find(sel.Name).First().Text()),
			Price: ParsePrice(s.Find(sel.Price).First().Text()),
			URL:   ResolveURL(site.BaseURL, strings.TrimSpace(href)),
		}

		if reason := rejectReason(candidate); reason != "" {
			e.log.DebugContext(ctx, "Dropped container", "site", site.ID, "index", idx, "reason", reason)
			return true
		}

		e.log.DebugContext(ctx, "Parsed product", "Name", candidate.Name, "Price", candidate.Price, "URL", candidate.URL)
		candidates = append(candidates, candidate)

		return true
	})

	return candidates, nil
}

func rejectReason(c models.Candidate) string {
	switch {
	case c.Name == "":
		return "empty name"
	case !c.Price.IsPositive():
		return "price is not positive"
	case c.URL == "":
		return "empty url"
	}

	return ""
}

// ParsePrice keeps digits, dots and commas, drops the commas and reads the leading number.
// Anything unreadable is zero.
func ParsePrice(text string) decimal.Decimal {
	cleaned := strings.ReplaceAll(priceNoise.ReplaceAllString(strings.TrimSpace(text), ""), ",", "")

	number := priceNumber.FindString(cleaned)
	if number == "" {
		return decimal.Zero
	}

	if strings.HasPrefix(number, ".") {
		number = "0" + number
	}

	price, err := decimal.NewFromString(strings.TrimSuffix(number, "."))
	if err != nil {
		return decimal.Zero
	}

	return price
}

// ResolveURL makes href absolute against baseURL. Absolute hrefs are returned unchanged.
func ResolveURL(baseURL, href string) string {
	if href == "" {
		return ""
	}
	if parsed, err := url.Parse(href); err == nil && parsed.IsAbs() {
		return href
	}
	if strings.HasPrefix(href, "/") {
		return baseURL + href
	}

	return baseURL + "/" + href
}
