package scraper

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"harvester/harvester/utils/apperrors"
	"harvester/harvester/utils/logging"
	"harvester/harvester/utils/types"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// PageFetcher returns the raw bytes of a page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Candidate holds the raw fields read from one candidate element.
type Candidate struct {
	Name        string
	Description string
	Href        string
}

// Strategy is the per-site heuristic: which elements look like a tool listing
// and how to read the fields out of one of them.
type Strategy interface {
	SelectCandidates(doc *goquery.Document) *goquery.Selection
	ReadCandidate(sel *goquery.Selection) (Candidate, error)
}

// Source is one directory site.
type Source struct {
	Key      string
	Label    string
	URL      string
	Origin   string
	Limit    int
	Strategy Strategy
}

type Extractor struct {
	source  Source
	fetcher PageFetcher
	now     func() time.Time
}

func NewExtractor(source Source, fetcher PageFetcher) *Extractor {
	return &Extractor{source: source, fetcher: fetcher, now: time.Now}
}

func (e *Extractor) Source() Source { return e.source }

// Extract fetches the source page and returns its records. Fetch and parse
// failures are logged and reported on the result; they never abort the caller.
func (e *Extractor) Extract(ctx context.Context) types.ExtractionResult {
	defer logging.LogDuration(ctx, "Extract:"+e.source.Key)()

	res := types.ExtractionResult{Source: e.source.Label, URL: e.source.URL}

	body, err := e.fetcher.Fetch(ctx, e.source.URL)
	if err != nil {
		return e.fail(res, err)
	}

	page, err := ParsePage(e.source, body, e.now().Format(types.DateLayout))
	if err != nil {
		return e.fail(res, err)
	}

	res.Records = page.Records
	res.Count = len(page.Records)
	res.Candidates = page.Candidates
	res.Skipped = page.Skipped
	return res
}

func (e *Extractor) fail(res types.ExtractionResult, err error) types.ExtractionResult {
	logging.ErrorLogger.Error("extraction failed",
		zap.String("source", e.source.Label),
		zap.String("url", e.source.URL),
		zap.Error(err),
	)
	res.Records = nil
	res.Err = err
	res.Reason = string(apperrors.KindOf(err))
	return res
}

// Page is the outcome of parsing one fetched document.
type Page struct {
	Records    []types.ToolRecord
	Candidates int
	Skipped    int
}

// ParsePage runs the source strategy over body and returns deduplicated
// records stamped with date.
func ParsePage(source Source, body []byte, date string) (Page, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return Page{}, apperrors.Parse(source.Label, err)
	}
	doc := goquery.NewDocumentFromNode(root)

	candidates := source.Strategy.SelectCandidates(doc)
	if source.Limit > 0 && candidates.Length() > source.Limit {
		candidates = candidates.Slice(0, source.Limit)
	}

	page := Page{Candidates: candidates.Length()}
	seen := make(map[string]struct{})

	candidates.Each(func(i int, sel *goquery.Selection) {
		c, err := readCandidate(source.Strategy, sel, i)
		if err != nil {
			page.Skipped++
			return
		}

		name := strings.TrimSpace(c.Name)
		if name == types.PlaceholderName || utf8.RuneCountInString(name) < types.MinNameLen {
			page.Skipped++
			return
		}

		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}

		page.Records = append(page.Records, types.ToolRecord{
			Name:        name,
			Description: normalizeDescription(c.Description),
			URL:         ResolveURL(source.Origin, c.Href),
			Category:    types.DefaultCategory,
			Source:      source.Label,
			Date:        date,
		})
	})

	return page, nil
}

// readCandidate isolates one candidate: a panic inside a strategy only costs that candidate.
func readCandidate(s Strategy, sel *goquery.Selection, index int) (c Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.Candidate(index, fmt.Sprint(r))
		}
	}()
	return s.ReadCandidate(sel)
}

func normalizeDescription(desc string) string {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return types.PlaceholderDescription
	}
	return truncateRunes(desc, types.MaxDescriptionLen)
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max]))
}

// ResolveURL turns href into an absolute URL against origin. Anything that is
// neither root-relative nor http(s) yields the URL placeholder.
func ResolveURL(origin, href string) string {
	href = strings.TrimSpace(href)
	switch {
	case href == "":
		return types.PlaceholderURL
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	case strings.HasPrefix(href, "/"):
		return strings.TrimRight(origin, "/") + href
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	default:
		return types.PlaceholderURL
	}
}

// cleanText collapses the whitespace of an element's text.
func cleanText(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}

func classContains(sel *goquery.Selection, keywords ...string) bool {
	class, ok := sel.Attr("class")
	if !ok || class == "" {
		return false
	}
	class = strings.ToLower(class)
	for _, k := range keywords {
		if strings.Contains(class, k) {
			return true
		}
	}
	return false
}
