package scraper

import (
	"strings"

	"harvester/harvester/config"

	"github.com/PuerkitoBio/goquery"
)

// ClassKeywordStrategy picks elements of the given tags whose class mentions a keyword,
// then reads a heading for the name and a description-classed block for the text.
type ClassKeywordStrategy struct {
	Tags            []string
	Keywords        []string
	DescriptionHint string
}

func (s ClassKeywordStrategy) SelectCandidates(doc *goquery.Document) *goquery.Selection {
	return doc.Find(strings.Join(s.Tags, ", ")).FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return classContains(sel, s.Keywords...)
	})
}

func (s ClassKeywordStrategy) ReadCandidate(sel *goquery.Selection) (Candidate, error) {
	var c Candidate

	if name := sel.Find("h1, h2, h3, h4, a").First(); name.Length() > 0 {
		c.Name = cleanText(name)
	}

	desc := sel.Find("p, div").FilterFunction(func(_ int, d *goquery.Selection) bool {
		return classContains(d, s.DescriptionHint)
	}).First()
	if desc.Length() == 0 {
		desc = sel.Find("p").First()
	}
	if desc.Length() > 0 {
		c.Description = cleanText(desc)
	}

	if href, ok := sel.Find("a[href]").First().Attr("href"); ok {
		c.Href = href
	} else if goquery.NodeName(sel) == "a" {
		c.Href, _ = sel.Attr("href")
	}
	return c, nil
}

// HrefPathStrategy picks anchors whose target contains PathFragment. The anchor
// text is the name and the description comes from the anchor's parent.
type HrefPathStrategy struct {
	PathFragment    string
	DescriptionHint string
}

func (s HrefPathStrategy) SelectCandidates(doc *goquery.Document) *goquery.Selection {
	return doc.Find("a[href]").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		return strings.Contains(href, s.PathFragment)
	})
}

func (s HrefPathStrategy) ReadCandidate(sel *goquery.Selection) (Candidate, error) {
	c := Candidate{Name: cleanText(sel)}
	c.Href, _ = sel.Attr("href")

	parent := sel.Parent()
	if parent.Length() == 0 {
		return c, nil
	}
	desc := parent.Find("p").First()
	if desc.Length() == 0 {
		desc = parent.Find("div").FilterFunction(func(_ int, d *goquery.Selection) bool {
			return classContains(d, s.DescriptionHint)
		}).First()
	}
	if desc.Length() > 0 {
		c.Description = cleanText(desc)
	}
	return c, nil
}

func FutureTools() Source {
	return Source{
		Key:    "futuretools",
		Label:  "FutureTools.io",
		URL:    "https://www.futuretools.io/",
		Origin: "https://www.futuretools.io",
		Limit:  50,
		Strategy: ClassKeywordStrategy{
			Tags:            []string{"div", "article", "a"},
			Keywords:        []string{"tool", "card", "item"},
			DescriptionHint: "description",
		},
	}
}

func Toolify() Source {
	return Source{
		Key:    "toolify",
		Label:  "Toolify.ai",
		URL:    "https://www.toolify.ai/",
		Origin: "https://www.toolify.ai",
		Limit:  30,
		Strategy: HrefPathStrategy{
			PathFragment:    "/tool/",
			DescriptionHint: "desc",
		},
	}
}

// DefaultSources returns the sources in run order.
func DefaultSources() []Source {
	return []Source{FutureTools(), Toolify()}
}

// ApplyOverrides returns a copy of sources with any configured URL, origin or limit replaced.
func ApplyOverrides(sources []Source, overrides map[string]config.SourceOverride) []Source {
	out := make([]Source, len(sources))
	for i, src := range sources {
		if o, ok := overrides[src.Key]; ok {
			if o.URL != "" {
				src.URL = o.URL
			}
			if o.Origin != "" {
				src.Origin = o.Origin
			}
			if o.Limit > 0 {
				src.Limit = o.Limit
			}
		}
		out[i] = src
	}
	return out
}
