package strategy

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// skippedTags never contribute visible text.
var skippedTags = map[string]struct{}{
	"script":   {},
	"style":    {},
	"noscript": {},
	"template": {},
	"head":     {},
}

// htmlToText returns every visible text node of html, trimmed and joined
// with single spaces.
func htmlToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var parts []string
	collectText(doc.Selection, &parts)
	return strings.Join(parts, " "), nil
}

func collectText(sel *goquery.Selection, parts *[]string) {
	sel.Contents().Each(func(_ int, child *goquery.Selection) {
		name := goquery.NodeName(child)
		if name == "#text" {
			if t := strings.TrimSpace(child.Text()); t != "" {
				*parts = append(*parts, t)
			}
			return
		}
		if _, skip := skippedTags[name]; skip {
			return
		}
		collectText(child, parts)
	})
}
