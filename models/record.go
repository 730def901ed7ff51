package models

// SiteType is the coarse, domain-derived category of a page.
type SiteType string

const (
	SiteEcommerce  SiteType = "ecommerce"
	SiteRealEstate SiteType = "real_estate"
	SiteNews       SiteType = "news"
	SiteDocs       SiteType = "docs"
	SiteForum      SiteType = "forum"
	SiteJob        SiteType = "job"
	SiteAcademic   SiteType = "academic"
	SiteUnknown    SiteType = "unknown"
)

// Valid reports whether s is one of the known site types.
func (s SiteType) Valid() bool {
	switch s {
	case SiteEcommerce, SiteRealEstate, SiteNews, SiteDocs,
		SiteForum, SiteJob, SiteAcademic, SiteUnknown:
		return true
	}
	return false
}

// StrategyName identifies an extraction method.
type StrategyName string

const (
	StrategyStaticHTML StrategyName = "static_html"
	StrategyDOMBased   StrategyName = "dom_based"
	StrategyJSRendered StrategyName = "js_rendered"
	StrategyAPIBased   StrategyName = "api_based"
	StrategyFallback   StrategyName = "fallback"
)

// Valid reports whether n is one of the known strategies.
func (n StrategyName) Valid() bool {
	switch n {
	case StrategyStaticHTML, StrategyDOMBased, StrategyJSRendered,
		StrategyAPIBased, StrategyFallback:
		return true
	}
	return false
}

// Record is one JSONL training record.
// Field order here is the field order on the wire.
type Record struct {
	Text               string       `json:"text"`
	SourceURL          string       `json:"source_url"`
	SiteType           SiteType     `json:"site_type"`
	ExtractionStrategy StrategyName `json:"extraction_strategy"`
	Confidence         float64      `json:"confidence"`
	ScrapedAt          string       `json:"scraped_at"`
}
