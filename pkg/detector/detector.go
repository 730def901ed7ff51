// Package detector classifies URLs into site types and picks the primary
// extraction strategy for each type.
package detector

import (
	"net/url"
	"strings"

	"github.com/dtnitsch/llm-web-dataset/models"
)

// rule maps host keywords to a site type.
type rule struct {
	keywords []string
	siteType models.SiteType
}

// siteRules are evaluated in order; the first match wins.
var siteRules = []rule{
	{keywords: []string{"amazon", "ebay", "walmart", "shopify"}, siteType: models.SiteEcommerce},
	{keywords: []string{"zillow", "realtor", "redfin"}, siteType: models.SiteRealEstate},
	{keywords: []string{"wikipedia", "news", "bbc", "cnn", "thehindu"}, siteType: models.SiteNews},
	{keywords: []string{"docs", "developer", "python.org"}, siteType: models.SiteDocs},
	{keywords: []string{"reddit", "stackoverflow", "quora"}, siteType: models.SiteForum},
	{keywords: []string{"linkedin", "indeed", "glassdoor"}, siteType: models.SiteJob},
	{keywords: []string{"arxiv", "pubmed"}, siteType: models.SiteAcademic},
}

// matches reports whether any keyword is a substring of host.
func (r rule) matches(host string) bool {
	for _, k := range r.keywords {
		if strings.Contains(host, k) {
			return true
		}
	}
	return false
}

// ClassifySiteType derives the site type from the URL's host.
// Unparsable URLs and unmatched hosts are "unknown".
func ClassifySiteType(rawURL string) models.SiteType {
	host := hostOf(rawURL)
	if host == "" {
		return models.SiteUnknown
	}

	for _, r := range siteRules {
		if r.matches(host) {
			return r.siteType
		}
	}
	return models.SiteUnknown
}

// hostOf returns the lowercased host (with port, as netloc), or "".
func hostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

// PrimaryStrategy maps a site type to the strategy tried first.
func PrimaryStrategy(siteType models.SiteType) models.StrategyName {
	switch siteType {
	case models.SiteNews, models.SiteAcademic:
		return models.StrategyStaticHTML
	case models.SiteDocs, models.SiteForum, models.SiteJob:
		return models.StrategyDOMBased
	case models.SiteEcommerce, models.SiteRealEstate:
		return models.StrategyJSRendered
	default:
		return models.StrategyDOMBased
	}
}
