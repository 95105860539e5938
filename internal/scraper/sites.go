package scraper

import (
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// ImageRule reads the first non-empty attribute in Attrs from Selector.
type ImageRule struct {
	Selector string
	Attrs    []string
}

// SiteRule holds the CSS selectors for one marketplace. Each selector list is
// tried in order and the first match wins.
type SiteRule struct {
	Name  string
	Hosts []string
	Title []string
	Price []string
	Image []ImageRule
}

// Matches reports whether host is one of Hosts or a subdomain of one.
func (r SiteRule) Matches(host string) bool {
	for _, h := range r.Hosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

func (r SiteRule) apply(doc *goquery.Document, f *fields) {
	f.setTitle(firstText(doc, r.Title))
	if !f.hasPrice {
		for _, sel := range r.Price {
			f.setPriceText(doc.Find(sel).First().Text())
			if f.hasPrice {
				break
			}
		}
	}
	f.setImage(firstAttr(doc, r.Image))
}

func firstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if t := strings.TrimSpace(doc.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

func firstAttr(doc *goquery.Document, rules []ImageRule) string {
	for _, rule := range rules {
		s := doc.Find(rule.Selector).First()
		for _, attr := range rule.Attrs {
			if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
	}
	return ""
}

// Registry maps hosts to site rules. Supporting a new marketplace is a
// Register call, not a new branch in the extractor.
type Registry struct {
	mu    sync.RWMutex
	rules []SiteRule
}

func NewRegistry(rules ...SiteRule) *Registry {
	return &Registry{rules: append([]SiteRule(nil), rules...)}
}

func (r *Registry) Register(rule SiteRule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rule)
}

func (r *Registry) Lookup(host string) (SiteRule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rule := range r.rules {
		if rule.Matches(host) {
			return rule, true
		}
	}
	return SiteRule{}, false
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.rules))
	for _, rule := range r.rules {
		names = append(names, rule.Name)
	}
	return names
}

var srcAttrs = []string{"src", "data-src"}

func DefaultRegistry() *Registry {
	return NewRegistry(
		SiteRule{
			Name:  "amazon",
			Hosts: []string{"amazon.in", "amazon.com", "amazon.co.uk", "amazon.de", "amazon.ae"},
			Title: []string{"#productTitle", "#title"},
			Price: []string{
				"#corePriceDisplay_desktop_feature_div .a-price .a-offscreen",
				".a-price .a-offscreen",
				"#priceblock_dealprice",
				"#priceblock_ourprice",
			},
			Image: []ImageRule{
				{Selector: "#landingImage", Attrs: []string{"data-old-hires", "src"}},
				{Selector: "#imgBlkFront", Attrs: srcAttrs},
			},
		},
		SiteRule{
			Name:  "flipkart",
			Hosts: []string{"flipkart.com"},
			Title: []string{"span.VU-ZEz", "span.B_NuCI", "h1 span"},
			Price: []string{"div.Nx9bqj.CxhGGd", "div._30jeq3._16Jk6d", "div._30jeq3"},
			Image: []ImageRule{
				{Selector: "img.DByuf4", Attrs: srcAttrs},
				{Selector: "img._396cs4", Attrs: srcAttrs},
			},
		},
		SiteRule{
			Name:  "myntra",
			Hosts: []string{"myntra.com"},
			Title: []string{"h1.pdp-name", "h1.pdp-title"},
			Price: []string{"span.pdp-price strong", "span.pdp-price"},
			Image: []ImageRule{{Selector: ".image-grid-image img", Attrs: srcAttrs}},
		},
		SiteRule{
			Name:  "snapdeal",
			Hosts: []string{"snapdeal.com"},
			Title: []string{"h1.pdp-e-i-head"},
			Price: []string{"span.payBlkBig", "span.pdp-final-price"},
			Image: []ImageRule{{Selector: "img.cloudzoom", Attrs: []string{"bigsrc", "src"}}},
		},
	)
}
