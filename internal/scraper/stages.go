package scraper

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

// stage fills whatever it can find into f. Stages run most-structured first.
type stage func(doc *goquery.Document, host string, f *fields)

func structuredDataStage(doc *goquery.Document, _ string, f *fields) {
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var v any
		if err := json.Unmarshal([]byte(strings.TrimSpace(s.Text())), &v); err != nil {
			return true
		}
		product := findProduct(v)
		if product == nil {
			return true
		}

		if name, ok := product["name"].(string); ok {
			f.setTitle(name)
		}
		f.setImage(firstImage(product["image"]))
		if p, ok := offerPrice(product["offers"]); ok {
			f.setPrice(p)
		}
		return false
	})
}

func findProduct(v any) map[string]any {
	switch t := v.(type) {
	case []any:
		for _, e := range t {
			if p := findProduct(e); p != nil {
				return p
			}
		}
	case map[string]any:
		if isProductType(t["@type"]) {
			return t
		}
		for _, key := range []string{"@graph", "mainEntity"} {
			if inner, ok := t[key]; ok {
				if p := findProduct(inner); p != nil {
					return p
				}
			}
		}
	}
	return nil
}

func isProductType(v any) bool {
	switch t := v.(type) {
	case string:
		return t == "Product" || strings.HasSuffix(t, "/Product")
	case []any:
		for _, e := range t {
			if isProductType(e) {
				return true
			}
		}
	}
	return false
}

func firstImage(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		for _, e := range t {
			if s := firstImage(e); s != "" {
				return s
			}
		}
	case map[string]any:
		for _, key := range []string{"url", "contentUrl"} {
			if s, ok := t[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func offerPrice(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case []any:
		if len(t) > 0 {
			return offerPrice(t[0])
		}
	case map[string]any:
		for _, key := range []string{"price", "lowPrice"} {
			if p, ok := jsonPrice(t[key]); ok {
				return p, true
			}
		}
		if spec, ok := t["priceSpecification"]; ok {
			return offerPrice(spec)
		}
	}
	return decimal.Zero, false
}

func jsonPrice(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case float64:
		d := decimal.NewFromFloat(t)
		return d, d.IsPositive()
	case string:
		return ParsePrice(t)
	}
	return decimal.Zero, false
}

var (
	ogTitleSelectors = []string{`meta[property="og:title"]`, `meta[name="og:title"]`}
	ogImageSelectors = []string{`meta[property="og:image"]`, `meta[property="og:image:secure_url"]`, `meta[name="og:image"]`}
	ogPriceSelectors = []string{
		`meta[property="product:price:amount"]`,
		`meta[property="og:price:amount"]`,
		`meta[itemprop="price"]`,
	}
)

func socialMetaStage(doc *goquery.Document, _ string, f *fields) {
	f.setTitle(metaContent(doc, ogTitleSelectors))
	f.setImage(metaContent(doc, ogImageSelectors))
	f.setPriceText(metaContent(doc, ogPriceSelectors))
}

func metaContent(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if v, ok := doc.Find(sel).First().Attr("content"); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func siteRuleStage(registry *Registry) stage {
	return func(doc *goquery.Document, host string, f *fields) {
		rule, ok := registry.Lookup(host)
		if !ok {
			return
		}
		rule.apply(doc, f)
	}
}
