package scraper

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// fields accumulates extraction results. Setters ignore a value once the
// field is populated, so earlier stages always win. Values a setter cannot
// use leave the field empty for later stages.
type fields struct {
	base     *url.URL
	title    string
	price    decimal.Decimal
	hasPrice bool
	image    string
}

func (f *fields) setTitle(s string) {
	if f.title == "" {
		f.title = collapseSpace(s)
	}
}

func (f *fields) setImage(s string) {
	if f.image == "" {
		f.image = absoluteImage(f.base, s)
	}
}

func (f *fields) setPriceText(raw string) {
	if f.hasPrice {
		return
	}
	if p, ok := ParsePrice(raw); ok {
		f.price, f.hasPrice = p, true
	}
}

func (f *fields) setPrice(p decimal.Decimal) {
	if !f.hasPrice && p.IsPositive() {
		f.price, f.hasPrice = p, true
	}
}

func (f *fields) complete() bool {
	return f.title != "" && f.hasPrice && f.image != ""
}

func (f *fields) missing() []string {
	var out []string
	if f.title == "" {
		out = append(out, "title")
	}
	if !f.hasPrice {
		out = append(out, "price")
	}
	if f.image == "" {
		out = append(out, "image")
	}
	return out
}

// absoluteImage resolves raw against the page it was found on. Anything that
// is not an http(s) URL comes back empty.
func absoluteImage(base *url.URL, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if (ref.Scheme != "http" && ref.Scheme != "https") || ref.Host == "" {
		return ""
	}
	return ref.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
