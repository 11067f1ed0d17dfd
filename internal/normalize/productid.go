package normalize

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"golfwear-extractor/internal/textutil"
	"golfwear-extractor/internal/types"
)

var urlSegmentPattern = regexp.MustCompile(`^[A-Z0-9]{5,}$`)

// ResolveProductID walks the product-code cascade: details table label,
// code scan over the chart/description/details blob, URL path segment.
func (n *Normalizer) ResolveProductID(raw *types.RawScrapeRecord) string {
	if id := n.productIDFromDetails(raw.Details); id != "" {
		return id
	}
	if id := n.productIDFromBlob(raw); id != "" {
		return id
	}
	return ProductIDFromURL(raw.URL)
}

func (n *Normalizer) productIDFromDetails(rows []types.DetailRow) string {
	for _, row := range rows {
		if !labelMatches(row.Label, n.opts.ProductCodeLabels) {
			continue
		}
		value := strings.Join(strings.Fields(textutil.Fold(row.Value)), "")
		if n.codeFull.MatchString(value) {
			return value
		}
		n.logger.Debugf("Product code row %q has non-matching value %q", row.Label, row.Value)
	}
	return ""
}

func (n *Normalizer) productIDFromBlob(raw *types.RawScrapeRecord) string {
	parts := []string{raw.SizeChart.Text, raw.DescriptionRaw}
	for _, row := range raw.Details {
		parts = append(parts, row.Value)
	}
	blob := textutil.Fold(strings.Join(parts, "\n"))

	for _, m := range n.codeScan.FindAllString(blob, -1) {
		if hasDigit(m) {
			return m
		}
	}
	return ""
}

// ProductIDFromURL takes the last uppercase alphanumeric path segment
func ProductIDFromURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}

	segments := strings.Split(u.Path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		seg := segments[i]
		seg = strings.TrimSuffix(seg, path.Ext(seg))
		if urlSegmentPattern.MatchString(seg) && hasDigit(seg) && hasLetter(seg) {
			return seg
		}
	}
	return ""
}

// labelMatches compares a table label against the known labels, ignoring
// case, width and a trailing colon.
func labelMatches(label string, known []string) bool {
	l := strings.TrimSpace(textutil.FoldUpper(label))
	l = strings.TrimRight(l, ":：")
	l = strings.TrimSpace(l)
	for _, k := range known {
		if l == textutil.FoldUpper(k) {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}

func hasLetter(s string) bool {
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			return true
		}
	}
	return false
}
