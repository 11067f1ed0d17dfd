package normalize

import (
	"sort"
	"strings"

	"golfwear-extractor/internal/textutil"
	"golfwear-extractor/internal/types"
)

// CanonicalSizes is the fixed size ranking. Unknown tokens sort after it.
var CanonicalSizes = []string{"XS", "S", "M", "L", "LL", "3L", "4L", "5L", "XL", "2XL", "3XL", "4XL", "O"}

var sizeRank = func() map[string]int {
	m := make(map[string]int, len(CanonicalSizes))
	for i, s := range CanonicalSizes {
		m[s] = i
	}
	return m
}()

var sizeAliases = map[string]string{
	"XXL":  "2XL",
	"XXXL": "3XL",
}

// NormalizeColors keeps display order and drops exact duplicates
func NormalizeColors(colors []types.ColorOption) []string {
	names := make([]string, 0, len(colors))
	for _, c := range colors {
		names = append(names, c.Name)
	}
	return NormalizeColorNames(names)
}

// NormalizeColorNames is NormalizeColors over plain names. It is idempotent.
func NormalizeColorNames(names []string) []string {
	return dedup(names, textutil.CollapseSpaces)
}

// NormalizeSizes folds, dedups and sorts sizes by the canonical ranking.
// It is idempotent.
func NormalizeSizes(sizes []string) []string {
	out := dedup(sizes, canonicalSize)
	sort.SliceStable(out, func(i, j int) bool {
		ri, iKnown := sizeRank[out[i]]
		rj, jKnown := sizeRank[out[j]]
		switch {
		case iKnown && jKnown:
			return ri < rj
		case iKnown != jKnown:
			return iKnown
		default:
			return out[i] < out[j]
		}
	})
	return out
}

func canonicalSize(s string) string {
	s = strings.Join(strings.Fields(textutil.FoldUpper(s)), "")
	if alias, ok := sizeAliases[s]; ok {
		return alias
	}
	return s
}

// FilterImages dedups image URLs and, when some of them carry the product ID
// or the image marker, keeps only those. The result is capped at MaxImages.
func (n *Normalizer) FilterImages(images []string, productID string) []string {
	urls := dedup(images, strings.TrimSpace)

	if productID != "" {
		var scoped []string
		for _, u := range urls {
			if strings.Contains(u, productID) || (n.opts.ImageMarker != "" && strings.Contains(u, n.opts.ImageMarker)) {
				scoped = append(scoped, u)
			}
		}
		if len(scoped) > 0 {
			urls = scoped
		}
	}

	if len(urls) > n.opts.MaxImages {
		urls = urls[:n.opts.MaxImages]
	}
	return urls
}

// dedup cleans each value, drops empties and keeps the first occurrence
func dedup(values []string, clean func(string) string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = clean(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
