// Package brands resolves free text to a known golf-apparel brand.
package brands

import (
	"strings"

	"github.com/antzucaro/matchr"

	"golfwear-extractor/internal/textutil"
)

// DefaultKey is returned when nothing matches
const DefaultKey = "generic"

// fuzzyThreshold is the minimum Jaro-Winkler similarity for a fuzzy hit
const fuzzyThreshold = 0.92

// Brand is one entry of the brand-keyword table
type Brand struct {
	Key       string
	Name      string
	ShortName string
	Keywords  []string
}

var defaultBrands = []Brand{
	{Key: "callaway", Name: "Callaway Golf", ShortName: "卡拉威", Keywords: []string{"callaway", "キャロウェイ"}},
	{Key: "pearlygates", Name: "PEARLY GATES", ShortName: "派利盖茨", Keywords: []string{"pearly gates", "pearlygates", "パーリーゲイツ"}},
	{Key: "masterbunny", Name: "MASTER BUNNY EDITION", ShortName: "大师兔", Keywords: []string{"master bunny", "マスターバニー"}},
	{Key: "jackbunny", Name: "Jack Bunny!!", ShortName: "杰克兔", Keywords: []string{"jack bunny", "ジャックバニー"}},
	{Key: "lecoq", Name: "le coq sportif GOLF", ShortName: "乐卡克", Keywords: []string{"le coq", "lecoq", "ルコック"}},
	{Key: "munsingwear", Name: "Munsingwear", ShortName: "万星威", Keywords: []string{"munsingwear", "マンシングウェア"}},
	{Key: "descente", Name: "DESCENTE GOLF", ShortName: "迪桑特", Keywords: []string{"descente", "デサント"}},
	{Key: "titleist", Name: "Titleist", ShortName: "泰特利斯特", Keywords: []string{"titleist", "タイトリスト"}},
	{Key: "taylormade", Name: "TaylorMade", ShortName: "泰勒梅", Keywords: []string{"taylormade", "taylor made", "テーラーメイド"}},
	{Key: "adidas", Name: "adidas Golf", ShortName: "阿迪达斯", Keywords: []string{"adidas", "アディダス"}},
	{Key: "puma", Name: "PUMA GOLF", ShortName: "彪马", Keywords: []string{"puma", "プーマ"}},
	{Key: "newbalance", Name: "New Balance Golf", ShortName: "新百伦", Keywords: []string{"new balance", "ニューバランス"}},
	{Key: "briefing", Name: "BRIEFING GOLF", ShortName: "布里芬", Keywords: []string{"briefing", "ブリーフィング"}},
	{Key: "archivio", Name: "archivio", ShortName: "阿奇维奥", Keywords: []string{"archivio", "アルチビオ"}},
	{Key: "lanvin", Name: "LANVIN SPORT", ShortName: "浪凡", Keywords: []string{"lanvin", "ランバン"}},
	{Key: "standrews", Name: "St ANDREWS", ShortName: "圣安德鲁斯", Keywords: []string{"st andrews", "st. andrews", "セントアンドリュース"}},
	{Key: "beams", Name: "BEAMS GOLF", ShortName: "比姆斯", Keywords: []string{"beams golf", "ビームスゴルフ"}},
	{Key: "underarmour", Name: "UNDER ARMOUR", ShortName: "安德玛", Keywords: []string{"under armour", "アンダーアーマー"}},
}

var defaultBrand = Brand{Key: DefaultKey, Name: "", ShortName: "日本品牌"}

// Registry is an ordered brand table. Earlier entries win on keyword ties.
type Registry struct {
	brands   []Brand
	fallback Brand
}

// Default returns the built-in registry
func Default() *Registry {
	return New(defaultBrands, defaultBrand)
}

// New creates a registry over the given table
func New(table []Brand, fallback Brand) *Registry {
	return &Registry{brands: table, fallback: fallback}
}

// Lookup returns the brand registered under key
func (r *Registry) Lookup(key string) (Brand, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return Brand{}, false
	}
	for _, b := range r.brands {
		if b.Key == key {
			return b, true
		}
	}
	return Brand{}, false
}

// Fallback returns the brand used when nothing matches
func (r *Registry) Fallback() Brand {
	return r.fallback
}

// Resolve finds the brand mentioned in texts. Keyword hits are tried first;
// a fuzzy match on the Latin name is the last resort before the fallback.
func (r *Registry) Resolve(texts ...string) Brand {
	for _, b := range r.brands {
		for _, text := range texts {
			if textutil.ContainsAny(text, b.Keywords) {
				return b
			}
		}
	}

	best, bestScore := r.fallback, 0.0
	for _, text := range texts {
		candidate := strings.ToLower(textutil.CollapseSpaces(textutil.Fold(text)))
		if candidate == "" {
			continue
		}
		for _, b := range r.brands {
			score := matchr.JaroWinkler(candidate, strings.ToLower(b.Name), false)
			if score >= fuzzyThreshold && score > bestScore {
				best, bestScore = b, score
			}
		}
	}
	return best
}
