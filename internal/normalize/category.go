package normalize

import "golfwear-extractor/internal/textutil"

type categoryRule struct {
	label    string
	keywords []string
}

// categoryRules is ordered: hats before tops so ニット帽 is not a knit top,
// outerwear before tops so ダウンベスト is not a shirt.
var categoryRules = []categoryRule{
	{"帽子", []string{"キャップ", "ハット", "バイザー", "ニット帽", "ビーニー", "ヘッドウェア", "CAP", "HAT", "VISOR", "BEANIE"}},
	{"鞋类", []string{"シューズ", "スパイク", "SHOES"}},
	{"包袋", []string{"キャディバッグ", "カートバッグ", "バッグ", "ポーチ", "BAG", "POUCH"}},
	{"配件", []string{"グローブ", "ソックス", "ベルト", "ヘッドカバー", "マーカー", "ネックウォーマー", "アームカバー", "タオル", "アクセサリー", "GLOVE", "SOCKS", "BELT", "ACCESSORIES"}},
	{"裙装", []string{"スカート", "スコート", "ワンピース", "SKIRT", "DRESS"}},
	{"裤装", []string{"パンツ", "ズボン", "ボトムス", "PANTS", "SHORTS", "BOTTOMS"}},
	{"外套", []string{"ジャケット", "ブルゾン", "コート", "ダウン", "中綿", "アウター", "ベスト", "JACKET", "BLOUSON", "COAT", "VEST", "OUTER"}},
	{"上衣", []string{"ポロ", "シャツ", "カットソー", "ニット", "セーター", "パーカー", "フーディー", "スウェット", "トレーナー", "モックネック", "ハイネック", "タートル", "インナー", "トップス", "POLO", "SHIRT", "KNIT", "HOODIE", "TOPS"}},
}

// InferCategory maps breadcrumbs (innermost first) and then the title to a
// clothing category. It returns "" when nothing matches.
func InferCategory(breadcrumbs []string, title string) string {
	for i := len(breadcrumbs) - 1; i >= 0; i-- {
		if c := matchCategory(breadcrumbs[i]); c != "" {
			return c
		}
	}
	return matchCategory(title)
}

func matchCategory(text string) string {
	if text == "" {
		return ""
	}
	for _, rule := range categoryRules {
		if textutil.ContainsAny(text, rule.keywords) {
			return rule.label
		}
	}
	return ""
}
