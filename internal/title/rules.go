package title

import "regexp"

// Marker is the sport word every title carries exactly once
const Marker = "高尔夫"

// DefaultEnding closes titles with no recognized garment token
const DefaultEnding = "配件"

// DefaultFunction fills the function slot when no feature keyword matches
const DefaultFunction = "经典舒适"

// maxFunctions caps how many feature labels go into the function slot
const maxFunctions = 3

const (
	minLength = 26
	maxLength = 30
)

type keywordRule struct {
	label    string
	keywords []string
}

var seasonPattern = regexp.MustCompile(`(?:20)?(\d{2})\s*年?\s*(S/S|A/W|F/W|SS|AW|FW|春夏|秋冬)`)

var seasonLabels = map[string]string{
	"S/S": "春夏",
	"SS":  "春夏",
	"春夏":  "春夏",
	"A/W": "秋冬",
	"F/W": "秋冬",
	"AW":  "秋冬",
	"FW":  "秋冬",
	"秋冬":  "秋冬",
}

var (
	unisexWords = []string{"ユニセックス", "男女兼用", "メンズ・レディース", "UNISEX"}
	womenWords  = []string{"レディース", "ウィメンズ", "ウイメンズ", "LADIES", "WOMENS", "WOMEN'S", "WOMEN"}
)

// functionRules are scanned in order; up to maxFunctions labels are kept.
var functionRules = []keywordRule{
	{"防泼防水", []string{"撥水", "はっ水", "防水", "レイン", "WATERPROOF", "WATER REPELLENT"}},
	{"防风机能", []string{"防風", "ウィンド", "ウインド", "WIND"}},
	{"保暖蓄热", []string{"中綿", "保温", "裏起毛", "蓄熱", "フリース", "ボア", "FLEECE", "WARM"}},
	{"弹力修身", []string{"ストレッチ", "STRETCH"}},
	{"吸汗速干", []string{"吸汗", "速乾", "DRY"}},
	{"抗紫外线", []string{"UVカット", "紫外線", "UV"}},
	{"冰感凉爽", []string{"接触冷感", "冷感", "COOL"}},
	{"轻量便携", []string{"軽量", "ライト", "LIGHTWEIGHT"}},
	{"透气网眼", []string{"メッシュ", "鹿の子", "MESH"}},
	{"针织柔软", []string{"ニット", "KNIT"}},
}

// endingRules are scanned in order; specific tokens precede the tokens they
// contain (ショートパンツ before パンツ, ニット帽 before ニット, Tシャツ before シャツ).
var endingRules = []keywordRule{
	{"渔夫帽", []string{"バケットハット", "BUCKET HAT"}},
	{"遮阳帽", []string{"サンバイザー", "バイザー", "VISOR"}},
	{"球帽", []string{"ニット帽", "ビーニー", "キャップ", "ハット", "CAP", "HAT", "BEANIE"}},
	{"短裤", []string{"ショートパンツ", "ハーフパンツ", "ショーツ", "SHORTS"}},
	{"长裤", []string{"パンツ", "ズボン", "PANTS", "TROUSERS"}},
	{"短裙", []string{"スカート", "スコート", "SKIRT"}},
	{"连衣裙", []string{"ワンピース", "DRESS"}},
	{"马甲", []string{"ベスト", "ジレ", "VEST", "GILET"}},
	{"羽绒服", []string{"ダウン", "DOWN"}},
	{"夹克", []string{"ブルゾン", "ジャケット", "JACKET", "BLOUSON"}},
	{"外套", []string{"コート", "COAT"}},
	{"连帽衫", []string{"パーカー", "フーディー", "HOODIE", "PARKA"}},
	{"卫衣", []string{"スウェット", "トレーナー", "SWEAT"}},
	{"高领衫", []string{"モックネック", "ハイネック", "タートルネック", "MOCK NECK"}},
	{"翻领衫", []string{"ポロ", "POLO"}},
	{"体恤衫", []string{"Tシャツ", "T-SHIRT", "TEE"}},
	{"针织衫", []string{"ニット", "セーター", "カーディガン", "KNIT", "SWEATER"}},
	{"衬衫", []string{"シャツ", "ブラウス", "SHIRT"}},
	{"手套", []string{"グローブ", "GLOVE"}},
	{"袜子", []string{"ソックス", "靴下", "SOCKS"}},
	{"腰带", []string{"ベルト", "BELT"}},
	{"球鞋", []string{"シューズ", "スパイク", "SHOES"}},
	{"球包", []string{"キャディバッグ", "カートバッグ", "バッグ", "ポーチ", "BAG"}},
	{"球杆套", []string{"ヘッドカバー", "HEAD COVER"}},
}

// modifiers are tried in order when a title is too short. Their lengths
// (2, 4, 6, 8, 10) cover every deficit a minimal title can have.
var modifiers = []string{"新款", "时尚百搭", "新款时尚百搭", "日本进口新款百搭", "日本进口正品新款百搭"}

// Endings returns the closed set of words a valid title may end with
func Endings() []string {
	out := make([]string, 0, len(endingRules)+1)
	for _, r := range endingRules {
		out = append(out, r.label)
	}
	return append(out, DefaultEnding)
}
