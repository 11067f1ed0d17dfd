package normalize

import (
	"strings"

	"golfwear-extractor/internal/textutil"
	"golfwear-extractor/internal/types"
)

var (
	menKeywords    = []string{"メンズ", "紳士", "男性用", "MENS", "MEN'S", "MEN"}
	womenKeywords  = []string{"レディース", "ウィメンズ", "ウイメンズ", "婦人", "女性用", "LADIES", "LADY'S", "WOMENS", "WOMEN'S", "WOMEN"}
	unisexKeywords = []string{"ユニセックス", "男女兼用", "UNISEX"}

	// womenCompounds contain a men keyword as a substring and are blanked
	// out before the men check.
	womenCompounds = []string{"ウィメンズ", "ウイメンズ"}

	genderValues = map[string]types.Gender{
		"メンズ":       types.GenderMale,
		"MENS":      types.GenderMale,
		"MEN'S":     types.GenderMale,
		"MEN":       types.GenderMale,
		"男性":        types.GenderMale,
		"紳士":        types.GenderMale,
		"レディース":     types.GenderFemale,
		"ウィメンズ":     types.GenderFemale,
		"LADIES":    types.GenderFemale,
		"WOMENS":    types.GenderFemale,
		"WOMEN'S":   types.GenderFemale,
		"WOMEN":     types.GenderFemale,
		"女性":        types.GenderFemale,
		"婦人":        types.GenderFemale,
		"ユニセックス":    types.GenderUnisex,
		"UNISEX":    types.GenderUnisex,
		"男女兼用":      types.GenderUnisex,
		"メンズ・レディース": types.GenderUnisex,
	}
)

// ResolveGender runs the gender cascade: URL marker, details-table label,
// breadcrumb, body text. The first rule that fires wins; Unknown otherwise.
func (n *Normalizer) ResolveGender(raw *types.RawScrapeRecord) types.Gender {
	rules := []func(*types.RawScrapeRecord) types.Gender{
		n.genderFromURL,
		n.genderFromDetails,
		genderFromBreadcrumbs,
		genderFromBody,
	}
	for _, rule := range rules {
		if g := rule(raw); g != types.GenderUnknown {
			return g
		}
	}
	return types.GenderUnknown
}

func (n *Normalizer) genderFromURL(raw *types.RawScrapeRecord) types.Gender {
	u := strings.ToLower(raw.URL)
	if u == "" {
		return types.GenderUnknown
	}
	for _, m := range n.opts.MenURLMarkers {
		if strings.Contains(u, strings.ToLower(m)) {
			return types.GenderMale
		}
	}
	for _, m := range n.opts.WomenURLMarkers {
		if strings.Contains(u, strings.ToLower(m)) {
			return types.GenderFemale
		}
	}
	return types.GenderUnknown
}

func (n *Normalizer) genderFromDetails(raw *types.RawScrapeRecord) types.Gender {
	for _, row := range raw.Details {
		if !labelMatches(row.Label, n.opts.GenderLabels) {
			continue
		}
		value := strings.TrimSpace(textutil.FoldUpper(row.Value))
		if g, ok := genderValues[value]; ok {
			return g
		}
	}
	return types.GenderUnknown
}

func genderFromBreadcrumbs(raw *types.RawScrapeRecord) types.Gender {
	text := strings.Join(raw.CategoryHints, " / ")
	if textutil.ContainsAny(text, unisexKeywords) {
		return types.GenderUnisex
	}
	return keywordGender(text)
}

func genderFromBody(raw *types.RawScrapeRecord) types.Gender {
	return keywordGender(strings.Join([]string{raw.TitleRaw, raw.DescriptionRaw, raw.BodyText}, "\n"))
}

// keywordGender checks the men set before the women set.
func keywordGender(text string) types.Gender {
	if text == "" {
		return types.GenderUnknown
	}
	menText := textutil.Fold(text)
	for _, c := range womenCompounds {
		menText = strings.ReplaceAll(menText, c, " ")
	}
	if textutil.ContainsAny(menText, menKeywords) {
		return types.GenderMale
	}
	if textutil.ContainsAny(text, womenKeywords) {
		return types.GenderFemale
	}
	return types.GenderUnknown
}
