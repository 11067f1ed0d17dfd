// Package title builds the constrained-format display title of a product.
package title

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golfwear-extractor/internal/brands"
	"golfwear-extractor/internal/textutil"
	"golfwear-extractor/internal/types"
)

// Input is what a generator needs to build one title
type Input struct {
	TitleRaw string       `json:"titleRaw"`
	BrandKey string       `json:"brand"`
	Gender   types.Gender `json:"gender,omitempty"`
}

// Generator produces a candidate title
type Generator interface {
	Generate(ctx context.Context, in Input) (string, error)
}

// Slots are the title parts, in output order
type Slots struct {
	Season   string
	Brand    string
	Gender   string
	Function string
	Ending   string
}

// RuleGenerator is the deterministic, table-driven generator
type RuleGenerator struct {
	brands        *brands.Registry
	defaultSeason string
}

// NewRuleGenerator creates a rule generator. An empty defaultSeason is
// derived from the current date.
func NewRuleGenerator(registry *brands.Registry, defaultSeason string) *RuleGenerator {
	if registry == nil {
		registry = brands.Default()
	}
	if defaultSeason == "" {
		defaultSeason = CurrentSeason(time.Now())
	}
	return &RuleGenerator{brands: registry, defaultSeason: defaultSeason}
}

// Generate implements Generator. It never fails.
func (g *RuleGenerator) Generate(_ context.Context, in Input) (string, error) {
	return g.Synthesize(in), nil
}

// Synthesize concatenates the slots and repairs the length: a too-short
// title gets one modifier before the function slot, a too-long one is
// truncated to the maximum length.
func (g *RuleGenerator) Synthesize(in Input) string {
	s := g.Slots(in)
	head := s.Season + s.Brand + Marker + s.Gender
	tail := s.Function + s.Ending

	title := head + tail
	if textutil.RuneLen(title) < minLength {
		for _, m := range modifiers {
			candidate := head + m + tail
			if n := textutil.RuneLen(candidate); n >= minLength && n <= maxLength {
				title = candidate
				break
			}
		}
	}
	if textutil.RuneLen(title) > maxLength {
		title = textutil.Truncate(title, maxLength)
	}
	return title
}

// Slots derives every slot from the input
func (g *RuleGenerator) Slots(in Input) Slots {
	return Slots{
		Season:   g.season(in.TitleRaw),
		Brand:    g.brandShort(in),
		Gender:   genderWord(in),
		Function: functionWords(in.TitleRaw),
		Ending:   ending(in.TitleRaw),
	}
}

func (g *RuleGenerator) season(raw string) string {
	m := seasonPattern.FindStringSubmatch(textutil.FoldUpper(raw))
	if m == nil {
		return g.defaultSeason
	}
	return m[1] + seasonLabels[m[2]]
}

func (g *RuleGenerator) brandShort(in Input) string {
	if b, ok := g.brands.Lookup(in.BrandKey); ok {
		return b.ShortName
	}
	return g.brands.Resolve(in.BrandKey, in.TitleRaw).ShortName
}

func genderWord(in Input) string {
	switch in.Gender {
	case types.GenderMale:
		return "男士"
	case types.GenderFemale:
		return "女士"
	case types.GenderUnisex:
		return "男女同款"
	}

	switch {
	case textutil.ContainsAny(in.TitleRaw, unisexWords):
		return "男女同款"
	case textutil.ContainsAny(in.TitleRaw, womenWords):
		return "女士"
	default:
		return "男士"
	}
}

func functionWords(raw string) string {
	var labels []string
	for _, r := range functionRules {
		if len(labels) == maxFunctions {
			break
		}
		if textutil.ContainsAny(raw, r.keywords) {
			labels = append(labels, r.label)
		}
	}
	if len(labels) == 0 {
		return DefaultFunction
	}
	return strings.Join(labels, "")
}

func ending(raw string) string {
	for _, r := range endingRules {
		if textutil.ContainsAny(raw, r.keywords) {
			return r.label
		}
	}
	return DefaultEnding
}

// CurrentSeason returns the selling season for t: March to August is
// spring/summer, the rest autumn/winter of the season's starting year.
func CurrentSeason(t time.Time) string {
	year := t.Year()
	switch m := t.Month(); {
	case m >= time.March && m <= time.August:
		return fmt.Sprintf("%02d春夏", year%100)
	case m <= time.February:
		return fmt.Sprintf("%02d秋冬", (year-1)%100)
	default:
		return fmt.Sprintf("%02d秋冬", year%100)
	}
}
