package extractor

import (
	"context"
	"fmt"
	"strings"

	"golfwear-extractor/internal/assemble"
	"golfwear-extractor/internal/brands"
	"golfwear-extractor/internal/config"
	"golfwear-extractor/internal/normalize"
	"golfwear-extractor/internal/title"
	"golfwear-extractor/internal/types"
	pkgerrors "golfwear-extractor/pkg/errors"
)

// Pipeline turns raw records into assembled ones: normalize, title, assemble
type Pipeline struct {
	normalizer *normalize.Normalizer
	titles     title.Generator
	logger     types.Logger
}

// NewPipeline creates a pipeline
func NewPipeline(normalizer *normalize.Normalizer, titles title.Generator, logger types.Logger) *Pipeline {
	return &Pipeline{
		normalizer: normalizer,
		titles:     titles,
		logger:     logger,
	}
}

// NewBrandPipeline builds the pipeline for one brand config. A nil titles
// uses the rule generator with the brand's default season.
func NewBrandPipeline(cfg *config.BrandConfig, titles title.Generator, registry *brands.Registry, logger types.Logger) (*Pipeline, error) {
	n := cfg.Normalize
	normalizer, err := normalize.New(normalize.Options{
		BrandKey:           cfg.BrandID,
		MenURLMarkers:      n.MenURLMarkers,
		WomenURLMarkers:    n.WomenURLMarkers,
		ProductCodeLabels:  n.ProductCodeLabels,
		GenderLabels:       n.GenderLabels,
		ProductCodePattern: n.ProductCodePattern,
		ImageMarker:        n.ImageMarker,
		MaxImages:          n.MaxImages,
	}, registry, logger)
	if err != nil {
		return nil, pkgerrors.NewConfiguration(fmt.Sprintf("invalid normalize section for %s", cfg.BrandID), err)
	}

	if titles == nil {
		titles = title.NewRuleGenerator(registry, cfg.DefaultSeason)
	}
	return NewPipeline(normalizer, titles, logger), nil
}

// Process runs one raw record through normalize, title and assemble. The
// returned flags describe a title that failed generation or validation;
// the record is still assembled.
func (p *Pipeline) Process(ctx context.Context, raw *types.RawScrapeRecord) (types.AssembledRecord, []string) {
	rec := p.normalizer.Normalize(raw)

	var flags []string
	t, err := p.titles.Generate(ctx, title.Input{TitleRaw: rec.TitleRaw, BrandKey: rec.BrandKey, Gender: rec.Gender})
	if err != nil {
		p.logger.Warnf("Title generation failed for %s: %v", rec.URL, err)
		flags = append(flags, fmt.Sprintf("title: %v", err))
	}

	if report := title.Validate(t); !report.Valid {
		p.logger.Warn(pkgerrors.NewValidation(rec.BrandKey,
			fmt.Sprintf("title %q for %s: %s", t, rec.URL, strings.Join(report.Problems, "; "))))
		for _, problem := range report.Problems {
			flags = append(flags, "title: "+problem)
		}
	}

	return assemble.Assemble(rec, t), flags
}
