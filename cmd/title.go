package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"golfwear-extractor/internal/brands"
	"golfwear-extractor/internal/title"
	"golfwear-extractor/internal/types"
)

var titleCmd = &cobra.Command{
	Use:   "title <raw title> [--brand <id>] [--gender male|female|unisex]",
	Short: "Generates and validates the display title for one raw product name.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gender, _ := cmd.Flags().GetString("gender")
		season, _ := cmd.Flags().GetString("season")
		if season == "" {
			season = settings.DefaultSeason
		}

		rule := title.NewRuleGenerator(brands.Default(), season)
		gen := title.FromSettings(settings.Title, rule, logger)

		in := title.Input{
			TitleRaw: strings.Join(args, " "),
			BrandKey: brandFlag,
			Gender:   types.Gender(gender),
		}
		t, err := gen.Generate(cmd.Context(), in)
		if err != nil {
			return err
		}

		slots := rule.Slots(in)
		tw := newTable()
		tw.AppendHeader(table.Row{"Slot", "Value"})
		tw.AppendRows([]table.Row{
			{"season", slots.Season},
			{"brand", slots.Brand},
			{"gender", slots.Gender},
			{"function", slots.Function},
			{"ending", slots.Ending},
		})
		tw.Render()

		fmt.Println(t)
		if report := title.Validate(t); !report.Valid {
			return fmt.Errorf("title failed validation: %s", strings.Join(report.Problems, "; "))
		}
		return nil
	},
}

func init() {
	titleCmd.Flags().String("gender", "", "Gender hint: male, female or unisex")
	titleCmd.Flags().String("season", "", "Season prefix used when the raw title has none")
	rootCmd.AddCommand(titleCmd)
}
