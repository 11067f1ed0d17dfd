package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"golfwear-extractor/adapters"
	"golfwear-extractor/utils"
)

var probeCmd = &cobra.Command{
	Use:   "probe <url> --brand <id>",
	Short: "Fetches one page and shows which selector of every chain matches it.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadBrand()
		if err != nil {
			return err
		}

		fetcher, err := utils.NewFetcher(cfg.ScraperConfig(), logger)
		if err != nil {
			return err
		}
		adapter, err := adapters.New(cfg, fetcher, logger)
		if err != nil {
			fetcher.Close()
			return err
		}
		defer adapter.Close()

		prober, ok := adapter.(adapters.Prober)
		if !ok {
			return fmt.Errorf("%s adapter does not support probing", adapter.GetBrandName())
		}

		results, err := prober.Probe(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Name", "Selector", "Matches", "First text"})
		for _, r := range results {
			sel := r.Selector
			if sel == "" {
				sel = fmt.Sprintf("(none of %d)", r.Tried)
			}
			t.AppendRow(table.Row{r.Name, sel, r.Matches, r.Sample})
		}
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
