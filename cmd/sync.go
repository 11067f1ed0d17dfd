package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"golfwear-extractor/extractor"
	"golfwear-extractor/internal/sink"
	"golfwear-extractor/internal/types"
)

var syncCmd = &cobra.Command{
	Use:   "sync <details.json> --to <kind> [--out <path>]",
	Short: "Writes the records of a detail document to a spreadsheet, file, stream or Bitable.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, _ := cmd.Flags().GetString("to")
		out, _ := cmd.Flags().GetString("out")

		doc, err := extractor.ReadDocument[types.AssembledRecord](args[0])
		if err != nil {
			return err
		}
		records := extractor.Records(doc)
		if len(records) == 0 {
			logger.Warnf("No records in %s, nothing to sync", args[0])
			return nil
		}

		if out == "" {
			out = strings.TrimSuffix(args[0], ".json") + "_records." + to
		}
		s, err := sink.New(to, out, settings, logger)
		if err != nil {
			return err
		}
		defer s.Close()

		n, err := s.Write(cmd.Context(), records)
		if err != nil {
			return fmt.Errorf("%s sync stopped after %d records: %w", s.Name(), n, err)
		}
		logger.Infof("Synced %d/%d records of %s to %s", n, len(records), doc.Brand, s.Name())
		return nil
	},
}

func init() {
	syncCmd.Flags().String("to", "xlsx", "Sink kind: "+strings.Join(sink.Kinds, ", "))
	syncCmd.Flags().String("out", "", "Output path for file sinks (default: next to the input)")
	rootCmd.AddCommand(syncCmd)
}
