package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/banshee-data/specid/internal/specobj"
)

func newConfigKeyCommand(ctx *commandContext) *cobra.Command {
	var metaPath, binning string
	fields := map[string]*string{}

	cmd := &cobra.Command{
		Use:   "config-key",
		Short: "Build the instrument configuration key from exposure metadata",
		Long: "Build the instrument configuration key from exposure metadata.\n\n" +
			"Metadata comes from --meta (a JSON object) and is overridden by the\n" +
			"per-field flags. Missing fields encode as 0.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			row := specobj.MapRow{}
			if metaPath != "" {
				var err error
				if row, err = loadMeta(metaPath); err != nil {
					return err
				}
			}
			for name, v := range fields {
				if cmd.Flags().Changed(name) {
					row[name] = *v
				}
			}
			key := specobj.InstConfig(row, binning, ctx.logger(cmd))
			if ctx.opts.json {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"config": key})
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}
	cmd.Flags().StringVar(&metaPath, "meta", "", "JSON file with metadata fields")
	cmd.Flags().StringVar(&binning, "binning", "", "Detector binning, e.g. 2x2 (default 1x1)")
	for _, name := range []string{"slitwid", "dichroic", "dispname", "dispangle"} {
		fields[name] = cmd.Flags().String(name, "", "Metadata field "+name)
	}
	return cmd
}

func loadMeta(path string) (specobj.MapRow, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata file: %w", err)
	}
	defer f.Close()

	row := specobj.MapRow{}
	dec := json.NewDecoder(f)
	dec.UseNumber()
	if err := dec.Decode(&row); err != nil {
		return nil, fmt.Errorf("failed to parse metadata JSON: %w", err)
	}
	if row == nil {
		row = specobj.MapRow{}
	}
	return row, nil
}
