package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/banshee-data/specid/internal/specobj"
)

func newKeyCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Encode and decode object names",
	}
	cmd.AddCommand(newKeyEncodeCommand(ctx))
	cmd.AddCommand(newKeyDecodeCommand(ctx))
	return cmd
}

func newKeyEncodeCommand(ctx *commandContext) *cobra.Command {
	var key specobj.ObjKey
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Build an object name from its identity fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := specobj.EncodeName(key, ctx.configValue().DetectorFormat())
			if err != nil {
				return err
			}
			if ctx.opts.json {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"name": name, "key": key})
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}
	cmd.Flags().IntVar(&key.ObjID, "obj", 0, "Object id within the slit [0, 999]")
	cmd.Flags().IntVar(&key.SlitID, "slit", 0, "Slit id [0, 9999]")
	cmd.Flags().IntVar(&key.Det, "det", 1, "Detector number [1, 99]")
	cmd.Flags().IntVar(&key.ScIdx, "scidx", 1, "Exposure index [0, 9999]")
	return cmd
}

func newKeyDecodeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "decode NAME [NAME...]",
		Short: "Split object names into their numeric fields",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := specobj.DecodeNames(args)
			if err != nil {
				return err
			}
			return ctx.output(cmd, tbl, func(w io.Writer) error {
				cols := []column{textCol("Name")}
				for _, code := range tbl.Codes {
					cols = append(cols, numCol(code))
				}
				rows := make([][]string, tbl.Len)
				for i := range rows {
					rows[i] = []string{args[i]}
					for _, code := range tbl.Codes {
						rows[i] = append(rows[i], strconv.Itoa(tbl.Column(code)[i]))
					}
				}
				writeTable(w, cols, rows)
				return nil
			})
		},
	}
}
