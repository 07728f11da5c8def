package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/banshee-data/specid/internal/db"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openDB()
			if err != nil {
				return err
			}
			defer store.Close()
			runs, err := store.ListRuns()
			if err != nil {
				return err
			}
			if runs == nil {
				runs = []*db.Run{}
			}
			return ctx.output(cmd, runs, func(w io.Writer) error {
				rows := make([][]string, len(runs))
				for i, r := range runs {
					rows[i] = []string{
						r.RunID,
						r.Label,
						r.Source,
						strconv.Itoa(r.NumObjects),
						time.Unix(0, r.CreatedAtNs).UTC().Format(time.RFC3339),
					}
				}
				writeTable(w, []column{
					textCol("Run ID"), textCol("Label"), textCol("Source"), numCol("Objects"), textCol("Created"),
				}, rows)
				return nil
			})
		},
	}
	cmd.AddCommand(newRunsShowCommand(ctx), newRunsDeleteCommand(ctx))
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show RUN_ID",
		Short: "List the objects of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openDB()
			if err != nil {
				return err
			}
			defer store.Close()
			objs, err := store.ListObjects(args[0])
			if err != nil {
				return err
			}
			return ctx.output(cmd, objs, func(w io.Writer) error {
				rows := make([][]string, len(objs))
				for i, o := range objs {
					rows[i] = []string{strconv.Itoa(o.Seq), o.Name, o.Record.Config, o.Record.ObjType.String()}
				}
				writeTable(w, []column{numCol("#"), textCol("Name"), textCol("Config"), textCol("Type")}, rows)
				return nil
			})
		},
	}
}

func newRunsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete RUN_ID",
		Short: "Delete a stored run and its objects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openDB()
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.DeleteRun(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", args[0])
			return nil
		},
	}
}
