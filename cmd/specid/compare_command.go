package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/banshee-data/specid/internal/specobj"
)

func newCompareCommand(ctx *commandContext) *cobra.Command {
	var fromFiles bool

	cmd := &cobra.Command{
		Use:   "compare RUN1 RUN2",
		Short: "Pair the objects of two runs",
		Long: "Pair every object of RUN1 with its closest counterpart in RUN2.\n\n" +
			"RUN1 and RUN2 are stored run ids, or name files with --files.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tol := ctx.tolerance(cmd)
			var (
				cmp *specobj.RunComparison
				err error
			)
			if fromFiles {
				cmp, err = compareFiles(args[0], args[1], tol)
			} else {
				store, oerr := ctx.openDB()
				if oerr != nil {
					return oerr
				}
				defer store.Close()
				cmp, err = store.CompareRuns(args[0], args[1], tol)
			}
			if err != nil {
				return err
			}
			return ctx.output(cmd, cmp, func(w io.Writer) error {
				return renderComparison(w, cmp)
			})
		},
	}
	cmd.Flags().BoolVar(&fromFiles, "files", false, "Treat RUN1 and RUN2 as files of names")
	addToleranceFlags(cmd)
	return cmd
}

func compareFiles(path1, path2 string, tol specobj.Tolerance) (*specobj.RunComparison, error) {
	names1, err := readNames(path1)
	if err != nil {
		return nil, err
	}
	names2, err := readNames(path2)
	if err != nil {
		return nil, err
	}
	cmp, err := specobj.CompareRuns(names1, names2, tol)
	if err != nil {
		return nil, err
	}
	cmp.Run1ID, cmp.Run2ID = path1, path2
	return cmp, nil
}

func renderComparison(w io.Writer, cmp *specobj.RunComparison) error {
	fmt.Fprintf(w, "%s vs %s: %d matched, %d only in run 1, %d only in run 2\n",
		cmp.Run1ID, cmp.Run2ID, len(cmp.Matched), len(cmp.OnlyRun1), len(cmp.OnlyRun2))
	if len(cmp.Matched) > 0 {
		rows := make([][]string, len(cmp.Matched))
		for i, m := range cmp.Matched {
			rows[i] = []string{m.Name1, m.Name2, strconv.Itoa(m.DObj), strconv.Itoa(m.DSlit), strconv.Itoa(m.Candidates)}
		}
		writeTable(w, []column{
			textCol("Run 1"), textCol("Run 2"), numCol("ΔObj"), numCol("ΔSlit"), numCol("Candidates"),
		}, rows)
	}
	if len(cmp.OnlyRun1) > 0 {
		fmt.Fprintf(w, "Only in run 1: %s\n", strings.Join(cmp.OnlyRun1, ", "))
	}
	if len(cmp.OnlyRun2) > 0 {
		fmt.Fprintf(w, "Only in run 2: %s\n", strings.Join(cmp.OnlyRun2, ", "))
	}
	return nil
}
