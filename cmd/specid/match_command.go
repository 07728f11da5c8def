package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/banshee-data/specid/internal/specobj"
)

type matchReport struct {
	Query     string            `json:"query"`
	Tolerance specobj.Tolerance `json:"tolerance"`
	Matched   bool              `json:"matched"`
	Match     specobj.Match     `json:"match"`
}

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var runID, namesPath string

	cmd := &cobra.Command{
		Use:   "match QUERY [CANDIDATE...]",
		Short: "Find candidates that may be the same object as QUERY",
		Long: "Find candidates that may be the same object as QUERY.\n\n" +
			"Candidates are the remaining arguments, the lines of --names, or the\n" +
			"objects of a stored run given by --run. Exposure indices are ignored.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, cands := args[0], args[1:]
			if namesPath != "" {
				more, err := readNames(namesPath)
				if err != nil {
					return err
				}
				cands = append(cands, more...)
			}
			if runID != "" {
				store, err := ctx.openDB()
				if err != nil {
					return err
				}
				defer store.Close()
				more, err := store.ObjectNames(runID)
				if err != nil {
					return err
				}
				cands = append(cands, more...)
			}

			tol := ctx.tolerance(cmd)
			m, ok, err := specobj.MatchObject(query, cands, tol)
			if err != nil {
				return err
			}
			report := matchReport{Query: query, Tolerance: tol, Matched: ok, Match: m}
			return ctx.output(cmd, report, func(w io.Writer) error {
				if !ok {
					_, err := fmt.Fprintf(w, "No match for %s (obj tol %d, slit tol %d)\n", query, tol.Obj, tol.Slit)
					return err
				}
				rows := make([][]string, len(m.Names))
				for i, name := range m.Names {
					rows[i] = []string{strconv.Itoa(m.Indices[i]), name}
				}
				writeTable(w, []column{numCol("Index"), textCol("Name")}, rows)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&runID, "run", "", "Use the objects of a stored run as candidates")
	cmd.Flags().StringVar(&namesPath, "names", "", "File with one candidate name per line")
	addToleranceFlags(cmd)
	return cmd
}

// readNames reads one name per line, skipping blanks and # comments.
func readNames(path string) ([]string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open names file: %w", err)
	}
	defer f.Close()

	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read names file: %w", err)
	}
	return names, nil
}
