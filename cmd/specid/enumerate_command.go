package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/banshee-data/specid/internal/db"
	"github.com/banshee-data/specid/internal/qaplot"
	"github.com/banshee-data/specid/internal/specobj"
)

type slitSummary struct {
	Slit    int      `json:"slit"`
	Kind    string   `json:"kind"`
	Names   []string `json:"names,omitempty"`
	Message string   `json:"message,omitempty"`
}

type enumerateReport struct {
	Source  string             `json:"source"`
	Config  string             `json:"config"`
	RunID   string             `json:"run_id,omitempty"`
	Slits   []slitSummary      `json:"slits"`
	Objects []*specobj.SpecObj `json:"objects"`
}

func newEnumerateCommand(ctx *commandContext) *cobra.Command {
	var plotPath, label string
	var save bool

	cmd := &cobra.Command{
		Use:   "enumerate EXPOSURE.json",
		Short: "Build and name the object records of one exposure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			exp, err := specobj.LoadExposureFile(args[0])
			if err != nil {
				return err
			}
			if exp.ObjType == specobj.ObjTypeUnknown {
				exp.ObjType = cfg.GetObjType()
			}

			log := ctx.logger(cmd)
			e, err := specobj.NewEnumerator(cfg.EnumeratorConfig(), log)
			if err != nil {
				return err
			}
			results, err := e.Enumerate(exp)
			if err != nil {
				return err
			}

			format := cfg.DetectorFormat()
			objs := specobj.Records(results)
			config, ok := specobj.ConfigKey(results)
			if !ok {
				// No slits, so no records to disagree with.
				config = specobj.InstConfig(exp.Meta, exp.Binning, log)
			}
			report := enumerateReport{
				Source:  args[0],
				Config:  config,
				Objects: objs,
			}
			for _, r := range results {
				s := slitSummary{Slit: r.Slit + 1, Kind: r.Kind.String()}
				if s.Names, err = specobj.Names(r.Objects, format); err != nil {
					return err
				}
				if r.Err != nil {
					s.Message = r.Err.Error()
				}
				report.Slits = append(report.Slits, s)
			}

			if plotPath != "" {
				opts := qaplot.DefaultOptions()
				opts.Format = format
				if err := qaplot.Save(plotPath, exp, results, opts); err != nil {
					return err
				}
				log.Opsf("wrote QA plot %s", plotPath)
			}

			if save {
				store, err := ctx.openDB()
				if err != nil {
					return err
				}
				defer store.Close()
				run := &db.Run{Label: label, Source: args[0], ConfigKey: report.Config}
				if err := store.CreateRun(run); err != nil {
					return err
				}
				if err := store.InsertObjects(run.RunID, objs, format); err != nil {
					return err
				}
				report.RunID = run.RunID
			}

			return ctx.output(cmd, report, func(w io.Writer) error {
				return renderEnumerate(w, report, format)
			})
		},
	}
	cmd.Flags().StringVar(&plotPath, "plot", "", "Write a QA image of edges and traces (.png, .svg or .pdf)")
	cmd.Flags().BoolVar(&save, "save", false, "Store the records as a new run in the database")
	cmd.Flags().StringVar(&label, "label", "", "Label for the stored run")
	return cmd
}

func renderEnumerate(w io.Writer, report enumerateReport, format specobj.DetectorFormat) error {
	rows := make([][]string, 0, len(report.Objects))
	for _, o := range report.Objects {
		name, err := o.Name(format)
		if err != nil {
			return err
		}
		rows = append(rows, []string{
			name,
			strconv.Itoa(o.SlitID()),
			strconv.Itoa(o.ObjID()),
			strconv.FormatFloat(o.SpatFracPos, 'f', 4, 64),
			o.Config,
			o.ObjType.String(),
		})
	}
	fmt.Fprintf(w, "%s: %d object(s), config %s\n", report.Source, len(report.Objects), report.Config)
	if len(rows) > 0 {
		writeTable(w, []column{
			textCol("Name"), numCol("Slit ID"), numCol("Obj ID"), numCol("Frac Pos"), textCol("Config"), textCol("Type"),
		}, rows)
	}

	slitRows := make([][]string, 0, len(report.Slits))
	for _, s := range report.Slits {
		slitRows = append(slitRows, []string{strconv.Itoa(s.Slit), s.Kind, strconv.Itoa(len(s.Names)), s.Message})
	}
	writeTable(w, []column{numCol("Slit"), textCol("Result"), numCol("Objects"), textCol("Message")}, slitRows)
	if report.RunID != "" {
		fmt.Fprintf(w, "Saved run %s\n", report.RunID)
	}
	return nil
}
