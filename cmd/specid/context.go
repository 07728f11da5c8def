package main

import (
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/banshee-data/specid/internal/config"
	"github.com/banshee-data/specid/internal/db"
	"github.com/banshee-data/specid/internal/specobj"
)

type globalOptions struct {
	configPath string
	dbPath     string
	verbose    bool
	json       bool
}

type commandContext struct {
	opts *globalOptions

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(opts *globalOptions) *commandContext {
	return &commandContext{opts: opts}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		path := strings.TrimSpace(c.opts.configPath)
		if path == "" {
			c.config = config.EmptyConfig()
			return
		}
		c.config, c.configErr = config.LoadConfig(path)
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, err := c.ensureConfig()
	if err != nil || cfg == nil {
		return config.EmptyConfig()
	}
	return cfg
}

func (c *commandContext) logger(cmd *cobra.Command) *specobj.Logger {
	w := specobj.LogWriters{Ops: cmd.ErrOrStderr()}
	if c.opts.verbose {
		w.Diag = cmd.ErrOrStderr()
	}
	return specobj.NewLogger(w)
}

func (c *commandContext) databasePath() string {
	if p := strings.TrimSpace(c.opts.dbPath); p != "" {
		return p
	}
	return c.configValue().GetDatabasePath()
}

func (c *commandContext) openDB() (*db.DB, error) {
	return db.NewDB(c.databasePath())
}

// tolerance applies --obj-tol and --slit-tol over the configured values.
func (c *commandContext) tolerance(cmd *cobra.Command) specobj.Tolerance {
	tol := c.configValue().Tolerance()
	if f := cmd.Flags().Lookup("obj-tol"); f != nil && f.Changed {
		tol.Obj, _ = cmd.Flags().GetInt("obj-tol")
	}
	if f := cmd.Flags().Lookup("slit-tol"); f != nil && f.Changed {
		tol.Slit, _ = cmd.Flags().GetInt("slit-tol")
	}
	return tol
}

func addToleranceFlags(cmd *cobra.Command) {
	cmd.Flags().Int("obj-tol", specobj.DefaultObjTolerance, "Object id tolerance")
	cmd.Flags().Int("slit-tol", specobj.DefaultSlitTolerance, "Slit id tolerance")
}

func (c *commandContext) output(cmd *cobra.Command, v any, render func(w io.Writer) error) error {
	if c.opts.json {
		return writeJSON(cmd.OutOrStdout(), v)
	}
	return render(cmd.OutOrStdout())
}
