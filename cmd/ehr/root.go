package main

import (
	"github.com/spf13/cobra"
	"github.com/tobsdb/ehr/internal/config"
	"github.com/tobsdb/ehr/internal/query"
	"github.com/tobsdb/ehr/pkg"
)

type cli struct {
	config_path string
	cfg         *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	defaults := config.Default()

	root := &cobra.Command{
		Use:   "ehr",
		Short: "Query patient and lab extracts",
		Long: `ehr parses tab separated patient and lab extracts and answers questions
about them: how many patients are older than an age, which patients have a lab
result past a threshold and how old a patient was at their first admission.

Settings come from --config (or ./ehr.yaml), EHR_* environment variables and flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.config_path, cmd.Flags())
			if err != nil {
				return err
			}
			pkg.SetLogLevel(cfg.LogLevel())
			c.cfg = cfg
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = pkg.Logger().Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.config_path, "config", "c", "", "path to a yaml config file")
	flags.String("patients", defaults.PatientsPath, "path to the patient extract")
	flags.String("labs", defaults.LabsPath, "path to the lab extract")
	flags.String("backend", string(defaults.Backend), "patient store: memory, sqlite or tables")
	flags.String("dsn", defaults.DSN, "sqlite database path")
	flags.Bool("debug", defaults.Log.Debug, "show debug logs")
	flags.BoolP("quiet", "q", false, "disable logging")

	root.AddCommand(
		c.olderThanCmd(),
		c.sickCmd(),
		c.firstAdmissionCmd(),
		c.ageCmd(),
		c.validateCmd(),
		c.loadCmd(),
		c.serveCmd(),
		c.configCmd(),
	)
	return root
}

// withEngine opens the configured repository for the duration of f.
func (c *cli) withEngine(f func(e *query.Engine) error) error {
	repo, err := config.OpenRepository(c.cfg)
	if err != nil {
		return err
	}
	defer repo.Close()
	return f(query.NewEngine(repo))
}
