package main

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tobsdb/ehr/internal/builder"
	"github.com/tobsdb/ehr/internal/config"
	"github.com/tobsdb/ehr/internal/conn"
	"github.com/tobsdb/ehr/internal/ehr"
	"github.com/tobsdb/ehr/internal/query"
)

func parseFloatArg(name, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, ehr.NewInvalidArgumentError("Invalid %s %q: expected a number", name, value)
	}
	return f, nil
}

func (c *cli) olderThanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "older-than AGE",
		Short: "Count patients strictly older than AGE years",
		Long: `Count patients strictly older than AGE years.

A negative AGE reads as a flag; put it after "--", e.g. ehr older-than -- -1`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			age, err := parseFloatArg("age", args[0])
			if err != nil {
				return err
			}
			return c.withEngine(func(e *query.Engine) error {
				n, err := e.NumOlderThan(age)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), n)
				return nil
			})
		},
	}
}

func (c *cli) sickCmd() *cobra.Command {
	var admission string
	cmd := &cobra.Command{
		Use:   "sick LAB COMPARATOR VALUE",
		Short: "List patients whose first LAB result is above (>) or below (<) VALUE",
		Long: `List patients whose first LAB result is above (>) or below (<) VALUE.
Patients without the lab are left out.

A negative VALUE reads as a flag; put the arguments after "--", e.g.
  ehr sick --admission 1 -- lab_a '<' -0.5`,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseFloatArg("value", args[2])
			if err != nil {
				return err
			}
			return c.withEngine(func(e *query.Engine) error {
				var ids []string
				if admission != "" {
					ids, err = e.SickPatientsAtAdmission(admission, args[0], args[1], value)
				} else {
					ids, err = e.SickPatients(args[0], args[1], value)
				}
				if err != nil {
					return err
				}
				for _, id := range ids {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&admission, "admission", "", "only look at labs from this admission")
	return cmd
}

func (c *cli) firstAdmissionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "first-admission ID",
		Short: "Print the patient's age at their first admission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEngine(func(e *query.Engine) error {
				age, err := e.AgeAtFirstAdmission(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%.2f\n", age)
				return nil
			})
		},
	}
}

func (c *cli) ageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "age ID",
		Short: "Print the patient's current age",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEngine(func(e *query.Engine) error {
				age, err := e.AgeOf(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%.2f\n", age)
				return nil
			})
		},
	}
}

func (c *cli) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the extracts parse and every lab references a known patient",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Checking %s and %s for errors\n", c.cfg.PatientsPath, c.cfg.LabsPath)

			patients, labs, err := builder.ParseFiles(c.cfg.PatientsPath, c.cfg.LabsPath)
			if err != nil {
				return errors.Wrap(err, "Invalid extract")
			}
			m, err := builder.BuildMemory(patients, labs, c.cfg.Columns)
			if err != nil {
				return errors.Wrap(err, "Invalid extract")
			}

			fmt.Fprintf(out, "Extract checks successful: %d patients, %d labs\n", m.Len(), labs.Len())
			return nil
		},
	}
}

func (c *cli) loadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Import the extracts into the sqlite database at --dsn",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := config.Import(c.cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			all, err := db.All()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d patients into %s\n", len(all), c.cfg.DSN)
			return nil
		},
	}
}

func (c *cli) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Answer queries over websocket connections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.cfg.User()
			if err != nil {
				return err
			}
			return c.withEngine(func(e *query.Engine) error {
				return conn.NewServer(e, user).Listen(c.cfg.Server.Port)
			})
		},
	}
	cmd.Flags().Int("port", config.Default().Server.Port, "listening port")
	return cmd
}

func (c *cli) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := c.cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(buf)
			return err
		},
	}
}
