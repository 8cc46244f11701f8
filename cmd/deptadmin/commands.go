package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/benprew/deptadmin"
	http "github.com/benprew/deptadmin/http"
	"github.com/spf13/cobra"
)

func newRootCmd(m *Main) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "deptadmin",
		Short:        "Manage departments through a remote department API",
		SilenceUsage: true,
		Version:      deptadmin.Version,
	}
	rootCmd.PersistentFlags().StringVar(&m.ConfigPath, "config", deptadmin.DefaultConfigPath, "config path (.json or .yaml)")

	rootCmd.AddCommand(
		newServeCmd(m, "api", "Serve the department JSON API from SQLite", m.RunAPI),
		newServeCmd(m, "web", "Serve the department admin page", m.RunWeb),
		newListCmd(m),
		newHashKeyCmd(),
	)
	return rootCmd
}

// newServeCmd runs start and then blocks until the context is cancelled.
func newServeCmd(m *Main, use, short string, start func(context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := m.LoadConfig(); err != nil {
				return err
			}
			if err := start(ctx); err != nil {
				m.Close()
				deptadmin.ReportError(ctx, err)
				return err
			}

			// Wait for CTRL-C.
			<-ctx.Done()

			return m.Close()
		},
	}
}

func newListCmd(m *Main) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List departments from the remote API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := m.LoadConfig(); err != nil {
				return err
			}
			departments, err := m.newClient().ListDepartments(cmd.Context())
			if err != nil {
				if msg, ok := deptadmin.RemoteMessage(err); ok {
					return fmt.Errorf("%s: %s", deptadmin.MsgListFailed, msg)
				}
				return fmt.Errorf("%s: %w", deptadmin.MsgListFailed, err)
			}
			return printDepartments(cmd.OutOrStdout(), deptadmin.FilterByName(departments, name))
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "only show departments whose name contains this text")
	return cmd
}

func printDepartments(w io.Writer, departments []*deptadmin.Department) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCODE")
	for _, d := range departments {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", d.ID, d.Name, d.Code)
	}
	return tw.Flush()
}

func newHashKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hashkey KEY",
		Short: "Print the bcrypt hash of an API key for api.key_hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := http.HashAPIKey(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
