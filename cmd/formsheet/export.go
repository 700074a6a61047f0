package main

import (
	"encoding/csv"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formsheet/pkg/store"
)

func newExportCmd(a *cli) *cobra.Command {
	var table string

	cmd := &cobra.Command{
		Use:   "export <form>",
		Short: "Write the stored rows of a form as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := a.definition(args[0])
			if err != nil {
				return err
			}
			if table == "" {
				table = def.Table
			}
			st, err := a.app.Connector.Connect(cmd.Context(), def.Store)
			if err != nil {
				return err
			}
			tbl, err := st.Table(cmd.Context(), table)
			if err != nil {
				return err
			}
			rows, err := tbl.ReadAll(cmd.Context())
			if err != nil {
				return err
			}
			return writeCSV(cmd.OutOrStdout(), rows)
		},
	}
	cmd.Flags().StringVar(&table, "table", "", "table to export instead of the form's table")
	return cmd
}

func writeCSV(out io.Writer, rows []store.Record) error {
	w := csv.NewWriter(out)
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
