package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formsheet/pkg/form"
)

func newInspectCmd(a *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <form>",
		Short: "Print the parsed schema of a form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := a.definition(args[0])
			if err != nil {
				return err
			}
			engine := a.app.Engine
			f, err := engine.Open(cmd.Context(), def)
			if err != nil {
				return err
			}
			return printSchema(cmd.OutOrStdout(), f)
		},
	}
}

func printSchema(out io.Writer, f *form.Form) error {
	def := f.Definition()
	s := f.Schema()

	fmt.Fprintf(out, "%s (%s) -> %s/%s\n\n", def.Title, def.ID, def.Store, def.Table)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tCATEGORY\tQUESTION\tKIND\tROLE\tOPTIONS")
	for _, field := range s.Fields {
		role := string(field.Role)
		if role == "" {
			role = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			field.Row, field.Category, field.Question, field.Kind, role, strings.Join(field.Options, ", "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(s.Skipped) > 0 {
		rows := make([]string, len(s.Skipped))
		for i, row := range s.Skipped {
			rows[i] = fmt.Sprint(row)
		}
		fmt.Fprintf(out, "\nskipped rows: %s\n", strings.Join(rows, ", "))
	}
	if g := f.Geo(); g != nil {
		fmt.Fprintf(out, "\nregion reference: %d rows, %d regions\n", g.Len(), len(g.Regions()))
	}
	if f.Pass().HasCascade() {
		keys := f.Pass().CascadeKeys()
		fmt.Fprintf(out, "cascade columns: %s | %s | %s\n", keys.Region, keys.Province, keys.District)
	}
	return nil
}
