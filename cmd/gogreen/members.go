package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/gogreen-survey/gogreen/src"
	"github.com/gogreen-survey/gogreen/src/app"
	"github.com/gogreen-survey/gogreen/src/table"
)

var (
	membersDataPath string
	membersCriteria string
)

var membersCmd = &cobra.Command{
	Use:   "members <cluster>",
	Short: "Print the member galaxies of a cluster",
	Long: `members classifies the named cluster's galaxies against its redshift
and prints the members, spectroscopic first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, _, err := app.BuildEngine(
			afero.NewOsFs(), membersDataPath, membersCriteria, src.NoopLogger{},
		)
		if err != nil {
			return err
		}

		m, err := engine.Members(args[0])
		if err != nil {
			return err
		}

		return printTable(m)
	},
}

func printTable(t *table.Table) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	names := t.ColumnNames()
	fmt.Fprintln(w, strings.Join(names, "\t"))

	cols := make([]*table.Column, 0, len(names))
	for _, name := range names {
		c, err := t.Column(name)
		if err != nil {
			return err
		}
		cols = append(cols, c)
	}

	for row := 0; row < t.NumRows(); row++ {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = renderCell(c, row)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}

	return w.Flush()
}

func renderCell(c *table.Column, row int) string {
	switch c.Type {
	case table.IntType:
		if v, ok := c.Int(row); ok {
			return fmt.Sprintf("%d", v)
		}
	case table.FloatType:
		if v, ok := c.Float(row); ok {
			return fmt.Sprintf("%g", v)
		}
	case table.StringType:
		if v, ok := c.Str(row); ok {
			return v
		}
	}
	return "--"
}

func init() {
	membersCmd.Flags().StringVar(
		&membersDataPath, "data", os.Getenv("DATA_PATH"),
		"directory holding the release catalogs",
	)
	membersCmd.Flags().StringVar(
		&membersCriteria, "criteria", "",
		"semicolon-separated reduction criteria, e.g. 'K_flag < 3'",
	)
	rootCmd.AddCommand(membersCmd)
}
