package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gogreen",
	Short: "GOGREEN cluster catalog service",
	Long: `gogreen serves the merged GOGREEN photometric, spectroscopic and
structural catalogs: catalog integration, cluster membership
classification and criterion-based searches, over HTTP or as one-shot
commands.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
