package main

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/catalograg/internal/version"
)

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the version number",
	Annotations: map[string]string{"skipConfig": "true"},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Println(version.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
