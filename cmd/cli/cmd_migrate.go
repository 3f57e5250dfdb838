package main

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return dbManagerFrom(cmd).Init()
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
