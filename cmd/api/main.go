package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/employeedir/core/cmd/api/commands"
)

// @title Employee Directory API
// @version 1.0
// @description CRUD API over a single employee document

// @host localhost:4000
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and a token from "employeedir token issue".

func main() {
	rootCmd := &cobra.Command{
		Use:           "employeedir",
		Short:         "Employee Directory API server",
		Long:          `Employee Directory serves a small CRUD API over a single JSON document of employee records.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewEmployeeCommand())
	rootCmd.AddCommand(commands.NewExportCommand())
	rootCmd.AddCommand(commands.NewTokenCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
