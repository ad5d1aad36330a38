package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	host  string
	email string
)

var rootCmd = &cobra.Command{
	Use:   "permutatum-cli",
	Short: "A CLI to interact with the permutatum server",
	Long: `A command-line interface for making requests to the various endpoints
of the permutatum court-transfer matching service, and for running searches
offline against a snapshot file.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "The host address of the server")
	rootCmd.PersistentFlags().StringVar(&email, "email", "", "Act as the participant registered with this email")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your command '%s'", err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
