package main

import (
	"os"

	"github.com/spf13/cobra"

	"openadr/internal/interfaces/cli/discover"
	"openadr/internal/interfaces/cli/hashsecret"
	"openadr/internal/interfaces/cli/ven"
	"openadr/internal/interfaces/cli/version"
	"openadr/internal/interfaces/cli/vtn"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "openadr",
		Short: "OpenADR 3 VTN server and tooling",
		Long:  `An OpenADR 3 Virtual Top Node: HTTP API for programs, events, reports, VENs, resources and subscriptions, with WebSocket notifications, an internal OAuth token endpoint and mDNS discovery.`,
	}

	rootCmd.AddCommand(
		vtn.NewCommand(),
		ven.NewCommand(),
		discover.NewCommand(),
		version.NewCommand(),
		hashsecret.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
