// Package discover implements the command that browses the local
// network for running VTNs.
package discover

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"openadr/internal/infrastructure/mdns"
	"openadr/internal/shared/logger"
)

var (
	serviceType string
	timeout     time.Duration
	limit       int
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Discover VTNs on the local network",
		RunE:  run,
	}

	cmd.Flags().StringVar(&serviceType, "service-type", mdns.DefaultServiceType, "mDNS service type to browse")
	cmd.Flags().DurationVar(&timeout, "timeout", mdns.DefaultBrowseTimeout, "How long to browse")
	cmd.Flags().IntVar(&limit, "limit", 0, "Stop after this many VTNs (0 = no limit)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	vtns, err := mdns.Discover(cmd.Context(), mdns.DiscoverOptions{
		ServiceType: serviceType,
		Timeout:     timeout,
		Limit:       limit,
	}, logger.NewLogger())
	if err != nil {
		return err
	}

	if len(vtns) == 0 {
		fmt.Println("no VTNs found")
		return nil
	}
	for _, vtn := range vtns {
		fmt.Printf("%s\t%s\t(version %s)\n", vtn.InstanceName, vtn.URL, vtn.Version)
	}
	return nil
}
