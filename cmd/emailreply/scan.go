package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/emailreply/internal/discovery"
	"github.com/muurk/emailreply/internal/ui"
)

// scanServices is swapped out in tests
var scanServices = discovery.Scan

var (
	scanTimeout int
	scanFormat  string
)

// scanCmd discovers reply services on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for reply services on the local network",
	Long: `Scan for reply services using mDNS/DNS-SD discovery.

Services advertise themselves as ` + discovery.ServiceType + `. Each result
shows the endpoint the form would post to.`,
	Example: `  # Scan for 5 seconds (default)
  emailreply scan

  # Longer scan for slow networks
  emailreply scan --timeout 15

  # JSON output for scripting
  emailreply scan --format json`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", int(discovery.DefaultScanTimeout/time.Second), "Scan timeout in seconds")
	scanCmd.Flags().StringVar(&scanFormat, "format", "text", "Output format (text, json)")

	rootCmd.AddCommand(scanCmd)
}

// scanEntry is the JSON form of a discovered service
type scanEntry struct {
	Instance string            `json:"instance"`
	Hostname string            `json:"hostname"`
	IP       string            `json:"ip"`
	Port     int               `json:"port"`
	Endpoint string            `json:"endpoint"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func runScan(cmd *cobra.Command, args []string) error {
	if scanTimeout <= 0 {
		return fmt.Errorf("--timeout must be positive, got %d", scanTimeout)
	}
	timeout := time.Duration(scanTimeout) * time.Second
	out := cmd.OutOrStdout()
	p := ui.NewPrinter(out)

	if scanFormat == "text" {
		p.PrintHeader("Scan for Reply Services", "emailreply scan",
			ui.Detail{Key: "Service", Value: discovery.ServiceType},
			ui.Detail{Key: "Timeout", Value: seconds(timeout)},
		)
	}

	services, err := scanServices(cmd.Context(), timeout)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if scanFormat == "json" {
		entries := make([]scanEntry, 0, len(services))
		for _, svc := range services {
			entries = append(entries, scanEntry{
				Instance: svc.Instance,
				Hostname: svc.Hostname,
				IP:       svc.IP,
				Port:     svc.Port,
				Endpoint: svc.Endpoint(),
				Metadata: svc.Metadata,
			})
		}
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if len(services) == 0 {
		p.PrintWarning("No reply services found",
			ui.Detail{Key: "Check", Value: "the service is running and advertising over mDNS"},
			ui.Detail{Key: "Network", Value: "your computer is on the same network segment"},
			ui.Detail{Key: "Retry", Value: "try increasing --timeout for slower networks"},
			ui.Detail{Key: "Manual", Value: "use --endpoint to set the URL directly"},
		)
		return nil
	}

	fmt.Fprintf(out, "Found %d service(s):\n\n", len(services))
	for i, svc := range services {
		fmt.Fprintf(out, "%d. %s\n", i+1, svc.Instance)
		fmt.Fprintf(out, "   Host:     %s\n", svc.Hostname)
		fmt.Fprintf(out, "   Endpoint: %s\n", svc.Endpoint())
		if len(svc.Metadata) > 0 {
			fmt.Fprintf(out, "   Metadata: %s\n", formatMetadata(svc.Metadata))
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "Use 'emailreply --endpoint <url>' to open the form against a service")
	fmt.Fprintln(out, "Use 'emailreply --discover' to pick one interactively")
	return nil
}

func formatMetadata(m map[string]string) string {
	parts := make([]string, 0, len(m))
	for k, v := range m {
		parts = append(parts, k+"="+v)
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}
