package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/emailreply/internal/discovery"
	"github.com/muurk/emailreply/internal/logging"
	"github.com/muurk/emailreply/internal/stubserver"
	"github.com/muurk/emailreply/internal/ui"
)

// Stub server flags
var (
	stubHost        string
	stubPort        int
	stubPath        string
	stubLatency     time.Duration
	stubFailStatus  int
	stubFailMessage string
	stubAdvertise   bool
	stubInstance    string
)

var stubServerCmd = &cobra.Command{
	Use:   "stub-server",
	Short: "Run a local stand-in for the reply service",
	Long: `Run a local server that answers generation requests with canned,
tone-keyed replies.

Use it to try the form without a real reply service, to watch the
submitting state with --latency, or to see error handling with
--fail-status.`,
	Example: `  # Serve on :8080, the client's default endpoint
  emailreply stub-server

  # Slow replies, visible to 'emailreply scan'
  emailreply stub-server --latency 3s --advertise

  # Every request fails
  emailreply stub-server --fail-status 503 --fail-message "Model overloaded"`,
	Args: cobra.NoArgs,
	RunE: runStubServer,
}

func init() {
	f := stubServerCmd.Flags()
	f.StringVar(&stubHost, "host", "", "Interface to listen on (default all)")
	f.IntVar(&stubPort, "port", stubserver.DefaultPort, "Port to listen on")
	f.StringVar(&stubPath, "path", discovery.DefaultPath, "Route that accepts generation requests")
	f.DurationVar(&stubLatency, "latency", 0, "Delay before every reply, e.g. 2s")
	f.IntVar(&stubFailStatus, "fail-status", 0, "Fail every request with this HTTP status")
	f.StringVar(&stubFailMessage, "fail-message", "", "Body sent with --fail-status (default status text)")
	f.BoolVar(&stubAdvertise, "advertise", false, "Advertise the server over mDNS")
	f.StringVar(&stubInstance, "instance", "emailreply-stub", "mDNS instance name")

	rootCmd.AddCommand(stubServerCmd)
}

func runStubServer(cmd *cobra.Command, args []string) error {
	if stubFailStatus != 0 && (stubFailStatus < 400 || stubFailStatus > 599) {
		return fmt.Errorf("--fail-status must be a 4xx or 5xx code, got %d", stubFailStatus)
	}

	// Request logs are the point of running a server; default to info
	if logLevel == "" && os.Getenv(logging.LogLevelEnvVar) == "" {
		if err := logging.Initialize("info", logFile); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
	}

	srv := stubserver.New(&stubserver.Config{
		Host:        stubHost,
		Port:        stubPort,
		Path:        stubPath,
		Latency:     stubLatency,
		FailStatus:  stubFailStatus,
		FailMessage: stubFailMessage,
		Advertise:   stubAdvertise,
		Instance:    stubInstance,
	})

	addr, err := srv.Listen()
	if err != nil {
		return err
	}

	details := []ui.Detail{
		{Key: "Address", Value: addr.String()},
		{Key: "Path", Value: stubPath},
	}
	if stubLatency > 0 {
		details = append(details, ui.Detail{Key: "Latency", Value: stubLatency.String()})
	}
	if stubFailStatus != 0 {
		details = append(details, ui.Detail{Key: "Failing", Value: fmt.Sprintf("HTTP %d", stubFailStatus)})
	}
	if stubAdvertise {
		details = append(details, ui.Detail{Key: "mDNS", Value: stubInstance + "." + discovery.ServiceType})
	}
	ui.NewPrinter(cmd.OutOrStdout()).PrintHeader("Stub Reply Server", "emailreply stub-server", details...)

	return srv.Start(cmd.Context())
}
