package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/emailreply/internal/clipboard"
	"github.com/muurk/emailreply/internal/form"
	"github.com/muurk/emailreply/internal/replyapi"
	"github.com/muurk/emailreply/internal/ui"
)

// Generate command flags
var (
	toneFlag       string
	fileFlag       string
	copyFlag       bool
	generateFormat string
)

var errNoContent = errors.New("no email content: pass --file, give it as an argument, or pipe it on stdin")

var generateCmd = &cobra.Command{
	Use:   "generate [email text]",
	Short: "Generate a reply without the interactive form",
	Long: `Generate a reply to an email and print it.

The email is read from --file, from the arguments, or from stdin, in that
order. The command exits non-zero when the service reports a failure.`,
	Example: `  # Pipe an email in
  pbpaste | emailreply generate --tone casual

  # Read from a file and copy the reply
  emailreply generate --file email.txt --copy

  # Only the reply text, for scripts
  emailreply generate --file email.txt --format plain

  # JSON output
  emailreply generate --file email.txt --format json`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&toneFlag, "tone", "", "Reply tone (formal, professional, casual, friendly)")
	generateCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read the email from this file (- for stdin)")
	generateCmd.Flags().BoolVar(&copyFlag, "copy", false, "Copy the reply to the clipboard")
	generateCmd.Flags().StringVar(&generateFormat, "format", "text", "Output format (text, plain, json)")

	rootCmd.AddCommand(generateCmd)
}

// generateResult is the JSON form of a finished submission
type generateResult struct {
	ID       string `json:"id"`
	Endpoint string `json:"endpoint"`
	Tone     string `json:"tone"`
	Phase    string `json:"phase"`
	Reply    string `json:"reply,omitempty"`
	Error    string `json:"error,omitempty"`
	Status   int    `json:"status,omitempty"`
	Copied   bool   `json:"copied"`
}

func runGenerate(cmd *cobra.Command, args []string) error {
	switch generateFormat {
	case "text", "plain", "json":
	default:
		return fmt.Errorf("unknown format %q (expected text, plain or json)", generateFormat)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	tone := cfg.Tone()
	if toneFlag != "" {
		if tone, err = form.ParseTone(toneFlag); err != nil {
			return err
		}
	}

	content, err := readContent(cmd.InOrStdin(), fileFlag, args)
	if err != nil {
		return err
	}
	if strings.TrimSpace(content) == "" {
		return errNoContent
	}

	ctx := cmd.Context()
	baseURL, path, err := resolveEndpoint(ctx, cfg)
	if err != nil {
		return err
	}

	client := newClient(cfg, baseURL, path)
	var cb form.Clipboard
	if copyFlag {
		cb = clipboard.System{}
	}
	ctrl := newController(cfg, client, cb)
	defer ctrl.Clear()

	if err := ctrl.UpdateField(form.EmailContent(content)); err != nil {
		return err
	}
	if err := ctrl.UpdateField(form.ToneField(tone)); err != nil {
		return err
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	if generateFormat == "text" {
		p.PrintHeader("Generate Reply", "emailreply generate",
			ui.Detail{Key: "Endpoint", Value: client.Endpoint()},
			ui.Detail{Key: "Tone", Value: tone.Label()},
			ui.Detail{Key: "Timeout", Value: seconds(cfg.Timeout())},
		)
	}

	sub, err := ctrl.Submit(ctx)
	if err != nil {
		return err
	}
	outcome := sub.Wait()
	state := ctrl.State()

	copied := false
	if state.Phase == form.PhaseSucceeded && copyFlag {
		copied = ctrl.CopyResult()
	}

	switch generateFormat {
	case "json":
		res := generateResult{
			ID:       sub.ID,
			Endpoint: client.Endpoint(),
			Tone:     tone.String(),
			Phase:    state.Phase.String(),
			Reply:    state.Result,
			Error:    state.Error,
			Status:   replyapi.StatusCode(outcome.Err),
			Copied:   copied,
		}
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	case "plain":
		if state.Phase == form.PhaseSucceeded {
			fmt.Fprintln(cmd.OutOrStdout(), state.Result)
		}
	default:
		if state.Phase == form.PhaseSucceeded {
			p.PrintReply(state.Result)
			details := []ui.Detail{{Key: "Request", Value: sub.ID}}
			if copyFlag {
				details = append(details, ui.Detail{Key: "Clipboard", Value: copiedLabel(copied)})
			}
			p.PrintSuccess("Reply ready", details...)
		} else {
			p.PrintError("Reply generation failed", state.Error, troubleshooting(outcome.Err, client.Endpoint())...)
		}
	}

	if state.Phase != form.PhaseSucceeded {
		return fmt.Errorf("generation failed: %s", state.Error)
	}
	if copyFlag && !copied {
		return errors.New("reply generated but could not be copied to the clipboard")
	}
	return nil
}

// readContent returns the email text from file, args or stdin
func readContent(stdin io.Reader, file string, args []string) (string, error) {
	switch {
	case file != "" && file != "-":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read email: %w", err)
		}
		return string(data), nil
	case file == "" && len(args) > 0:
		return strings.Join(args, " "), nil
	}

	if f, ok := stdin.(*os.File); ok && ui.IsTerminal(f) {
		return "", errNoContent
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

func copiedLabel(copied bool) string {
	if copied {
		return "Copied"
	}
	return "Copy failed"
}

// troubleshooting suggests fixes for a failed generation
func troubleshooting(err error, endpoint string) []string {
	switch {
	case replyapi.IsTimeout(err):
		return []string{
			"The service took too long to answer",
			"Increase --timeout or EMAILREPLY_TIMEOUT",
		}
	case replyapi.IsNetworkError(err):
		return []string{
			fmt.Sprintf("Check the reply service is running at %s", endpoint),
			"Set the URL with --endpoint or 'emailreply config set-endpoint'",
			"Use --discover to find a service on the local network",
		}
	case replyapi.IsHTTPError(err) && replyapi.StatusCode(err) < 500:
		return []string{
			"Check the email content and tone",
			fmt.Sprintf("Verify the request path: %s", endpoint),
		}
	case replyapi.IsHTTPError(err):
		return []string{"The service reported an internal error; try again shortly"}
	default:
		return nil
	}
}
