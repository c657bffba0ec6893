package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/admill/internal/harness"
)

// NewSimulateCommand replays a scenario file against a real engine and
// prints the emitted event stream.
func NewSimulateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "simulate <scenario.yaml>",
		Short: "Replay a scripted browsing session through the engine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := harness.LoadScenario(args[0])
			if err != nil {
				return err
			}

			result, err := harness.Run(scenario)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if opts.Format == "json" {
				summary := map[string]any{
					"scenario":      scenario.Name,
					"events":        jsonRecords(result.EventRecords()),
					"notifications": result.Notifications(),
				}
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(summary)
			}

			for _, record := range result.EventRecords() {
				fmt.Fprintln(out, record)
			}

			for _, notification := range result.Notifications() {
				fmt.Fprintf(out, "notification: %s %q -> %s (category %s)\n",
					notification.UUID, notification.Text, notification.URL, notification.Category)
			}

			return nil
		},
	}
}

// jsonRecords re-parses serialized records so the JSON summary nests
// them as objects instead of strings.
func jsonRecords(records []string) []json.RawMessage {
	raw := make([]json.RawMessage, len(records))
	for i, record := range records {
		raw[i] = json.RawMessage(record)
	}
	return raw
}
