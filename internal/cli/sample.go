package cli

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/admill/internal/ads"
	"github.com/roach88/admill/internal/harness"
)

// sampleModel is a minimal classifier; the sample path never classifies,
// but the engine will not serve before a model has loaded.
const sampleModel = `{"version":1,"categories":[{"name":"untargeted","keywords":[]}]}`

// NewSampleCommand serves one ad from a bundle file through the
// diagnostic sample path.
func NewSampleCommand(opts *RootOptions) *cobra.Command {
	var seed int64

	cmd := &cobra.Command{
		Use:   "sample <bundle.json>",
		Short: "Serve one random ad from a sample bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read bundle: %w", err)
			}

			host := harness.NewScriptedHost()
			host.UserModelJSON = sampleModel
			host.SampleBundleJSON = string(raw)

			engine := ads.New(host, ads.WithRand(rand.New(rand.NewSource(seed))))
			engine.Initialize()
			if !engine.IsInitialized() {
				return fmt.Errorf("engine failed to initialize")
			}

			engine.ServeSampleAd()

			if len(host.Notifications) == 0 {
				return fmt.Errorf("no ad could be served from %s", args[0])
			}

			notification := host.Notifications[0]
			out := cmd.OutOrStdout()

			if opts.Format == "json" {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(notification)
			}

			fmt.Fprintf(out, "uuid:       %s\n", notification.UUID)
			fmt.Fprintf(out, "category:   %s\n", notification.Category)
			fmt.Fprintf(out, "advertiser: %s\n", notification.Advertiser)
			fmt.Fprintf(out, "text:       %s\n", notification.Text)
			fmt.Fprintf(out, "url:        %s\n", notification.URL)

			return nil
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed for ad selection")

	return cmd
}
