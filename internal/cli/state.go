package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/admill/internal/store"
)

// NewStateCommand inspects persisted client-state blobs.
func NewStateCommand(_ *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "state <db> [name]",
		Short: "List or print persisted client-state blobs",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.Open(args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			ctx := cmd.Context()

			if len(args) == 1 {
				names, err := s.Names(ctx)
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			body, err := s.Get(ctx, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, body)

			return nil
		},
	}
}
