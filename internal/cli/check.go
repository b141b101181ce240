package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"dayplan/internal/render"
)

func addCheck(topLevel *cobra.Command, oo *options) {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "list the day's periods and fail when any overlap",
		Example: `
dayplan check --agenda agenda.yaml
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := oo.load()
			if err != nil {
				return err
			}
			d := s.layDay(render.DefaultStyle().Column())
			defer d.Close()

			n, err := render.Report(cmd.OutOrStdout(), d.Periods())
			if err != nil {
				return err
			}
			if n > 0 {
				return fmt.Errorf("%w: %d of %d periods", ErrConflicts, n, len(d.Periods()))
			}
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}
