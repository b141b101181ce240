package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	appLog "dayplan/internal/log"
	"dayplan/internal/render"
)

func addSVG(topLevel *cobra.Command, oo *options) {
	var (
		out    string
		width  int
		height int
	)
	cmd := &cobra.Command{
		Use:   "svg",
		Short: "render the day as an SVG picture",
		Example: `
dayplan svg -o today.svg
dayplan svg --agenda agenda.yaml --height 960 > today.svg
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := oo.load()
			if err != nil {
				return err
			}
			style := render.DefaultStyle()
			style.Width = s.cfg.SVG.Width
			style.Height = s.cfg.SVG.Height
			style.Period = s.cfg.SVG.Period
			style.Conflict = s.cfg.SVG.Conflict
			style.Ruler = s.cfg.SVG.Ruler
			style.Text = s.cfg.SVG.Text
			style.Background = s.cfg.SVG.Background
			if width > 0 {
				style.Width = width
			}
			if height > 0 {
				style.Height = height
			}

			d := s.layDay(style.Column())
			defer d.Close()

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := render.SVG(w, d, style); err != nil {
				return err
			}
			appLog.Info("svg written", "path", out, "periods", len(d.Periods()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "file to write (default stdout)")
	cmd.Flags().IntVar(&width, "width", 0, "picture width in px")
	cmd.Flags().IntVar(&height, "height", 0, "day height in px")

	topLevel.AddCommand(cmd)
}
