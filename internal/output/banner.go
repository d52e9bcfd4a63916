package output

import (
	"fmt"
	"io"

	figure "github.com/common-nighthawk/go-figure"
)

// BannerOptions configures the startup banner printed by `pathfinder-ls serve`.
type BannerOptions struct {
	ShowBanner  bool
	ShowVersion bool
}

// DefaultBannerOptions returns the default banner configuration.
func DefaultBannerOptions() BannerOptions {
	return BannerOptions{ShowBanner: true, ShowVersion: true}
}

// PrintBanner writes the server's startup banner to w.
func PrintBanner(w io.Writer, version string, opts BannerOptions) {
	if w == nil {
		return
	}
	if !opts.ShowBanner {
		if opts.ShowVersion {
			fmt.Fprintf(w, "pathfinder-ls v%s\n", version)
		}
		return
	}

	fig := figure.NewFigure("pathfinder-ls", "standard", true)
	fmt.Fprintln(w, fig.String())
	if opts.ShowVersion {
		fmt.Fprintf(w, "pathfinder-ls v%s\n", version)
	}
	fmt.Fprintln(w)
}

// ShouldShowBanner reports whether the full ASCII banner should print,
// matching the teacher's "never in non-TTY output, never with --no-banner"
// rule.
func ShouldShowBanner(isTTY bool, noBannerFlag bool) bool {
	if noBannerFlag {
		return false
	}
	return isTTY
}
