package cli

import (
	"github.com/Toma-bot/twitchtoYt/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	logger  *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "twitchtoyt",
	Short: "Split game VODs into per-match clips using the on-screen clock",
	Long: `twitchtoyt scans a recorded stream, OCRs the in-game clock in a
fixed corner of the frame, and infers the start/end boundaries of each
match from the decoded readings.

The detect command prints the inferred segments; split additionally
cuts them into one file per match.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output path")
}
