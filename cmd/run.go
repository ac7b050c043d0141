package cmd

import (
	"time"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Runs the collect and render stages back to back",
	Long: `Runs the full pipeline: collect commit activity into the snapshot,
then render the HTML dashboard and markdown summary from it. This is the
entrypoint the scheduled job invokes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := commandLogger(cmd)
		defer logger.Sync()

		dataDir, _ := cmd.Flags().GetString("data-dir")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		htmlPath, _ := cmd.Flags().GetString("html")
		markdownPath, _ := cmd.Flags().GetString("markdown")

		if err := collectOnce(cmd.Context(), logger, dataDir, timeout); err != nil {
			return err
		}
		return renderOnce(logger, dataDir, htmlPath, markdownPath)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("data-dir", defaultDataDir, "Directory for the snapshot and its history copies")
	runCmd.Flags().Duration("timeout", 30*time.Second, "Per-API-call timeout")
	runCmd.Flags().String("html", defaultHTMLPath, "Path of the rendered HTML dashboard")
	runCmd.Flags().String("markdown", defaultMarkdownPath, "Path of the rendered markdown summary")
}
