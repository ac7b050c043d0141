package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vstanchev/gh-metrics/internal/render"
	"github.com/vstanchev/gh-metrics/internal/snapshot"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Renders the metrics snapshot into HTML and markdown",
	Long: `Reads the snapshot file and deterministically produces the HTML
dashboard and the markdown summary table. No data is re-fetched and no time
window is recomputed; a malformed snapshot aborts without touching the
existing outputs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := commandLogger(cmd)
		defer logger.Sync()

		dataDir, _ := cmd.Flags().GetString("data-dir")
		htmlPath, _ := cmd.Flags().GetString("html")
		markdownPath, _ := cmd.Flags().GetString("markdown")
		return renderOnce(logger, dataDir, htmlPath, markdownPath)
	},
}

// renderOnce runs the whole renderer stage against the snapshot on disk.
func renderOnce(logger *zap.Logger, dataDir, htmlPath, markdownPath string) error {
	renderer := render.New(logger)
	snapshotPath := filepath.Join(dataDir, snapshot.FileName)
	if err := renderer.RenderSnapshotFile(snapshotPath, htmlPath, markdownPath); err != nil {
		return err
	}
	logger.Info("render stage finished",
		zap.String("html", htmlPath), zap.String("markdown", markdownPath))
	return nil
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().String("data-dir", defaultDataDir, "Directory holding the snapshot file")
	renderCmd.Flags().String("html", defaultHTMLPath, "Path of the rendered HTML dashboard")
	renderCmd.Flags().String("markdown", defaultMarkdownPath, "Path of the rendered markdown summary")
}
