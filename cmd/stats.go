package cmd

import (
	"fmt"

	"github.com/bimmerbailey/refinery/internal/analyzer"
	"github.com/bimmerbailey/refinery/internal/config"
	"github.com/bimmerbailey/refinery/internal/loader"
	"github.com/bimmerbailey/refinery/internal/output"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var statsCmd = &cobra.Command{
	Use:   "stats [flags] <wordlist>...",
	Short: "Show wordlist statistics",
	Long: `Display a statistical summary of one or more wordlists including the
strength distribution, entropy range, character-class counts, and how many
candidates pass the WPA2 compliance rules.

Wordlists are streamed in batches, so any size of input can be summarized.

Examples:
  refinery stats rockyou.txt
  refinery stats --format json "lists/*.txt"
  refinery stats --encoding latin1 legacy.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStats,
}

func init() {
	statsCmd.Flags().Int("batch-size", config.DefaultBatchSize, "candidates to read per batch")
	statsCmd.Flags().String("encoding", config.DefaultEncoding, "source text encoding")

	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	encoding, _ := cmd.Flags().GetString("encoding")

	if batchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", batchSize)
	}
	if _, err := loader.LookupEncoding(encoding); err != nil {
		return err
	}

	files, err := config.ExpandGlobs(args)
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr())
	acc := analyzer.NewAccumulator()
	for _, file := range files {
		logger.Debug("reading wordlist", "path", file)
		err := loader.Stream(file, batchSize, encoding, func(b loader.Batch) error {
			acc.Add(b)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
	}

	stats := acc.Stats()
	stats.Sources = files

	out := cmd.OutOrStdout()
	format := output.ParseFormat(viper.GetString("format"))
	return output.New(out, format, output.NewPalette(colorMode(), out)).WriteStats(stats)
}
