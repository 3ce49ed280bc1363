package cmd

import (
	"github.com/bimmerbailey/refinery/internal/analyzer"
	"github.com/bimmerbailey/refinery/internal/output"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var scoreCmd = &cobra.Command{
	Use:   "score [flags] <candidate>...",
	Short: "Score individual password candidates",
	Long: `Report entropy, strength, character classes and rule results for each
candidate given on the command line.

Examples:
  refinery score password
  refinery score --format table 'Tr0ub4dor&3' correcthorsebatterystaple
  refinery score --format json 123456`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	scores := make([]analyzer.Score, 0, len(args))
	for _, arg := range args {
		scores = append(scores, analyzer.ScoreCandidate(arg))
	}

	out := cmd.OutOrStdout()
	format := output.ParseFormat(viper.GetString("format"))
	return output.New(out, format, output.NewPalette(colorMode(), out)).WriteScores(scores)
}
