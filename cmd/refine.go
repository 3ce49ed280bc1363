package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bimmerbailey/refinery/internal/config"
	"github.com/bimmerbailey/refinery/internal/output"
	"github.com/bimmerbailey/refinery/internal/pipeline"
	"github.com/bimmerbailey/refinery/internal/watch"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// previewLimit caps the records printed per batch with --preview.
const previewLimit = 20

var refineCmd = &cobra.Command{
	Use:   "refine [flags] <wordlist>",
	Short: "Filter and annotate a wordlist",
	Long: `Stream a wordlist in batches, score every candidate by Shannon entropy,
apply the configured filters, and append the survivors to the output file.

Without --metadata the output is a plain list, one candidate per line. With
--metadata each candidate is annotated with its entropy, strength label and
character-class flags. Annotated output is a grid table when the first batch
holds at most 5000 candidates and CSV rows otherwise; --markdown forces a
markdown table instead.

Examples:
  refinery refine rockyou.txt
  refinery refine --compliant --min-entropy 3 -o wpa2.txt rockyou.txt
  refinery refine --metadata --preview --batch-size 5000 leaked.txt
  refinery refine --encoding latin1 --watch legacy.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runRefine,
}

func init() {
	d := config.DefaultRefineConfig()

	refineCmd.Flags().StringP("output", "o", d.Output, "output file path")
	refineCmd.Flags().Float64("min-entropy", 0, "minimum Shannon entropy required (0 disables)")
	refineCmd.Flags().Bool("compliant", false, "keep only WPA2-compliant candidates (8-63 printable chars)")
	refineCmd.Flags().Int("batch-size", d.BatchSize, "candidates to process per batch")
	refineCmd.Flags().Bool("metadata", false, "annotate candidates with entropy, strength and class flags")
	refineCmd.Flags().Bool("markdown", false, "render annotated output as markdown tables (requires --metadata)")
	refineCmd.Flags().String("encoding", d.Encoding, "source text encoding (utf-8, latin1, windows-1252, ...)")
	refineCmd.Flags().Bool("preview", false, "print up to 20 annotated records per batch with their source line")
	refineCmd.Flags().Bool("watch", false, "re-run whenever the wordlist changes")
	refineCmd.Flags().String("debounce", "500ms", "quiet period before a watched change triggers a re-run")

	_ = viper.BindPFlag("refine.output", refineCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("refine.min_entropy", refineCmd.Flags().Lookup("min-entropy"))
	_ = viper.BindPFlag("refine.compliant", refineCmd.Flags().Lookup("compliant"))
	_ = viper.BindPFlag("refine.batch_size", refineCmd.Flags().Lookup("batch-size"))
	_ = viper.BindPFlag("refine.metadata", refineCmd.Flags().Lookup("metadata"))
	_ = viper.BindPFlag("refine.markdown", refineCmd.Flags().Lookup("markdown"))
	_ = viper.BindPFlag("refine.encoding", refineCmd.Flags().Lookup("encoding"))

	rootCmd.AddCommand(refineCmd)
}

func runRefine(cmd *cobra.Command, args []string) error {
	source := args[0]
	preview, _ := cmd.Flags().GetBool("preview")
	watchMode, _ := cmd.Flags().GetBool("watch")
	debounceStr, _ := cmd.Flags().GetString("debounce")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var debounce time.Duration
	if watchMode {
		debounce, err = config.ParseDuration(debounceStr)
		if err != nil {
			return fmt.Errorf("invalid --debounce value: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	colors := output.NewPalette(colorMode(), out)
	logger := newLogger(cmd.ErrOrStderr())

	p, err := pipeline.New(cfg.Refine,
		pipeline.WithLogger(logger),
		pipeline.WithProgress(func(rep pipeline.BatchReport) {
			printBatch(out, colors, rep, preview)
		}),
	)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := refineOnce(out, colors, p, source, cfg.Refine.Output); err != nil {
		return err
	}
	if !watchMode {
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(out, "%s %s (Ctrl+C to stop)\n", colors.Info("Watching"), source)
	w := watch.New(watch.Options{
		Path:     source,
		Debounce: debounce,
		Logger:   logger,
		OnChange: func(ctx context.Context) error {
			fmt.Fprintln(out)
			if err := refineOnce(out, colors, p, source, cfg.Refine.Output); err != nil {
				// A failed re-run is reported; the next change gets a fresh run.
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", colors.Failure("Error:"), err)
			}
			return nil
		},
	})
	return w.Run(ctx)
}

// refineOnce performs one full run and prints its outcome.
func refineOnce(out io.Writer, colors *output.Palette, p *pipeline.Pipeline, source, dest string) error {
	fmt.Fprintf(out, "%s %s\n", colors.Success("Starting process on:"), source)

	summary, err := p.Run(source, dest)
	if err != nil {
		fmt.Fprintf(out, "%s %s\n", colors.Failure("Processing Failed:"), pipeline.Kind(err))
		return fmt.Errorf("refine %s: %w", source, err)
	}

	fmt.Fprintf(out, "%s Refined list saved to %s\n", colors.Success("Success!"), dest)
	fmt.Fprintf(out, "Total candidates retained: %d\n", summary.Retained)
	fmt.Fprintf(out, "Time elapsed: %.2f seconds\n", summary.Elapsed.Seconds())
	return nil
}

func printBatch(out io.Writer, colors *output.Palette, rep pipeline.BatchReport, preview bool) {
	fmt.Fprintf(out, "Processed batch %d. Retained %d/%d candidates.\n", rep.Index+1, rep.Retained, rep.Original)
	if !preview || len(rep.Records) == 0 {
		return
	}

	n := min(len(rep.Records), previewLimit)
	for _, r := range rep.Records[:n] {
		fmt.Fprintf(out, "  %6d  %-32s %6.2f  %s\n", r.Line, r.Text, r.Entropy, colors.Strength(r.Strength))
	}
	if len(rep.Records) > n {
		fmt.Fprintf(out, "  %s\n", colors.Info(fmt.Sprintf("... %d more", len(rep.Records)-n)))
	}
}
