package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bimmerbailey/refinery/internal/config"
	"github.com/bimmerbailey/refinery/internal/output"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "refinery",
	Short: "A streaming password wordlist refiner",
	Long: `Refinery is a CLI tool for scoring, filtering, and annotating password
wordlists of any size.

Wordlists are streamed in fixed-size batches, so memory use stays flat no
matter how large the input is. Candidates can be filtered by Shannon entropy
and WPA2 passphrase compliance, and annotated with strength labels and
character-class flags.

Examples:
  refinery refine rockyou.txt
  refinery refine --min-entropy 3.0 --compliant -o wpa2.txt rockyou.txt
  refinery refine --metadata --markdown -o report.md leaked.txt
  refinery stats "lists/*.txt"
  refinery score 'Tr0ub4dor&3' correcthorsebatterystaple`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute is called by main.main(). It runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		colors := output.NewPalette(colorMode(), os.Stderr)
		fmt.Fprintf(os.Stderr, "%s %v\n", colors.Failure("Error:"), err)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.refinery.yaml)")
	rootCmd.PersistentFlags().StringP("format", "f", "text", "output format (text, json, table, yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	_ = viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("no_color", rootCmd.PersistentFlags().Lookup("no-color"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error finding home directory:", err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".refinery")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("REFINERY")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

// setDefaults registers a default for every config key.
func setDefaults() {
	d := config.DefaultRefineConfig()

	viper.SetDefault("format", "text")
	viper.SetDefault("verbose", false)
	viper.SetDefault("no_color", false)
	viper.SetDefault("refine.output", d.Output)
	viper.SetDefault("refine.min_entropy", d.MinEntropy)
	viper.SetDefault("refine.compliant", d.Compliant)
	viper.SetDefault("refine.batch_size", d.BatchSize)
	viper.SetDefault("refine.metadata", d.Metadata)
	viper.SetDefault("refine.markdown", d.Markdown)
	viper.SetDefault("refine.encoding", d.Encoding)
}

// loadConfig returns the typed view of the current viper state.
func loadConfig() (*config.Config, error) {
	setDefaults()
	cfg := &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the stderr logger: errors only, or debug with --verbose.
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelError
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func colorMode() output.ColorMode {
	if viper.GetBool("no_color") {
		return output.ColorNever
	}
	return output.ColorAuto
}
