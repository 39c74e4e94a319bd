// Command labelscan runs label OCR and allergen analysis from the terminal.
package main

import (
	"fmt"
	"os"
	"time"

	"allergyguard/internal/config"
	"allergyguard/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose   bool
	timeout   time.Duration
	tesseract string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "labelscan",
	Short: "Read ingredient labels and check them for family allergens",
	Long: `labelscan runs the same OCR and AI analysis as the API without a database.

Available subcommands:
  extract - OCR a label photo and print the cleaned ingredient list
  analyze - analyze ingredient text or a label photo against allergies`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")
	rootCmd.PersistentFlags().StringVar(&tesseract, "tesseract", "", "tesseract binary (default: OCR_BINARY or tesseract)")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(analyzeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads AI settings and a logger that writes only when verbose.
func setup() (*config.AI, *zap.Logger, error) {
	cfg, err := config.LoadAI()
	if err != nil {
		return nil, nil, err
	}
	if tesseract != "" {
		cfg.OCRBinary = tesseract
	}

	if !verbose {
		return cfg, zap.NewNop(), nil
	}
	log, err := logger.New(false)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
