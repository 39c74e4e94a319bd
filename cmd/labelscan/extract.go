package main

import (
	"context"
	"errors"
	"fmt"

	"allergyguard/internal/ocr"

	"github.com/spf13/cobra"
)

var extractRaw bool

var extractCmd = &cobra.Command{
	Use:   "extract <image>",
	Short: "OCR a label photo and print the cleaned ingredient list",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().BoolVar(&extractRaw, "raw", false, "Print the raw OCR output instead")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	raw, cleaned, err := readLabel(ctx, ocr.NewTesseract(cfg.OCRBinary), args[0])
	if err != nil {
		return err
	}

	if extractRaw {
		fmt.Fprint(cmd.OutOrStdout(), raw)
		return nil
	}
	if cleaned == "" {
		return errors.New("no ingredient text found")
	}
	fmt.Fprintln(cmd.OutOrStdout(), cleaned)
	return nil
}

func readLabel(ctx context.Context, extractor ocr.Extractor, path string) (raw, cleaned string, err error) {
	if _, err := ocr.ValidateImageName(path); err != nil {
		return "", "", fmt.Errorf("%s: %w", path, err)
	}

	raw, err = extractor.Extract(ctx, path)
	if err != nil {
		return "", "", err
	}
	return raw, ocr.CleanIngredientText(raw), nil
}
