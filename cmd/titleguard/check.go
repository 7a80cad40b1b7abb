package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ghuser/titleguard/services/item/domain/models"
	domainsvcs "github.com/ghuser/titleguard/services/item/domain/services"
)

var errTitleInvalid = errors.New("title contains invalid characters")

var checkCmd = &cobra.Command{
	Use:   "check TITLE",
	Short: "Check a Component title against the whitelist",
	Long:  "Prints the diagnostic as JSON and exits non-zero when the title would be rejected on save.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(cmd.OutOrStdout(), args[0])
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

type checkOutput struct {
	Title   string                    `json:"title"`
	Valid   bool                      `json:"valid"`
	Message *models.ValidationMessage `json:"message,omitempty"`
}

func runCheck(w io.Writer, title string) error {
	out := checkOutput{Title: title, Valid: !domainsvcs.HasInvalidCharacters(title)}
	if !out.Valid {
		msg := domainsvcs.ComposeDiagnostic(title)
		out.Message = &msg
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	if !out.Valid {
		return errTitleInvalid
	}
	return nil
}
