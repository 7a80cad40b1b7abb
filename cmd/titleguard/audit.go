package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ghuser/titleguard/pkg/config"
	"github.com/ghuser/titleguard/pkg/logger"
	"github.com/ghuser/titleguard/pkg/workflows"
	itemWorkflows "github.com/ghuser/titleguard/services/item/application/workflows"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Run a title audit for an organization",
	Long:  "Starts the title audit workflow on Temporal, waits for it to finish and prints every Component whose title would be rejected.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runAudit(cmd.Context(), cmd.OutOrStdout())
	},
	SilenceUsage: true,
}

var (
	auditOrgID   string
	auditTimeout time.Duration
)

func init() {
	auditCmd.Flags().StringVar(&auditOrgID, "org", "", "Organization ID to audit (required)")
	auditCmd.Flags().DurationVar(&auditTimeout, "timeout", 5*time.Minute, "How long to wait for the audit result")

	if err := auditCmd.MarkFlagRequired("org"); err != nil {
		panic(fmt.Sprintf("failed to mark org flag as required: %v", err))
	}

	rootCmd.AddCommand(auditCmd)
}

func runAudit(ctx context.Context, w io.Writer) error {
	orgID, err := uuid.Parse(auditOrgID)
	if err != nil {
		return fmt.Errorf("invalid --org: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.New(cfg)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, auditTimeout)
	defer cancel()

	tc, err := workflows.NewTemporalClient(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer tc.Close()

	run, err := itemWorkflows.StartTitleAudit(ctx, tc.Client, cfg.TitleAuditTaskQueue, orgID)
	if err != nil {
		return err
	}
	log.Info("title audit started", "workflow_id", run.GetID(), "run_id", run.GetRunID())

	var result itemWorkflows.TitleAuditResult
	if err := run.Get(ctx, &result); err != nil {
		return fmt.Errorf("title audit failed: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
