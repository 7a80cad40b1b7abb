// Package workflows hosts the item context's Temporal workflows.
package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/ghuser/titleguard/services/item/domain/models"
	"github.com/ghuser/titleguard/services/item/domain/repositories"
	domainsvcs "github.com/ghuser/titleguard/services/item/domain/services"
)

// TitleAuditWorkflowName is the registered workflow type name.
const TitleAuditWorkflowName = "TitleAuditWorkflow"

// TitleAuditInput selects the org to audit.
type TitleAuditInput struct {
	OrgID uuid.UUID `json:"org_id"`
}

// InvalidTitle is one stored Component whose title fails the whitelist.
type InvalidTitle struct {
	ItemID  uuid.UUID                `json:"item_id"`
	Title   string                   `json:"title"`
	Message models.ValidationMessage `json:"message"`
}

// TitleAuditResult lists every offending Component in the org.
type TitleAuditResult struct {
	OrgID   uuid.UUID      `json:"org_id"`
	Checked int            `json:"checked"`
	Invalid []InvalidTitle `json:"invalid"`
}

// AuditActivities reads stored items for the audit.
type AuditActivities struct {
	repo repositories.ItemReader
}

// NewAuditActivities returns the activity set backed by repo.
func NewAuditActivities(repo repositories.ItemReader) *AuditActivities {
	return &AuditActivities{repo: repo}
}

// ListInvalidTitles loads every Component in the org and returns those whose
// title would be rejected, each with the diagnostic a save would produce.
func (a *AuditActivities) ListInvalidTitles(ctx context.Context, in TitleAuditInput) (*TitleAuditResult, error) {
	items, err := a.repo.FindByType(ctx, in.OrgID, models.ItemTypeComponent)
	if err != nil {
		return nil, fmt.Errorf("find components: %w", err)
	}

	res := &TitleAuditResult{OrgID: in.OrgID, Checked: len(items), Invalid: []InvalidTitle{}}
	for _, item := range items {
		title, ok := domainsvcs.ExtractTitle(item)
		if !ok || !domainsvcs.HasInvalidCharacters(title) {
			continue
		}
		res.Invalid = append(res.Invalid, InvalidTitle{
			ItemID:  item.ID,
			Title:   title,
			Message: domainsvcs.ComposeDiagnostic(title),
		})
	}
	return res, nil
}

// TitleAuditWorkflow runs ListInvalidTitles for one org with retries.
func TitleAuditWorkflow(ctx workflow.Context, in TitleAuditInput) (*TitleAuditResult, error) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2,
			MaximumAttempts:    3,
		},
	})

	var a *AuditActivities
	var res TitleAuditResult
	if err := workflow.ExecuteActivity(ctx, a.ListInvalidTitles, in).Get(ctx, &res); err != nil {
		return nil, err
	}

	workflow.GetLogger(ctx).Info("title audit finished",
		"org_id", in.OrgID.String(),
		"checked", res.Checked,
		"invalid", len(res.Invalid),
	)
	return &res, nil
}

// Register adds the audit workflow and activities to a worker.
func Register(repo repositories.ItemReader) func(worker.Registry) {
	return func(w worker.Registry) {
		w.RegisterWorkflowWithOptions(TitleAuditWorkflow, workflow.RegisterOptions{Name: TitleAuditWorkflowName})
		w.RegisterActivity(NewAuditActivities(repo))
	}
}

// StartTitleAudit starts an audit for orgID on taskQueue. Re-running for the
// same org starts a new run under the same workflow ID.
func StartTitleAudit(ctx context.Context, c client.Client, taskQueue string, orgID uuid.UUID) (client.WorkflowRun, error) {
	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:                       "title-audit-" + orgID.String(),
		TaskQueue:                taskQueue,
		WorkflowIDReusePolicy:    enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
		WorkflowExecutionTimeout: 10 * time.Minute,
	}, TitleAuditWorkflowName, TitleAuditInput{OrgID: orgID})
	if err != nil {
		return nil, fmt.Errorf("start title audit: %w", err)
	}
	return run, nil
}
