package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/timesheet-management/internal/approval"
	"github.com/frahmantamala/timesheet-management/internal/client"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	"github.com/frahmantamala/timesheet-management/internal/workspace"
)

var approvalRemarks string

// remoteApprovals runs the approval rules locally and reads the pending
// queue the server already scoped to the manager's department.
type remoteApprovals struct {
	*approval.Service
	repo *client.ApprovalRepository
}

func (r remoteApprovals) PendingFor(ctx context.Context, _ domain.Actor) ([]domain.TimesheetEntry, error) {
	return r.repo.Pending(ctx)
}

func (env *clientEnv) approvals() (*workspace.Approvals, *client.ApprovalRepository, error) {
	actor, err := env.actor()
	if err != nil {
		return nil, nil, err
	}
	repo := client.NewApprovalRepository(env.api)
	svc := remoteApprovals{
		Service: approval.NewService(repo, client.NewUserRepository(env.api), nil, nil, env.logger),
		repo:    repo,
	}
	return workspace.NewApprovals(svc, env.guard, actor, env.logger), repo, nil
}

var approvalCmd = &cobra.Command{
	Use:   "approval",
	Short: "Review your team's pending hours",
}

var approvalPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List entries awaiting your decision",
	RunE: withClient(func(ctx context.Context, env *clientEnv, _ []string) error {
		ws, _, err := env.approvals()
		if err != nil {
			return err
		}
		entries, err := ws.Refresh(ctx)
		if err != nil {
			return err
		}
		printEntries(entries)
		return nil
	}),
}

func decideCmd(use, short string, approve bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withClient(func(ctx context.Context, env *clientEnv, args []string) error {
			id, err := parseID(args[0], "id")
			if err != nil {
				return err
			}
			ws, _, err := env.approvals()
			if err != nil {
				return err
			}

			var entry *domain.TimesheetEntry
			if approve {
				entry, err = ws.Approve(ctx, id, approvalRemarks)
			} else {
				entry, err = ws.Reject(ctx, id, approvalRemarks)
			}
			if err != nil {
				return err
			}
			statusColor(entry.ApprovalStatus).Printf("Entry %d %s\n", entry.ID, entry.ApprovalStatus)
			return nil
		}),
	}
}

var approvalStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show your team dashboard figures",
	RunE: withClient(func(ctx context.Context, env *clientEnv, _ []string) error {
		actor, err := env.actor()
		if err != nil {
			return err
		}
		_, repo, err := env.approvals()
		if err != nil {
			return err
		}
		stats, err := repo.ManagerStats(ctx, actor.ID)
		if err != nil {
			return err
		}
		fmt.Printf("team members:       %d\n", stats.TeamCount)
		fmt.Printf("projects:           %d\n", stats.ProjectsCount)
		okColor.Printf("approvals actioned: %d\n", stats.ApprovalsActioned)
		warnColor.Printf("pending approvals:  %d\n", stats.PendingApprovals)
		return nil
	}),
}

func init() {
	approveCmd := decideCmd("approve", "Approve a pending entry", true)
	rejectCmd := decideCmd("reject", "Reject a pending entry", false)
	for _, c := range []*cobra.Command{approveCmd, rejectCmd} {
		c.Flags().StringVarP(&approvalRemarks, "remarks", "m", "", "note for the employee")
	}

	approvalCmd.AddCommand(approvalPendingCmd, approveCmd, rejectCmd, approvalStatsCmd)
	rootCmd.AddCommand(approvalCmd)
}
