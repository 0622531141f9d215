package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/timesheet-management/internal/client"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
	"github.com/frahmantamala/timesheet-management/internal/workspace"
)

type entryFlags struct {
	date        string
	project     int64
	activity    string
	hours       float64
	description string
}

var (
	addFlags  entryFlags
	editFlags entryFlags
	listDate  string
)

func (env *clientEnv) timesheets() (*workspace.Timesheets, *timesheet.Service, error) {
	actor, err := env.actor()
	if err != nil {
		return nil, nil, err
	}
	svc := timesheet.NewService(client.NewTimesheetRepository(env.api), client.NewUserRepository(env.api), env.logger).
		WithTargetChecks(client.NewProjectRepository(env.api), client.NewAssignmentRepository(env.api))
	return workspace.NewTimesheets(svc, env.guard, actor, env.logger), svc, nil
}

var timesheetCmd = &cobra.Command{
	Use:     "timesheet",
	Aliases: []string{"ts"},
	Short:   "Log and manage your own hours",
}

var timesheetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your entries, newest first",
	RunE: withClient(func(ctx context.Context, env *clientEnv, _ []string) error {
		ws, svc, err := env.timesheets()
		if err != nil {
			return err
		}
		defer ws.Close()

		if listDate != "" {
			day, err := domain.ParseDate(listDate)
			if err != nil {
				return fmt.Errorf("--date: %w", err)
			}
			actor, err := env.actor()
			if err != nil {
				return err
			}
			entries, err := svc.ListForDate(ctx, actor, day)
			if err != nil {
				return err
			}
			printEntries(entries)
			return nil
		}

		entries, err := ws.Entries(ctx)
		if err != nil {
			return err
		}
		printEntries(entries)
		return nil
	}),
}

var timesheetAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log hours against a project or an activity",
	RunE: withClient(func(ctx context.Context, env *clientEnv, _ []string) error {
		ws, _, err := env.timesheets()
		if err != nil {
			return err
		}
		defer ws.Close()

		date, err := domain.ParseDate(addFlags.date)
		if err != nil {
			return fmt.Errorf("--date: %w", err)
		}
		dto := timesheet.EntryDTO{
			WorkDate:     date,
			ActivityType: addFlags.activity,
			HoursWorked:  addFlags.hours,
			Description:  addFlags.description,
		}
		if addFlags.project > 0 {
			dto.ProjectID = &addFlags.project
		}

		entry, err := ws.Create(ctx, dto)
		if err != nil {
			return err
		}
		okColor.Printf("Logged entry %d (%s, %.2fh) awaiting approval\n", entry.ID, entry.WorkDate, entry.HoursWorked)
		return nil
	}),
}

var timesheetEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a pending entry",
	Args:  cobra.ExactArgs(1),
}

var timesheetDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a pending entry",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, env *clientEnv, args []string) error {
		id, err := parseID(args[0], "id")
		if err != nil {
			return err
		}
		ws, _, err := env.timesheets()
		if err != nil {
			return err
		}
		defer ws.Close()

		if err := ws.Delete(ctx, id); err != nil {
			return err
		}
		okColor.Printf("Deleted entry %d\n", id)
		return nil
	}),
}

var timesheetStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show your weekly and monthly totals",
	RunE: withClient(func(ctx context.Context, env *clientEnv, _ []string) error {
		actor, err := env.actor()
		if err != nil {
			return err
		}
		_, svc, err := env.timesheets()
		if err != nil {
			return err
		}
		stats, err := svc.StatsFor(ctx, actor)
		if err != nil {
			return err
		}
		fmt.Printf("this week:  %.2fh\n", stats.WeeklyHours)
		fmt.Printf("this month: %.2fh\n", stats.MonthlyHours)
		warnColor.Printf("pending:    %d\n", stats.PendingCount)
		okColor.Printf("approved:   %d\n", stats.ApprovedCount)
		errColor.Printf("rejected:   %d\n", stats.RejectedCount)
		return nil
	}),
}

var timesheetDepartmentCmd = &cobra.Command{
	Use:   "department <id>",
	Short: "List every entry of a department you manage",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, env *clientEnv, args []string) error {
		departmentID, err := parseID(args[0], "id")
		if err != nil {
			return err
		}
		actor, err := env.actor()
		if err != nil {
			return err
		}
		_, svc, err := env.timesheets()
		if err != nil {
			return err
		}
		entries, err := svc.ListForDepartment(ctx, actor, departmentID)
		if err != nil {
			return err
		}
		printEntries(entries)
		return nil
	}),
}

// editPatch builds a patch from the flags the user actually set.
func editPatch() (timesheet.PatchDTO, error) {
	var patch timesheet.PatchDTO
	flags := timesheetEditCmd.Flags()
	if flags.Changed("date") {
		date, err := domain.ParseDate(editFlags.date)
		if err != nil {
			return patch, fmt.Errorf("--date: %w", err)
		}
		patch.WorkDate = &date
	}
	if flags.Changed("project") {
		patch.ProjectID = &editFlags.project
	}
	if flags.Changed("activity") {
		patch.ActivityType = &editFlags.activity
	}
	if flags.Changed("hours") {
		patch.HoursWorked = &editFlags.hours
	}
	if flags.Changed("description") {
		patch.Description = &editFlags.description
	}
	return patch, nil
}

func printEntries(entries []domain.TimesheetEntry) {
	if len(entries) == 0 {
		dimColor.Println("no entries")
		return
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTARGET\tHOURS\tSTATUS\tREMARKS")
	for _, e := range entries {
		target := e.ActivityType
		if e.ProjectID != nil {
			target = "project " + optional(e.ProjectID)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%s\t%s\n",
			e.ID, e.WorkDate, target, e.HoursWorked,
			statusColor(e.ApprovalStatus).Sprint(e.ApprovalStatus), e.Remarks)
	}
	_ = tw.Flush()
}

func bindEntryFlags(cmd *cobra.Command, f *entryFlags) {
	cmd.Flags().StringVar(&f.date, "date", "", "work date, YYYY-MM-DD")
	cmd.Flags().Int64Var(&f.project, "project", 0, "project id")
	cmd.Flags().StringVar(&f.activity, "activity", "", "activity instead of a project: training or other")
	cmd.Flags().Float64Var(&f.hours, "hours", 0, "hours worked, at most 24")
	cmd.Flags().StringVar(&f.description, "description", "", "what you worked on")
}

func init() {
	timesheetListCmd.Flags().StringVar(&listDate, "date", "", "only this day, YYYY-MM-DD")
	bindEntryFlags(timesheetAddCmd, &addFlags)
	bindEntryFlags(timesheetEditCmd, &editFlags)
	// Assigned here rather than in the literal: editPatch reads
	// timesheetEditCmd.Flags(), which would form an initialization cycle.
	timesheetEditCmd.RunE = withClient(func(ctx context.Context, env *clientEnv, args []string) error {
		id, err := parseID(args[0], "id")
		if err != nil {
			return err
		}
		ws, _, err := env.timesheets()
		if err != nil {
			return err
		}
		defer ws.Close()

		patch, err := editPatch()
		if err != nil {
			return err
		}
		entry, err := ws.Update(ctx, id, patch)
		if err != nil {
			return err
		}
		okColor.Printf("Updated entry %d (%s, %.2fh)\n", entry.ID, entry.WorkDate, entry.HoursWorked)
		return nil
	})
	_ = timesheetAddCmd.MarkFlagRequired("date")
	_ = timesheetAddCmd.MarkFlagRequired("hours")

	timesheetCmd.AddCommand(timesheetListCmd, timesheetAddCmd, timesheetEditCmd, timesheetDeleteCmd,
		timesheetStatsCmd, timesheetDepartmentCmd)
	rootCmd.AddCommand(timesheetCmd)
}
