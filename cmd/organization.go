package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/timesheet-management/internal/assignment"
	"github.com/frahmantamala/timesheet-management/internal/client"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	"github.com/frahmantamala/timesheet-management/internal/project"
)

var (
	assumeYes bool

	projectFlags struct {
		name, description, start, end, status string
		department                            int64
	}
	assignRole string
)

// confirmAndCommit shows what a proposal will do and commits it once the
// user agrees. Declining leaves the token to expire.
func confirmAndCommit(ctx context.Context, env *clientEnv, c *client.Confirmation) error {
	warnColor.Println(c.Action.Summary)
	if !assumeYes {
		fmt.Printf("Proceed? [y/N] ")
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			dimColor.Println("cancelled")
			return nil
		}
	}
	if err := env.api.Commit(ctx, c.Token); err != nil {
		return err
	}
	okColor.Println("Done")
	return nil
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Browse and manage projects",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the projects you can see",
	RunE: withClient(func(ctx context.Context, env *clientEnv, _ []string) error {
		if _, err := env.actor(); err != nil {
			return err
		}
		projects, err := client.NewProjectRepository(env.api).List(ctx, project.ListFilter{})
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tDEPARTMENT\tSTART\tEND\tSTATUS")
		for _, p := range projects {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\n", p.ID, p.Name, p.DepartmentID, p.StartDate, p.EndDate, p.Status)
		}
		return tw.Flush()
	}),
}

var projectCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a project in a department you manage",
	RunE: withClient(func(ctx context.Context, env *clientEnv, _ []string) error {
		if _, err := env.actor(); err != nil {
			return err
		}
		start, err := domain.ParseDate(projectFlags.start)
		if err != nil {
			return fmt.Errorf("--start: %w", err)
		}
		end, err := domain.ParseDate(projectFlags.end)
		if err != nil {
			return fmt.Errorf("--end: %w", err)
		}
		dto := project.CreateProjectDTO{
			Name:         projectFlags.name,
			Description:  projectFlags.description,
			StartDate:    start,
			EndDate:      end,
			DepartmentID: projectFlags.department,
			Status:       projectFlags.status,
		}
		if err := dto.Validate(); err != nil {
			return err
		}
		p, err := client.NewProjectRepository(env.api).Create(ctx, dto)
		if err != nil {
			return err
		}
		okColor.Printf("Created project %d %q\n", p.ID, p.Name)
		return nil
	}),
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a project and its assignments",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, env *clientEnv, args []string) error {
		id, err := parseID(args[0], "id")
		if err != nil {
			return err
		}
		if _, err := env.actor(); err != nil {
			return err
		}
		proposal, err := client.NewProjectRepository(env.api).ProposeDelete(ctx, id)
		if err != nil {
			return err
		}
		return confirmAndCommit(ctx, env, proposal)
	}),
}

var departmentCmd = &cobra.Command{
	Use:   "department",
	Short: "Browse and administer departments",
}

var departmentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List departments",
	RunE: withClient(func(ctx context.Context, env *clientEnv, _ []string) error {
		if _, err := env.actor(); err != nil {
			return err
		}
		departments, err := client.NewDepartmentRepository(env.api).List(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tMANAGER")
		for _, d := range departments {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", d.ID, d.Name, optional(d.ManagerID))
		}
		return tw.Flush()
	}),
}

var departmentSetManagerCmd = &cobra.Command{
	Use:   "set-manager <department-id> <user-id>",
	Short: "Make a user the manager of a department",
	Args:  cobra.ExactArgs(2),
	RunE: withClient(func(ctx context.Context, env *clientEnv, args []string) error {
		departmentID, err := parseID(args[0], "departmentId")
		if err != nil {
			return err
		}
		managerID, err := parseID(args[1], "managerId")
		if err != nil {
			return err
		}
		if _, err := env.actor(); err != nil {
			return err
		}
		proposal, err := client.NewDepartmentRepository(env.api).ProposeManagerChange(ctx, departmentID, managerID)
		if err != nil {
			return err
		}
		return confirmAndCommit(ctx, env, proposal)
	}),
}

var departmentDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an empty department",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, env *clientEnv, args []string) error {
		id, err := parseID(args[0], "id")
		if err != nil {
			return err
		}
		if _, err := env.actor(); err != nil {
			return err
		}
		proposal, err := client.NewDepartmentRepository(env.api).ProposeDelete(ctx, id)
		if err != nil {
			return err
		}
		return confirmAndCommit(ctx, env, proposal)
	}),
}

var assignmentCmd = &cobra.Command{
	Use:   "assignment",
	Short: "Manage who works on which project",
}

var assignmentListCmd = &cobra.Command{
	Use:   "list <project-id>",
	Short: "List the members of a project",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, env *clientEnv, args []string) error {
		projectID, err := parseID(args[0], "projectId")
		if err != nil {
			return err
		}
		if _, err := env.actor(); err != nil {
			return err
		}
		members, err := client.NewAssignmentRepository(env.api).ListForProject(ctx, projectID)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "USER\tROLE\tSINCE")
		for _, m := range members {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", m.UserID, m.RoleInProject, m.CreatedAt.Format("2006-01-02"))
		}
		return tw.Flush()
	}),
}

var assignmentAddCmd = &cobra.Command{
	Use:   "add <project-id> <user-id>...",
	Short: "Assign one or more users to a project",
	Args:  cobra.MinimumNArgs(2),
	RunE: withClient(func(ctx context.Context, env *clientEnv, args []string) error {
		projectID, err := parseID(args[0], "projectId")
		if err != nil {
			return err
		}
		if _, err := env.actor(); err != nil {
			return err
		}

		var batch assignment.BatchAssignDTO
		for _, raw := range args[1:] {
			userID, err := parseID(raw, "userId")
			if err != nil {
				return err
			}
			batch.Assignments = append(batch.Assignments, assignment.AssignDTO{UserID: userID, RoleInProject: assignRole})
		}
		if err := batch.Validate(); err != nil {
			return err
		}

		results, err := client.NewAssignmentRepository(env.api).AssignBatch(ctx, projectID, batch)
		if err != nil {
			return err
		}
		for _, r := range results {
			if r.OK() {
				okColor.Printf("user %d assigned as %s\n", r.UserID, r.Assignment.RoleInProject)
				continue
			}
			errColor.Printf("user %d: %s\n", r.UserID, r.Error.Message)
		}
		return nil
	}),
}

var assignmentRemoveCmd = &cobra.Command{
	Use:   "remove <project-id> <user-id>",
	Short: "Take a user off a project",
	Args:  cobra.ExactArgs(2),
	RunE: withClient(func(ctx context.Context, env *clientEnv, args []string) error {
		projectID, err := parseID(args[0], "projectId")
		if err != nil {
			return err
		}
		userID, err := parseID(args[1], "userId")
		if err != nil {
			return err
		}
		if _, err := env.actor(); err != nil {
			return err
		}
		if _, err := client.NewAssignmentRepository(env.api).Delete(ctx, projectID, userID); err != nil {
			return err
		}
		okColor.Printf("user %d removed from project %d\n", userID, projectID)
		return nil
	}),
}

func init() {
	for _, c := range []*cobra.Command{projectDeleteCmd, departmentSetManagerCmd, departmentDeleteCmd} {
		c.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")
	}

	f := projectCreateCmd.Flags()
	f.StringVar(&projectFlags.name, "name", "", "project name")
	f.StringVar(&projectFlags.description, "description", "", "project description")
	f.StringVar(&projectFlags.start, "start", "", "start date, YYYY-MM-DD")
	f.StringVar(&projectFlags.end, "end", "", "end date, YYYY-MM-DD")
	f.StringVar(&projectFlags.status, "status", "", "ACTIVE, ON_HOLD or COMPLETED")
	f.Int64Var(&projectFlags.department, "department", 0, "owning department id")
	for _, name := range []string{"name", "start", "end", "department"} {
		_ = projectCreateCmd.MarkFlagRequired(name)
	}

	assignmentAddCmd.Flags().StringVar(&assignRole, "role", string(domain.ProjectRoleDeveloper), "DEVELOPER, TESTER or LEAD")

	projectCmd.AddCommand(projectListCmd, projectCreateCmd, projectDeleteCmd)
	departmentCmd.AddCommand(departmentListCmd, departmentSetManagerCmd, departmentDeleteCmd)
	assignmentCmd.AddCommand(assignmentListCmd, assignmentAddCmd, assignmentRemoveCmd)
	rootCmd.AddCommand(projectCmd, departmentCmd, assignmentCmd)
}
