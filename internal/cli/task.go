package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/workhub/internal/ports/primary"
)

func taskCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
		Long: `Tasks are the unit of work inside a todo.

Status lifecycle:
  todo -> in_progress -> done
  todo|in_progress -> blocked|deferred -> ...
  any non-terminal -> cancelled

"task start" and "task complete" open or finish an execution run and are
gated by the guardrails scoped to the task.`,
	}
	cmd.AddCommand(taskCreateCmd(s))
	cmd.AddCommand(taskListCmd(s))
	cmd.AddCommand(taskShowCmd(s))
	cmd.AddCommand(taskUpdateCmd(s))
	cmd.AddCommand(taskAssignCmd(s))
	cmd.AddCommand(taskExecuteCmd(s, true))
	cmd.AddCommand(taskExecuteCmd(s, false))
	return cmd
}

func taskCreateCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [title]",
		Short: "Create a new task in a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			todo, _ := cmd.Flags().GetString("todo")
			description, _ := cmd.Flags().GetString("description")
			assignee, _ := cmd.Flags().GetString("assignee")
			meta, err := mapFlag(cmd, "meta")
			if err != nil {
				return err
			}

			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			_, err = c.TaskAdapter().Create(cmd.Context(), primary.CreateTaskRequest{
				TodoID:      todo,
				Title:       args[0],
				Description: description,
				AssigneeID:  assignee,
				Position:    intFlag(cmd, "position"),
				Metadata:    meta,
			})
			return err
		},
	}
	cmd.Flags().String("todo", "", "Todo ID (required)")
	cmd.Flags().StringP("description", "d", "", "Task description")
	cmd.Flags().String("assignee", "", "Assignee user ID")
	cmd.Flags().Int("position", 0, "Position within the todo (default: last)")
	addMapFlag(cmd, "meta", "Metadata entry")
	_ = cmd.MarkFlagRequired("todo")
	return cmd
}

func taskListCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			todo, _ := cmd.Flags().GetString("todo")
			status, _ := cmd.Flags().GetString("status")
			assignee, _ := cmd.Flags().GetString("assignee")

			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			return c.TaskAdapter().List(cmd.Context(), primary.TaskFilters{
				TodoID:     todo,
				Status:     status,
				AssigneeID: assignee,
			})
		},
	}
	cmd.Flags().String("todo", "", "Only tasks in this todo")
	cmd.Flags().StringP("status", "s", "", "Filter by status")
	cmd.Flags().String("assignee", "", "Only tasks assigned to this user")
	return cmd
}

func taskShowCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "show [task-id]",
		Short: "Show task details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			_, err = c.TaskAdapter().Show(cmd.Context(), args[0])
			return err
		},
	}
}

func taskUpdateCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update [task-id]",
		Short: "Update a task's fields or move it to another status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := mapFlag(cmd, "meta")
			if err != nil {
				return err
			}
			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			return c.TaskAdapter().Update(cmd.Context(), primary.PatchTaskRequest{
				TaskID:      args[0],
				Title:       stringFlag(cmd, "title"),
				Description: stringFlag(cmd, "description"),
				Position:    intFlag(cmd, "position"),
				Status:      stringFlag(cmd, "status"),
				Metadata:    meta,
			})
		},
	}
	cmd.Flags().String("title", "", "New title")
	cmd.Flags().StringP("description", "d", "", "New description")
	cmd.Flags().Int("position", 0, "New position")
	cmd.Flags().StringP("status", "s", "", "New status")
	addMapFlag(cmd, "meta", "Replace metadata with these entries")
	return cmd
}

func taskAssignCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "assign [task-id] [assignee-id]",
		Short: "Assign a task, or clear the assignee when no user is given",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			assignee := ""
			if len(args) == 2 {
				assignee = args[1]
			}
			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			return c.TaskAdapter().Assign(cmd.Context(), args[0], assignee)
		},
	}
}

// taskExecuteCmd builds "start" when start is true and "complete" otherwise.
func taskExecuteCmd(s *session, start bool) *cobra.Command {
	use, short := "start [task-id]", "Start a task, opening a guardrail-gated run"
	if !start {
		use, short = "complete [task-id]", "Complete a task, finishing its latest run"
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, _ := cmd.Flags().GetString("mode")
			violated, _ := cmd.Flags().GetStringSlice("violated")
			approved, _ := cmd.Flags().GetStringSlice("approve")
			meta, err := mapFlag(cmd, "meta")
			if err != nil {
				return err
			}

			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			req := primary.ExecuteTaskRequest{
				TaskID:               args[0],
				Mode:                 mode,
				Metadata:             meta,
				ViolatedGuardrailIDs: violated,
				ApprovedGuardrailIDs: approved,
			}
			if start {
				_, err = c.RunAdapter().Start(cmd.Context(), req)
			} else {
				_, err = c.RunAdapter().Complete(cmd.Context(), req)
			}
			return err
		},
	}
	cmd.Flags().String("mode", "", "Execution mode (manual, sub_agentic, full_auto)")
	cmd.Flags().StringSlice("violated", nil, "Guardrail IDs reported as violated")
	cmd.Flags().StringSlice("approve", nil, "Guardrail IDs whose approval is granted")
	addMapFlag(cmd, "meta", "Run metadata entry")
	return cmd
}
