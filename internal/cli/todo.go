package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/workhub/internal/ports/primary"
)

func todoCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todo",
		Short: "Manage todos",
		Long: `Todos group tasks. A todo may belong to a plan, may nest under another
todo, and can be closed and reopened by its owner.`,
	}
	cmd.AddCommand(todoCreateCmd(s))
	cmd.AddCommand(todoListCmd(s))
	cmd.AddCommand(todoShowCmd(s))
	cmd.AddCommand(todoUpdateCmd(s))
	cmd.AddCommand(todoCloseCmd(s, true))
	cmd.AddCommand(todoCloseCmd(s, false))
	cmd.AddCommand(todoAssignCmd(s))
	return cmd
}

func todoCreateCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [title]",
		Short: "Create a new todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, _ := cmd.Flags().GetString("plan")
			parent, _ := cmd.Flags().GetString("parent")
			description, _ := cmd.Flags().GetString("description")
			owner, _ := cmd.Flags().GetString("owner")
			meta, err := mapFlag(cmd, "meta")
			if err != nil {
				return err
			}

			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			_, err = c.TodoAdapter().Create(cmd.Context(), primary.CreateTodoRequest{
				PlanID:       plan,
				ParentTodoID: parent,
				Title:        args[0],
				Description:  description,
				OwnerID:      owner,
				Position:     intFlag(cmd, "position"),
				Metadata:     meta,
			})
			return err
		},
	}
	cmd.Flags().String("plan", "", "Plan ID")
	cmd.Flags().String("parent", "", "Parent todo ID")
	cmd.Flags().StringP("description", "d", "", "Todo description")
	cmd.Flags().String("owner", "", "Owner user ID (default: you)")
	cmd.Flags().Int("position", 0, "Position among siblings (default: last)")
	addMapFlag(cmd, "meta", "Metadata entry")
	return cmd
}

func todoListCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List todos",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, _ := cmd.Flags().GetString("plan")
			parent, _ := cmd.Flags().GetString("parent")
			roots, _ := cmd.Flags().GetBool("roots")
			owner, _ := cmd.Flags().GetString("owner")

			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			return c.TodoAdapter().List(cmd.Context(), primary.TodoFilters{
				PlanID:       plan,
				ParentTodoID: parent,
				RootsOnly:    roots,
				OwnerID:      owner,
			})
		},
	}
	cmd.Flags().String("plan", "", "Only todos in this plan")
	cmd.Flags().String("parent", "", "Only children of this todo")
	cmd.Flags().Bool("roots", false, "Only top-level todos")
	cmd.Flags().String("owner", "", "Only todos owned by this user")
	return cmd
}

func todoShowCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "show [todo-id]",
		Short: "Show todo details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			_, err = c.TodoAdapter().Show(cmd.Context(), args[0])
			return err
		},
	}
}

func todoUpdateCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update [todo-id]",
		Short: "Update a todo's title, description, position or metadata",
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
			return c.TodoAdapter().Update(cmd.Context(), primary.PatchTodoRequest{
				TodoID:      args[0],
				Title:       stringFlag(cmd, "title"),
				Description: stringFlag(cmd, "description"),
				Position:    intFlag(cmd, "position"),
				Metadata:    meta,
			})
		},
	}
	cmd.Flags().String("title", "", "New title")
	cmd.Flags().StringP("description", "d", "", "New description")
	cmd.Flags().Int("position", 0, "New position")
	addMapFlag(cmd, "meta", "Replace metadata with these entries")
	return cmd
}

// todoCloseCmd builds "close" when closed is true and "reopen" otherwise.
func todoCloseCmd(s *session, closed bool) *cobra.Command {
	use, short := "close [todo-id]", "Close a todo"
	if !closed {
		use, short = "reopen [todo-id]", "Reopen a closed todo"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			return c.TodoAdapter().Update(cmd.Context(), primary.PatchTodoRequest{
				TodoID: args[0],
				Closed: &closed,
			})
		},
	}
}

func todoAssignCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "assign [todo-id] [owner-id]",
		Short: "Transfer ownership of a todo",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			return c.TodoAdapter().Assign(cmd.Context(), args[0], args[1])
		},
	}
}
