package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/workhub/internal/ports/primary"
)

func planCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage plans",
		Long:  "Create, list, show and update plans. A plan's status is derived from every task beneath it.",
	}
	cmd.AddCommand(planCreateCmd(s))
	cmd.AddCommand(planListCmd(s))
	cmd.AddCommand(planShowCmd(s))
	cmd.AddCommand(planUpdateCmd(s))
	return cmd
}

func planCreateCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [title]",
		Short: "Create a new plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			_, err = c.PlanAdapter().Create(cmd.Context(), primary.CreatePlanRequest{
				Title:       args[0],
				Description: description,
				OwnerID:     owner,
				Metadata:    meta,
			})
			return err
		},
	}
	cmd.Flags().StringP("description", "d", "", "Plan description")
	cmd.Flags().String("owner", "", "Owner user ID (default: you)")
	addMapFlag(cmd, "meta", "Metadata entry")
	return cmd
}

func planListCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List plans in the workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, _ := cmd.Flags().GetString("owner")
			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			return c.PlanAdapter().List(cmd.Context(), primary.PlanFilters{OwnerID: owner})
		},
	}
	cmd.Flags().String("owner", "", "Only plans owned by this user")
	return cmd
}

func planShowCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "show [plan-id]",
		Short: "Show plan details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			_, err = c.PlanAdapter().Show(cmd.Context(), args[0])
			return err
		},
	}
}

func planUpdateCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update [plan-id]",
		Short: "Update a plan's title, description, owner or metadata",
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
			return c.PlanAdapter().Update(cmd.Context(), primary.PatchPlanRequest{
				PlanID:      args[0],
				Title:       stringFlag(cmd, "title"),
				Description: stringFlag(cmd, "description"),
				OwnerID:     stringFlag(cmd, "owner"),
				Metadata:    meta,
			})
		},
	}
	cmd.Flags().String("title", "", "New title")
	cmd.Flags().StringP("description", "d", "", "New description")
	cmd.Flags().String("owner", "", "New owner user ID")
	addMapFlag(cmd, "meta", "Replace metadata with these entries")
	return cmd
}
