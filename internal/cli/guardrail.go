package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/workhub/internal/ports/primary"
)

func guardrailCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guardrail",
		Short: "Manage guardrails on tasks, todos and plans",
		Long: `Guardrails gate "task start" and "task complete".

Categories:
  scope, safety      a violation blocks the action
  quality, approval  a violation needs approval unless approval is granted

Set --config violated=true to simulate a standing violation.`,
	}
	cmd.AddCommand(guardrailAddCmd(s))
	cmd.AddCommand(guardrailListCmd(s))
	cmd.AddCommand(guardrailToggleCmd(s, true))
	cmd.AddCommand(guardrailToggleCmd(s, false))
	return cmd
}

func guardrailAddCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [entity-type] [entity-id] [name]",
		Short: "Attach a guardrail to a task, todo or plan",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, _ := cmd.Flags().GetString("category")
			cfg, err := mapFlag(cmd, "config")
			if err != nil {
				return err
			}
			var active *bool
			if cmd.Flags().Changed("inactive") {
				inactive, _ := cmd.Flags().GetBool("inactive")
				v := !inactive
				active = &v
			}

			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			_, err = c.GuardrailAdapter().Create(cmd.Context(), primary.CreateGuardrailRequest{
				EntityType: args[0],
				EntityID:   args[1],
				Name:       args[2],
				Category:   category,
				Active:     active,
				Config:     cfg,
			})
			return err
		},
	}
	cmd.Flags().StringP("category", "c", "", "scope, quality, safety or approval (required)")
	cmd.Flags().Bool("inactive", false, "Create the guardrail disabled")
	addMapFlag(cmd, "config", "Guardrail config entry")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func guardrailListCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "list [entity-type] [entity-id]",
		Short: "List the guardrails attached to an entity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			return c.GuardrailAdapter().List(cmd.Context(), args[0], args[1])
		},
	}
}

// guardrailToggleCmd builds "enable" when active is true and "disable" otherwise.
func guardrailToggleCmd(s *session, active bool) *cobra.Command {
	use, short := "enable [guardrail-id]", "Enable a guardrail"
	if !active {
		use, short = "disable [guardrail-id]", "Disable a guardrail"
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
			return c.GuardrailAdapter().SetActive(cmd.Context(), args[0], active)
		},
	}
}
