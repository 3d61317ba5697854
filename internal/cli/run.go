package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/workhub/internal/ports/primary"
)

func runCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Inspect and control execution runs",
		Long: `Runs are opened by "task start". A run can be steered with instructions,
paused, resumed and cancelled. Every change is recorded in the run's event log.`,
	}
	cmd.AddCommand(runShowCmd(s))
	cmd.AddCommand(runListCmd(s))
	cmd.AddCommand(runSteerCmd(s))
	cmd.AddCommand(runPauseCmd(s))
	cmd.AddCommand(runResumeCmd(s))
	cmd.AddCommand(runCancelCmd(s))
	cmd.AddCommand(runEventsCmd(s))
	return cmd
}

func runShowCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "show [run-id]",
		Short: "Show run details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			_, err = c.RunAdapter().Show(cmd.Context(), args[0])
			return err
		},
	}
}

func runListCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "list [task-id]",
		Short: "List the runs of a task, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			return c.RunAdapter().List(cmd.Context(), args[0])
		},
	}
}

func runSteerCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "steer [run-id] [message]",
		Short: "Send an instruction to an active run",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := mapFlag(cmd, "meta")
			if err != nil {
				return err
			}
			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			return c.RunAdapter().Steer(cmd.Context(), primary.SteerRunRequest{
				RunID:    args[0],
				Message:  args[1],
				Metadata: meta,
			})
		},
	}
	addMapFlag(cmd, "meta", "Event metadata entry")
	return cmd
}

func runPauseCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "pause [run-id]",
		Short: "Pause a running run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			return c.RunAdapter().Pause(cmd.Context(), args[0])
		},
	}
}

func runResumeCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "resume [run-id]",
		Short: "Resume a paused or blocked run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			return c.RunAdapter().Resume(cmd.Context(), args[0])
		},
	}
}

func runCancelCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cancel [run-id]",
		Short: "Cancel a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reason, _ := cmd.Flags().GetString("reason")
			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			return c.RunAdapter().Cancel(cmd.Context(), args[0], reason)
		},
	}
	cmd.Flags().String("reason", "", "Why the run is cancelled")
	return cmd
}

func runEventsCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events [run-id]",
		Short: "Print a run's event log",
		Long: `Print a run's event log in sequence order.

Use --after to resume from the last sequence you have seen and --json to get
one JSON object per line.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			after, _ := cmd.Flags().GetInt64("after")
			asJSON, _ := cmd.Flags().GetBool("json")
			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			return c.RunAdapter().Events(cmd.Context(), primary.EventFilters{
				RunID:         args[0],
				AfterSequence: after,
			}, asJSON)
		},
	}
	cmd.Flags().Int64("after", 0, "Only events with a greater sequence")
	cmd.Flags().Bool("json", false, "Write events as JSON lines")
	return cmd
}
