package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/workhub/internal/ports/primary"
)

func agentCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "agent",
		Aliases: []string{"workflow"},
		Short:   "Manage agent and workflow definitions",
		Long: `Agent and workflow definitions are versioned YAML documents.
A definition can be forked; a fork remembers its parent until it is detached.`,
	}
	cmd.AddCommand(agentListCmd(s))
	cmd.AddCommand(agentShowCmd(s))
	cmd.AddCommand(agentPutCmd(s))
	cmd.AddCommand(agentForkCmd(s))
	cmd.AddCommand(agentDetachCmd(s))
	return cmd
}

func agentListCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, _ := cmd.Flags().GetString("kind")
			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			return c.AgentConfigAdapter().List(cmd.Context(), kind)
		},
	}
	cmd.Flags().String("kind", "", "Only this kind (agent or workflow)")
	return cmd
}

func agentShowCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show a definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			_, err = c.AgentConfigAdapter().Show(cmd.Context(), args[0])
			return err
		},
	}
}

func agentPutCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put [name]",
		Short: "Create a definition, or save a new version of an existing one",
		Long: `Create a definition from a YAML file, or save a new version when --id is given.

Examples:
  workhub agent put reviewer --kind agent --file reviewer.yaml
  workhub agent put reviewer --id <config-id> --kind agent --file reviewer.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := cmd.Flags().GetString("id")
			kind, _ := cmd.Flags().GetString("kind")
			file, _ := cmd.Flags().GetString("file")

			content := map[string]any{}
			if file != "" {
				var err error
				if content, err = readYAMLMap(file); err != nil {
					return err
				}
			}

			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			_, err = c.AgentConfigAdapter().Put(cmd.Context(), primary.PutAgentConfigRequest{
				ID:      id,
				Kind:    kind,
				Name:    args[0],
				Content: content,
			})
			return err
		},
	}
	cmd.Flags().String("id", "", "Existing definition to update")
	cmd.Flags().String("kind", "agent", "agent or workflow")
	cmd.Flags().StringP("file", "f", "", "YAML file holding the definition body")
	return cmd
}

func agentForkCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fork [source-id]",
		Short: "Fork a definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			_, err = c.AgentConfigAdapter().Fork(cmd.Context(), primary.ForkAgentConfigRequest{
				SourceID: args[0],
				Name:     name,
			})
			return err
		},
	}
	cmd.Flags().String("name", "", "Name of the fork (default: \"<source> (fork)\")")
	return cmd
}

func agentDetachCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "detach [id]",
		Short: "Stop a fork from tracking its parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			return c.AgentConfigAdapter().Detach(cmd.Context(), args[0])
		},
	}
}
