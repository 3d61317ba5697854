package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/workhub/internal/apperr"
	"github.com/example/workhub/internal/config"
	"github.com/example/workhub/internal/db"
)

func initCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize workhub for a project directory",
		Long: `Write .workhub/config.yaml with the actor identity and database path,
then create (or migrate) the database.

Example:
  workhub init --user alice --workspace acme --seed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			seed, _ := cmd.Flags().GetBool("seed")
			out := cmd.OutOrStdout()

			if s.cfg.Actor.UserID == "" || s.cfg.Actor.WorkspaceID == "" {
				return apperr.Validation("--user and --workspace are required")
			}

			path := config.Path(s.dir)
			if _, err := os.Stat(path); err == nil && !force {
				fmt.Fprintf(out, "Config already exists at %s (use --force to overwrite)\n", path)
			} else {
				if err := config.Save(s.dir, s.cfg); err != nil {
					return err
				}
				fmt.Fprintf(out, "✓ Config written to %s\n", path)
			}

			fmt.Fprintf(out, "Initializing database at %s\n", s.cfg.DB.Path)
			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "✓ Database initialized successfully")

			if seed {
				if err := db.SeedFixtures(cmd.Context(), c.DB, s.cfg.Actor.WorkspaceID, s.cfg.Actor.UserID); err != nil {
					return fmt.Errorf("failed to seed database: %w", err)
				}
				fmt.Fprintf(out, "✓ Seeded demo plan into workspace %s\n", s.cfg.Actor.WorkspaceID)
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, "Next steps:")
			fmt.Fprintln(out, "  workhub plan create \"My first plan\"")
			fmt.Fprintln(out, "  workhub plan list")
			return nil
		},
	}
	cmd.Flags().Bool("force", false, "Overwrite an existing config file")
	cmd.Flags().Bool("seed", false, "Populate the workspace with a demo plan")
	return cmd
}
