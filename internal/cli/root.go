// Package cli contains the cobra command tree for workhub.
// Commands resolve configuration lazily and share one wire.Container per invocation.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/example/workhub/internal/apperr"
	"github.com/example/workhub/internal/config"
	"github.com/example/workhub/internal/version"
	"github.com/example/workhub/internal/wire"
)

// persistent flag name -> config key
var flagKeys = map[string]string{
	"db":        config.KeyDBPath,
	"user":      config.KeyActorUserID,
	"role":      config.KeyActorRole,
	"workspace": config.KeyActorWorkspaceID,
	"log-level": config.KeyLogLevel,
}

// session carries the resolved configuration and the lazily built container.
type session struct {
	opts      wire.Options
	dir       string
	v         *viper.Viper
	cfg       *config.Config
	container *wire.Container
}

func (s *session) configure(cmd *cobra.Command) error {
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}
	s.dir = dir

	v, err := config.New(dir)
	if err != nil {
		return err
	}
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("failed to bind --%s: %w", name, err)
			}
		}
	}
	s.v = v

	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}
	s.cfg = cfg
	return nil
}

// open builds the container on first use.
func (s *session) open(ctx context.Context) (*wire.Container, error) {
	if s.container != nil {
		return s.container, nil
	}
	c, err := wire.New(ctx, s.cfg, s.opts)
	if err != nil {
		return nil, err
	}
	s.container = c
	return c, nil
}

func (s *session) close(ctx context.Context) error {
	if s.container == nil {
		return nil
	}
	err := s.container.Close(ctx)
	s.container = nil
	return err
}

// newRootCmd builds the workhub command tree.
func newRootCmd(s *session) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "workhub",
		Short:   "workhub - plans, todos and guardrail-gated task runs",
		Version: version.String(),
		Long: `workhub tracks work as plans, todos and tasks inside a workspace.
Starting or completing a task opens an execution run that is gated by the
guardrails attached to the task, its todo and its plan. Every run keeps an
append-only event log.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.configure(cmd)
		},
	}
	if s.opts.Out != nil {
		rootCmd.SetOut(s.opts.Out)
	}
	if s.opts.ErrOut != nil {
		rootCmd.SetErr(s.opts.ErrOut)
	}

	pf := rootCmd.PersistentFlags()
	pf.String("dir", "", "Project directory holding .workhub/config.yaml (default: current directory)")
	pf.String("db", "", "Database path")
	pf.String("user", "", "Act as this user")
	pf.String("role", "", "Actor role (member, admin, owner)")
	pf.String("workspace", "", "Workspace to act in")
	pf.String("log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(initCmd(s))
	rootCmd.AddCommand(planCmd(s))
	rootCmd.AddCommand(todoCmd(s))
	rootCmd.AddCommand(taskCmd(s))
	rootCmd.AddCommand(runCmd(s))
	rootCmd.AddCommand(guardrailCmd(s))
	rootCmd.AddCommand(agentCmd(s))
	rootCmd.AddCommand(configCmd(s))
	return rootCmd
}

// Run executes the command tree with args and releases every resource it opened.
func Run(ctx context.Context, args []string, opts wire.Options) error {
	s := &session{opts: opts}
	rootCmd := newRootCmd(s)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	if cerr := s.close(ctx); err == nil {
		err = cerr
	}
	return err
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return 2
	case apperr.KindPermission:
		return 3
	case apperr.KindNotFound:
		return 4
	case apperr.KindConflict:
		return 5
	default:
		return 1
	}
}
