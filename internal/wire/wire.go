// Package wire assembles the workhub application from configuration.
// A Container is built explicitly and owns every resource it opens; there is
// no process-wide state, so tests can build isolated containers.
package wire

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	cliadapter "github.com/example/workhub/internal/adapters/cli"
	"github.com/example/workhub/internal/adapters/persistence"
	"github.com/example/workhub/internal/adapters/sqlite"
	"github.com/example/workhub/internal/app"
	"github.com/example/workhub/internal/config"
	"github.com/example/workhub/internal/db"
	"github.com/example/workhub/internal/logging"
	"github.com/example/workhub/internal/ports/primary"
	"github.com/example/workhub/internal/ports/secondary"
	"github.com/example/workhub/internal/telemetry"
	"github.com/example/workhub/internal/version"
)

// Container holds the wired services and the resources behind them.
type Container struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *sql.DB
	Store  secondary.Store
	Work   *app.WorkServiceImpl

	telemetry *telemetry.Provider
	out       io.Writer
}

// Options tune New. Zero values mean stdout, stderr and the system clock.
type Options struct {
	Out    io.Writer
	ErrOut io.Writer
	Clock  secondary.Clock
	// InMemory opens a private in-memory database instead of cfg.DB.Path.
	InMemory bool
}

// New opens the database, installs telemetry and wires every service.
func New(ctx context.Context, cfg *config.Config, opts Options) (*Container, error) {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.ErrOut == nil {
		opts.ErrOut = os.Stderr
	}
	if opts.Clock == nil {
		opts.Clock = persistence.NewSystemClock()
	}

	logger := logging.New(cfg.Log, opts.ErrOut)

	tp, err := telemetry.Init(ctx, cfg.Telemetry, "workhub", version.String(), opts.ErrOut)
	if err != nil {
		return nil, err
	}

	var database *sql.DB
	if opts.InMemory {
		database, err = db.OpenMemory(ctx)
	} else {
		database, err = db.Open(ctx, cfg.DB.Path, logger)
	}
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	var store secondary.Store = sqlite.NewStore(database, sqlite.WithLogger(logger))
	if tp.Enabled() {
		store = telemetry.WrapStore(store)
	}

	work := app.NewWorkService(app.Deps{
		Store:  store,
		Clock:  opts.Clock,
		IDs:    persistence.NewUUIDGenerator(),
		Logger: logger,
	})

	return &Container{
		Config:    cfg,
		Logger:    logger,
		DB:        database,
		Store:     store,
		Work:      work,
		telemetry: tp,
		out:       opts.Out,
	}, nil
}

// Close flushes telemetry and closes the database.
func (c *Container) Close(ctx context.Context) error {
	return errors.Join(c.telemetry.Shutdown(ctx), c.Store.Close())
}

// Actor is the identity configured for this process.
func (c *Container) Actor() primary.Actor {
	return primary.Actor{
		UserID:      c.Config.Actor.UserID,
		Role:        c.Config.Actor.Role,
		WorkspaceID: c.Config.Actor.WorkspaceID,
	}
}

// Adapters are stateless translators; each call creates a new one bound to the configured actor.

// PlanAdapter returns a PlanAdapter writing to the container's output.
func (c *Container) PlanAdapter() *cliadapter.PlanAdapter {
	return cliadapter.NewPlanAdapter(c.Work, c.Actor(), c.out)
}

// TodoAdapter returns a TodoAdapter writing to the container's output.
func (c *Container) TodoAdapter() *cliadapter.TodoAdapter {
	return cliadapter.NewTodoAdapter(c.Work, c.Actor(), c.out)
}

// TaskAdapter returns a TaskAdapter writing to the container's output.
func (c *Container) TaskAdapter() *cliadapter.TaskAdapter {
	return cliadapter.NewTaskAdapter(c.Work, c.Actor(), c.out)
}

// RunAdapter returns a RunAdapter writing to the container's output.
func (c *Container) RunAdapter() *cliadapter.RunAdapter {
	return cliadapter.NewRunAdapter(c.Work, c.Actor(), c.out)
}

// GuardrailAdapter returns a GuardrailAdapter writing to the container's output.
func (c *Container) GuardrailAdapter() *cliadapter.GuardrailAdapter {
	return cliadapter.NewGuardrailAdapter(c.Work, c.Actor(), c.out)
}

// AgentConfigAdapter returns an AgentConfigAdapter writing to the container's output.
func (c *Container) AgentConfigAdapter() *cliadapter.AgentConfigAdapter {
	return cliadapter.NewAgentConfigAdapter(c.Work, c.Actor(), c.out)
}
