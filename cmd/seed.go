package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/worknest/worknest-engine/pkg/database"
	"github.com/worknest/worknest-engine/pkg/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file.yaml>",
	Short: "Load demo users, projects and tasks from a YAML fixture",
	Long: `Load demo data into an empty database.

Example fixture:

  users:
    - email: olivia@example.com
      name: Olivia
    - email: bob@example.com
      name: Bob
  projects:
    - name: Nest
      owner: olivia@example.com
      members:
        - email: bob@example.com
          role: MEMBER
      tasks:
        - title: Write docs
          deadline: 2026-11-01T00:00:00Z
          assignee: bob@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		fixture, err := seed.Load(args[0])
		if err != nil {
			return err
		}

		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		db, err := connectDatabase(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		scoped, release, err := database.NewScopeProvider(db).WithScope(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire connection: %w", err)
		}
		defer release()

		// Unread counts are read from PostgreSQL after seeding; no cache needed.
		a := newApp(nil, logger)
		res, err := seed.NewSeeder(a.users, a.projects, a.invitations, a.tasks, logger).
			Apply(scoped, fixture)
		if err != nil {
			return fmt.Errorf("seed failed: %w", err)
		}

		logger.Info("Seed complete",
			zap.Int("users", res.Users),
			zap.Int("projects", res.Projects),
			zap.Int("members", res.Members),
			zap.Int("tasks", res.Tasks))
		return nil
	},
}
