package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/locallibrary/pkg/catalog"
	"github.com/shishobooks/locallibrary/pkg/config"
	"github.com/shishobooks/locallibrary/pkg/database"
	"github.com/shishobooks/locallibrary/pkg/migrations"
	"github.com/shishobooks/locallibrary/pkg/version"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func main() {
	log := logger.New()

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}
	defer db.Close()

	app := &cli.App{
		Name:        "migrations",
		Usage:       "manage the catalog database schema",
		Description: "Applies, rolls back, and inspects catalog migrations, and loads sample data.",
		Version:     version.Version,
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					return errors.WithStack(migrations.NewMigrator(db).Init(c.Context))
				},
			},
			{
				Name:  "migrate",
				Usage: "apply every pending migration",
				Action: func(c *cli.Context) error {
					group, err := migrations.BringUpToDate(c.Context, db)
					if err != nil {
						return err
					}
					if group.ID == 0 {
						fmt.Println("There are no new migrations to run")
						return nil
					}
					fmt.Printf("Migrated to %s\n", group)
					return nil
				},
			},
			{
				Name:  "rollback",
				Usage: "roll back the last migration group",
				Action: func(c *cli.Context) error {
					group, err := migrations.Rollback(c.Context, db)
					if err != nil {
						return err
					}
					if group.ID == 0 {
						fmt.Println("There are no groups to roll back")
						return nil
					}
					fmt.Printf("Rolled back %s\n", group)
					return nil
				},
			},
			{
				Name:      "create",
				Usage:     "create a Go migration",
				ArgsUsage: "<words of the migration name>",
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return errors.New("a migration name is required")
					}
					name := strings.Join(c.Args().Slice(), "_")
					mf, err := migrations.NewMigrator(db).CreateGoMigration(
						c.Context,
						name,
						migrate.WithGoTemplate(migrationTemplate),
					)
					if err != nil {
						return errors.WithStack(err)
					}
					fmt.Printf("Created migration %s (%s)\n", mf.Name, mf.Path)
					return nil
				},
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: func(c *cli.Context) error {
					ms, err := migrations.NewMigrator(db).MigrationsWithStatus(c.Context)
					if err != nil {
						return errors.WithStack(err)
					}
					fmt.Printf("Migrations: %s\n", ms)
					fmt.Printf("Unapplied migrations: %s\n", ms.Unapplied())
					fmt.Printf("Last migration group: %s\n", ms.LastGroup())
					return nil
				},
			},
			{
				Name:  "seed",
				Usage: "migrate, then load a sample library into an empty catalog",
				Action: func(c *cli.Context) error {
					return seed(c, db)
				},
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Err(err).Fatal("app run error")
	}
}

func seed(c *cli.Context, db *bun.DB) error {
	if _, err := migrations.BringUpToDate(c.Context, db); err != nil {
		return err
	}

	result, err := catalog.Seed(c.Context, db)
	if errors.Is(err, catalog.ErrNotEmpty) {
		fmt.Println("The catalog already has books, nothing to seed")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("Seeded %d genres, %d authors, %d books and %d copies\n",
		result.Genres, result.Authors, result.Books, result.BookInstances)
	return nil
}

const migrationTemplate = `package %s

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("")
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("")
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
`
