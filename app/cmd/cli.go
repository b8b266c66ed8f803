package cmd

import (
	"context"
	"log"
	"os"

	"github.com/ostapdev/go-shop/app/configs"
	"github.com/ostapdev/go-shop/app/db/seeders"
	"github.com/ostapdev/go-shop/app/models/migrations"
	"github.com/ostapdev/go-shop/app/repositories"
	"github.com/ostapdev/go-shop/app/services"
	"github.com/urfave/cli/v3"
)

func RunCli() {
	cmd := &cli.Command{
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Run database migration",
				Action: func(ctx context.Context, c *cli.Command) error {
					env := configs.LoadEnv()
					db, err := configs.OpenConnection(env)
					if err != nil {
						return err
					}
					if err := migrations.AutoMigrate(db); err != nil {
						return err
					}
					log.Println("Migration complete")
					return nil
				},
			},
			{
				Name:  "seed",
				Usage: "Seed the admin account and a fake catalog",
				Action: func(ctx context.Context, c *cli.Command) error {
					env := configs.LoadEnv()
					db, err := configs.OpenConnection(env)
					if err != nil {
						return err
					}
					if err := seeders.DBSeed(db, env); err != nil {
						return err
					}
					log.Println("Seed complete")
					return nil
				},
			},
			{
				Name:  "sync-offices",
				Usage: "Fetch the shipping office directory once and persist it",
				Action: func(ctx context.Context, c *cli.Command) error {
					env := configs.LoadEnv()
					db, err := configs.OpenConnection(env)
					if err != nil {
						return err
					}
					redisClient, err := configs.OpenRedis(env)
					if err != nil {
						return err
					}

					sync := services.NewPostSyncService(
						services.NewPostClient(env.NPBaseURL, env.NPAPIKey),
						repositories.NewPostRepository(db),
						services.NewRedisCache(redisClient),
					)
					if err := sync.Run(ctx); err != nil {
						return err
					}
					log.Println("Office directory sync complete")
					return nil
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
