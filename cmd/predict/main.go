package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/budprat/stock-sense/backend-go/internal/app"
	"github.com/budprat/stock-sense/backend-go/internal/config"
	"github.com/budprat/stock-sense/backend-go/internal/service"
	"github.com/budprat/stock-sense/backend-go/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

var commonFlags = []cli.Flag{
	&cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	},
	&cli.Int64Flag{
		Name:     "owner-id",
		Aliases:  []string{"o"},
		Usage:    "Owner whose inventory is assessed",
		Required: true,
	},
}

// withService opens the database, builds the service from the environment
// config and hands it to fn along with the owner id.
func withService(fn func(c *cli.Context, svc *service.SpoilageService, ownerID int64) (any, error)) cli.ActionFunc {
	return func(c *cli.Context) error {
		ownerID := c.Int64("owner-id")
		if ownerID <= 0 {
			return fmt.Errorf("owner-id must be positive, got %d", ownerID)
		}

		db, err := sqlx.Open("pgx", c.String("db-url"))
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		cfg := config.Load()
		svc, err := app.NewSpoilageService(c.Context, cfg, db)
		if err != nil {
			return err
		}

		out, err := fn(c, svc, ownerID)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logger.Log.Debug().Err(err).Msg("no .env file loaded")
	}
	// Reports go to stdout; keep logs on stderr.
	logger.SetOutput(os.Stderr, "console")

	cliApp := &cli.App{
		Name:  "predict",
		Usage: "Run spoilage assessments for an owner from the command line",
		Commands: []*cli.Command{
			{
				Name:  "risks",
				Usage: "Print the risk report, highest risk first",
				Flags: commonFlags,
				Action: withService(func(c *cli.Context, svc *service.SpoilageService, ownerID int64) (any, error) {
					return svc.GetRisks(c.Context, ownerID)
				}),
			},
			{
				Name:  "predictions",
				Usage: "Print predicted spoilage dates, soonest first",
				Flags: commonFlags,
				Action: withService(func(c *cli.Context, svc *service.SpoilageService, ownerID int64) (any, error) {
					return svc.GetPredictions(c.Context, ownerID)
				}),
			},
			{
				Name:  "alerts",
				Usage: "Print high and critical items expiring within the horizon",
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "horizon-days",
						Usage: "Alert horizon in days (0 uses RISK_ALERT_HORIZON_DAYS)",
					},
				}, commonFlags...),
				Action: withService(func(c *cli.Context, svc *service.SpoilageService, ownerID int64) (any, error) {
					horizon := c.Int("horizon-days")
					if horizon <= 0 {
						horizon = svc.AlertHorizonDays()
					}
					return svc.GetCriticalAlerts(c.Context, ownerID, horizon)
				}),
			},
			{
				Name:  "job",
				Usage: "Run a prediction job, store it in redis and export it when configured",
				Flags: commonFlags,
				Action: withService(func(c *cli.Context, svc *service.SpoilageService, ownerID int64) (any, error) {
					job, err := svc.RunPredictionJob(c.Context, ownerID)
					if err != nil {
						return nil, err
					}
					logger.Log.Info().
						Str("job_id", job.ID).
						Bool("partial", job.Report != nil && job.Report.Partial).
						Str("export_key", job.ExportKey).
						Msg("prediction job finished")
					return job, nil
				}),
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("predict failed")
	}
}
