package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/budprat/stock-sense/backend-go/internal/cache"
	"github.com/budprat/stock-sense/backend-go/internal/config"
	"github.com/budprat/stock-sense/backend-go/internal/drive"
	"github.com/budprat/stock-sense/backend-go/internal/repository/postgres"
	"github.com/budprat/stock-sense/backend-go/internal/seed"
	"github.com/budprat/stock-sense/backend-go/internal/storage"
	"github.com/budprat/stock-sense/backend-go/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

type dbKey struct{}

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newStrictFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:  "strict",
		Usage: "Abort a file when any row is invalid instead of skipping the row",
	}
}

func initDB(c *cli.Context) error {
	raw, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := raw.PingContext(c.Context); err != nil {
		raw.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.Context = context.WithValue(c.Context, dbKey{}, postgres.Wrap(sqlx.NewDb(raw, "pgx")))
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey{}).(*postgres.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFrom(c *cli.Context) (*postgres.DB, error) {
	db, ok := c.Context.Value(dbKey{}).(*postgres.DB)
	if !ok || db == nil {
		return nil, errors.New("database not initialised")
	}
	return db, nil
}

func fileCommand(kind seed.Kind, usage string) *cli.Command {
	return &cli.Command{
		Name:  string(kind),
		Usage: usage,
		Flags: []cli.Flag{
			newDBURLFlag(),
			newStrictFlag(),
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "CSV file to load",
				Required: true,
			},
		},
		Before: initDB,
		After:  closeDB,
		Action: func(c *cli.Context) error {
			db, err := dbFrom(c)
			if err != nil {
				return err
			}
			_, err = newLoader(c, db).LoadFile(c.Context, kind, c.String("file"))
			return err
		},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logger.Log.Debug().Err(err).Msg("no .env file loaded")
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Load inventory, waste and storage-condition data into the database",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Create the spoilage tables if they do not exist",
				Flags:  []cli.Flag{newDBURLFlag()},
				Before: initDB,
				After:  closeDB,
				Action: func(c *cli.Context) error {
					db, err := dbFrom(c)
					if err != nil {
						return err
					}
					if err := db.Migrate(c.Context); err != nil {
						return err
					}
					logger.Log.Info().Msg("schema applied")
					return nil
				},
			},
			fileCommand(seed.KindInventory, "Load an inventory CSV (products are upserted from the same rows)"),
			fileCommand(seed.KindWaste, "Load a waste ledger CSV"),
			fileCommand(seed.KindStorage, "Load a storage-condition sample CSV"),
			{
				Name:  "all",
				Usage: "Apply the schema and load inventory.csv, waste.csv and storage.csv from a directory",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newStrictFlag(),
					&cli.StringFlag{
						Name:    "data-dir",
						Usage:   "Directory containing the seed CSV files",
						Value:   "./data/seeds/spoilage",
						EnvVars: []string{"SEED_DATA_DIR"},
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: seedAll,
			},
			{
				Name:  "drive",
				Usage: "Load seed CSV/XLSX files from a Google Drive folder",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newStrictFlag(),
					&cli.StringFlag{
						Name:    "credentials-file",
						Usage:   "Service account key file",
						EnvVars: []string{"GOOGLE_APPLICATION_CREDENTIALS"},
					},
					&cli.StringFlag{
						Name:    "credentials-json",
						Usage:   "Service account key as inline JSON",
						EnvVars: []string{"GOOGLE_DRIVE_CREDENTIALS_JSON"},
					},
					&cli.StringFlag{
						Name:    "folder-id",
						Usage:   "Drive folder ID",
						EnvVars: []string{"GOOGLE_DRIVE_FOLDER_ID"},
					},
					&cli.StringFlag{
						Name:  "folder-path",
						Usage: "Slash separated folder path from the drive root, used when folder-id is empty",
					},
					newDownloadDirFlag(),
				},
				Before: initDB,
				After:  closeDB,
				Action: seedDrive,
			},
			{
				Name:  "bucket",
				Usage: "Load seed CSV/XLSX files from the configured object storage bucket",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newStrictFlag(),
					&cli.StringFlag{
						Name:  "prefix",
						Usage: "Object key prefix holding the seed files",
						Value: "seeds/",
					},
					newDownloadDirFlag(),
				},
				Before: initDB,
				After:  closeDB,
				Action: seedBucket,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("seed failed")
	}
}

// newLoader attaches the prediction job store so owners touched by a load
// lose their stale stored jobs.
func newLoader(c *cli.Context, db *postgres.DB) *seed.Loader {
	loader := seed.NewLoader(db, c.Bool("strict"))

	jobs, err := cache.NewPredictionJobStore(config.Load().Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("prediction job store unavailable, stored jobs will not be invalidated")
		return loader
	}
	return loader.WithInvalidator(jobs)
}

func newDownloadDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "download-dir",
		Usage: "Keep downloaded files here instead of a temporary directory",
	}
}

func seedDrive(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}

	creds := []byte(c.String("credentials-json"))
	if len(creds) == 0 {
		if c.String("credentials-file") == "" {
			return errors.New("either --credentials-json or --credentials-file is required")
		}
		if creds, err = os.ReadFile(c.String("credentials-file")); err != nil {
			return fmt.Errorf("failed to read credentials file: %w", err)
		}
	}

	svc, err := drive.NewService(c.Context, creds)
	if err != nil {
		return err
	}

	folderID := c.String("folder-id")
	if folderID == "" {
		if folderID, err = svc.FindFolderByPath(c.Context, c.String("folder-path")); err != nil {
			return err
		}
	}

	return loadSource(c, db, drive.NewFolderSource(svc, folderID))
}

func seedBucket(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}

	store, err := storage.NewMinioClient(c.Context, config.Load().Storage)
	if err != nil {
		return err
	}

	return loadSource(c, db, seed.NewBucketSource(store, c.String("prefix")))
}

func loadSource(c *cli.Context, db *postgres.DB, src seed.Source) error {
	results, err := newLoader(c, db).LoadSource(c.Context, src, c.String("download-dir"))
	if err != nil {
		return err
	}

	written, rejected := 0, 0
	for _, r := range results {
		written += r.Written
		rejected += len(r.Rejected)
	}
	logger.Log.Info().
		Int("files", len(results)).
		Int("written", written).
		Int("rejected", rejected).
		Msg("remote seeding completed")
	return nil
}

func seedAll(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}
	if err := db.Migrate(c.Context); err != nil {
		return err
	}

	loader := newLoader(c, db)
	dir := c.String("data-dir")

	// Products arrive with inventory, so inventory loads first.
	for _, kind := range []seed.Kind{seed.KindInventory, seed.KindWaste, seed.KindStorage} {
		path := filepath.Join(dir, string(kind)+".csv")
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			logger.Log.Warn().Str("file", path).Msg("seed file not found, skipping")
			continue
		}
		if _, err := loader.LoadFile(c.Context, kind, path); err != nil {
			return fmt.Errorf("error loading %s: %w", kind, err)
		}
	}

	logger.Log.Info().Str("data_dir", dir).Msg("seeding completed")
	return nil
}
