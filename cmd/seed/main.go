// Command seed generates a synthetic store and loads it into PostgreSQL or
// submits its score events to a running server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/tally/internal/adapters/repository/postgres"
	"github.com/okian/tally/internal/seed"
	"github.com/okian/tally/pkg/logger"
)

const (
	defaultWorkers = 2 // multiplier for runtime.NumCPU()
	defaultTimeout = 30 * time.Second
)

type options struct {
	baseURL     string
	databaseURL string
	workers     int
	timeout     time.Duration
	cfg         seed.Config
}

func main() {
	var (
		baseURL      = flag.String("url", "", "Base URL of a running server, e.g. http://localhost:9080")
		databaseURL  = flag.String("database-url", os.Getenv("TALLY_DATABASE_URL"), "PostgreSQL URL to load the dataset into")
		staff        = flag.Int("staff", seed.DefaultStaff, "Number of staff members")
		months       = flag.Int("months", seed.DefaultMonths, "Months of history ending with the current month")
		eventsPerKPI = flag.Int("events-per-kpi", seed.DefaultEventsPerKPI, "Score events per staff, KPI and month")
		seedValue    = flag.Uint64("seed", seed.DefaultSeed, "Random seed")
		workers      = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Concurrent submissions in server mode")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFormat    = flag.String("log-format", "text", "Log format: text or json")
	)
	flag.Parse()

	if err := logger.InitWithFormat(*logFormat); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := options{
		baseURL:     *baseURL,
		databaseURL: *databaseURL,
		workers:     *workers,
		timeout:     *timeout,
		cfg: seed.Config{
			Staff:        *staff,
			Months:       *months,
			EventsPerKPI: *eventsPerKPI,
			Seed:         *seedValue,
			End:          time.Now().UTC(),
		},
	}
	if err := run(ctx, opts); err != nil {
		logger.Get().Error(ctx, "seed failed", logger.Error(err))
		os.Exit(1)
	}
}

var errNoTarget = errors.New("either -url or -database-url is required")

func run(ctx context.Context, opts options) error {
	log := logger.Get().Named("seed")
	ds, err := seed.Generate(opts.cfg)
	if err != nil {
		return err
	}
	log.Info(ctx, "dataset generated",
		logger.Int("staff", len(ds.Staff)),
		logger.Int("events", len(ds.Events)),
		logger.Int("attendance", len(ds.Attendance)),
		logger.Int("sales", len(ds.Sales)),
	)

	switch {
	case opts.databaseURL != "":
		return loadPostgres(ctx, opts.databaseURL, ds)
	case opts.baseURL != "":
		client := seed.NewClient(opts.baseURL, opts.timeout, opts.workers)
		_, err := client.Submit(ctx, ds.Events)
		return err
	}
	return errNoTarget
}

func loadPostgres(ctx context.Context, dsn string, ds seed.Dataset) error {
	db, err := postgres.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	store := postgres.NewStore(db)
	return postgres.WithTransaction(ctx, db, func(ctx context.Context) error {
		if _, err := seed.Load(ctx, store, ds); err != nil {
			return fmt.Errorf("load dataset: %w", err)
		}
		return nil
	})
}
