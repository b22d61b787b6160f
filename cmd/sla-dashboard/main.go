package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/cm-sla/sla-dashboard/internal/ado"
	"github.com/cm-sla/sla-dashboard/internal/db"
	"github.com/cm-sla/sla-dashboard/internal/export"
	"github.com/cm-sla/sla-dashboard/internal/metrics"
	"github.com/cm-sla/sla-dashboard/internal/notify"
	"github.com/cm-sla/sla-dashboard/internal/report"
	s3client "github.com/cm-sla/sla-dashboard/internal/s3"
	"github.com/cm-sla/sla-dashboard/internal/server"
	"github.com/cm-sla/sla-dashboard/internal/sla"
)

func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	cmd, args := "serve", os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		cmdServe(args)
	case "export":
		cmdExport(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: sla-dashboard <command> [flags]

Commands:
  serve     Sync tickets from Azure DevOps and serve the dashboard (default)
  export    Sync once and write an Excel snapshot of the live view

Run "sla-dashboard <command> -h" for the flags of a command.
`)
}

// common holds the settings shared by every command.
type common struct {
	dbPath   string
	tz       string
	logLevel string
	ado      ado.Config
	s3       s3client.Config
}

func registerCommon(fs *flag.FlagSet) *common {
	c := &common{}
	fs.StringVar(&c.dbPath, "db", envOrDefault("DB_PATH", "sla.db"), "SQLite database path")
	fs.StringVar(&c.tz, "tz", envOrDefault("REPORT_TZ", "America/Los_Angeles"), "reporting time zone")
	fs.StringVar(&c.logLevel, "log-level", envOrDefault("LOG_LEVEL", "info"), "log level (debug, info, warn, error)")

	// Azure DevOps flags
	fs.StringVar(&c.ado.Org, "ado-org", os.Getenv("ADO_ORG"), "Azure DevOps organisation")
	fs.StringVar(&c.ado.Project, "ado-project", os.Getenv("ADO_PROJECT"), "Azure DevOps project")
	fs.StringVar(&c.ado.PAT, "ado-pat", os.Getenv("ADO_PAT"), "Azure DevOps personal access token")
	fs.StringVar(&c.ado.Area, "ado-area", envOrDefault("ADO_AREA", "Change Management"), "area path under the project")
	fs.IntVar(&c.ado.DaysBack, "ado-days-back", envIntOrDefault("ADO_DAYS_BACK", 365), "only fetch tickets created in the last N days")

	// S3 flags
	fs.StringVar(&c.s3.Endpoint, "s3-endpoint", os.Getenv("S3_ENDPOINT"), "S3 endpoint URL (e.g. http://localhost:3900)")
	fs.StringVar(&c.s3.Region, "s3-region", envOrDefault("S3_REGION", "us-east-1"), "S3 region")
	fs.StringVar(&c.s3.Bucket, "s3-bucket", os.Getenv("S3_BUCKET"), "S3 bucket for snapshot workbooks")
	fs.StringVar(&c.s3.AccessKey, "s3-access-key", os.Getenv("AWS_ACCESS_KEY_ID"), "S3 access key")
	fs.StringVar(&c.s3.SecretKey, "s3-secret-key", os.Getenv("AWS_SECRET_ACCESS_KEY"), "S3 secret key")
	return c
}

func (c *common) trackerConfigured() bool {
	return c.ado.Org != "" && c.ado.Project != "" && c.ado.PAT != ""
}

func (c *common) newLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.logLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	c := registerCommon(fs)
	addr := fs.String("addr", envOrDefault("ADDR", ":8080"), "listen address")
	pollInterval := fs.Duration("poll-interval", envDurationOrDefault("POLL_INTERVAL", 5*time.Minute), "Azure DevOps sync interval")
	archiveInterval := fs.Duration("s3-archive-interval", envDurationOrDefault("S3_ARCHIVE_INTERVAL", time.Hour), "snapshot upload interval")
	notifyEnabled := fs.Bool("notify", envBoolOrDefault("NOTIFY_ENABLED", true), "post a one-time comment on At Risk tickets")
	redisAddr := fs.String("redis-addr", os.Getenv("REDIS_ADDR"), "Redis address for the shared alert dedup set")
	redisPassword := fs.String("redis-password", os.Getenv("REDIS_PASSWORD"), "Redis password")
	redisDB := fs.Int("redis-db", envIntOrDefault("REDIS_DB", 0), "Redis database number")
	_ = fs.Parse(args)

	logger := c.newLogger()

	if !c.trackerConfigured() {
		logger.Error("missing Azure DevOps configuration: set ADO_ORG, ADO_PROJECT and ADO_PAT")
		os.Exit(1)
	}

	loc, err := time.LoadLocation(c.tz)
	if err != nil {
		logger.Error("load reporting zone", "tz", c.tz, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(c.dbPath)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = database.Close() }()

	projector := sla.NewProjector(loc)
	views := report.NewService(database, projector)
	recorder := metrics.New()

	var wg sync.WaitGroup

	adoLog := logger.With("component", "ado-sync")
	client := ado.New(c.ado, adoLog)
	syncer := ado.NewSyncer(client, database, projector, adoLog).WithRecorder(recorder)

	var alerts server.NotificationLister = database
	if *notifyEnabled {
		notifyLog := logger.With("component", "notify")
		var store notify.Store = database
		if *redisAddr != "" {
			rs := notify.NewRedisStore(ctx, notify.RedisConfig{
				Addr:     *redisAddr,
				Password: *redisPassword,
				DB:       *redisDB,
			}, notifyLog)
			defer func() { _ = rs.Close() }()
			store, alerts = rs, rs
		}
		syncer.WithNotifier(notify.New(client, store, notifyLog))
		logger.Info("sla alerts enabled", "redis", *redisAddr != "")
	}

	logger.Info("ado sync enabled", "org", c.ado.Org, "project", c.ado.Project, "area", c.ado.Area, "interval", *pollInterval)
	wg.Add(1)
	go func() {
		defer wg.Done()
		syncer.Run(ctx, *pollInterval)
	}()

	var s3c *s3client.Client
	if c.s3.Bucket != "" {
		s3Log := logger.With("component", "s3-archive")
		s3c, err = s3client.New(ctx, c.s3, s3Log)
		if err != nil {
			logger.Error("create s3 client", "error", err)
			os.Exit(1)
		}
		logger.Info("s3 archive enabled", "bucket", c.s3.Bucket, "endpoint", c.s3.Endpoint, "interval", *archiveInterval)
		archiver := s3client.NewArchiver(s3c, views, loc, s3Log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			archiver.Run(ctx, *archiveInterval)
		}()
	}

	srv := server.New(database, views, s3c, recorder.Handler(), server.Config{
		Addr:         *addr,
		TrackerURL:   client.ProjectURL(),
		SyncInterval: *pollInterval,
	}, logger).WithNotifications(alerts)
	if err := srv.Run(ctx); err != nil {
		logger.Error("server", "error", err)
		os.Exit(1)
	}

	wg.Wait()
	logger.Info("all background tasks stopped")
}

func cmdExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	c := registerCommon(fs)
	output := fs.String("o", "", "output file (default SLA_Snapshot_YYYYMMDD_HHMM.xlsx)")
	noSync := fs.Bool("no-sync", false, "export the tickets already in the database")
	upload := fs.Bool("upload", false, "also upload the workbook to the S3 bucket")
	_ = fs.Parse(args)

	logger := c.newLogger()

	if !*noSync && !c.trackerConfigured() {
		logger.Error("missing Azure DevOps configuration: set ADO_ORG, ADO_PROJECT and ADO_PAT, or pass -no-sync")
		os.Exit(1)
	}
	if *upload && c.s3.Bucket == "" {
		logger.Error("-upload needs an S3 bucket")
		os.Exit(1)
	}

	loc, err := time.LoadLocation(c.tz)
	if err != nil {
		logger.Error("load reporting zone", "tz", c.tz, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(c.dbPath)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = database.Close() }()

	projector := sla.NewProjector(loc)
	if !*noSync {
		adoLog := logger.With("component", "ado-sync")
		syncer := ado.NewSyncer(ado.New(c.ado, adoLog), database, projector, adoLog)
		if _, err := syncer.SyncOnce(ctx); err != nil {
			logger.Error("sync", "error", err)
			os.Exit(1)
		}
	}

	projections, at, err := report.NewService(database, projector).Current(ctx)
	if err != nil {
		logger.Error("load tickets", "error", err)
		os.Exit(1)
	}
	view := report.Filter{}.Apply(projections)
	local := at.In(loc)
	summary := report.Summarize(view)

	data, err := export.Workbook(view, summary, local)
	if err != nil {
		logger.Error("render workbook", "error", err)
		os.Exit(1)
	}

	name := *output
	if name == "" {
		name = export.Filename(local)
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		logger.Error("write workbook", "error", err)
		os.Exit(1)
	}
	logger.Info("wrote snapshot", "file", name, "tickets", len(view), "compliance", summary.Compliance)

	if *upload {
		s3c, err := s3client.New(ctx, c.s3, logger.With("component", "s3-archive"))
		if err != nil {
			logger.Error("create s3 client", "error", err)
			os.Exit(1)
		}
		key := s3client.SnapshotKey(local)
		if err := s3c.PutObject(ctx, key, data, export.ContentType); err != nil {
			logger.Error("upload workbook", "error", err)
			os.Exit(1)
		}
		logger.Info("uploaded snapshot", "bucket", c.s3.Bucket, "key", key)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func envBoolOrDefault(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

func envDurationOrDefault(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}
