// Command familyboard runs the board engine headless: it opens the store,
// mirrors the visible month, keeps the external calendar fresh on a cron
// schedule, and posts desktop reminders for upcoming events.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nhle/family-board/internal/credential"
	"github.com/nhle/family-board/internal/docstore"
	"github.com/nhle/family-board/internal/extcal"
	"github.com/nhle/family-board/internal/model"
	"github.com/nhle/family-board/internal/notify"
	"github.com/nhle/family-board/internal/sync"
	"github.com/nhle/family-board/internal/timeutil"
)

type flagConfig struct {
	configPath string
	storePath  string
	verbose    bool
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", model.DefaultConfigPath(), "Path to config file")
	flag.StringVar(&cfg.storePath, "db", "", "SQLite database path (overrides config if set)")
	flag.BoolVar(&cfg.verbose, "verbose", false, "Enable debug logging")

	flag.Parse()

	return cfg
}

func main() {
	flags := parseFlags()

	level := slog.LevelInfo
	if flags.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(flags, logger); err != nil {
		logger.Error("familyboard failed", "err", err)
		os.Exit(1)
	}
}

func run(flags flagConfig, logger *slog.Logger) error {
	cfg, err := model.LoadConfig(flags.configPath)
	if err != nil {
		return err
	}
	if flags.storePath != "" {
		cfg.StorePath = flags.storePath
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("unknown timezone, using local", "timezone", cfg.Timezone)
		loc = time.Local
	}

	store, err := docstore.NewSQLiteStore(cfg.StorePath)
	if err != nil {
		return err
	}
	defer store.Close()

	feed := buildFeed(cfg, logger)

	sender := notify.NewDesktop(cfg.Notifications.Enabled)
	if perm := sender.RequestPermission(); perm != notify.PermissionGranted {
		logger.Info("desktop notifications unavailable", "permission", string(perm))
	}
	sched := notify.NewScheduler(sender, loc, logger)

	syncer := sync.New(store, feed, sched, loc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := syncer.Start(ctx); err != nil {
		return err
	}
	defer syncer.Stop()

	c := cron.New()
	if feed != nil && cfg.RefreshCron != "" {
		if _, err := c.AddFunc(cfg.RefreshCron, func() {
			syncer.RefreshExternal(ctx)
		}); err != nil {
			logger.Warn("invalid refresh cron, feed refresh disabled", "spec", cfg.RefreshCron, "err", err)
		}
	}
	// Advance the visible window when a new month begins.
	if _, err := c.AddFunc("1 0 1 * *", func() {
		if err := syncer.SetWindow(ctx, time.Now().In(loc)); err != nil {
			logger.Error("advancing month window failed", "err", err)
		}
	}); err != nil {
		logger.Warn("month rollover schedule rejected", "err", err)
	}
	c.Start()
	defer c.Stop()

	window := syncer.Window()
	logger.Info("familyboard running",
		"store", cfg.StorePath,
		"window", timeutil.FormatDate(window.Start),
		"feeds", len(cfg.Feeds),
		"notifications", cfg.Notifications.Enabled,
	)

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

// buildFeed assembles the enabled calendar feeds from config, resolving
// basic-auth passwords from the keyring. Returns nil when no feed is
// configured.
func buildFeed(cfg *model.AppConfig, logger *slog.Logger) extcal.Feed {
	var feeds []extcal.Feed
	for _, fc := range cfg.Feeds {
		if !fc.Enabled || fc.URL == "" {
			continue
		}
		password := ""
		if fc.Username != "" {
			p, err := credential.Get(credential.FeedPasswordKey(fc.ID))
			if err != nil {
				logger.Warn("feed password unavailable, fetching without auth",
					"feed", fc.ID, "err", err)
			} else {
				password = p
			}
		}
		feeds = append(feeds, extcal.NewICSFeed(fc, password, logger))
	}
	switch len(feeds) {
	case 0:
		return nil
	case 1:
		return feeds[0]
	default:
		return extcal.NewMulti(feeds...)
	}
}
