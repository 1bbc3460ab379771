package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hibiken/asynq"

	"github.com/meridian-hr/meridian/internal/app"
	"github.com/meridian-hr/meridian/jobs"
)

// Manual queue management: enqueue a digest or sweep outside the cron
// schedule, or print the state of the default queue.
func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping jobctl")
		return
	}

	var (
		job       = flag.String("job", "", "task type to enqueue ("+jobs.TaskAttendanceDigest+" or "+jobs.TaskDocumentSweep+")")
		day       = flag.String("day", "", "digest day override, YYYY-MM-DD")
		retention = flag.Duration("retention", 0, "sweep retention override, e.g. 720h")
		stats     = flag.Bool("stats", false, "print default queue statistics")
	)
	flag.Parse()

	if *job == "" && !*stats {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}

	if *stats {
		inspector := asynq.NewInspector(redisOpts)
		defer inspector.Close()
		info, err := inspector.GetQueueInfo(jobs.QueueDefault)
		if err != nil {
			logger.Error("inspect queue", slog.Any("error", err))
			os.Exit(1)
		}
		fmt.Printf("queue=%s pending=%d active=%d scheduled=%d retry=%d\n",
			info.Queue, info.Pending, info.Active, info.Scheduled, info.Retry)
	}

	if *job == "" {
		return
	}
	if *day != "" {
		if _, err := time.Parse("2006-01-02", *day); err != nil {
			logger.Error("parse day", slog.Any("error", err))
			os.Exit(2)
		}
	}

	client, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init client", slog.Any("error", err))
		os.Exit(1)
	}
	defer client.Close()

	info, err := client.Trigger(ctx, *job, jobs.TriggerOptions{Day: *day, Retention: *retention})
	if err != nil {
		logger.Error("enqueue job", slog.String("job", *job), slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("job enqueued",
		slog.String("job", *job),
		slog.String("task_id", info.ID),
		slog.String("queue", info.Queue))
}
