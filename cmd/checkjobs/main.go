package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/sahilchouksey/mindmeld-api/config"
	"github.com/sahilchouksey/mindmeld-api/database"
	"github.com/sahilchouksey/mindmeld-api/model"
	"github.com/sahilchouksey/mindmeld-api/services"
	"github.com/sahilchouksey/mindmeld-api/services/cron"
	"github.com/sahilchouksey/mindmeld-api/utils/auth"
	"github.com/sahilchouksey/mindmeld-api/utils/logger"
	"gorm.io/gorm"
)

// checkjobs prints recent maintenance job runs and can trigger one by name:
//
//	checkjobs -limit 50
//	checkjobs -run purge_token_blacklist
func main() {
	limit := flag.Int("limit", 20, "number of runs to show")
	job := flag.String("job", "", "only show runs of this job")
	run := flag.String("run", "", "run the named job once before listing")
	flag.Parse()

	if err := config.LoadENV(); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}
	env, err := config.Get()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zlog := logger.Must(env.GO_ENV)
	store, err := database.StartGORM(env, zlog)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()
	db := store.DB()

	if *run != "" {
		manager := cron.NewCronManager(db, zlog)
		jobs := cron.MaintenanceJobs(
			services.NewPasswordResetService(db, nil, nil, 0, zlog),
			auth.NewBlacklistService(db),
			services.NewProductService(db, zlog),
		)
		if err := manager.Register(jobs...); err != nil {
			log.Fatalf("Failed to register jobs: %v", err)
		}
		if err := manager.RunJob(*run); err != nil {
			log.Printf("Job %s failed: %v", *run, err)
		}
	}

	if err := printRuns(db, *job, *limit); err != nil {
		log.Fatalf("Failed to list job runs: %v", err)
	}
}

func printRuns(db *gorm.DB, job string, limit int) error {
	q := db.Order("started_at DESC").Limit(limit)
	if job != "" {
		q = q.Where("job_name = ?", job)
	}

	var runs []model.CronJobLog
	if err := q.Find(&runs).Error; err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tJOB\tSTATUS\tSTARTED\tDURATION\tAFFECTED\tERROR")
	for _, r := range runs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%s\n",
			r.ID,
			r.JobName,
			r.Status,
			r.StartedAt.Format(time.RFC3339),
			time.Duration(r.Duration)*time.Millisecond,
			r.Affected,
			r.ErrorMsg,
		)
	}
	return w.Flush()
}
