package background

import (
	"context"
	"log"
	"sync"
	"time"

	"ubuxa-console/internal/repositories"
	"ubuxa-console/internal/services"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler runs the console's recurring jobs: dashboard stats
// refresh and demo reminder emails.
type JobScheduler struct {
	scheduler     gocron.Scheduler
	tenantService services.TenantService
	tenantRepo    repositories.TenantRepository
	notifications services.NotificationService
	jobs          map[string]gocron.Job
	mu            sync.RWMutex
}

func NewJobScheduler(tenantService services.TenantService, tenantRepo repositories.TenantRepository, notifications services.NotificationService) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler:     scheduler,
		tenantService: tenantService,
		tenantRepo:    tenantRepo,
		notifications: notifications,
		jobs:          make(map[string]gocron.Job),
	}

	js.registerJobs()
	return js
}

func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	statsJob, err := js.scheduler.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(js.refreshDashboardStats, context.Background()),
		gocron.WithName("dashboard-stats-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create stats refresh job: %v", err)
	} else {
		js.jobs["stats-refresh"] = statsJob
	}

	reminderJob, err := js.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(8, 0, 0))),
		gocron.NewTask(js.sendDemoReminders, context.Background()),
		gocron.WithName("demo-reminders"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create demo reminder job: %v", err)
	} else {
		js.jobs["demo-reminders"] = reminderJob
	}

	log.Printf("Registered %d background jobs", len(js.jobs))
}

func (js *JobScheduler) refreshDashboardStats(ctx context.Context) error {
	if _, err := js.tenantService.RefreshDashboardStats(ctx); err != nil {
		log.Printf("Dashboard stats refresh failed: %v", err)
		return err
	}
	return nil
}

// sendDemoReminders emails every tenant with a demo scheduled in the
// next 24 hours.
func (js *JobScheduler) sendDemoReminders(ctx context.Context) error {
	now := time.Now()
	tenants, err := js.tenantRepo.ListByDemoDateRange(ctx, now, now.Add(24*time.Hour))
	if err != nil {
		log.Printf("Failed to load upcoming demos: %v", err)
		return err
	}

	for _, tenant := range tenants {
		if err := js.notifications.SendDemoReminder(ctx, tenant); err != nil {
			log.Printf("Failed to send demo reminder to %s: %v", tenant.Email, err)
		}
	}

	if len(tenants) > 0 {
		log.Printf("Sent %d demo reminders", len(tenants))
	}
	return nil
}

// TriggerStatsRefresh runs the stats job immediately. Used by the
// manual refresh endpoint.
func (js *JobScheduler) TriggerStatsRefresh(ctx context.Context) error {
	return js.refreshDashboardStats(ctx)
}

// JobNames lists the registered job names for diagnostics.
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	return names
}
