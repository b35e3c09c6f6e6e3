package background

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/gavin100305/Auraflix-sub000/internal/repositories"
	"github.com/gavin100305/Auraflix-sub000/internal/services"
)

const staleSweepBatchSize = 50

// JobScheduler runs the periodic suggestion maintenance jobs.
type JobScheduler struct {
	scheduler     gocron.Scheduler
	suggestionSvc services.SuggestionService
	userRepo      repositories.BusinessUserRepository
	stalenessHrs  int
}

// NewJobScheduler creates a scheduler with the stale-suggestion sweep
// registered. stalenessHours controls both how often the sweep runs and how
// old a payload must be before it is refreshed.
func NewJobScheduler(suggestionSvc services.SuggestionService, userRepo repositories.BusinessUserRepository, stalenessHours int) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:     scheduler,
		suggestionSvc: suggestionSvc,
		userRepo:      userRepo,
		stalenessHrs:  stalenessHours,
	}

	if _, err := scheduler.NewJob(
		gocron.DurationJob(time.Duration(stalenessHours)*time.Hour),
		gocron.NewTask(js.refreshStaleSuggestions),
	); err != nil {
		return nil, err
	}

	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler (staleness window %dh)", js.stalenessHrs)
	js.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for running jobs.
func (js *JobScheduler) Stop() {
	if err := js.scheduler.Shutdown(); err != nil {
		log.Printf("WARN: scheduler shutdown: %v", err)
	}
}

// refreshStaleSuggestions re-fetches suggestions for businesses whose stored
// payload has aged out. Failures keep the previous payload and are retried on
// the next sweep.
func (js *JobScheduler) refreshStaleSuggestions() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	stale, err := js.userRepo.ListStaleSuggestions(ctx, js.stalenessHrs, staleSweepBatchSize)
	if err != nil {
		log.Printf("WARN: stale suggestion sweep query failed: %v", err)
		return
	}

	refreshed := 0
	for _, user := range stale {
		if err := js.suggestionSvc.Refresh(ctx, user); err != nil {
			log.Printf("WARN: sweep refresh failed for %s: %v", user.ID, err)
			continue
		}
		refreshed++
	}

	if len(stale) > 0 {
		log.Printf("Stale suggestion sweep refreshed %d/%d businesses", refreshed, len(stale))
	}
}
