// Package scheduler keeps the report cache warm by refreshing every
// registered city on an interval, so interactive requests and the
// client's polling loop are served from cache.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/tenkiweb/tenki/internal/city"
	"github.com/tenkiweb/tenki/internal/weather"
)

// Scheduler periodically refreshes weather reports for all cities.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *weather.Service
	registry  *city.Registry
	interval  time.Duration
}

// New creates a Scheduler. An interval <= 0 disables warming.
func New(registry *city.Registry, interval time.Duration, service *weather.Service) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		registry:  registry,
		interval:  interval,
	}
}

// Start schedules the periodic warm-up job and starts the underlying
// scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		log.Println("scheduler: cache warming disabled")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 1
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		log.Println("scheduler: running cache warm-up job")

		var wg sync.WaitGroup
		for _, c := range s.registry.All() {
			c := c
			wg.Add(1)
			go func() {
				defer wg.Done()

				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if _, err := s.service.Report(ctx, c.ID, false, ""); err != nil {
					log.Printf("scheduler: warm-up failed for %s: %v", c.ID, err)
				}
			}()
		}
		wg.Wait()
		log.Println("scheduler: completed cache warm-up job")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
