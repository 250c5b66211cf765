package rewards

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Scheduler periodically runs the daily and weekly calculators. Both runs
// are guarded by existence checks, so ticking more often than once per day
// is harmless.
type Scheduler struct {
	DB            *gorm.DB
	CheckInterval time.Duration

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewScheduler creates a scheduler with an hourly check interval.
func NewScheduler(db *gorm.DB) *Scheduler {
	return &Scheduler{
		DB:            db,
		CheckInterval: time.Hour,
		stop:          make(chan struct{}),
	}
}

// Start launches the background loop. Runs once immediately so a restart
// never misses the current day.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ticker = time.NewTicker(s.CheckInterval)
	s.wg.Add(1)
	go s.run()
	logrus.WithFields(logrus.Fields{"interval": s.CheckInterval.String()}).
		Info("Reward scheduler started")
}

func (s *Scheduler) run() {
	defer s.wg.Done()
	s.runOnce()
	for {
		select {
		case <-s.ticker.C:
			s.runOnce()
		case <-s.stop:
			return
		}
	}
}

func (s *Scheduler) runOnce() {
	now := time.Now()
	if _, err := RunDaily(s.DB, now); err != nil {
		logrus.WithFields(logrus.Fields{"error": err.Error()}).Error("Daily reward run failed")
	}
	if _, err := RunWeekly(s.DB, now); err != nil {
		logrus.WithFields(logrus.Fields{"error": err.Error()}).Error("Weekly reward run failed")
	}
}

// Stop halts the loop and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	close(s.stop)
	s.wg.Wait()
	logrus.Info("Reward scheduler stopped")
}
