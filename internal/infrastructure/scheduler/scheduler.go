// Package scheduler runs named background jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JobStatus represents the outcome of the last run of a job
type JobStatus string

const (
	JobStatusIdle    JobStatus = "IDLE"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// JobFunc is the body of a scheduled job
type JobFunc func(ctx context.Context) error

// JobInfo is a snapshot of a registered job
type JobInfo struct {
	Name        string
	Schedule    string
	Status      JobStatus
	Error       string
	Runs        int
	LastStarted *time.Time
	LastEnded   *time.Time
	Next        time.Time
}

type job struct {
	name     string
	schedule string
	fn       JobFunc
	timeout  time.Duration
	entryID  cron.EntryID

	// guarded by Scheduler.mu
	status      JobStatus
	err         string
	runs        int
	running     bool
	lastStarted *time.Time
	lastEnded   *time.Time
}

// Scheduler wraps a cron runner with per-job timeouts, overlap
// prevention and status tracking.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger

	mu      sync.Mutex
	jobs    map[string]*job
	running bool

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a scheduler. Schedules use the standard five field format.
func New(logger *zap.Logger, opts ...cron.Option) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "scheduler"))
	opts = append([]cron.Option{cron.WithLogger(zapCronLogger{logger: logger})}, opts...)
	return &Scheduler{
		cron:   cron.New(opts...),
		logger: logger,
		jobs:   make(map[string]*job),
	}
}

// AddJob registers fn under name. A timeout of zero means no deadline.
func (s *Scheduler) AddJob(name, schedule string, timeout time.Duration, fn JobFunc) error {
	schedule = strings.TrimSpace(schedule)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrSchedulerRunning
	}
	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, name)
	}

	j := &job{name: name, schedule: schedule, fn: fn, timeout: timeout, status: JobStatusIdle}
	id, err := s.cron.AddFunc(schedule, func() { s.run(j) })
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidSchedule, schedule, err)
	}
	j.entryID = id
	s.jobs[name] = j
	return nil
}

// Start begins firing jobs on their schedules
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.baseCtx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.running = true
	s.cron.Start()
	s.logger.Info("Scheduler started", zap.Int("jobs", len(s.jobs)))
}

// Stop halts the cron runner, cancels running jobs and waits for them or ctx
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	cronDone := s.cron.Stop()
	cancel()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunNow runs a job synchronously outside its schedule
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return s.execute(ctx, j)
}

// Jobs returns a snapshot of every job, sorted by name
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	infos := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		infos = append(infos, JobInfo{
			Name:        j.name,
			Schedule:    j.schedule,
			Status:      j.status,
			Error:       j.err,
			Runs:        j.runs,
			LastStarted: j.lastStarted,
			LastEnded:   j.lastEnded,
			Next:        s.nextRun(j),
		})
	}
	sort.Slice(infos, func(a, b int) bool { return infos[a].Name < infos[b].Name })
	return infos
}

// nextRun reads the next activation from the cron runner. Entries get
// their Next only once the runner starts, so before that it is computed
// from the parsed schedule.
func (s *Scheduler) nextRun(j *job) time.Time {
	entry := s.cron.Entry(j.entryID)
	if entry.Next.IsZero() && entry.Schedule != nil {
		return entry.Schedule.Next(time.Now())
	}
	return entry.Next
}

func (s *Scheduler) run(j *job) {
	s.mu.Lock()
	ctx := s.baseCtx
	s.mu.Unlock()
	if ctx == nil {
		return
	}
	_ = s.execute(ctx, j)
}

func (s *Scheduler) execute(ctx context.Context, j *job) error {
	s.mu.Lock()
	if j.running {
		s.mu.Unlock()
		s.logger.Warn("Job still running, skipping", zap.String("job", j.name))
		return nil
	}
	j.running = true
	now := time.Now()
	j.status = JobStatusRunning
	j.lastStarted = &now
	j.err = ""
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	err := s.invoke(ctx, j)

	s.mu.Lock()
	end := time.Now()
	j.running = false
	j.runs++
	j.lastEnded = &end
	if err != nil {
		j.status = JobStatusFailed
		j.err = err.Error()
	} else {
		j.status = JobStatusSuccess
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Job failed",
			zap.String("job", j.name),
			zap.Duration("duration", end.Sub(now)),
			zap.Error(err),
		)
		return err
	}
	s.logger.Info("Job completed",
		zap.String("job", j.name),
		zap.Duration("duration", end.Sub(now)),
	)
	return nil
}

func (s *Scheduler) invoke(ctx context.Context, j *job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", j.name, r)
		}
	}()
	return j.fn(ctx)
}

// zapCronLogger adapts zap to cron.Logger
type zapCronLogger struct {
	logger *zap.Logger
}

func (l zapCronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, zap.Any("details", keysAndValues))
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, zap.Error(err), zap.Any("details", keysAndValues))
}
