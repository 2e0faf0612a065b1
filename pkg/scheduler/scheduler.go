// Package scheduler 在 gocron/v2 之上按名称管理 cron 任务，并通过事件监听记录每个任务的运行状态.
package scheduler

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yeisme/trackvault/pkg/log"
)

// JobStatus 任务状态.
type JobStatus string

const (
	StatusScheduled JobStatus = "scheduled"
	StatusRunning   JobStatus = "running"
	StatusError     JobStatus = "error" // 最近一次运行失败
)

// JobFunc 任务函数，返回的错误会记录到任务状态中.
type JobFunc func(ctx context.Context) error

// JobInfo 任务快照，NextRun 与 LastRun 在读取时从 gocron 取得.
type JobInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CronExpr    string    `json:"cron_expr"`
	NextRun     time.Time `json:"next_run"`
	LastRun     time.Time `json:"last_run"`
	LastSuccess time.Time `json:"last_success,omitempty"`
	Runs        int       `json:"runs"`
	Status      JobStatus `json:"status"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type entry struct {
	job  gocron.Job
	info JobInfo
}

// Scheduler 包装 gocron.Scheduler，任务名唯一.
type Scheduler struct {
	cron   gocron.Scheduler
	logger *zerolog.Logger

	mu     sync.RWMutex
	byName map[string]*entry
}

// NewScheduler 创建调度器，需调用 Start 后任务才会触发.
func NewScheduler() (*Scheduler, error) {
	cron, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("new scheduler: %w", err)
	}

	return &Scheduler{
		cron:   cron,
		logger: log.Logger(),
		byName: make(map[string]*entry),
	}, nil
}

// AddCron 添加一个基于 cron 表达式（5 段）的定时任务.
// 同一任务不会并发执行，上一次未结束时跳过本次触发.
func (s *Scheduler) AddCron(ctx context.Context, name, cronExpr string, job JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byName[name]; ok {
		return fmt.Errorf("job %q already exists", name)
	}

	j, err := s.cron.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(recovered(job), ctx),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithEventListeners(
			gocron.BeforeJobRuns(func(_ uuid.UUID, name string) { s.markRunning(name) }),
			gocron.AfterJobRuns(func(_ uuid.UUID, name string) { s.markDone(name, nil) }),
			gocron.AfterJobRunsWithError(func(_ uuid.UUID, name string, err error) { s.markDone(name, err) }),
		),
	)
	if err != nil {
		return fmt.Errorf("add job %q: %w", name, err)
	}

	now := time.Now()
	s.byName[name] = &entry{job: j, info: JobInfo{
		ID:        j.ID().String(),
		Name:      name,
		CronExpr:  cronExpr,
		Status:    StatusScheduled,
		CreatedAt: now,
		UpdatedAt: now,
	}}

	s.logger.Info().Str("job", name).Str("cron", cronExpr).Msg("Added cron job")

	return nil
}

// recovered 把任务中的 panic 转成错误，交给 AfterJobRunsWithError 记录.
func recovered(job JobFunc) func(ctx context.Context) error {
	return func(ctx context.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()

		return job(ctx)
	}
}

func (s *Scheduler) markRunning(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.byName[name]; ok {
		e.info.Status = StatusRunning
		e.info.UpdatedAt = time.Now()
	}
}

func (s *Scheduler) markDone(name string, err error) {
	now := time.Now()

	s.mu.Lock()
	e, ok := s.byName[name]
	if ok {
		e.info.Runs++
		e.info.LastRun = now
		e.info.UpdatedAt = now

		if err != nil {
			e.info.Status = StatusError
			e.info.Error = err.Error()
		} else {
			e.info.Status = StatusScheduled
			e.info.Error = ""
			e.info.LastSuccess = now
		}
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error().Err(err).Str("job", name).Msg("Job failed")
	}
}

// RunNow 立即触发一次指定任务，不影响原有调度.
func (s *Scheduler) RunNow(name string) error {
	s.mu.RLock()
	e, ok := s.byName[name]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("job %q does not exist", name)
	}

	return e.job.RunNow()
}

// GetJobInfoByName 返回指定任务的快照.
func (s *Scheduler) GetJobInfoByName(name string) (JobInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byName[name]
	if !ok {
		return JobInfo{}, fmt.Errorf("job %q does not exist", name)
	}

	return e.snapshot(), nil
}

// GetJobInfos 按名称排序返回所有任务的快照.
func (s *Scheduler) GetJobInfos() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]JobInfo, 0, len(s.byName))
	for _, e := range s.byName {
		infos = append(infos, e.snapshot())
	}

	slices.SortFunc(infos, func(a, b JobInfo) int { return strings.Compare(a.Name, b.Name) })

	return infos
}

func (e *entry) snapshot() JobInfo {
	info := e.info

	if next, err := e.job.NextRun(); err == nil {
		info.NextRun = next
	}

	if last, err := e.job.LastRun(); err == nil && last.After(info.LastRun) {
		info.LastRun = last
	}

	return info
}

// RemoveJob 按 ID 删除任务.
func (s *Scheduler) RemoveJob(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cron.RemoveJob(id); err != nil {
		return err
	}

	for name, e := range s.byName {
		if e.job.ID() == id {
			delete(s.byName, name)
			s.logger.Info().Str("job", name).Msg("Removed job")

			break
		}
	}

	return nil
}

// RemoveJobByName 按名称删除任务.
func (s *Scheduler) RemoveJobByName(name string) error {
	s.mu.RLock()
	e, ok := s.byName[name]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("job %q does not exist", name)
	}

	return s.RemoveJob(e.job.ID())
}

// Start 启动调度器.
func (s *Scheduler) Start() {
	s.logger.Info().Int("jobs", len(s.GetJobInfos())).Msg("Starting scheduler")
	s.cron.Start()
}

// StopJobs 停止所有任务的调度，调度器本身保持可用.
func (s *Scheduler) StopJobs() error {
	return s.cron.StopJobs()
}

// JobsWaitingInQueue 排队等待执行的任务数.
func (s *Scheduler) JobsWaitingInQueue() int {
	return s.cron.JobsWaitingInQueue()
}

// Shutdown 关闭调度器，等待运行中的任务结束.
func (s *Scheduler) Shutdown() error {
	s.logger.Info().Msg("Stopping scheduler")

	return s.cron.Shutdown()
}
