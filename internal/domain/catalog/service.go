package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// GetActiveTask loads a task and rejects it when retired.
func (s *Service) GetActiveTask(ctx context.Context, id string) (*Task, error) {
	t, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.Active {
		return nil, fmt.Errorf("%w: task %s", ErrInactive, id)
	}
	return t, nil
}

// GetActiveAd loads an ad and rejects it when retired.
func (s *Service) GetActiveAd(ctx context.Context, id string) (*Ad, error) {
	a, err := s.repo.GetAd(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.Active {
		return nil, fmt.Errorf("%w: ad %s", ErrInactive, id)
	}
	return a, nil
}

func (s *Service) ListActiveTasks(ctx context.Context) ([]Task, error) {
	return s.repo.ListActiveTasks(ctx)
}

func (s *Service) ListActiveAds(ctx context.Context) ([]Ad, error) {
	return s.repo.ListActiveAds(ctx)
}

// RecordTaskCompleted bumps the lifetime counter. The counter is advisory,
// so a failure is logged and swallowed after one retry.
func (s *Service) RecordTaskCompleted(ctx context.Context, id string) {
	s.bumpCounter(ctx, "task", id, s.repo.IncrementTaskCompleted)
}

// RecordAdWatched bumps the lifetime counter, same best-effort semantics.
func (s *Service) RecordAdWatched(ctx context.Context, id string) {
	s.bumpCounter(ctx, "ad", id, s.repo.IncrementAdWatched)
}

func (s *Service) bumpCounter(ctx context.Context, kind, id string, inc func(context.Context, string) error) {
	err := inc(ctx, id)
	if err != nil {
		select {
		case <-ctx.Done():
		case <-time.After(50 * time.Millisecond):
			err = inc(ctx, id)
		}
	}
	if err != nil {
		log.Warn().Err(err).Str(kind+"_id", id).Msg("failed to bump catalog counter")
	}
}
