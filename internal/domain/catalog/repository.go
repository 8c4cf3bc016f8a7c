package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetTask(ctx context.Context, id string) (*Task, error) {
	var t Task
	err := r.db.GetContext(ctx, &t, `SELECT * FROM tasks WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *Repository) GetAd(ctx context.Context, id string) (*Ad, error) {
	var a Ad
	err := r.db.GetContext(ctx, &a, `SELECT * FROM ads WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *Repository) ListActiveTasks(ctx context.Context) ([]Task, error) {
	tasks := []Task{}
	err := r.db.SelectContext(ctx, &tasks, `
		SELECT * FROM tasks WHERE active ORDER BY created_at DESC
	`)
	return tasks, err
}

func (r *Repository) ListActiveAds(ctx context.Context) ([]Ad, error) {
	ads := []Ad{}
	err := r.db.SelectContext(ctx, &ads, `
		SELECT * FROM ads WHERE active ORDER BY created_at DESC
	`)
	return ads, err
}

// IncrementTaskCompleted bumps the task's lifetime completion counter.
func (r *Repository) IncrementTaskCompleted(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE tasks SET completed_count = completed_count + 1 WHERE id = $1
	`, id)
	return err
}

// IncrementAdWatched bumps the ad's lifetime watch counter.
func (r *Repository) IncrementAdWatched(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE ads SET watch_count = watch_count + 1 WHERE id = $1
	`, id)
	return err
}
