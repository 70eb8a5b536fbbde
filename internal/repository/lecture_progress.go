// Package repository SQL backed collaborators
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgconn"
	"github.com/pot-code/learning-engine/internal/domain"
	"github.com/pot-code/learning-engine/internal/infrastructure/driver"
	"github.com/pot-code/learning-engine/internal/infrastructure/validate"
)

// LectureProgressRepository stores playback positions in lecture_progress
type LectureProgressRepository struct {
	Conn      driver.ITransactionalDB
	Validator validate.Validator
	now       func() time.Time
}

var _ domain.LectureProgressRepository = &LectureProgressRepository{}

// NewLectureProgressRepository create a LectureProgressRepository
func NewLectureProgressRepository(conn driver.ITransactionalDB, v validate.Validator) *LectureProgressRepository {
	return &LectureProgressRepository{
		Conn:      conn,
		Validator: v,
		now:       time.Now,
	}
}

// UpdateLectureProgress upsert the position of (user, lecture)
func (repo *LectureProgressRepository) UpdateLectureProgress(ctx context.Context, progress *domain.LectureProgressModel) error {
	if errs := repo.Validator.Struct(progress); len(errs) > 0 {
		return &validate.Error{Fields: errs}
	}

	tx, err := repo.Conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := repo.upsert(ctx, tx, progress); err != nil {
		tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (repo *LectureProgressRepository) upsert(ctx context.Context, conn driver.Executor, progress *domain.LectureProgressModel) error {
	now := repo.now().UTC()
	res, err := conn.ExecContext(ctx, `
UPDATE lecture_progress
SET last_view_at = $1, updated_at = $2
WHERE user_id = $3 AND lecture_id = $4`,
		progress.LastViewAt, now, progress.UserID, progress.LectureID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}

	_, err = conn.ExecContext(ctx, `
INSERT INTO lecture_progress (user_id, lecture_id, last_view_at, updated_at)
VALUES ($1, $2, $3, $4)`,
		progress.UserID, progress.LectureID, progress.LastViewAt, now)
	if isDuplicateKey(err) {
		// a concurrent writer inserted first, its position is as fresh as ours
		return nil
	}
	return err
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
