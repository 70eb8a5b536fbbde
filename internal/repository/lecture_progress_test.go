package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgconn"
	"github.com/pot-code/learning-engine/internal/domain"
	"github.com/pot-code/learning-engine/internal/infrastructure/driver"
	"github.com/pot-code/learning-engine/internal/infrastructure/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result int64

func (r result) LastInsertId() (int64, error) { return 0, nil }
func (r result) RowsAffected() (int64, error) { return int64(r), nil }

type execCall struct {
	query string
	args  []interface{}
}

// fakeDB records statements, every statement pops the next queued outcome
type fakeDB struct {
	calls     []execCall
	affected  []int64
	errs      []error
	committed bool
	rolled    bool
}

func (db *fakeDB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	db.calls = append(db.calls, execCall{query, args})
	i := len(db.calls) - 1
	var err error
	if i < len(db.errs) {
		err = db.errs[i]
	}
	var n int64
	if i < len(db.affected) {
		n = db.affected[i]
	}
	return result(n), err
}

func (db *fakeDB) BeginTx(ctx context.Context, opts *driver.TxOptions) (driver.Tx, error) {
	return db, nil
}

func (db *fakeDB) Commit(ctx context.Context) error   { db.committed = true; return nil }
func (db *fakeDB) Rollback(ctx context.Context) error { db.rolled = true; return nil }
func (db *fakeDB) Close(ctx context.Context) error    { return nil }
func (db *fakeDB) Ping(ctx context.Context) error     { return nil }

func newRepo(t *testing.T, db *fakeDB) *LectureProgressRepository {
	v, err := validate.NewValidator("en")
	require.NoError(t, err)
	repo := NewLectureProgressRepository(db, v)
	repo.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return repo
}

var progress = &domain.LectureProgressModel{UserID: "u1", LectureID: "l1", LastViewAt: "00:02:03"}

func TestUpdateExistingRow(t *testing.T) {
	db := &fakeDB{affected: []int64{1}}
	require.NoError(t, newRepo(t, db).UpdateLectureProgress(context.Background(), progress))

	require.Len(t, db.calls, 1)
	assert.Equal(t, []interface{}{"00:02:03", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), "u1", "l1"}, db.calls[0].args)
	assert.True(t, db.committed)
}

func TestInsertWhenMissing(t *testing.T) {
	db := &fakeDB{affected: []int64{0, 1}}
	require.NoError(t, newRepo(t, db).UpdateLectureProgress(context.Background(), progress))

	require.Len(t, db.calls, 2)
	assert.Contains(t, db.calls[1].query, "INSERT INTO lecture_progress")
	assert.Equal(t, "u1", db.calls[1].args[0])
	assert.True(t, db.committed)
}

func TestDuplicateInsertIsNotAnError(t *testing.T) {
	dups := map[string]error{
		"mysql":    &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"},
		"postgres": &pgconn.PgError{Code: "23505"},
	}
	for name, dup := range dups {
		t.Run(name, func(t *testing.T) {
			db := &fakeDB{affected: []int64{0, 0}, errs: []error{nil, dup}}
			assert.NoError(t, newRepo(t, db).UpdateLectureProgress(context.Background(), progress))
			assert.True(t, db.committed)
		})
	}
}

func TestFailureRollsBack(t *testing.T) {
	db := &fakeDB{errs: []error{errors.New("connection reset")}}
	err := newRepo(t, db).UpdateLectureProgress(context.Background(), progress)
	assert.EqualError(t, err, "connection reset")
	assert.True(t, db.rolled)
	assert.False(t, db.committed)
}

func TestInvalidProgressIsRejected(t *testing.T) {
	db := &fakeDB{}
	err := newRepo(t, db).UpdateLectureProgress(context.Background(), &domain.LectureProgressModel{UserID: "u1", LectureID: "l1", LastViewAt: "2 minutes"})

	var verr *validate.Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "lastViewAt", verr.Fields[0].Domain)
	assert.Empty(t, db.calls)
}
