package distlock

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisLockMutualExclusion(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	a := NewRedisLock(client, "campaign:42", time.Minute)
	b := NewRedisLock(client, "campaign:42", time.Minute)

	ok, err := a.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}

	ok, err = b.Acquire(ctx)
	if err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if ok {
		t.Fatal("lock acquired twice")
	}

	if err := a.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}

	ok, err = b.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("acquire after release: ok=%v err=%v", ok, err)
	}
}

func TestRedisLockReleaseOnlyByOwner(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	owner := NewRedisLock(client, "campaign:42", time.Minute)
	intruder := NewRedisLock(client, "campaign:42", time.Minute)

	if ok, _ := owner.Acquire(ctx); !ok {
		t.Fatal("owner could not acquire")
	}

	// A different instance holds a different ownership value; its release
	// must not free the owner's lock.
	if err := intruder.Release(ctx); err != nil {
		t.Fatalf("intruder release: %v", err)
	}
	if ok, _ := intruder.Acquire(ctx); ok {
		t.Fatal("lock was freed by a non-owner")
	}
}

func TestRedisLockExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	crashed := NewRedisLock(client, "campaign:42", 100*time.Millisecond)
	if ok, _ := crashed.Acquire(ctx); !ok {
		t.Fatal("acquire failed")
	}

	mr.FastForward(time.Second)

	next := NewRedisLock(client, "campaign:42", time.Minute)
	if ok, _ := next.Acquire(ctx); !ok {
		t.Fatal("lock did not expire")
	}
}

func TestAcquireWaitBlocksUntilFree(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	holder := NewRedisLock(client, "campaign:42", time.Minute)
	if ok, _ := holder.Acquire(ctx); !ok {
		t.Fatal("acquire failed")
	}

	waiter := NewRedisLock(client, "campaign:42", time.Minute)
	done := make(chan error, 1)
	go func() {
		done <- AcquireWait(ctx, waiter, 5*time.Millisecond)
	}()

	select {
	case err := <-done:
		t.Fatalf("AcquireWait returned early: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	holder.Release(ctx)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("AcquireWait: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("AcquireWait never obtained the freed lock")
	}
}

func TestPGAdvisoryLockAcquireRelease(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	// One connection serves both statements: advisory locks are
	// session-scoped, so unlocking from a different pool connection
	// would leak the lock.
	db.SetMaxOpenConns(1)

	mock.ExpectQuery(`SELECT pg_try_advisory_lock\(\$1\)`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(true))
	mock.ExpectExec(`SELECT pg_advisory_unlock\(\$1\)`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	lock := NewPGAdvisoryLock(db, "campaign:42")

	ok, err := lock.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("acquire: ok=%v err=%v", ok, err)
	}
	if lock.conn == nil {
		t.Fatal("acquire must pin a connection for the session")
	}

	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if lock.conn != nil {
		t.Fatal("release must return the pinned connection")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGAdvisoryLockReleaseWithoutAcquire(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	lock := NewPGAdvisoryLock(db, "campaign:42")
	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("release without acquire: %v", err)
	}
}

func TestAcquireWaitHonorsContext(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	holder := NewRedisLock(client, "campaign:42", time.Minute)
	if ok, _ := holder.Acquire(context.Background()); !ok {
		t.Fatal("acquire failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	waiter := NewRedisLock(client, "campaign:42", time.Minute)
	if err := AcquireWait(ctx, waiter, 5*time.Millisecond); err == nil {
		t.Fatal("expected context error")
	}
}
