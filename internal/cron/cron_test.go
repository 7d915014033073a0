package cron

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/avelinelabs/orderfin-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})
}

type fakeRedisStore struct {
	values  map[string]string
	setErr  error
	heldKey string
}

func (f *fakeRedisStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if f.setErr != nil {
		return false, f.setErr
	}
	if f.values == nil {
		f.values = map[string]string{}
	}
	if _, exists := f.values[key]; exists {
		return false, nil
	}
	f.values[key] = fmt.Sprint(value)
	f.heldKey = key
	return true, nil
}

func (f *fakeRedisStore) Get(ctx context.Context, key string) (string, error) {
	value, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (f *fakeRedisStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func TestRedisLockAcquireRelease(t *testing.T) {
	store := &fakeRedisStore{}
	lock, err := NewRedisLock(store, "ofin:lock:test", time.Minute)
	if err != nil {
		t.Fatalf("NewRedisLock: %v", err)
	}

	ok, err := lock.Acquire(context.Background())
	if err != nil || !ok {
		t.Fatalf("expected to acquire lock, got ok=%v err=%v", ok, err)
	}

	second, err := NewRedisLock(store, "ofin:lock:test", time.Minute)
	if err != nil {
		t.Fatalf("NewRedisLock: %v", err)
	}
	ok, err = second.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if ok {
		t.Fatal("second acquire must fail while the lock is held")
	}

	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("Release: %v", err)
	}
	ok, err = second.Acquire(context.Background())
	if err != nil || !ok {
		t.Fatalf("expected acquire after release, got ok=%v err=%v", ok, err)
	}
}

func TestRedisLockReleaseIgnoresForeignOwner(t *testing.T) {
	store := &fakeRedisStore{values: map[string]string{"ofin:lock:test": "someone-else"}}
	lock, err := NewRedisLock(store, "ofin:lock:test", time.Minute)
	if err != nil {
		t.Fatalf("NewRedisLock: %v", err)
	}
	lock.owner = "me"

	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, ok := store.values["ofin:lock:test"]; !ok {
		t.Fatal("release must not delete a lock owned by another instance")
	}
}

type fakeLock struct {
	acquired bool
	releases int
}

func (f *fakeLock) Acquire(ctx context.Context) (bool, error) { return f.acquired, nil }
func (f *fakeLock) Release(ctx context.Context) error {
	f.releases++
	return nil
}

type recordingJob struct {
	name string
	runs int
	err  error
}

func (r *recordingJob) Name() string { return r.name }
func (r *recordingJob) Run(ctx context.Context) error {
	r.runs++
	return r.err
}

func TestServiceRunsJobsWhenLocked(t *testing.T) {
	job := &recordingJob{name: "test-job"}
	lock := &fakeLock{acquired: true}
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}
	if job.runs != 1 {
		t.Fatalf("expected job to run once, got %d", job.runs)
	}
	if lock.releases != 1 {
		t.Fatalf("expected one release, got %d", lock.releases)
	}
}

func TestServiceSkipsCycleWithoutLock(t *testing.T) {
	job := &recordingJob{name: "test-job"}
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     &fakeLock{acquired: false},
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}
	if job.runs != 0 {
		t.Fatal("jobs must not run without the lock")
	}
}

func TestServiceContinuesPastFailingJob(t *testing.T) {
	failing := &recordingJob{name: "failing", err: errors.New("boom")}
	healthy := &recordingJob{name: "healthy"}
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(failing, healthy),
		Lock:     &fakeLock{acquired: true},
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}
	if healthy.runs != 1 {
		t.Fatal("a failing job must not block later jobs")
	}
}

func TestRegistrySkipsNilJobs(t *testing.T) {
	registry := NewRegistry(nil, &recordingJob{name: "a"})
	registry.Register(nil)
	registry.Register(&recordingJob{name: "b"})

	if got := len(registry.Jobs()); got != 2 {
		t.Fatalf("expected 2 jobs, got %d", got)
	}
}
