package asyncruntime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunOnBackgroundExecutesTask(t *testing.T) {
	r := New(nil)
	defer r.Close()

	done := make(chan struct{})
	r.RunOnBackground(context.Background(), func(ctx context.Context) {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
}

func TestRunOnBackgroundTasksRunSequentially(t *testing.T) {
	r := New(nil)
	defer r.Close()

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	wg.Add(3)
	for i := 0; i < 3; i++ {
		i := i
		r.RunOnBackground(context.Background(), func(ctx context.Context) {
			defer wg.Done()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}
	wg.Wait()
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestRunOnBackgroundSyncBlocksUntilDone(t *testing.T) {
	r := New(nil)
	defer r.Close()

	var ran bool
	r.RunOnBackgroundSync(context.Background(), func(ctx context.Context) {
		time.Sleep(10 * time.Millisecond)
		ran = true
	})
	assert.True(t, ran)
}

func TestRunOnThreadRunsConcurrently(t *testing.T) {
	r := New(nil)
	defer r.Close()

	var wg sync.WaitGroup
	wg.Add(2)
	start := make(chan struct{})
	for i := 0; i < 2; i++ {
		r.RunOnThread(func() {
			<-start
			wg.Done()
		})
	}
	close(start)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("goroutines did not run concurrently")
	}
}

func TestPanicInBackgroundTaskDoesNotKillWorker(t *testing.T) {
	r := New(nil)
	defer r.Close()

	r.RunOnBackground(context.Background(), func(ctx context.Context) {
		panic("boom")
	})

	done := make(chan struct{})
	r.RunOnBackground(context.Background(), func(ctx context.Context) {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not survive a panicking task")
	}
}
