package auth

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestSessionSweeper_DeletesExpiredSessionsPeriodically(t *testing.T) {
	var calls atomic.Int32
	sessRepo := &mockSessionRepo{
		deleteExpiredFn: func(ctx context.Context) (int64, error) {
			if _, ok := ctx.Deadline(); !ok {
				t.Error("掃除のコンテキストにデッドラインが設定されていない")
			}
			calls.Add(1)
			return 3, nil
		},
	}

	sweeper := NewSessionSweeper(sessRepo, 10*time.Millisecond)
	sweeper.Start()
	defer sweeper.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("DeleteExpiredが呼ばれなかった")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSessionSweeper_Stop_TerminatesLoop(t *testing.T) {
	sweeper := NewSessionSweeper(&mockSessionRepo{}, 10*time.Millisecond)
	sweeper.Start()

	done := make(chan struct{})
	go func() {
		sweeper.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stopがタイムアウトした")
	}
}

func TestSessionSweeper_ContinuesAfterSweepError(t *testing.T) {
	var calls atomic.Int32
	sessRepo := &mockSessionRepo{
		deleteExpiredFn: func(ctx context.Context) (int64, error) {
			calls.Add(1)
			return 0, errors.New("db down")
		},
	}

	sweeper := NewSessionSweeper(sessRepo, 10*time.Millisecond)
	sweeper.Start()
	defer sweeper.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("エラー後に掃除ループが継続しなかった")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
