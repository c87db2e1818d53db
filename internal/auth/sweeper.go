package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/tarot42/backend/internal/repository"
)

// SessionSweeper は期限切れセッションを定期的に削除するバックグラウンドワーカー。
// セッションの有効性判定自体はexpires_atで行われるため、掃除が遅れても
// 認可には影響しない。溜まった行を物理削除するだけの役割。
type SessionSweeper struct {
	sessRepo repository.SessionRepository
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewSessionSweeper はSessionSweeperを生成する。intervalが0以下の場合は1時間になる。
func NewSessionSweeper(sessRepo repository.SessionRepository, interval time.Duration) *SessionSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SessionSweeper{
		sessRepo: sessRepo,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start は掃除ループをバックグラウンドで開始する。
func (s *SessionSweeper) Start() {
	go s.loop()
}

// Stop は掃除ループを停止し、ループの終了を待つ。
func (s *SessionSweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

func (s *SessionSweeper) loop() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

// sweep は期限切れセッションを1回削除する。失敗してもログを残して次回に委ねる。
func (s *SessionSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := s.sessRepo.DeleteExpired(ctx)
	if err != nil {
		slog.Error("failed to delete expired sessions",
			slog.String("error", err.Error()),
		)
		return
	}

	if deleted > 0 {
		slog.Info("expired sessions deleted",
			slog.Int64("count", deleted),
		)
	}
}
