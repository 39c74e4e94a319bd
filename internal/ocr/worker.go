package ocr

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Run drains the queue every interval until ctx is cancelled.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	s.log.Info("OCR worker started", zap.Duration("interval", interval))
	defer s.log.Info("OCR worker stopped")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		s.drain(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Service) drain(ctx context.Context) {
	for ctx.Err() == nil {
		processed, err := s.ProcessOne(ctx)
		if err != nil {
			s.log.Error("OCR job failed", zap.Error(err))
			return
		}
		if !processed {
			return
		}
	}
}

// StartWorker runs the worker in the background.
func StartWorker(ctx context.Context, service *Service, interval time.Duration) {
	go service.Run(ctx, interval)
}
