package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Sink delivers a message to a group
type Sink interface {
	Send(ctx context.Context, groupID int64, text string) error
}

// LogSink writes every notification to the log
type LogSink struct {
	Log *zap.Logger
}

func (s LogSink) Send(_ context.Context, groupID int64, text string) error {
	s.Log.Info("notification", zap.Int64("group_id", groupID), zap.String("text", text))
	return nil
}

// Fanout delivers to every sink and joins their errors
type Fanout []Sink

func (f Fanout) Send(ctx context.Context, groupID int64, text string) error {
	var errs []error
	for _, s := range f {
		if err := s.Send(ctx, groupID, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
