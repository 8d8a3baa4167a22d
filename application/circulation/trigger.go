package circulation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"circulate-backend/application/ports"
)

// Trigger reacts to newly posted content by recording, per circle member
// and circle frequency, that the circle has something unsent. The upsert is
// a set union, so replaying the same content insert is a no-op.
type Trigger struct {
	circles      ports.CircleRepository
	circulations ports.CirculationRepository
	logger       *zap.Logger
}

// NewTrigger builds the content fan-out handler.
func NewTrigger(
	circles ports.CircleRepository,
	circulations ports.CirculationRepository,
	logger *zap.Logger,
) *Trigger {
	return &Trigger{
		circles:      circles,
		circulations: circulations,
		logger:       logger,
	}
}

// FanOut upserts an upcoming-circulation record for every (member,
// frequency) pair of the given circles. Duplicate circle ids in the input
// collapse to one lookup. Individual upsert failures are logged and do not
// stop the remaining pairs; the first failure is reported after the batch
// so the event source can retry.
func (t *Trigger) FanOut(ctx context.Context, circleIDs []string) error {
	unique := dedupe(circleIDs)
	if len(unique) == 0 {
		return nil
	}

	circles, err := t.circles.BatchGetByIDs(ctx, unique)
	if err != nil {
		return fmt.Errorf("resolve circles: %w", err)
	}

	var firstErr error
	for _, id := range unique {
		circle, ok := circles[id]
		if !ok {
			t.logger.Warn("circle gone before fan-out", zap.String("circleId", id))
			continue
		}

		for _, member := range circle.Members {
			if err := t.circulations.Upsert(ctx, member, circle.Frequency, circle.ID); err != nil {
				t.logger.Error("failed to upsert circulation",
					zap.String("circleId", circle.ID),
					zap.String("userId", member),
					zap.Error(err))
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	}

	return firstErr
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
