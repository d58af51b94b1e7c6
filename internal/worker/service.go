// Package worker projects eco score movements onto the Redis
// leaderboard. It consumes the delivery and return-resolution events;
// Postgres stays the source of truth, the ZSET is a disposable read
// model.
package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "ecobazaar/internal/kafka"
	"ecobazaar/internal/orders"
	"ecobazaar/internal/redisx"
)

type Service struct {
	Redis       *redis.Client
	ServiceName string
}

// HandleOrderDelivered applies the score award to the leaderboard.
func (s *Service) HandleOrderDelivered(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderDelivered {
		return nil // ignore
	}
	if s.seen(ctx, env.EventID) {
		return nil
	}

	p, err := kafkax.UnwrapPayload[orders.OrderDeliveredPayload](env.Payload)
	if err != nil {
		return err
	}

	return s.setScore(ctx, p.UserID, p.NewEcoScore)
}

// HandleReturnResolved rolls the clawback into the leaderboard. Only
// approved returns move the score; rejections carry no score fields.
func (s *Service) HandleReturnResolved(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventReturnResolved {
		return nil
	}
	if s.seen(ctx, env.EventID) {
		return nil
	}

	p, err := kafkax.UnwrapPayload[orders.ReturnResolvedPayload](env.Payload)
	if err != nil {
		return err
	}
	if p.Resolution != orders.ReturnApproved {
		return nil
	}

	return s.setScore(ctx, p.UserID, p.NewEcoScore)
}

// seen marks the event id and reports whether it was already handled.
func (s *Service) seen(ctx context.Context, eventID string) bool {
	key := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, eventID)
	exists, _ := redisx.Exists(ctx, s.Redis, key)
	if exists {
		return true
	}
	_ = s.Redis.Set(ctx, key, "1", redisx.TTLDedup).Err()
	return false
}

// setScore writes the absolute score carried by the event. Events per
// order are partition-ordered, so last write wins is correct here.
func (s *Service) setScore(ctx context.Context, userID string, score int) error {
	err := s.Redis.ZAdd(ctx, redisx.KeyEcoScoreLeaderboard, redis.Z{
		Member: userID,
		Score:  float64(score),
	}).Err()
	if err != nil {
		return err
	}
	log.Debug().Str("user_id", userID).Int("eco_score", score).Msg("leaderboard updated")
	return nil
}
