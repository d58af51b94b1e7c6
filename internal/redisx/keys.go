package redisx

import "time"

const (
	// Eco-friendly shortlist cache: recs:ecofriendly:{limit} -> JSON product list
	KeyEcoFriendlyRecs = "recs:ecofriendly:%d"

	// Report caches: report:user:{user_id}:{yyyy-mm}, report:seller:{seller_id}:{yyyy-mm}
	KeyUserReport   = "report:user:%s:%s"
	KeySellerReport = "report:seller:%s:%s"

	// Event dedup for consumers: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Eco score leaderboard ZSET: member = user_id, score = eco score.
	KeyEcoScoreLeaderboard = "ecoscore:leaderboard"
)

var (
	TTLRecommendation = 5 * time.Minute
	TTLReport         = 10 * time.Minute
	TTLDedup          = 48 * time.Hour
)
