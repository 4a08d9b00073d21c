package trendstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/skincare-api/internal/domain/recommendation"
)

// ValkeyStore keeps concern counters in a Valkey sorted set.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "skincare"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

// IncrementConcerns issues one ZINCRBY per tag in a single round trip.
func (s *ValkeyStore) IncrementConcerns(ctx context.Context, concerns []string) error {
	cmds := make(valkey.Commands, 0, len(concerns))
	for _, c := range concerns {
		if c == "" {
			continue
		}
		cmds = append(cmds, s.client.B().Zincrby().Key(s.trendingKey()).Increment(1).Member(c).Build())
	}
	if len(cmds) == 0 {
		return nil
	}
	for _, resp := range s.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return err
		}
	}
	return nil
}

// TopConcerns reads the whole set, orders it by count desc then name asc and
// truncates. ZREVRANGE orders ties reverse-lexically, so cutting server side
// would pick the wrong members when a tie spans the limit.
func (s *ValkeyStore) TopConcerns(ctx context.Context, limit int) ([]recommendation.ConcernTrend, error) {
	if limit <= 0 {
		limit = 10
	}
	resp := s.client.Do(ctx, s.client.B().Zrevrange().Key(s.trendingKey()).Start(0).Stop(-1).Withscores().Build())
	scores, err := resp.AsZScores()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return []recommendation.ConcernTrend{}, nil
		}
		return nil, err
	}
	out := make([]recommendation.ConcernTrend, 0, len(scores))
	for _, z := range scores {
		out = append(out, recommendation.ConcernTrend{Concern: z.Member, Count: int64(z.Score)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Concern < out[j].Concern
		}
		return out[i].Count > out[j].Count
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *ValkeyStore) trendingKey() string {
	return fmt.Sprintf("%s:concerns:trending", s.prefix)
}

var _ recommendation.TrendStore = (*ValkeyStore)(nil)
