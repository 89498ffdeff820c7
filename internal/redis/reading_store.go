package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"time"

	"github.com/apfk88/heartglance/internal/domain"
	"github.com/redis/go-redis/v9"
)

const readingsKey = "heartglance:readings"

// ReadingStore keeps the reading window in a Redis sorted set scored by
// timestamp (unix milliseconds). Members are "timestamp:sequence:bpm"; the
// per-store sequence keeps two identical readings in the same millisecond
// from collapsing into one set member.
type ReadingStore struct {
	client *redis.Client
	seq    atomic.Uint64
}

func NewReadingStore(client *redis.Client) *ReadingStore {
	return &ReadingStore{client: client}
}

func (s *ReadingStore) Append(ctx context.Context, r domain.Reading) error {
	ts := r.At.UnixMilli()
	member := fmt.Sprintf("%d:%d:%d", ts, s.seq.Add(1), r.BPM)

	if err := s.client.ZAdd(ctx, readingsKey, redis.Z{Score: float64(ts), Member: member}).Err(); err != nil {
		return fmt.Errorf("failed to append reading: %w", err)
	}
	return nil
}

func (s *ReadingStore) WindowStats(ctx context.Context, now time.Time, window time.Duration) (domain.RollingStats, error) {
	var stats domain.RollingStats

	cutoff := now.Add(-window).UnixMilli()
	if err := s.client.ZRemRangeByScore(ctx, readingsKey, "-inf", fmt.Sprintf("(%d", cutoff)).Err(); err != nil {
		return stats, fmt.Errorf("failed to trim reading window: %w", err)
	}

	members, err := s.client.ZRangeByScore(ctx, readingsKey, &redis.ZRangeBy{
		Min: strconv.FormatInt(cutoff, 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return stats, fmt.Errorf("failed to read window: %w", err)
	}
	if len(members) == 0 {
		return stats, nil
	}

	sum := 0
	for i, member := range members {
		bpm, err := parseMember(member)
		if err != nil {
			return domain.RollingStats{}, err
		}
		sum += bpm
		if i == 0 || bpm > stats.Maximum {
			stats.Maximum = bpm
		}
		if i == 0 || bpm < stats.Minimum {
			stats.Minimum = bpm
		}
	}
	stats.Count = len(members)
	stats.Average = sum / stats.Count
	return stats, nil
}

func (s *ReadingStore) Reset(ctx context.Context) error {
	if err := s.client.Del(ctx, readingsKey).Err(); err != nil {
		return fmt.Errorf("failed to reset reading store: %w", err)
	}
	return nil
}

func parseMember(member string) (int, error) {
	idx := strings.LastIndexByte(member, ':')
	if idx < 0 {
		return 0, fmt.Errorf("malformed reading member %q", member)
	}
	bpm, err := strconv.Atoi(member[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("malformed reading member %q: %w", member, err)
	}
	return bpm, nil
}
