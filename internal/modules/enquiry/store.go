// README: Enquiry store backed by Redis JSON documents and sorted-set indexes.
package enquiry

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"chauffeur/internal/types"
)

// Store is the persistence seam for enquiries. The Redis implementation
// is the production one; tests use the in-memory store. List and
// ListByStatus treat limit <= 0 as unbounded.
type Store interface {
	Save(ctx context.Context, e *Enquiry) error
	FindByID(ctx context.Context, id types.ID) (*Enquiry, error)
	FindByReference(ctx context.Context, ref string) (*Enquiry, error)
	FindByJobSuffix(ctx context.Context, suffix string) (*Enquiry, error)
	List(ctx context.Context, limit, offset int) ([]*Enquiry, error)
	ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*Enquiry, error)
	Delete(ctx context.Context, e *Enquiry) error
	NextReference(ctx context.Context, prefix string, now time.Time) (string, error)
}

const (
	keyAll = "enquiries:all"

	// jobSuffixScan bounds how far back a 3 digit job lookup searches.
	jobSuffixScan = 200
)

func keyEnquiry(id types.ID) string { return "enquiry:" + string(id) }
func keyRef(ref string) string      { return "enquiry:ref:" + ref }
func keyStatus(s Status) string     { return "enquiries:status:" + string(s) }
func keyCounter(year int) string    { return fmt.Sprintf("counter:ref:%d", year) }

type RedisStore struct {
	redis *redis.Client
}

func NewRedisStore(redisClient *redis.Client) *RedisStore {
	return &RedisStore{redis: redisClient}
}

// Save writes the document and maintains the listing, status, and
// reference indexes. A status change moves the id between status sets.
func (s *RedisStore) Save(ctx context.Context, e *Enquiry) error {
	e.UpdatedAt = time.Now()

	prev, err := s.FindByID(ctx, e.ID)
	if err != nil && err != ErrNotFound {
		return err
	}

	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, keyEnquiry(e.ID), data, 0)
	pipe.ZAdd(ctx, keyAll, redis.Z{Score: float64(e.CreatedAt.UnixMilli()), Member: string(e.ID)})
	if prev != nil && prev.Status != e.Status {
		pipe.ZRem(ctx, keyStatus(prev.Status), string(e.ID))
	}
	pipe.ZAdd(ctx, keyStatus(e.Status), redis.Z{Score: float64(e.CreatedAt.UnixMilli()), Member: string(e.ID)})
	if e.ReferenceNumber != "" {
		pipe.Set(ctx, keyRef(e.ReferenceNumber), string(e.ID), 0)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) FindByID(ctx context.Context, id types.ID) (*Enquiry, error) {
	raw, err := s.redis.Get(ctx, keyEnquiry(id)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var e Enquiry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *RedisStore) FindByReference(ctx context.Context, ref string) (*Enquiry, error) {
	id, err := s.redis.Get(ctx, keyRef(ref)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.FindByID(ctx, types.ID(id))
}

// FindByJobSuffix resolves a 3 digit job number against recent
// enquiries, newest first.
func (s *RedisStore) FindByJobSuffix(ctx context.Context, suffix string) (*Enquiry, error) {
	recent, err := s.List(ctx, jobSuffixScan, 0)
	if err != nil {
		return nil, err
	}
	for _, e := range recent {
		if strings.HasSuffix(e.ReferenceNumber, suffix) {
			return e, nil
		}
	}
	return nil, ErrNotFound
}

func (s *RedisStore) List(ctx context.Context, limit, offset int) ([]*Enquiry, error) {
	return s.listFromIndex(ctx, keyAll, limit, offset)
}

func (s *RedisStore) ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*Enquiry, error) {
	return s.listFromIndex(ctx, keyStatus(status), limit, offset)
}

func (s *RedisStore) listFromIndex(ctx context.Context, key string, limit, offset int) ([]*Enquiry, error) {
	// limit <= 0 means unbounded, matching MemoryStore. Workflow
	// callers rely on a full scan; paging callers pass a positive limit.
	stop := int64(-1)
	if limit > 0 {
		stop = int64(offset + limit - 1)
	}
	ids, err := s.redis.ZRevRange(ctx, key, int64(offset), stop).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*Enquiry, 0, len(ids))
	for _, id := range ids {
		e, err := s.FindByID(ctx, types.ID(id))
		if err == ErrNotFound {
			// Stale index entry; skip.
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *RedisStore) Delete(ctx context.Context, e *Enquiry) error {
	pipe := s.redis.TxPipeline()
	pipe.Del(ctx, keyEnquiry(e.ID))
	pipe.ZRem(ctx, keyAll, string(e.ID))
	pipe.ZRem(ctx, keyStatus(e.Status), string(e.ID))
	if e.ReferenceNumber != "" {
		pipe.Del(ctx, keyRef(e.ReferenceNumber))
	}
	_, err := pipe.Exec(ctx)
	return err
}

// NextReference allocates the next sequential reference for the year,
// e.g. "JT-2026-001234". The counter expires at year end so numbering
// restarts every January.
func (s *RedisStore) NextReference(ctx context.Context, prefix string, now time.Time) (string, error) {
	year := now.Year()
	key := keyCounter(year)

	counter, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		return "", err
	}
	endOfYear := time.Date(year, 12, 31, 23, 59, 59, 0, now.Location())
	_ = s.redis.Expire(ctx, key, time.Until(endOfYear)).Err()

	return fmt.Sprintf("%s-%d-%06d", prefix, year, counter), nil
}
