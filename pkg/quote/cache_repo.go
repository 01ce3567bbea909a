// 文件: pkg/quote/cache_repo.go
// 报价 Redis 缓存层 (装饰器)
//
// 【缓存策略】
// - 报价记录写入后不可变，单条记录写穿缓存
// - 用户最近报价列表: 读时回填，新增报价时删除
// - 用户版本号: 新增报价时递增，回填在 WATCH 事务中校验版本，过期的回填直接丢弃

package quote

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ Repository = (*CachedRepository)(nil)

const (
	// 单条报价: quote:id:{quoteID}
	cacheKeyQuote = "quote:id:"
	// 用户最近报价: quote:user:{userID}:{limit}
	cacheKeyUser = "quote:user:"
	// 用户列表缓存 key 集合，新增报价时整体删除
	cacheKeyUserIndex = "quote:user-keys:"
	// 用户列表版本: quote:user-ver:{userID}
	cacheKeyUserVersion = "quote:user-ver:"

	// 列表缓存时间较短
	listCacheTTL = 30 * time.Second
	// 版本号保留时间需长于列表缓存
	versionTTL = time.Hour
)

// CachedRepository Redis 缓存装饰器
//
// 用法:
//
//	mysqlRepo := NewMySQLRepository(db)
//	repo := NewCachedRepository(mysqlRepo, redisClient, cfg.CacheTTL)
type CachedRepository struct {
	repo  Repository // 被装饰的底层 Repository
	redis *redis.Client
	ttl   time.Duration
}

func NewCachedRepository(repo Repository, rds *redis.Client, ttl time.Duration) *CachedRepository {
	return &CachedRepository{
		repo:  repo,
		redis: rds,
		ttl:   ttl,
	}
}

// =============================================================================
// 写操作
// =============================================================================

func (r *CachedRepository) Create(ctx context.Context, rec *Record) error {
	// 1. 写 DB
	if err := r.repo.Create(ctx, rec); err != nil {
		return err
	}

	// 2. 写穿单条缓存，删除该用户的列表缓存
	r.setCache(ctx, quoteKey(rec.QuoteID), rec, r.ttl)
	r.invalidateUser(ctx, rec.UserID)
	return nil
}

// =============================================================================
// 读操作
// =============================================================================

func (r *CachedRepository) GetByQuoteID(ctx context.Context, quoteID int64) (*Record, error) {
	key := quoteKey(quoteID)

	// 1. 查缓存
	data, err := r.redis.Get(ctx, key).Bytes()
	if err == nil {
		var rec Record
		if json.Unmarshal(data, &rec) == nil {
			return &rec, nil // Cache hit
		}
	}

	// 2. Cache miss, 查底层
	rec, err := r.repo.GetByQuoteID(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	// 3. 回填
	r.setCache(ctx, key, rec, r.ttl)
	return rec, nil
}

func (r *CachedRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*Record, error) {
	key := cacheKeyUser + strconv.FormatInt(userID, 10) + ":" + strconv.Itoa(limit)

	data, err := r.redis.Get(ctx, key).Bytes()
	if err == nil {
		var recs []*Record
		if json.Unmarshal(data, &recs) == nil {
			return recs, nil
		}
	}

	// 先取版本再查底层，回填时版本变化说明期间有新报价
	verKey := cacheKeyUserVersion + strconv.FormatInt(userID, 10)
	ver, err := r.redis.Get(ctx, verKey).Int64()
	if err != nil && err != redis.Nil {
		return r.repo.ListByUser(ctx, userID, limit)
	}

	recs, err := r.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	r.fillUserList(ctx, userID, key, verKey, ver, recs)
	return recs, nil
}

// =============================================================================
// 缓存操作 (失败只影响命中率，不影响结果)
// =============================================================================

func (r *CachedRepository) setCache(ctx context.Context, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	r.redis.Set(ctx, key, data, ttl)
}

// fillUserList 版本未变时才写入列表缓存
func (r *CachedRepository) fillUserList(ctx context.Context, userID int64, key, verKey string, ver int64, recs []*Record) {
	data, err := json.Marshal(recs)
	if err != nil {
		return
	}
	indexKey := cacheKeyUserIndex + strconv.FormatInt(userID, 10)

	err = r.redis.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, verKey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if cur != ver {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, listCacheTTL)
			pipe.SAdd(ctx, indexKey, key)
			pipe.Expire(ctx, indexKey, listCacheTTL)
			return nil
		})
		return err
	}, verKey)
	if err != nil && err != redis.TxFailedErr {
		log.Printf("[Quote] fill list cache failed: user=%d, err=%v", userID, err)
	}
}

// invalidateUser 版本号先递增，再删除已有列表缓存
func (r *CachedRepository) invalidateUser(ctx context.Context, userID int64) {
	verKey := cacheKeyUserVersion + strconv.FormatInt(userID, 10)
	r.redis.Incr(ctx, verKey)
	r.redis.Expire(ctx, verKey, versionTTL)

	indexKey := cacheKeyUserIndex + strconv.FormatInt(userID, 10)
	keys, err := r.redis.SMembers(ctx, indexKey).Result()
	if err != nil || len(keys) == 0 {
		return
	}
	r.redis.Del(ctx, append(keys, indexKey)...)
}

func quoteKey(quoteID int64) string {
	return cacheKeyQuote + strconv.FormatInt(quoteID, 10)
}
