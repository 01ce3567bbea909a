// 文件: pkg/quote/repo_test.go
// 仓储集成测试，本地 MySQL / Redis 不可用时跳过

package quote

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"max.com/bsquote/pkg/options"
)

const (
	testDSN       = "root:123456@tcp(127.0.0.1:3307)/bsquote?charset=utf8mb4&parseTime=True&loc=Local"
	testRedisAddr = "localhost:6379"
	testUserID    = int64(990001)
)

func setupTestDB(t *testing.T) *MySQLRepository {
	db, err := gorm.Open(mysql.Open(testDSN), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Skipf("skipping test; mysql not available: %v", err)
	}
	repo := NewMySQLRepository(db)
	require.NoError(t, repo.AutoMigrate())

	db.Exec("DELETE FROM quotes WHERE user_id = ?", testUserID)
	t.Cleanup(func() { db.Exec("DELETE FROM quotes WHERE user_id = ?", testUserID) })
	return repo
}

func setupTestRedis(t *testing.T) *redis.Client {
	rdb := redis.NewClient(&redis.Options{Addr: testRedisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("skipping test; redis not available: %v", err)
	}
	rdb.FlushDB(context.Background())
	return rdb
}

func testRecord(t *testing.T, spot float64) *Record {
	req := options.Request{Spot: spot, Strike: 100, Expiry: 0.5, Rate: 0.05, Vol: 0.3, Kind: options.Call}
	res, err := options.Evaluate(req)
	require.NoError(t, err)
	return NewRecord(GenerateQuoteID(), testUserID, req, res)
}

// 三种实现共用的行为约束
func exerciseRepository(t *testing.T, repo Repository) {
	ctx := context.Background()

	first := testRecord(t, 95)
	require.NoError(t, repo.Create(ctx, first))
	assert.ErrorIs(t, repo.Create(ctx, first), ErrDuplicate)

	got, err := repo.GetByQuoteID(ctx, first.QuoteID)
	require.NoError(t, err)
	assert.True(t, first.Price.Equal(got.Price))
	assert.Equal(t, first.Assessment, got.Assessment)

	_, err = repo.GetByQuoteID(ctx, -1)
	assert.ErrorIs(t, err, ErrNotFound)

	time.Sleep(2 * time.Millisecond)
	second := testRecord(t, 110)
	require.NoError(t, repo.Create(ctx, second))

	recs, err := repo.ListByUser(ctx, testUserID, 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, second.QuoteID, recs[0].QuoteID)

	recs, err = repo.ListByUser(ctx, testUserID, 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
}

func TestMemoryRepository(t *testing.T) {
	exerciseRepository(t, NewMemoryRepository())
}

func TestMySQLRepository(t *testing.T) {
	exerciseRepository(t, setupTestDB(t))
}

func TestCachedRepository(t *testing.T) {
	rdb := setupTestRedis(t)
	exerciseRepository(t, NewCachedRepository(NewMemoryRepository(), rdb, time.Minute))
}

func TestCachedRepository_ReadThrough(t *testing.T) {
	rdb := setupTestRedis(t)
	ctx := context.Background()

	inner := NewMemoryRepository()
	rec := testRecord(t, 100)
	require.NoError(t, inner.Create(ctx, rec))

	repo := NewCachedRepository(inner, rdb, time.Minute)

	// 第一次 miss 回填
	_, err := repo.GetByQuoteID(ctx, rec.QuoteID)
	require.NoError(t, err)
	exists, err := rdb.Exists(ctx, quoteKey(rec.QuoteID)).Result()
	require.NoError(t, err)
	require.Equal(t, int64(1), exists)

	// 列表缓存在新增后失效
	recs, err := repo.ListByUser(ctx, testUserID, 5)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	require.NoError(t, repo.Create(ctx, testRecord(t, 120)))
	recs, err = repo.ListByUser(ctx, testUserID, 5)
	require.NoError(t, err)
	require.Len(t, recs, 2)
}

// listHookRepo 在底层 ListByUser 返回前执行一次 hook，模拟读与写交错
type listHookRepo struct {
	Repository
	hook func()
}

func (r *listHookRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]*Record, error) {
	recs, err := r.Repository.ListByUser(ctx, userID, limit)
	if r.hook != nil {
		hook := r.hook
		r.hook = nil
		hook()
	}
	return recs, err
}

func TestCachedRepository_ListFillAfterCreate(t *testing.T) {
	rdb := setupTestRedis(t)
	ctx := context.Background()

	inner := &listHookRepo{Repository: NewMemoryRepository()}
	repo := NewCachedRepository(inner, rdb, time.Minute)
	require.NoError(t, repo.Create(ctx, testRecord(t, 100)))

	// 查询底层之后、回填之前插入新报价
	inner.hook = func() {
		time.Sleep(2 * time.Millisecond)
		require.NoError(t, repo.Create(ctx, testRecord(t, 120)))
	}
	recs, err := repo.ListByUser(ctx, testUserID, 5)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	// 旧结果不能留在缓存里
	recs, err = repo.ListByUser(ctx, testUserID, 5)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	exists, err := rdb.Exists(ctx, cacheKeyUser+"990001:5").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)
}
