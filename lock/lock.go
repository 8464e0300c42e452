// C:\Users\wasab\OneDrive\デスクトップ\PORTION\lock\lock.go

// Package lock はテーブル単位で読み込み・更新・書き込みを直列化します。
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker は名前に対する排他ロックを取得します。返り値の関数で解放します。
type Locker interface {
	Lock(ctx context.Context, name string) (func(), error)
}

// Local はプロセス内でロックします。
type Local struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewLocal() *Local {
	return &Local{slots: make(map[string]chan struct{})}
}

func (l *Local) slot(name string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[name]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[name] = ch
	}
	return ch
}

func (l *Local) Lock(ctx context.Context, name string) (func(), error) {
	ch := l.slot(name)
	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-ch }) }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("lock %s: %w", name, ctx.Err())
	}
}

// releaseScript はキーが自分のトークンを保持している場合のみ削除します。
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Redis は同じRedisを共有するプロセス間でロックします。
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
	prefix string
}

// NewRedis は addr に接続し、疎通を確認します。
func NewRedis(ctx context.Context, addr, password string, db int, wait time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisWithClient(client, wait), nil
}

func NewRedisWithClient(client *redis.Client, wait time.Duration) *Redis {
	return &Redis{
		client: client,
		ttl:    30 * time.Second,
		wait:   wait,
		retry:  50 * time.Millisecond,
		prefix: "lock:table:",
	}
}

func (r *Redis) Lock(ctx context.Context, name string) (func(), error) {
	key := r.prefix + name
	token := uuid.New().String()

	if r.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.wait)
		defer cancel()
	}

	ticker := time.NewTicker(r.retry)
	defer ticker.Stop()
	for {
		ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil && ctx.Err() == nil {
			return nil, fmt.Errorf("lock %s: %w", name, err)
		}
		if ok {
			var once sync.Once
			return func() {
				once.Do(func() {
					releaseCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
					defer cancel()
					releaseScript.Run(releaseCtx, r.client, []string{key}, token)
				})
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("lock %s: system busy, please try again later: %w", name, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (r *Redis) Close() error {
	return r.client.Close()
}
