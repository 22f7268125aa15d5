package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"opscheck/internal/ledger/models"
	"opscheck/internal/ledger/store/event"
	"opscheck/internal/ledger/store/record"
	dErrors "opscheck/pkg/domain-errors"
)

// Stores bundles the two ledger stores a write touches. Inside RunInTx both
// resolve against the same transaction, so the record upsert and the log
// append commit or roll back together.
type Stores struct {
	Records record.Store
	Events  event.Store
}

// StoreTx provides the transactional boundary for ledger writes. Writers for
// the same key must serialize; writers for different keys may proceed
// concurrently. Implementations wrap a database transaction or, in-memory, a
// sharded lock.
type StoreTx interface {
	RunInTx(ctx context.Context, key models.Key, fn func(ctx context.Context, s Stores) error) error
}

const numTxShards = 128

// defaultTxTimeout bounds a ledger write transaction.
const defaultTxTimeout = 5 * time.Second

// ShardedTx serializes same-key writes with sharded mutexes. Keys hash onto
// one of numTxShards locks, so unrelated keys rarely contend while two
// writers to the same key always do.
type ShardedTx struct {
	shards  [numTxShards]sync.Mutex
	stores  Stores
	timeout time.Duration
}

func NewShardedTx(stores Stores) *ShardedTx {
	return &ShardedTx{stores: stores}
}

func (t *ShardedTx) RunInTx(ctx context.Context, key models.Key, fn func(ctx context.Context, s Stores) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := shardFor(key)
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx, t.stores)
}

func shardFor(key models.Key) int {
	key = key.Normalize()
	s := fmt.Sprintf("%d:%s:%s", key.CheckItemID, key.CheckDate.Format("2006-01-02"), key.Environment)
	return int(fnvHash(s) % numTxShards)
}

// fnvHash is FNV-1a for even shard distribution.
func fnvHash(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}
