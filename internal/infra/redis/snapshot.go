package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/Agileeo/nft-client/internal/core/domain"
)

func snapshotKey(chainID domain.ChainID, address string) string {
	return fmt.Sprintf("nft_snapshot:%d:%s", chainID, strings.ToLower(address))
}

// SnapshotCache stores contract monitoring snapshots per chain.
type SnapshotCache struct {
	client  *Client
	chainID domain.ChainID
}

func (c *Client) Snapshots(chainID domain.ChainID) *SnapshotCache {
	return &SnapshotCache{client: c, chainID: chainID}
}

// GetSnapshot returns the cached snapshot for address, if any.
func (s *SnapshotCache) GetSnapshot(ctx context.Context, address string) (domain.ContractInfo, bool, error) {
	raw, err := s.client.rdb.Get(ctx, snapshotKey(s.chainID, address)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.ContractInfo{}, false, nil
	}
	if err != nil {
		return domain.ContractInfo{}, false, fmt.Errorf("get snapshot failed: %w", err)
	}

	var info domain.ContractInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return domain.ContractInfo{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return info, true, nil
}

// PutSnapshot caches info until the client TTL expires.
func (s *SnapshotCache) PutSnapshot(ctx context.Context, info domain.ContractInfo) error {
	raw, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	key := snapshotKey(s.chainID, info.Address)
	if err := s.client.rdb.Set(ctx, key, raw, s.client.ttl).Err(); err != nil {
		return fmt.Errorf("set snapshot failed: %w", err)
	}
	return nil
}

// InvalidateSnapshot drops the cached snapshot for address.
func (s *SnapshotCache) InvalidateSnapshot(ctx context.Context, address string) error {
	return s.client.rdb.Del(ctx, snapshotKey(s.chainID, address)).Err()
}
