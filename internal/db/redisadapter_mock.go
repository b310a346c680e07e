package db

import (
	"context"
	"encoding"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// MockRedisClient implements the LimitedRedisClient interface in memory.
// Only suitable for testing and development.
// The value set for the IntCmd or similar results is always 1 regardless of how many
// records were affected. Contexts are completely ignored.
type MockRedisClient struct {
	store map[string]any
}

type MockRedisAdapterOption func(r *RedisAdapter)

func WithMockEncryption(key string) MockRedisAdapterOption {
	return func(r *RedisAdapter) {
		enc, err := NewGCMEncryptor(key)
		if err != nil {
			log.Fatalln(err)
		}
		r.encryptor = enc
	}
}

func NewMockRedisAdapter(options ...MockRedisAdapterOption) RedisAdapter {
	store := MockRedisClient{map[string]any{}}
	adapter := RedisAdapter{rdb: &store}
	for _, opt := range options {
		opt(&adapter)
	}
	return adapter
}

func convertValuesToMap(values ...any) (map[string]any, error) {
	if len(values)%2 != 0 {
		return map[string]any{}, fmt.Errorf("number of provided values must be even")
	}
	output := map[string]any{}
	for i := 0; i < len(values); i += 2 {
		key := values[i].(string)
		val := values[i+1]
		output[key] = val
	}
	return output, nil
}

func (m *MockRedisClient) HSet(_ context.Context, key string, values ...any) *redis.IntCmd {
	res := redis.IntCmd{}
	val, err := convertValuesToMap(values...)
	if err != nil {
		res.SetErr(err)
		return &res
	}

	m.store[key] = val
	res.SetVal(1)
	return &res
}

func (m *MockRedisClient) HGetAll(_ context.Context, key string) *redis.MapStringStringCmd {
	val, found := m.store[key]
	res := redis.MapStringStringCmd{}
	res.SetVal(map[string]string{})
	res.SetErr(nil)
	if !found {
		return &res
	}
	valMap1 := val.(map[string]any)
	valMap2 := map[string]string{}
	for k, v := range valMap1 {
		switch typed := v.(type) {
		case string:
			valMap2[k] = typed
		case time.Time:
			// the real client serializes timestamps as RFC3339 with nanoseconds
			valMap2[k] = typed.Format(time.RFC3339Nano)
		case encoding.TextMarshaler:
			marshalled, err := typed.MarshalText()
			if err != nil {
				res.SetErr(err)
				return &res
			}
			valMap2[k] = string(marshalled)
		default:
			valMap2[k] = fmt.Sprintf("%v", v)
		}
	}
	res.SetVal(valMap2)
	return &res
}

func (m *MockRedisClient) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(m.store, k)
	}
	res := redis.IntCmd{}
	res.SetVal(1)
	return &res
}

func (m *MockRedisClient) ZAdd(_ context.Context, key string, members ...redis.Z) *redis.IntCmd {
	_, found := m.store[key]
	if !found {
		m.store[key] = []redis.Z{}
	}
	existing := m.store[key].([]redis.Z)
	// adding an existing member updates its score
	kept := []redis.Z{}
	for _, z := range existing {
		var replaced = false
		for _, member := range members {
			replaced = replaced || (z.Member == member.Member)
		}
		if !replaced {
			kept = append(kept, z)
		}
	}
	newMembers := append(kept, members...)
	sort.Slice(newMembers, func(i, j int) bool { return newMembers[i].Score < newMembers[j].Score })
	m.store[key] = newMembers
	res := redis.IntCmd{}
	res.SetVal(1)
	return &res
}

func (m *MockRedisClient) ZRem(_ context.Context, key string, members ...any) *redis.IntCmd {
	val, found := m.store[key]
	res := redis.IntCmd{}
	if !found {
		res.SetVal(0)
		return &res
	}
	valZ := val.([]redis.Z)
	newValZ := []redis.Z{}
	for _, z := range valZ {
		var removeElem = false
		for _, member := range members {
			removeElem = removeElem || (z.Member == member)
		}
		if !removeElem {
			newValZ = append(newValZ, z)
		}
	}

	m.store[key] = newValZ
	res.SetVal(1)
	return &res
}

func (m *MockRedisClient) ZRangeArgsWithScores(_ context.Context, zrange redis.ZRangeArgs) *redis.ZSliceCmd {
	valRaw, found := m.store[zrange.Key]
	if !found {
		return &redis.ZSliceCmd{}
	}
	val := valRaw.([]redis.Z)
	res := []redis.Z{}
	for _, ival := range val {
		if ival.Score <= zrange.Stop.(float64) && ival.Score >= zrange.Start.(float64) {
			res = append(res, ival)
		}
	}
	output := redis.ZSliceCmd{}
	output.SetVal(res)
	return &output
}
