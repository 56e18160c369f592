// 包 sink：把归属结果发布到 Redis，供在线服务按区划 ID 查询所属城市
package sink

import (
	"context"
	"sort"

	"muni-join/internal/export"
	"muni-join/internal/logger"
	"muni-join/internal/metrics"

	"github.com/redis/go-redis/v9"
)

// DefaultPrefix：键前缀默认值
const DefaultPrefix = "munijoin"

// RedisSink：键布局
//   - <prefix>:area_city            哈希，条目 ID → 城市 ID
//   - <prefix>:city:<id>:areas      集合，城市下的条目 ID
//   - <prefix>:unassigned           集合，未归属条目 ID
type RedisSink struct {
	rdb    redis.Cmdable
	prefix string
}

func NewRedisSink(rdb redis.Cmdable, prefix string) *RedisSink {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisSink{rdb: rdb, prefix: prefix}
}

func (s *RedisSink) AreaCityKey() string          { return s.prefix + ":area_city" }
func (s *RedisSink) CityKey(cityID string) string { return s.prefix + ":city:" + cityID + ":areas" }
func (s *RedisSink) UnassignedKey() string        { return s.prefix + ":unassigned" }

// 文档注释：整体替换发布
// 背景：MULTI/EXEC 事务内先删后写，读方不会看到新旧混合的映射。
// 约束：只删除本次涉及的城市集合；上次存在而本次消失的城市集合保留，由调用方按需清理。
func (s *RedisSink) Publish(ctx context.Context, byCity map[string][]export.Entry) error {
	cities := make([]string, 0, len(byCity))
	for k := range byCity {
		if k != export.Unassigned {
			cities = append(cities, k)
		}
	}
	sort.Strings(cities)

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.AreaCityKey(), s.UnassignedKey())
		for _, city := range cities {
			entries := byCity[city]
			pipe.Del(ctx, s.CityKey(city))
			if len(entries) == 0 {
				continue
			}
			fields := make([]interface{}, 0, 2*len(entries))
			members := make([]interface{}, 0, len(entries))
			for _, e := range entries {
				fields = append(fields, e.ID, city)
				members = append(members, e.ID)
			}
			pipe.HSet(ctx, s.AreaCityKey(), fields...)
			pipe.SAdd(ctx, s.CityKey(city), members...)
		}
		if un := byCity[export.Unassigned]; len(un) > 0 {
			members := make([]interface{}, 0, len(un))
			for _, e := range un {
				members = append(members, e.ID)
			}
			pipe.SAdd(ctx, s.UnassignedKey(), members...)
		}
		return nil
	})
	if err != nil {
		metrics.RedisPublishTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.RedisPublishTotal.WithLabelValues("ok").Inc()
	logger.L().Info("redis_publish_done", "cities", len(cities), "unassigned", len(byCity[export.Unassigned]))
	return nil
}

// Lookup：查询条目所属城市；不存在时 ok=false
func (s *RedisSink) Lookup(ctx context.Context, areaID string) (string, bool, error) {
	v, err := s.rdb.HGet(ctx, s.AreaCityKey(), areaID).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Areas：城市下的全部条目 ID（升序）
func (s *RedisSink) Areas(ctx context.Context, cityID string) ([]string, error) {
	ids, err := s.rdb.SMembers(ctx, s.CityKey(cityID)).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}
