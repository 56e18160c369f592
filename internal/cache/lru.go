package cache

import (
	"container/list"
	"sync"
	"time"
)

// 文档注释：进程内 LRU 缓存（候选查询结果）
// 背景：同一网格单元内的要素会重复发起相同的 (单元, 半径) 候选查询；索引构建后不可变，结果可直接复用。
// 约束：ttl<=0 表示永不过期；值为只读切片，调用方不得修改。
type LRU struct {
	mu   sync.Mutex
	cap  int
	ttl  time.Duration
	lst  *list.List
	dict map[string]*list.Element
	hits uint64
	miss uint64
}

type kv struct {
	k   string
	v   []string
	exp time.Time
}

func NewLRU(capacity int, ttl time.Duration) *LRU {
	if capacity < 1 {
		capacity = 1
	}
	return &LRU{cap: capacity, ttl: ttl, lst: list.New(), dict: make(map[string]*list.Element)}
}

func (c *LRU) Get(k string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.dict[k]; ok {
		it := e.Value.(kv)
		if c.ttl <= 0 || time.Now().Before(it.exp) {
			c.lst.MoveToFront(e)
			c.hits++
			return it.v, true
		}
		c.lst.Remove(e)
		delete(c.dict, k)
	}
	c.miss++
	return nil, false
}

func (c *LRU) Set(k string, v []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it := kv{k: k, v: v}
	if c.ttl > 0 {
		it.exp = time.Now().Add(c.ttl)
	}
	if e, ok := c.dict[k]; ok {
		e.Value = it
		c.lst.MoveToFront(e)
		return
	}
	c.dict[k] = c.lst.PushFront(it)
	for c.lst.Len() > c.cap {
		back := c.lst.Back()
		if back == nil {
			break
		}
		delete(c.dict, back.Value.(kv).k)
		c.lst.Remove(back)
	}
}

func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lst.Len()
}

// Stats：命中与未命中次数
func (c *LRU) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.miss
}
