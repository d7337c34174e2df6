package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"load-optimizer/internal/domain"
)

// Memory is a bounded in-process LRU with per-entry TTL.
type Memory struct {
	lru *expirable.LRU[string, domain.OptimizeResponse]
}

func NewMemory(size int, ttl time.Duration) *Memory {
	return &Memory{lru: expirable.NewLRU[string, domain.OptimizeResponse](size, nil, ttl)}
}

func (m *Memory) Get(_ context.Context, key string) (*domain.OptimizeResponse, error) {
	resp, ok := m.lru.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	resp.SelectedOrderIDs = cloneIDs(resp.SelectedOrderIDs)
	return &resp, nil
}

func (m *Memory) Set(_ context.Context, key string, resp *domain.OptimizeResponse) error {
	// Stored by value with a private ids slice so callers can't mutate entries.
	stored := *resp
	stored.SelectedOrderIDs = cloneIDs(resp.SelectedOrderIDs)
	m.lru.Add(key, stored)
	return nil
}

func (m *Memory) Len() int {
	return m.lru.Len()
}

func cloneIDs(ids []string) []string {
	if ids == nil {
		return nil
	}
	return append(make([]string, 0, len(ids)), ids...)
}
