package stubbackend

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// collection keeps items in insertion order. Callers hold Server.mu.
type collection[T any] struct {
	items  map[int64]T
	order  []int64
	nextID int64
}

func newCollection[T any]() *collection[T] {
	return &collection[T]{items: make(map[int64]T)}
}

func (c *collection[T]) allocate() int64 {
	c.nextID++
	return c.nextID
}

func (c *collection[T]) get(id int64) (T, bool) {
	v, ok := c.items[id]
	return v, ok
}

func (c *collection[T]) put(id int64, v T) {
	if _, ok := c.items[id]; !ok {
		c.order = append(c.order, id)
	}
	c.items[id] = v
}

func (c *collection[T]) filter(match func(T) bool) []T {
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		v := c.items[id]
		if match == nil || match(v) {
			out = append(out, v)
		}
	}
	return out
}

// paginate returns the requested 1-based page of items.
func paginate[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func pageParams(c *gin.Context) (page, limit int, err error) {
	page, limit = 1, defaultLimit
	if v := c.Query("page"); v != "" {
		page, err = strconv.Atoi(v)
		if err != nil || page < 1 {
			return 0, 0, fmt.Errorf("%w: page must be a positive integer", errBadInput)
		}
	}
	if v := c.Query("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 1 {
			return 0, 0, fmt.Errorf("%w: limit must be a positive integer", errBadInput)
		}
		if limit > maxLimit {
			limit = maxLimit
		}
	}
	return page, limit, nil
}

func idParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: id must be a positive integer", errBadInput)
	}
	return id, nil
}
