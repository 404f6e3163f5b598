package redisholder

import (
	"sync/atomic"

	"github.com/redis/go-redis/v9"
)

// Holder hands out the current redis client and lets the health loop swap in
// a replacement without coordinating with readers.
type Holder struct {
	client atomic.Pointer[redis.Client]
}

func NewHolder(initial *redis.Client) *Holder {
	h := &Holder{}
	h.client.Store(initial)
	return h
}

func (h *Holder) Get() *redis.Client {
	return h.client.Load()
}

func (h *Holder) swap(next *redis.Client) *redis.Client {
	return h.client.Swap(next)
}

func (h *Holder) Close() error {
	if c := h.Get(); c != nil {
		return c.Close()
	}
	return nil
}
