// Package cache provides the recency-ordered map shared by the program
// cache and the scratch resource pool.
//
//	lru := cache.NewLRU[string, *Entry]()
//	lru.Add("key", e)
//	e, ok := lru.Get("key") // marks "key" most recently used
//	k, v, ok := lru.RemoveOldest()
//
// # Thread Safety
//
// LRU performs no locking. Both users are confined to the goroutine that
// owns their rendering context.
package cache
