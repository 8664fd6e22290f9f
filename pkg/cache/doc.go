// Package cache provides a generic, fixed-capacity LRU map safe for
// concurrent use.
//
//	idx := cache.New[int64, todo.Item](128)
//	idx.Put(item.ID, item)
//	if it, ok := idx.Get(id); ok {
//		...
//	}
//
// Get and Put mark an entry most recently used; Peek does not. When a Put
// exceeds the capacity the least recently used entry is dropped and the
// optional WithEvictFunc callback sees it.
package cache
