package router

import (
	"sort"

	"github.com/kerlouan/goswapd/internal/core/types"
)

// pathKey identifies a cached path enumeration. Paths depend only on which
// pools exist, so the factory's registry version makes stale entries
// unreachable without any invalidation traffic.
type pathKey struct {
	tokenIn  types.Address
	tokenOut types.Address
	maxHops  int
	version  uint64
}

// candidatePaths enumerates every simple path from tokenIn to tokenOut with
// at most maxHops hops, in deterministic order.
func (r *Router) candidatePaths(tokenIn, tokenOut types.Address, maxHops int) ([][]types.Address, error) {
	if maxHops < 1 || tokenIn == tokenOut || tokenIn.IsZero() || tokenOut.IsZero() {
		return nil, ErrInvalidPath
	}

	key := pathKey{tokenIn: tokenIn, tokenOut: tokenOut, maxHops: maxHops, version: r.factory.Version()}
	if cached, ok := r.paths.Get(key); ok {
		return cached, nil
	}

	adj := r.adjacency()
	walker := &pathWalker{
		adj:     adj,
		target:  tokenOut,
		maxHops: maxHops,
		visited: map[types.Address]bool{tokenIn: true},
		stack:   []types.Address{tokenIn},
	}
	walker.walk(tokenIn)

	r.paths.Add(key, walker.found)
	return walker.found, nil
}

// adjacency maps each token to its direct counterparties, sorted by address
// so enumeration order is stable across runs.
func (r *Router) adjacency() map[types.Address][]types.Address {
	adj := make(map[types.Address][]types.Address)
	for _, pool := range r.factory.Pools() {
		t0, t1 := pool.Token0(), pool.Token1()
		adj[t0] = append(adj[t0], t1)
		adj[t1] = append(adj[t1], t0)
	}
	for _, neighbors := range adj {
		sort.Slice(neighbors, func(i, j int) bool { return neighbors[i].Less(neighbors[j]) })
	}
	return adj
}

type pathWalker struct {
	adj     map[types.Address][]types.Address
	target  types.Address
	maxHops int
	visited map[types.Address]bool
	stack   []types.Address
	found   [][]types.Address
}

func (w *pathWalker) walk(from types.Address) {
	if len(w.stack)-1 >= w.maxHops {
		return
	}
	for _, next := range w.adj[from] {
		if next == w.target {
			path := make([]types.Address, len(w.stack)+1)
			copy(path, w.stack)
			path[len(w.stack)] = next
			w.found = append(w.found, path)
			continue
		}
		if w.visited[next] {
			continue
		}
		w.visited[next] = true
		w.stack = append(w.stack, next)
		w.walk(next)
		w.stack = w.stack[:len(w.stack)-1]
		w.visited[next] = false
	}
}
