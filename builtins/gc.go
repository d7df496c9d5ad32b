package builtins

import (
	"ore/heap"
	"ore/types"
)

// ============================================================================
// GARBAGE COLLECTION BUILTINS
// ============================================================================

// builtinCollectGarbage forces a collection and returns the number of
// objects swept
// collect_garbage() -> number
func builtinCollectGarbage(ip heap.Interp, ctx *types.Context, args []types.Value) types.Result {
	if len(args) != 0 {
		return throwf(ip, types.ExcType, "collect_garbage expects no arguments")
	}
	return types.Ok(types.NewNumber(float64(ip.CollectGarbage())))
}

// builtinHeapStats returns heap counters as an object
// heap_stats() -> {live, collections, swept}
func builtinHeapStats(ip heap.Interp, ctx *types.Context, args []types.Value) types.Result {
	if len(args) != 0 {
		return throwf(ip, types.ExcType, "heap_stats expects no arguments")
	}
	h := ip.Heap()
	stats := h.NewPlain()
	stats.Put("live", types.NewNumber(float64(h.Size())))
	stats.Put("collections", types.NewNumber(float64(h.Collections())))
	stats.Put("swept", types.NewNumber(float64(h.TotalSwept())))
	return types.Ok(stats.Ref())
}
