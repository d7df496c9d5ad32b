//go:build !linux && !darwin

package ffi

import (
	"ore/heap"
	"ore/types"
)

// Load is unavailable where the platform has no dynamic loader support
func Load(ip heap.Interp, path string) types.Result {
	return types.Throw(ip.Heap().NewException(types.ExcFileNotFound,
		"dynamic library loading is not supported on this platform").Ref())
}
