package builtins

import (
	"ore/ffi"
	"ore/heap"
	"ore/types"
)

// builtinLoadLibrary loads a host shared library and returns the module
// object carrying its exported callables
// load_library(path) -> module
func builtinLoadLibrary(ip heap.Interp, ctx *types.Context, args []types.Value) types.Result {
	path, r := stringArg(ip, args, 0)
	if !r.IsNormal() {
		return r
	}
	return ffi.Load(ip, path)
}
