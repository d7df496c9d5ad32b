// Package ffi loads host shared libraries and exposes the callables
// they register as an Ore module object. The core only sees the result:
// an object whose properties are native callables, owning the library
// handle until the object is swept.
package ffi

import "ore/heap"

// InitSymbol is the fixed initialisation entry point a library must
// export.
const InitSymbol = "OreInitialize"

// Exports is what a library's initialisation entry point returns: the
// callables it wants installed on the module object.
type Exports map[string]heap.NativeFunc
