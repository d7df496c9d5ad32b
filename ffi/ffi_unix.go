//go:build linux || darwin

package ffi

import (
	"plugin"
	"sort"

	"ore/heap"
	"ore/types"
)

// pluginLibrary adapts a Go plugin to the heap's Library contract.
// The Go runtime cannot unload plugins, so Close releases nothing; the
// ownership story (handle freed when the module object is swept) still
// holds for loaders that can.
type pluginLibrary struct {
	plugin *plugin.Plugin
}

func (pluginLibrary) Close() error { return nil }

// Load opens a shared object and builds its module object. A load
// failure throws FileNotFound; a missing or mistyped entry point throws
// ReferenceError.
func Load(ip heap.Interp, path string) types.Result {
	lib, err := plugin.Open(path)
	if err != nil {
		return types.Throw(ip.Heap().NewException(types.ExcFileNotFound,
			"not a valid shared object: "+path).Ref())
	}

	sym, err := lib.Lookup(InitSymbol)
	if err != nil {
		return types.Throw(ip.Heap().NewException(types.ExcReference,
			"cannot find \""+InitSymbol+"\" function in "+path).Ref())
	}
	init, ok := sym.(func() Exports)
	if !ok {
		return types.Throw(ip.Heap().NewException(types.ExcReference,
			"\""+InitSymbol+"\" has the wrong signature in "+path).Ref())
	}

	module := ip.Heap().NewModule(pluginLibrary{plugin: lib})
	exports := init()
	names := make([]string, 0, len(exports))
	for name := range exports {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		module.Put(name, ip.Heap().NewNative(exports[name]).Ref())
	}
	return types.Ok(module.Ref())
}
