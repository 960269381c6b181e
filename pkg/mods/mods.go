// Package mods collects the built-in commands.
package mods

import (
	"src.tide.sh/pkg/eval"
	"src.tide.sh/pkg/mods/core"
	"src.tide.sh/pkg/mods/formats"
	"src.tide.sh/pkg/mods/into"
	"src.tide.sh/pkg/mods/math"
	"src.tide.sh/pkg/mods/os"
	"src.tide.sh/pkg/mods/path"
	"src.tide.sh/pkg/mods/platform"
	"src.tide.sh/pkg/mods/re"
	"src.tide.sh/pkg/mods/shared"
	"src.tide.sh/pkg/mods/str"
	"src.tide.sh/pkg/store"
)

// AddTo adds all built-in commands that don't need a store to the Evaler.
func AddTo(ev *eval.Evaler) {
	for _, cmds := range [][]eval.Command{
		core.Commands, into.Commands, formats.Commands,
		str.Commands, math.Commands, os.Commands, path.Commands, re.Commands, platform.Commands,
	} {
		for _, cmd := range cmds {
			ev.AddCommand(cmd)
		}
	}
}

// AddWithStore is like AddTo, and also adds the shared variable commands
// backed by st.
func AddWithStore(ev *eval.Evaler, st store.Store) {
	AddTo(ev)
	shared.AddTo(ev, st)
}
