package config

import (
	lua "github.com/yuin/gopher-lua"
)

const (
	luaCallStackSize = 256
	luaRegistrySize  = 1024 * 8
)

// sandboxLuaVM configures a Lua VM to run in a restricted sandbox.
// This disables functions that could:
// - Execute system commands (os.execute, os.exit)
// - Access the filesystem (io.open, io.popen)
// - Load external code (require, dofile, loadfile)
// - Unlock the read-only platform table (rawset, setmetatable)
//
// Safe modules like string, table, and math are preserved.
func sandboxLuaVM(L *lua.LState) {
	for _, name := range []string{
		"os",
		"io",
		"require",
		"dofile",
		"loadfile",
		"load",
		"loadstring",
		"module",
		"debug",
		"rawset",
		"rawget",
		"rawequal",
		"setmetatable",
		"getmetatable",
		"setfenv",
		"getfenv",
		"collectgarbage",
	} {
		L.SetGlobal(name, lua.LNil)
	}
}

// newSandboxedVM creates a new Lua VM with sandboxing applied and the
// resource limits used for manifest evaluation.
func newSandboxedVM() *lua.LState {
	L := lua.NewState(lua.Options{
		CallStackSize: luaCallStackSize,
		RegistrySize:  luaRegistrySize,
	})
	sandboxLuaVM(L)
	return L
}
