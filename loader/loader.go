// Package loader reads NeonCore content into the engine's data model.
// Locations come from sandboxed Lua files under world/; characters and NPCs
// come from YAML sheets. The Lua VM is discarded once the files have run.
package loader

import (
	"bytes"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/neoncore/content"
	"github.com/nathoo/neoncore/types"
)

const (
	worldDir       = "world"
	charactersFile = "characters.yaml"
	npcsFile       = "npcs.yaml"
)

// Content is everything an engine needs to start a session.
type Content struct {
	Title     string
	Start     string
	Locations []*types.Location
	Templates []*types.Character
	NPCs      []*types.NPC
	// Warnings holds non-fatal validation findings.
	Warnings []string
}

// collector accumulates Lua definitions during file execution.
type collector struct {
	game      *lua.LTable
	locations []rawLocation
}

// LoadEmbedded loads the content compiled into the binary.
func LoadEmbedded() (*Content, error) {
	return Load(afero.FromIOFS{FS: content.FS}, ".")
}

// LoadDir loads content from a directory on disk.
func LoadDir(dir string) (*Content, error) {
	return Load(afero.NewOsFs(), dir)
}

// Load reads world/*.lua, characters.yaml and npcs.yaml under dir,
// compiles them and validates cross references.
func Load(fsys afero.Fs, dir string) (*Content, error) {
	wdir := filepath.Join(dir, worldDir)
	entries, err := afero.ReadDir(fsys, wdir)
	if err != nil {
		return nil, fmt.Errorf("reading world directory %s: %w", wdir, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no .lua files found in %s", wdir)
	}
	luaFiles = sortedLuaFiles(luaFiles)

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)
	for _, f := range luaFiles {
		if err := runFile(L, fsys, filepath.Join(wdir, f)); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	c, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling world: %w", err)
	}
	if c.Templates, err = readCharacters(fsys, filepath.Join(dir, charactersFile)); err != nil {
		return nil, err
	}
	if c.NPCs, err = readNPCs(fsys, filepath.Join(dir, npcsFile)); err != nil {
		return nil, err
	}
	if err := validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

func runFile(L *lua.LState, fsys afero.Fs, path string) error {
	src, err := afero.ReadFile(fsys, path)
	if err != nil {
		return err
	}
	fn, err := L.Load(bytes.NewReader(src), filepath.Base(path))
	if err != nil {
		return err
	}
	L.Push(fn)
	return L.PCall(0, lua.MultRet, nil)
}

// sortedLuaFiles puts game.lua first and the rest in name order.
func sortedLuaFiles(files []string) []string {
	out := slices.Clone(files)
	slices.SortFunc(out, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case a == "game.lua":
			return -1
		case b == "game.lua":
			return 1
		}
		return strings.Compare(a, b)
	})
	return out
}

func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that reach outside the VM or break determinism.
func sandbox(L *lua.LState) {
	for _, name := range []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal", "collectgarbage", "require", "module",
	} {
		L.SetGlobal(name, lua.LNil)
	}
	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("randomseed", lua.LNil)
		tbl.RawSetString("random", lua.LNil)
	}
}
