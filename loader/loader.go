// Package loader loads Lua campaign content into Go definitions. The Lua VM
// used for loading is discarded afterwards; area hooks are kept as source
// and run by the campaign's script host.
package loader

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nathoo/campaigncore/engine/campaign"
	"github.com/nathoo/campaigncore/engine/script"
	lua "github.com/yuin/gopher-lua"
)

// rawDef holds a constructor table before compilation.
type rawDef struct {
	kind  string
	id    string
	file  string
	table *lua.LTable
}

// collector accumulates Lua definitions during file execution.
type collector struct {
	manifest *lua.LTable
	defs     []rawDef
	file     string
}

// Load reads all .lua files from dir, compiles them into campaign
// definitions, validates references, and returns the Defs. Warnings are
// written to logger; a nil logger writes to stderr.
func Load(dir string, logger *log.Logger) (*campaign.Defs, error) {
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading campaign directory %s: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no .lua files found in %s", dir)
	}

	// Sort: campaign.lua first, rest alphabetical.
	luaFiles = sortedLuaFiles(luaFiles)

	L := script.NewSandbox()
	defer L.Close()

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range luaFiles {
		coll.file = f
		if err := L.DoFile(filepath.Join(dir, f)); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	ve := &ValidationError{}
	defs := compile(coll, logger, ve)
	validate(defs, ve)

	for _, w := range ve.Warnings {
		logger.Printf("warning: %s", w)
	}
	if len(ve.Errors) > 0 {
		return nil, ve
	}
	return defs, nil
}

// sortedLuaFiles returns files sorted with campaign.lua first, then
// alphabetically.
func sortedLuaFiles(files []string) []string {
	result := make([]string, len(files))
	copy(result, files)
	sort.Slice(result, func(i, j int) bool {
		if result[i] == "campaign.lua" {
			return true
		}
		if result[j] == "campaign.lua" {
			return false
		}
		return result[i] < result[j]
	})
	return result
}
