package script

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nathoo/campaigncore/engine/cache"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// DefaultTimeout bounds a single hook run.
const DefaultTimeout = 2 * time.Second

// World is the campaign surface exposed to hook scripts.
type World interface {
	Say(text string)
	RevealLocation(id string) error
	ActivateTransition(id string) error
	AddQuest(title string, notify bool)
	AddQuestNote(title, noteTitle, description string) error
	CompleteQuest(title string) error
	GiveItem(templateID string, qty int) error
	AddMoney(amount string)
	SetRelationship(faction1, faction2, relationship string) error
	Round() int64
	Roll(base, multiple int) int
}

// Host runs hook chunks in one long-lived sandbox. The global table
// "state" survives between runs and is what campaigns persist.
type Host struct {
	L       *lua.LState
	protos  *cache.Cache[string, *lua.FunctionProto]
	world   World
	timeout time.Duration
}

// NewHost creates a host with an empty state table.
func NewHost() *Host {
	h := &Host{
		L:       NewSandbox(),
		protos:  cache.New[string, *lua.FunctionProto](),
		timeout: DefaultTimeout,
	}
	h.L.SetGlobal("state", h.L.NewTable())
	h.registerAPI()
	return h
}

// Close releases the VM.
func (h *Host) Close() { h.L.Close() }

// SetTimeout changes the per-run time limit. Non-positive disables it.
func (h *Host) SetTimeout(d time.Duration) { h.timeout = d }

// Run executes a hook chunk. area is exposed to the chunk as the global
// "area". Chunks are compiled once and cached by source.
func (h *Host) Run(ctx context.Context, w World, name, area, source string) error {
	if strings.TrimSpace(source) == "" {
		return nil
	}
	proto, err := h.protos.GetOrInsertWith(source, func(src string) (*lua.FunctionProto, error) {
		return compileChunk(name, src)
	})
	if err != nil {
		return err
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	h.L.SetContext(ctx)
	defer h.L.RemoveContext()

	h.world = w
	defer func() { h.world = nil }()
	h.L.SetGlobal("area", lua.LString(area))

	h.L.Push(h.L.NewFunctionFromProto(proto))
	err = h.L.PCall(0, lua.MultRet, nil)
	h.L.SetTop(0)
	if err != nil {
		return fmt.Errorf("running %s: %w", name, err)
	}
	return nil
}

func compileChunk(name, src string) (*lua.FunctionProto, error) {
	chunk, err := parse.Parse(strings.NewReader(src), name)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", name, err)
	}
	return proto, nil
}

// Check compiles a chunk without running it.
func Check(name, src string) error {
	if strings.TrimSpace(src) == "" {
		return nil
	}
	_, err := compileChunk(name, src)
	return err
}

// State returns the persistent script state as plain Go data. A state
// that is not a keyed table is dropped.
func (h *Host) State() map[string]any {
	m, ok := ToGo(h.L.GetGlobal("state")).(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return m
}

// SetState replaces the persistent script state.
func (h *Host) SetState(m map[string]any) {
	if m == nil {
		m = map[string]any{}
	}
	h.L.SetGlobal("state", ToLua(h.L, m))
}

func (h *Host) registerAPI() {
	fn := func(name string, f lua.LGFunction) {
		h.L.SetGlobal(name, h.L.NewFunction(func(L *lua.LState) int {
			if h.world == nil {
				L.RaiseError("%s called outside a hook", name)
				return 0
			}
			return f(L)
		}))
	}
	check := func(L *lua.LState, err error) {
		if err != nil {
			L.RaiseError("%s", err.Error())
		}
	}

	fn("say", func(L *lua.LState) int {
		h.world.Say(L.CheckString(1))
		return 0
	})
	fn("reveal", func(L *lua.LState) int {
		check(L, h.world.RevealLocation(L.CheckString(1)))
		return 0
	})
	fn("activate", func(L *lua.LState) int {
		check(L, h.world.ActivateTransition(L.CheckString(1)))
		return 0
	})
	fn("add_quest", func(L *lua.LState) int {
		h.world.AddQuest(L.CheckString(1), L.OptBool(2, true))
		return 0
	})
	fn("quest_note", func(L *lua.LState) int {
		check(L, h.world.AddQuestNote(L.CheckString(1), L.CheckString(2), L.OptString(3, "")))
		return 0
	})
	fn("complete_quest", func(L *lua.LState) int {
		check(L, h.world.CompleteQuest(L.CheckString(1)))
		return 0
	})
	fn("give_item", func(L *lua.LState) int {
		check(L, h.world.GiveItem(L.CheckString(1), L.OptInt(2, 1)))
		return 0
	})
	fn("add_money", func(L *lua.LState) int {
		h.world.AddMoney(L.CheckString(1))
		return 0
	})
	fn("set_relationship", func(L *lua.LState) int {
		check(L, h.world.SetRelationship(L.CheckString(1), L.CheckString(2), L.CheckString(3)))
		return 0
	})
	fn("round", func(L *lua.LState) int {
		L.Push(lua.LNumber(h.world.Round()))
		return 1
	})
	fn("roll", func(L *lua.LState) int {
		L.Push(lua.LNumber(h.world.Roll(L.CheckInt(1), L.OptInt(2, 1))))
		return 1
	})
}
