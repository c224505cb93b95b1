package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
)

func evalTable(t *testing.T, src string) lua.LValue {
	t.Helper()
	L := lua.NewState()
	t.Cleanup(L.Close)
	require.NoError(t, L.DoString("result = "+src))
	return L.GetGlobal("result")
}

func TestToGo_Tables(t *testing.T) {
	tests := []struct {
		src  string
		want any
	}{
		{`{1, 2.5, "x"}`, []any{1, 2.5, "x"}},
		{`{a = true, b = "y"}`, map[string]any{"a": true, "b": "y"}},
		{`{}`, map[string]any{}},
		{`{"first", "second", name = "mixed"}`, map[string]any{"1": "first", "2": "second", "name": "mixed"}},
		{`{[3] = "sparse"}`, map[string]any{"3": "sparse"}},
		{`{list = {1, 2}}`, map[string]any{"list": []any{1, 2}}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToGo(evalTable(t, tt.src)), tt.src)
	}
}

func TestToLua_RoundTrip(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	in := map[string]any{"visits": 2, "names": []any{"a", "b"}, "done": false}
	assert.Equal(t, in, ToGo(ToLua(L, in)))
}
