package currency

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccumulatorsMatchDirectValue(t *testing.T) {
	for _, tc := range []struct{ cp, sp, gp, pp int64 }{
		{0, 0, 0, 0},
		{1, 0, 0, 0},
		{7, 3, 2, 1},
		{999, 99, 9, 12},
		{0, 0, 3, 0},
	} {
		var c Currency
		c.AddCP(tc.cp)
		c.AddSP(tc.sp)
		c.AddGP(tc.gp)
		c.AddPP(tc.pp)

		want := tc.cp*100 + tc.sp*1000 + tc.gp*10000 + tc.pp*100000
		assert.Equal(t, want, c.Value, "%+v", tc)
	}
}

func TestShortString(t *testing.T) {
	tests := []struct {
		name string
		c    Currency
		want string
	}{
		{"empty", Currency{}, "0 CP"},
		{"gold only", FromGP(3), "3 GP"},
		{"silver only", FromSP(4), "4 SP"},
		{"copper only", FromCP(9), "9 CP"},
		{"platinum only", FromPP(2), "2 PP"},
		{"mixed", Currency{Value: 1*PP + 2*GP + 3*SP + 4*CP}, "1 PP 2 GP 3 SP 4 CP"},
		{"skips zero", Currency{Value: 1*PP + 4*CP}, "1 PP 4 CP"},
		{"fraction dropped", Currency{Value: 150}, "1 CP"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.ShortString())
		})
	}
}

func TestString_LongForm(t *testing.T) {
	assert.Equal(t, "1 Platinum, 3 Gold", Currency{Value: PP + 3*GP}.String())
	assert.Equal(t, "0 Copper", Currency{}.String())
}

func TestAddFromString(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	c := Parse(logger, "3 GP 5 sp 2 Cp")
	assert.Equal(t, 3*GP+5*SP+2*CP, c.Value)
	assert.Empty(t, buf.String())
}

func TestAddFromString_MalformedTokensAreSwallowed(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	c := FromGP(1)
	c.AddFromString(logger, "x GP 2 XP 4 SP 7")

	assert.Equal(t, GP+4*SP, c.Value, "well-formed pairs still apply")
	assert.Contains(t, buf.String(), `bad amount "x"`)
	assert.Contains(t, buf.String(), `unknown unit "XP"`)
	assert.Contains(t, buf.String(), `amount "7" has no unit`)
}

func TestAddFromString_NilLogger(t *testing.T) {
	c := Parse(nil, "nonsense")
	assert.Equal(t, int64(0), c.Value)
}

func TestMaxAffordable(t *testing.T) {
	purse := FromGP(10)

	assert.Equal(t, 10, purse.MaxAffordable(GP, 100))
	assert.Equal(t, 6, purse.MaxAffordable(GP, 150))
	assert.Equal(t, Unbounded, purse.MaxAffordable(0, 100))
	assert.Equal(t, Unbounded, purse.MaxAffordable(GP, 0))
	assert.Equal(t, 0, Currency{}.MaxAffordable(GP, 100))
}

func TestCanAffordSubtract(t *testing.T) {
	purse := FromGP(2)
	cost := FromSP(15)

	assert.True(t, purse.CanAfford(cost))
	purse.Subtract(cost)
	assert.Equal(t, 5*SP, purse.Value)
	assert.False(t, purse.CanAfford(FromGP(1)))
}
