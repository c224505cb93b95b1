// Package merchant implements merchant stock, restocking and trade.
package merchant

import (
	"errors"
	"fmt"
	"math"

	"github.com/nathoo/campaigncore/engine/currency"
	"github.com/nathoo/campaigncore/engine/item"
	"github.com/nathoo/campaigncore/engine/sim"
)

var (
	ErrOutOfStock        = errors.New("merchant does not have enough")
	ErrInsufficientFunds = errors.New("not enough money")
	ErrNotCarried        = errors.New("party does not have enough")
)

// LootEntry is one line of a merchant's base stock. Probability is a
// percentage; 100 or more always stocks the entry.
type LootEntry struct {
	TemplateID  string
	Quality     string
	Quantity    int
	Probability int
}

// Def is a merchant definition.
type Def struct {
	ID   string
	Name string
	// SellPercentage is the markup the merchant charges the party.
	SellPercentage int
	// BuyPercentage is what the merchant pays the party.
	BuyPercentage int
	// RespawnHours between restocks; 0 never restocks automatically.
	RespawnHours int
	BaseItems    []LootEntry
}

// Merchant is the runtime state of a merchant.
type Merchant struct {
	Def *Def
	// CurrentItems is nil until the stock has been generated.
	CurrentItems     *item.List
	LastRespawnRound int64
	BuyPercentage    int
	SellPercentage   int
}

// New creates a merchant whose stock is pending generation.
func New(def *Def) *Merchant {
	return &Merchant{
		Def:            def,
		BuyPercentage:  def.BuyPercentage,
		SellPercentage: def.SellPercentage,
	}
}

// ID returns the definition ID.
func (m *Merchant) ID() string { return m.Def.ID }

// CheckRespawn reports whether the stock must be regenerated at round now.
func (m *Merchant) CheckRespawn(now, roundsPerHour int64) bool {
	if m.CurrentItems == nil {
		return true
	}
	if m.Def.RespawnHours <= 0 {
		return false
	}
	return now-m.LastRespawnRound >= int64(m.Def.RespawnHours)*roundsPerHour
}

// Restock regenerates the stock from the base loot list.
func (m *Merchant) Restock(ctx *sim.Context, now int64) {
	list := item.NewList()
	for _, e := range m.Def.BaseItems {
		if e.Probability < 100 && !ctx.Dice.Chance(e.Probability) {
			continue
		}
		list.Add(e.TemplateID, e.Quality, max(1, e.Quantity))
	}
	m.CurrentItems = list
	m.LastRespawnRound = now
}

// RestockIfDue restocks when CheckRespawn says so and reports whether it
// did.
func (m *Merchant) RestockIfDue(ctx *sim.Context, now, roundsPerHour int64) bool {
	if !m.CheckRespawn(now, roundsPerHour) {
		return false
	}
	m.Restock(ctx, now)
	return true
}

// SetPartySpeech narrows the gap between the buy and sell percentages as
// the party's speech score rises. It always starts from the defined
// percentages, so calling it repeatedly does not compound.
func (m *Merchant) SetPartySpeech(speech int, expFactor float64) {
	buy, sell := m.Def.BuyPercentage, m.Def.SellPercentage
	if expFactor <= 0 {
		m.BuyPercentage, m.SellPercentage = buy, sell
		return
	}
	gap := math.Exp(-float64(speech) / expFactor)
	mod := int(math.Floor(float64((sell-buy)/2)*(1-gap) + 0.5))
	m.BuyPercentage = buy + mod
	m.SellPercentage = sell - mod
}

// Trade is the party's side of a transaction.
type Trade struct {
	Purse     *currency.Currency
	Inventory *item.List
	Templates item.Lookup
	Qualities map[string]int
}

// SellPrice is what the merchant charges for one item.
func (m *Merchant) SellPrice(t *item.Template, quality string, qualities map[string]int) currency.Currency {
	return currency.FromValue(currency.UnitCost(t.ValueAt(qualities, quality), m.SellPercentage))
}

// BuyPrice is what the merchant pays for one item.
func (m *Merchant) BuyPrice(t *item.Template, quality string, qualities map[string]int) currency.Currency {
	return currency.FromValue(currency.UnitCost(t.ValueAt(qualities, quality), m.BuyPercentage))
}

// Buy moves qty items of a template from the merchant to the party,
// taking stacks in stock order. It returns the total cost.
func (m *Merchant) Buy(ctx *sim.Context, tr Trade, templateID string, qty int) (currency.Currency, error) {
	if qty <= 0 {
		return currency.Currency{}, nil
	}
	t, ok := tr.Templates.Get(templateID)
	if !ok {
		return currency.Currency{}, fmt.Errorf("buy %q: unknown item", templateID)
	}
	if m.CurrentItems == nil || !m.CurrentItems.Has(templateID, qty) {
		return currency.Currency{}, fmt.Errorf("buy %d %s: %w", qty, templateID, ErrOutOfStock)
	}

	picked := take(m.CurrentItems.Entries(), templateID, qty)
	var total currency.Currency
	for _, e := range picked {
		p := m.SellPrice(t, e.Quality, tr.Qualities)
		total.AddValue(p.Value * int64(e.Quantity))
	}
	if !tr.Purse.CanAfford(total) {
		return total, fmt.Errorf("buy %d %s for %s: %w", qty, templateID, total.ShortString(), ErrInsufficientFunds)
	}

	for _, e := range picked {
		if err := m.CurrentItems.RemoveQuality(e.TemplateID, e.Quality, e.Quantity); err != nil {
			return total, fmt.Errorf("buy %s: %w", templateID, err)
		}
		tr.Inventory.Add(e.TemplateID, e.Quality, e.Quantity)
	}
	tr.Purse.Subtract(total)
	ctx.Sayf("Bought %d %s for %s.", qty, nameOf(t), total.ShortString())
	return total, nil
}

// Sell moves qty items of a template from the party to the merchant and
// returns what the merchant paid.
func (m *Merchant) Sell(ctx *sim.Context, tr Trade, templateID string, qty int) (currency.Currency, error) {
	if qty <= 0 {
		return currency.Currency{}, nil
	}
	t, ok := tr.Templates.Get(templateID)
	if !ok {
		return currency.Currency{}, fmt.Errorf("sell %q: unknown item", templateID)
	}
	if !tr.Inventory.Has(templateID, qty) {
		return currency.Currency{}, fmt.Errorf("sell %d %s: %w", qty, templateID, ErrNotCarried)
	}
	if m.CurrentItems == nil {
		m.CurrentItems = item.NewList()
	}

	var total currency.Currency
	for _, e := range take(tr.Inventory.Entries(), templateID, qty) {
		p := m.BuyPrice(t, e.Quality, tr.Qualities)
		total.AddValue(p.Value * int64(e.Quantity))
		if err := tr.Inventory.RemoveQuality(e.TemplateID, e.Quality, e.Quantity); err != nil {
			return total, fmt.Errorf("sell %s: %w", templateID, err)
		}
		m.CurrentItems.Add(e.TemplateID, e.Quality, e.Quantity)
	}
	tr.Purse.Add(total)
	ctx.Sayf("Sold %d %s for %s.", qty, nameOf(t), total.ShortString())
	return total, nil
}

// take selects qty items of id from entries, oldest stacks first.
func take(entries []item.Entry, id string, qty int) []item.Entry {
	var out []item.Entry
	for _, e := range entries {
		if qty == 0 {
			break
		}
		if e.TemplateID != id {
			continue
		}
		n := min(qty, e.Quantity)
		out = append(out, item.Entry{TemplateID: id, Quality: e.Quality, Quantity: n})
		qty -= n
	}
	return out
}

func nameOf(t *item.Template) string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

// Snapshot is the saved form of a merchant. A nil CurrentItems means the
// stock is pending regeneration.
type Snapshot struct {
	ID               string        `json:"id"`
	LastRespawnRound int64         `json:"lastRespawnRound"`
	CurrentItems     *[]item.Entry `json:"currentItems"`
	BuyPercentage    int           `json:"buyPercentage"`
	SellPercentage   int           `json:"sellPercentage"`
}

// Snapshot captures the merchant's runtime state.
func (m *Merchant) Snapshot() Snapshot {
	s := Snapshot{
		ID:               m.Def.ID,
		LastRespawnRound: m.LastRespawnRound,
		BuyPercentage:    m.BuyPercentage,
		SellPercentage:   m.SellPercentage,
	}
	if m.CurrentItems != nil {
		entries := m.CurrentItems.Entries()
		if entries == nil {
			entries = []item.Entry{}
		}
		s.CurrentItems = &entries
	}
	return s
}

// FromSnapshot restores a merchant against its definition.
func FromSnapshot(def *Def, s Snapshot) *Merchant {
	m := New(def)
	m.LastRespawnRound = s.LastRespawnRound
	if s.BuyPercentage != 0 || s.SellPercentage != 0 {
		m.BuyPercentage = s.BuyPercentage
		m.SellPercentage = s.SellPercentage
	}
	if s.CurrentItems != nil {
		m.CurrentItems = item.NewList(*s.CurrentItems...)
	}
	return m
}
