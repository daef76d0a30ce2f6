package data

import "github.com/korrin/meago/internal/model"

// FormulaOp selects how a modifier formula combines with the running total.
type FormulaOp uint8

const (
	FormulaAdditive FormulaOp = iota
	FormulaMultiplicative
)

// Formula is one reward adjustment: a flat amount or a multiplier applied
// to whatever has accumulated so far.
type Formula struct {
	Op     FormulaOp
	Amount float64
}

// Apply returns the adjusted total and the delta the formula contributed.
func (f Formula) Apply(current uint32) (total, added uint32) {
	switch f.Op {
	case FormulaMultiplicative:
		adjusted := uint32(float64(current) * f.Amount)
		if adjusted < current {
			return current, 0
		}
		return adjusted, adjusted - current
	default:
		return current + uint32(f.Amount), uint32(f.Amount)
	}
}

// ModifierValue is one selectable value of a match modifier with its
// reward formulas.
type ModifierValue struct {
	Value      string
	XP         *Formula
	Currencies map[model.CurrencyType]Formula
}

// MatchModifier is a named difficulty or mutation toggle chosen before a
// match; its active value scales the post-match rewards.
type MatchModifier struct {
	Name   string
	Values []ModifierValue
}

// ValueFor returns the entry matching the reported value.
func (m *MatchModifier) ValueFor(value string) (*ModifierValue, bool) {
	for i := range m.Values {
		if m.Values[i].Value == value {
			return &m.Values[i], true
		}
	}
	return nil, false
}

var MatchModifiers = []MatchModifier{
	{
		Name: "xpBoost",
		Values: []ModifierValue{
			{Value: "small", XP: &Formula{Op: FormulaMultiplicative, Amount: 1.25}},
			{Value: "large", XP: &Formula{Op: FormulaMultiplicative, Amount: 1.5}},
		},
	},
	{
		Name: "creditBoost",
		Values: []ModifierValue{
			{Value: "flat", Currencies: map[model.CurrencyType]Formula{
				model.CurrencyGrind: {Op: FormulaAdditive, Amount: 100},
			}},
			{Value: "double", Currencies: map[model.CurrencyType]Formula{
				model.CurrencyGrind: {Op: FormulaMultiplicative, Amount: 2},
			}},
		},
	},
	{
		Name: "firstStrike",
		Values: []ModifierValue{
			{
				Value: "active",
				XP:    &Formula{Op: FormulaAdditive, Amount: 250},
				Currencies: map[model.CurrencyType]Formula{
					model.CurrencyMission: {Op: FormulaAdditive, Amount: 10},
				},
			},
		},
	},
}

var modifierByName map[string]int

func init() {
	modifierByName = make(map[string]int, len(MatchModifiers))
	for i, m := range MatchModifiers {
		modifierByName[m.Name] = i
	}
}

// ModifierByName returns the named match modifier.
func ModifierByName(name string) (*MatchModifier, bool) {
	i, ok := modifierByName[name]
	if !ok {
		return nil, false
	}
	return &MatchModifiers[i], true
}
