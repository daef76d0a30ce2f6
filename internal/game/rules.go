package game

import "strconv"

const matchAny = "matchAny"

// matchFields carry the three-attribute form: the value itself, a random
// roll ({field}RND) used only by the client, and a match mode ({field}MFT).
var matchFields = []string{"difficulty", "enemytype", "level"}

// exactFields must compare equal with no mode escape hatch.
var exactFields = []string{"coopGameVisibility", "missionSlot", "modifierCount", "modifiers"}

type matchRule struct {
	field string
	value string
	mode  string
}

type exactRule struct {
	field string
	value string
}

// RuleSet is the constraint set derived from a matchmaking request's
// attributes. A zero rule is simply not applied.
type RuleSet struct {
	matches  []matchRule
	exacts   []exactRule
	gameSize string
}

// ParseRuleSet derives the rule-set from a request attribute map. Only
// attributes present in the request produce rules.
func ParseRuleSet(attrs *AttrMap) *RuleSet {
	rs := &RuleSet{}
	if attrs == nil {
		return rs
	}
	for _, field := range matchFields {
		v, ok := attrs.Get(field)
		if !ok {
			continue
		}
		mode, _ := attrs.Get(field + "MFT")
		rs.matches = append(rs.matches, matchRule{field: field, value: v, mode: mode})
	}
	for _, field := range exactFields {
		if v, ok := attrs.Get(field); ok {
			rs.exacts = append(rs.exacts, exactRule{field: field, value: v})
		}
	}
	if v, ok := attrs.Get("GameSize"); ok {
		rs.gameSize = v
	}
	return rs
}

// Match reports whether a game with the given attributes and player count
// satisfies every rule. Private lobbies never match regardless of rules.
func (rs *RuleSet) Match(attrs *AttrMap, playerCount int) bool {
	if vis, _ := attrs.Get("coopGameVisibility"); vis != "1" {
		return false
	}
	for _, rule := range rs.matches {
		if rule.mode == matchAny {
			continue
		}
		if got, _ := attrs.Get(rule.field); got != rule.value {
			return false
		}
	}
	for _, rule := range rs.exacts {
		if got, _ := attrs.Get(rule.field); got != rule.value {
			return false
		}
	}
	if rs.gameSize != "" && rs.gameSize != matchAny {
		if rs.gameSize != strconv.Itoa(playerCount) {
			return false
		}
	}
	return true
}
