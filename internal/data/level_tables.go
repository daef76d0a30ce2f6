package data

const levelTableCharacter = "CharacterLevel"

// LevelTable maps a level to the XP required to advance past it. Character
// kits share one table; prestige pools have one table per class family.
type LevelTable struct {
	Name    string
	Entries []LevelEntry
}

// LevelEntry gives the XP needed to advance from Level to Level+1.
type LevelEntry struct {
	Level int32
	XP    int64
}

// MaxLevel returns the highest level the table can advance a player to.
func (t *LevelTable) MaxLevel() int32 {
	if len(t.Entries) == 0 {
		return 1
	}
	return t.Entries[len(t.Entries)-1].Level + 1
}

// Requirement returns the XP needed to advance from level, and whether the
// table has a row for it. Past the last row there is no further level.
func (t *LevelTable) Requirement(level int32) (int64, bool) {
	for _, e := range t.Entries {
		if e.Level == level {
			return e.XP, true
		}
	}
	return 0, false
}

var LevelTables []LevelTable

var levelTableByName map[string]int

func init() {
	character := LevelTable{Name: levelTableCharacter, Entries: []LevelEntry{
		{Level: 1, XP: 500},
		{Level: 2, XP: 1000},
		{Level: 3, XP: 1625},
		{Level: 4, XP: 2375},
		{Level: 5, XP: 3250},
		{Level: 6, XP: 4250},
		{Level: 7, XP: 5375},
		{Level: 8, XP: 6625},
		{Level: 9, XP: 8000},
		{Level: 10, XP: 9500},
		{Level: 11, XP: 11125},
		{Level: 12, XP: 12875},
		{Level: 13, XP: 14750},
		{Level: 14, XP: 16750},
		{Level: 15, XP: 18875},
		{Level: 16, XP: 21125},
		{Level: 17, XP: 23500},
		{Level: 18, XP: 26000},
		{Level: 19, XP: 28625},
	}}

	LevelTables = []LevelTable{
		character,
		prestigeTable("Prestige_Biotic"),
		prestigeTable("Prestige_Combat"),
		prestigeTable("Prestige_Tech"),
	}
	levelTableByName = make(map[string]int, len(LevelTables))
	for i, t := range LevelTables {
		levelTableByName[t.Name] = i
	}
}

// prestigeTable builds the flat prestige ladder: 100 levels, each costing
// 1000 XP more than the one before.
func prestigeTable(name string) LevelTable {
	entries := make([]LevelEntry, 0, 99)
	for lvl := int32(1); lvl < 100; lvl++ {
		entries = append(entries, LevelEntry{Level: lvl, XP: int64(lvl) * 1000})
	}
	return LevelTable{Name: name, Entries: entries}
}

// LevelTableByName returns the named table.
func LevelTableByName(name string) (*LevelTable, bool) {
	i, ok := levelTableByName[name]
	if !ok {
		return nil, false
	}
	return &LevelTables[i], true
}
