package data

import "github.com/google/uuid"

// Class describes one playable character kit: the item definition that
// represents it in the inventory, the level table its XP folds into, and
// the shared prestige table its class family contributes to.
type Class struct {
	Name          string
	ItemName      uuid.UUID
	LevelTable    string
	PrestigeTable string
}

var Classes = []Class{
	{Name: "AdeptHuman", ItemName: uuid.MustParse("67c3fc92-5ddb-4f33-9921-592b8e01956b"), LevelTable: levelTableCharacter, PrestigeTable: "Prestige_Biotic"},
	{Name: "AdeptAsari", ItemName: uuid.MustParse("0ad6b54d-67c5-4bbb-8a09-a60a3de1b392"), LevelTable: levelTableCharacter, PrestigeTable: "Prestige_Biotic"},
	{Name: "VanguardHuman", ItemName: uuid.MustParse("0a2c8795-4dd1-41ef-9c1c-14d77d381a87"), LevelTable: levelTableCharacter, PrestigeTable: "Prestige_Biotic"},
	{Name: "VanguardKrogan", ItemName: uuid.MustParse("c756b6bd-1a75-4095-8b20-4a25ec064acb"), LevelTable: levelTableCharacter, PrestigeTable: "Prestige_Biotic"},
	{Name: "SoldierHuman", ItemName: uuid.MustParse("319ef447-4fd9-43bc-a542-3cf37ba89f44"), LevelTable: levelTableCharacter, PrestigeTable: "Prestige_Combat"},
	{Name: "SoldierTurian", ItemName: uuid.MustParse("82cb8bb8-8c5e-46bc-bc08-9e0a25b7f203"), LevelTable: levelTableCharacter, PrestigeTable: "Prestige_Combat"},
	{Name: "MercenaryKrogan", ItemName: uuid.MustParse("3aad9a4f-f0e2-4aab-80a6-b3cf17d6ce4b"), LevelTable: levelTableCharacter, PrestigeTable: "Prestige_Combat"},
	{Name: "EngineerHuman", ItemName: uuid.MustParse("e4ee9b55-4bd4-420f-a868-8c14e1cc2ea8"), LevelTable: levelTableCharacter, PrestigeTable: "Prestige_Tech"},
	{Name: "EngineerSalarian", ItemName: uuid.MustParse("8e7c25b3-27a0-4fa4-8d30-bd533ba1b0fb"), LevelTable: levelTableCharacter, PrestigeTable: "Prestige_Tech"},
	{Name: "InfiltratorHuman", ItemName: uuid.MustParse("9a9577f1-5d4c-4a8a-b7d0-a2fab37e9b93"), LevelTable: levelTableCharacter, PrestigeTable: "Prestige_Tech"},
	{Name: "InfiltratorAngara", ItemName: uuid.MustParse("d9d24eed-9d16-4b0f-8a37-d43ae91b5bd4"), LevelTable: levelTableCharacter, PrestigeTable: "Prestige_Tech"},
	{Name: "SentinelHuman", ItemName: uuid.MustParse("1ad4e5e3-e07b-4c19-8beb-e0c9a7b9ae49"), LevelTable: levelTableCharacter, PrestigeTable: "Prestige_Biotic"},
}

var (
	classByName map[string]int
	classByItem map[uuid.UUID]int
)

func init() {
	classByName = make(map[string]int, len(Classes))
	classByItem = make(map[uuid.UUID]int, len(Classes))
	for i, c := range Classes {
		classByName[c.Name] = i
		classByItem[c.ItemName] = i
	}
}

// ClassByName returns the class with the given kit name.
func ClassByName(name string) (*Class, bool) {
	i, ok := classByName[name]
	if !ok {
		return nil, false
	}
	return &Classes[i], true
}

// ClassByItem returns the class represented by the given item definition.
func ClassByItem(item uuid.UUID) (*Class, bool) {
	i, ok := classByItem[item]
	if !ok {
		return nil, false
	}
	return &Classes[i], true
}
