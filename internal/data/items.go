package data

import "github.com/google/uuid"

// Item categories as the client reports them.
const (
	CategoryWeapon     = "3"
	CategoryMod        = "5"
	CategoryBooster    = "11"
	CategoryPack       = "12"
	CategoryCharacter  = "14"
	CategoryConsumable = "15"
)

// Rarity tiers used by pack filters.
const (
	RarityCommon    = "Common"
	RarityUncommon  = "Uncommon"
	RarityRare      = "Rare"
	RarityUltraRare = "UltraRare"
)

// ItemDefinition is the static description of one grantable item. Capacity
// zero means the stack is unbounded.
type ItemDefinition struct {
	Name         uuid.UUID
	FriendlyName string
	Category     string
	Rarity       string
	Capacity     uint32
	Consumable   bool
	Droppable    bool
	Attributes   map[string]string
}

// IsCharacter reports whether granting this item creates a character row.
func (d *ItemDefinition) IsCharacter() bool {
	return d.Category == CategoryCharacter
}

var ItemDefinitions = []ItemDefinition{
	// Packs.
	{Name: uuid.MustParse("c5b3d9e6-7932-4579-ba8a-fd469ed43fda"), FriendlyName: "Basic Pack", Category: CategoryPack, Rarity: RarityCommon, Consumable: true},
	{Name: uuid.MustParse("5e9b3a94-97b4-4c0e-8d32-7e9b09a6fd74"), FriendlyName: "Advanced Pack", Category: CategoryPack, Rarity: RarityUncommon, Consumable: true},
	{Name: uuid.MustParse("3b7af5f0-4c2f-4e58-bafe-0d2cda6eac33"), FriendlyName: "Expert Pack", Category: CategoryPack, Rarity: RarityRare, Consumable: true},

	// Weapons.
	{Name: uuid.MustParse("1ce21b05-1c1a-4ab2-9df1-07a38aa6f0e1"), FriendlyName: "M-3 Predator", Category: CategoryWeapon, Rarity: RarityCommon, Capacity: 10, Droppable: true},
	{Name: uuid.MustParse("5c6ee761-3a1b-4bc1-9f28-0ddd49a60f05"), FriendlyName: "M-8 Avenger", Category: CategoryWeapon, Rarity: RarityCommon, Capacity: 10, Droppable: true},
	{Name: uuid.MustParse("3f04cf9e-22c4-4852-9a4b-9a88a0bb5e07"), FriendlyName: "Charger", Category: CategoryWeapon, Rarity: RarityUncommon, Capacity: 10, Droppable: true},
	{Name: uuid.MustParse("ba51f087-1f9c-4b23-9b28-df0f3e3a5c6a"), FriendlyName: "Black Widow", Category: CategoryWeapon, Rarity: RarityUltraRare, Capacity: 10, Droppable: true},

	// Mods.
	{Name: uuid.MustParse("7b4a1e2d-0df9-4cbf-b0f8-bb39f31c5b18"), FriendlyName: "Pistol Scope", Category: CategoryMod, Rarity: RarityCommon, Capacity: 5, Droppable: true},
	{Name: uuid.MustParse("9d9ed1c4-9719-4a96-8f22-91ae26cdb6e7"), FriendlyName: "Rifle Barrel", Category: CategoryMod, Rarity: RarityUncommon, Capacity: 5, Droppable: true},

	// Boosters and consumables.
	{Name: uuid.MustParse("4c9f9d26-ccbb-41cf-b0b4-b5eb4f2fb1e2"), FriendlyName: "Medi-Gel", Category: CategoryConsumable, Rarity: RarityCommon, Capacity: 255, Consumable: true, Droppable: true},
	{Name: uuid.MustParse("6fbe08d0-41f4-4c2f-95b1-6c92f4d37f7a"), FriendlyName: "Ammo Booster", Category: CategoryBooster, Rarity: RarityCommon, Capacity: 255, Consumable: true, Droppable: true},
	{Name: uuid.MustParse("e22fd186-36c5-4aee-9d0f-3f5a2eabb1ef"), FriendlyName: "Cobra RPG", Category: CategoryConsumable, Rarity: RarityUncommon, Capacity: 255, Consumable: true, Droppable: true},
}

var itemByName map[uuid.UUID]int

func init() {
	// Character kits are item definitions too; granting one from a pack or
	// store article creates the character row.
	for _, c := range Classes {
		ItemDefinitions = append(ItemDefinitions, ItemDefinition{
			Name:         c.ItemName,
			FriendlyName: c.Name,
			Category:     CategoryCharacter,
			Rarity:       RarityUncommon,
			Capacity:     1,
			Droppable:    true,
		})
	}
	itemByName = make(map[uuid.UUID]int, len(ItemDefinitions))
	for i, d := range ItemDefinitions {
		itemByName[d.Name] = i
	}
}

// ItemByName returns the definition for the given item UUID.
func ItemByName(name uuid.UUID) (*ItemDefinition, bool) {
	i, ok := itemByName[name]
	if !ok {
		return nil, false
	}
	return &ItemDefinitions[i], true
}
