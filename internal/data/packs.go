package data

import (
	"math/rand/v2"

	"github.com/google/uuid"
)

// PackFilter selects item definitions eligible for one pack draw. Filters
// compose into trees via And/Or/Not.
type PackFilter interface {
	MatchesItem(def *ItemDefinition) bool
}

type AndFilter []PackFilter

func (f AndFilter) MatchesItem(def *ItemDefinition) bool {
	for _, sub := range f {
		if !sub.MatchesItem(def) {
			return false
		}
	}
	return true
}

type OrFilter []PackFilter

func (f OrFilter) MatchesItem(def *ItemDefinition) bool {
	for _, sub := range f {
		if sub.MatchesItem(def) {
			return true
		}
	}
	return false
}

type NotFilter struct{ Filter PackFilter }

func (f NotFilter) MatchesItem(def *ItemDefinition) bool {
	return !f.Filter.MatchesItem(def)
}

type CategoryFilter string

func (f CategoryFilter) MatchesItem(def *ItemDefinition) bool {
	return def.Category == string(f)
}

type RarityFilter string

func (f RarityFilter) MatchesItem(def *ItemDefinition) bool {
	return def.Rarity == string(f)
}

type AttributeFilter struct{ Key, Value string }

func (f AttributeFilter) MatchesItem(def *ItemDefinition) bool {
	return def.Attributes[f.Key] == f.Value
}

type NamedFilter uuid.UUID

func (f NamedFilter) MatchesItem(def *ItemDefinition) bool {
	return def.Name == uuid.UUID(f)
}

// WeightedFilter is one branch of a pack collection with its draw weight.
type WeightedFilter struct {
	Weight uint32
	Filter PackFilter
}

// PackCollection draws Count items, each time picking a branch by weight
// and then a uniform random droppable item matching the branch.
type PackCollection struct {
	Count    int
	Branches []WeightedFilter
}

// Pack is the reward table behind a consumable pack item.
type Pack struct {
	Name        string
	ItemName    uuid.UUID
	Collections []PackCollection
}

var Packs = []Pack{
	{
		Name:     "BasicPack",
		ItemName: uuid.MustParse("c5b3d9e6-7932-4579-ba8a-fd469ed43fda"),
		Collections: []PackCollection{
			{
				Count: 2,
				Branches: []WeightedFilter{
					{Weight: 8, Filter: AndFilter{RarityFilter(RarityCommon), NotFilter{CategoryFilter(CategoryCharacter)}}},
					{Weight: 2, Filter: RarityFilter(RarityUncommon)},
				},
			},
			{
				Count: 1,
				Branches: []WeightedFilter{
					{Weight: 1, Filter: OrFilter{CategoryFilter(CategoryConsumable), CategoryFilter(CategoryBooster)}},
				},
			},
		},
	},
	{
		Name:     "AdvancedPack",
		ItemName: uuid.MustParse("5e9b3a94-97b4-4c0e-8d32-7e9b09a6fd74"),
		Collections: []PackCollection{
			{
				Count: 3,
				Branches: []WeightedFilter{
					{Weight: 6, Filter: RarityFilter(RarityUncommon)},
					{Weight: 3, Filter: RarityFilter(RarityCommon)},
					{Weight: 1, Filter: RarityFilter(RarityRare)},
				},
			},
		},
	},
	{
		Name:     "ExpertPack",
		ItemName: uuid.MustParse("3b7af5f0-4c2f-4e58-bafe-0d2cda6eac33"),
		Collections: []PackCollection{
			{
				Count: 3,
				Branches: []WeightedFilter{
					{Weight: 5, Filter: RarityFilter(RarityUncommon)},
					{Weight: 4, Filter: RarityFilter(RarityRare)},
					{Weight: 1, Filter: OrFilter{RarityFilter(RarityUltraRare), CategoryFilter(CategoryCharacter)}},
				},
			},
			{
				Count: 2,
				Branches: []WeightedFilter{
					{Weight: 1, Filter: OrFilter{CategoryFilter(CategoryConsumable), CategoryFilter(CategoryBooster)}},
				},
			},
		},
	},
}

var packByItem map[uuid.UUID]int

func init() {
	packByItem = make(map[uuid.UUID]int, len(Packs))
	for i, p := range Packs {
		packByItem[p.ItemName] = i
	}
}

// PackByItem returns the pack opened by consuming the given item.
func PackByItem(item uuid.UUID) (*Pack, bool) {
	i, ok := packByItem[item]
	if !ok {
		return nil, false
	}
	return &Packs[i], true
}

// Draw materializes the pack into concrete item definitions. A branch with
// no matching droppable items contributes nothing for that draw.
func (p *Pack) Draw(rng *rand.Rand) []*ItemDefinition {
	var out []*ItemDefinition
	for _, col := range p.Collections {
		for i := 0; i < col.Count; i++ {
			branch := pickBranch(rng, col.Branches)
			if branch == nil {
				continue
			}
			candidates := droppableMatching(branch.Filter)
			if len(candidates) == 0 {
				continue
			}
			out = append(out, candidates[rng.IntN(len(candidates))])
		}
	}
	return out
}

func pickBranch(rng *rand.Rand, branches []WeightedFilter) *WeightedFilter {
	var total uint32
	for _, b := range branches {
		total += b.Weight
	}
	if total == 0 {
		return nil
	}
	roll := rng.Uint32N(total)
	for i := range branches {
		if roll < branches[i].Weight {
			return &branches[i]
		}
		roll -= branches[i].Weight
	}
	return &branches[len(branches)-1]
}

func droppableMatching(filter PackFilter) []*ItemDefinition {
	var out []*ItemDefinition
	for i := range ItemDefinitions {
		def := &ItemDefinitions[i]
		if def.Droppable && filter.MatchesItem(def) {
			out = append(out, def)
		}
	}
	return out
}
