package data

import (
	"github.com/google/uuid"

	"github.com/korrin/meago/internal/model"
)

// Article is one purchasable store entry. Limit zero means unlimited
// purchases.
type Article struct {
	Name     uuid.UUID
	ItemName uuid.UUID
	Prices   map[model.CurrencyType]uint32
	Limit    uint32
}

// Catalog groups articles under a client-visible name.
type Catalog struct {
	Name     string
	Articles []Article
}

var Catalogs = []Catalog{
	{
		Name: "Packs",
		Articles: []Article{
			{
				Name:     uuid.MustParse("aa11cd2b-9c3f-4b12-8a01-0f2a6d1be201"),
				ItemName: uuid.MustParse("c5b3d9e6-7932-4579-ba8a-fd469ed43fda"),
				Prices: map[model.CurrencyType]uint32{
					model.CurrencyGrind: 5000,
				},
			},
			{
				Name:     uuid.MustParse("bb27e4f8-1d0a-4f6e-93b2-1e3b7c2cf302"),
				ItemName: uuid.MustParse("5e9b3a94-97b4-4c0e-8d32-7e9b09a6fd74"),
				Prices: map[model.CurrencyType]uint32{
					model.CurrencyGrind: 20000,
					model.CurrencyMtx:   100,
				},
			},
			{
				Name:     uuid.MustParse("cc3da1b9-4e55-4c7d-84c3-2f4c8d3d0403"),
				ItemName: uuid.MustParse("3b7af5f0-4c2f-4e58-bafe-0d2cda6eac33"),
				Prices: map[model.CurrencyType]uint32{
					model.CurrencyGrind: 50000,
					model.CurrencyMtx:   200,
				},
			},
		},
	},
	{
		Name: "Supplies",
		Articles: []Article{
			{
				Name:     uuid.MustParse("dd48b2ca-5f66-4d8e-95d4-3a5d9e4e1504"),
				ItemName: uuid.MustParse("4c9f9d26-ccbb-41cf-b0b4-b5eb4f2fb1e2"),
				Prices: map[model.CurrencyType]uint32{
					model.CurrencyGrind: 500,
				},
			},
			{
				Name:     uuid.MustParse("ee59c3db-6a77-4e9f-a6e5-4b6eaf5f2605"),
				ItemName: uuid.MustParse("e22fd186-36c5-4aee-9d0f-3f5a2eabb1ef"),
				Prices: map[model.CurrencyType]uint32{
					model.CurrencyGrind: 1500,
				},
				Limit: 5,
			},
		},
	},
}

var articleByName map[uuid.UUID]*Article

func init() {
	articleByName = make(map[uuid.UUID]*Article)
	for i := range Catalogs {
		for j := range Catalogs[i].Articles {
			a := &Catalogs[i].Articles[j]
			articleByName[a.Name] = a
		}
	}
}

// ArticleByName resolves an article across all catalogs.
func ArticleByName(name uuid.UUID) (*Article, bool) {
	a, ok := articleByName[name]
	return a, ok
}
