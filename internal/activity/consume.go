package activity

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/korrin/meago/internal/data"
	"github.com/korrin/meago/internal/db"
)

// Consume spends count units of an owned consumable. Loot packs
// materialize their drawn rewards into the result's items-earned list.
func (p *Pipeline) Consume(ctx context.Context, userID uint32, def uuid.UUID, count uint32) (*PlayerResult, error) {
	definition, ok := data.ItemByName(def)
	if !ok {
		return nil, ErrMissingDefinition
	}
	if !definition.Consumable {
		return nil, ErrNotConsumable
	}

	builder := newRewardBuilder()
	err := db.WithTx(ctx, p.pool, func(q db.Querier) error {
		item, err := p.inventory.GetByDefinition(ctx, q, userID, def)
		if err != nil {
			return err
		}
		if item == nil {
			return ErrNotOwned
		}
		if item.StackSize < count {
			return ErrNotEnough
		}
		if err := p.inventory.SetStackSize(ctx, q, item.ID, item.StackSize-count); err != nil {
			return err
		}
		if pack, ok := data.PackByItem(def); ok {
			for i := uint32(0); i < count; i++ {
				for _, drawn := range p.draw(pack) {
					if err := p.grantItem(ctx, q, userID, drawn, 1, "pack", builder); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &PlayerResult{}
	builder.Emit(result)
	p.log.Info("item consumed", "user_id", userID, "definition", def, "count", count)
	return result, nil
}

// Purchase resolves a store article, debits its prices, and credits the
// granted item, returning the shared activity-result shape.
func (p *Pipeline) Purchase(ctx context.Context, userID uint32, articleName uuid.UUID) (*PlayerResult, error) {
	article, ok := data.ArticleByName(articleName)
	if !ok {
		return nil, ErrUnknownArticle
	}
	definition, ok := data.ItemByName(article.ItemName)
	if !ok {
		return nil, ErrUnknownArticleItem
	}

	builder := newRewardBuilder()
	err := db.WithTx(ctx, p.pool, func(q db.Querier) error {
		if article.Limit > 0 {
			owned, err := p.inventory.GetByDefinition(ctx, q, userID, article.ItemName)
			if err != nil {
				return err
			}
			if owned != nil && owned.StackSize >= article.Limit {
				return ErrPurchaseLimit
			}
		}
		for t, price := range article.Prices {
			_, ok, err := p.currency.Spend(ctx, q, userID, t, price)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", ErrInsufficientCurrency, t)
			}
		}
		return p.grantItem(ctx, q, userID, definition, 1, "store", builder)
	})
	if err != nil {
		return nil, err
	}

	result := &PlayerResult{}
	builder.Emit(result)
	p.log.Info("article purchased", "user_id", userID, "article", articleName)
	return result, nil
}

// grantItem credits one item, creating the character row when the item is
// a character kit the user does not own yet.
func (p *Pipeline) grantItem(ctx context.Context, q db.Querier, userID uint32, def *data.ItemDefinition, count uint32, earnedBy string, builder *rewardBuilder) error {
	if _, err := p.inventory.AddItem(ctx, q, userID, def.Name, count, earnedBy); err != nil {
		return err
	}
	if def.IsCharacter() {
		if class, ok := data.ClassByItem(def.Name); ok {
			owned, err := p.characters.ListByUser(ctx, q, userID)
			if err != nil {
				return err
			}
			exists := false
			for _, c := range owned {
				if c.ClassName == class.Name {
					exists = true
					break
				}
			}
			if !exists {
				if _, err := p.characters.Create(ctx, q, userID, class.Name); err != nil {
					return err
				}
			}
		}
	}
	builder.AddItem(ItemEarned{DefinitionName: def.Name, StackSize: count})
	return nil
}

// consumeActivity handles an in-match item consumption reported as an
// activity: the stack shrinks and pack draws land in the earned list.
func (p *Pipeline) consumeActivity(ctx context.Context, q db.Querier, userID uint32, act *Activity, builder *rewardBuilder) error {
	name, ok := act.Attr("definitionName")
	if !ok {
		return nil
	}
	def, err := uuid.Parse(name)
	if err != nil {
		return fmt.Errorf("invalid consumed definition %q: %w", name, err)
	}
	count := uint32(1)
	if v, ok := act.Attr("count"); ok {
		if n, err := parseUint32(v); err == nil && n > 0 {
			count = n
		}
	}

	item, err := p.inventory.GetByDefinition(ctx, q, userID, def)
	if err != nil {
		return err
	}
	if item == nil || item.StackSize < count {
		// Reported consumption of something the server never granted;
		// ignore rather than failing the whole player.
		return nil
	}
	if err := p.inventory.SetStackSize(ctx, q, item.ID, item.StackSize-count); err != nil {
		return err
	}
	pack, ok := data.PackByItem(def)
	if !ok {
		return nil
	}
	for i := uint32(0); i < count; i++ {
		for _, drawn := range p.draw(pack) {
			if err := p.grantItem(ctx, q, userID, drawn, 1, "pack", builder); err != nil {
				return err
			}
		}
	}
	return nil
}

func parseUint32(s string) (uint32, error) {
	var n uint64
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("not a number: %q", s)
		}
		n = n*10 + uint64(c-'0')
		if n > 1<<32-1 {
			return 0, fmt.Errorf("out of range: %q", s)
		}
	}
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}
	return uint32(n), nil
}
