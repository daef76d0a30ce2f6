package activity

import "errors"

// Pipeline failures the caller maps onto its surface. Each is scoped to
// one player or one request; they never poison sibling processing.
var (
	ErrMissingCharacter     = errors.New("no active character set")
	ErrNotOwned             = errors.New("item not owned")
	ErrMissingDefinition    = errors.New("item definition missing")
	ErrNotConsumable        = errors.New("item is not consumable")
	ErrNotEnough            = errors.New("stack too small")
	ErrUnknownArticle       = errors.New("unknown store article")
	ErrUnknownArticleItem   = errors.New("article grants unknown item")
	ErrInvalidCurrency      = errors.New("invalid currency")
	ErrInsufficientCurrency = errors.New("insufficient currency")
	ErrPurchaseLimit        = errors.New("purchase limit reached")
)
