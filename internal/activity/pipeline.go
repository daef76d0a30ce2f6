package activity

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/korrin/meago/internal/data"
	"github.com/korrin/meago/internal/db"
	"github.com/korrin/meago/internal/model"
)

// Pipeline turns match reports, consumes, and purchases into persisted
// reward records plus the shaped summary the client renders.
type Pipeline struct {
	pool       *pgxpool.Pool
	users      *db.UserRepository
	characters *db.CharacterRepository
	inventory  *db.InventoryRepository
	currency   *db.CurrencyRepository
	challenges *db.ChallengeRepository
	shared     *db.SharedDataRepository
	log        *slog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewPipeline(pool *pgxpool.Pool, log *slog.Logger) *Pipeline {
	return &Pipeline{
		pool:       pool,
		users:      db.NewUserRepository(pool),
		characters: db.NewCharacterRepository(pool),
		inventory:  db.NewInventoryRepository(pool),
		currency:   db.NewCurrencyRepository(pool),
		challenges: db.NewChallengeRepository(pool),
		shared:     db.NewSharedDataRepository(pool),
		log:        log.With("module", "activity"),
		rng:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// ProcessReport runs the per-player reward algorithm for every block in
// the report. A player's failure rolls back only that player's changes;
// the result lists successful players only.
func (p *Pipeline) ProcessReport(ctx context.Context, report *MatchReport) *ReportResult {
	result := &ReportResult{
		MatchID: report.MatchID,
		Players: make(map[string]*PlayerResult, len(report.Players)),
	}
	for i := range report.Players {
		block := &report.Players[i]
		var playerResult *PlayerResult
		err := db.WithTx(ctx, p.pool, func(q db.Querier) error {
			var err error
			playerResult, err = p.processPlayer(ctx, q, report, block)
			return err
		})
		if err != nil {
			p.log.Error("player report failed",
				"match_id", report.MatchID, "player_id", block.PlayerID, "error", err)
			continue
		}
		result.Players[strconv.FormatUint(uint64(block.PlayerID), 10)] = playerResult
	}
	return result
}

func (p *Pipeline) processPlayer(ctx context.Context, q db.Querier, report *MatchReport, block *PlayerReport) (*PlayerResult, error) {
	// Step 1: load the player's aggregates and reference rows.
	user, err := p.users.GetByID(ctx, q, block.PlayerID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %d not found", block.PlayerID)
	}
	shared, err := p.shared.Get(ctx, q, user.ID)
	if err != nil {
		return nil, err
	}
	if shared.ActiveCharacterID == 0 {
		return nil, ErrMissingCharacter
	}
	character, err := p.characters.GetByID(ctx, q, shared.ActiveCharacterID)
	if err != nil {
		return nil, err
	}
	if character == nil {
		return nil, ErrMissingCharacter
	}
	class, ok := data.ClassByName(character.ClassName)
	if !ok {
		return nil, fmt.Errorf("character %d has unknown class %q", character.ID, character.ClassName)
	}
	levelTable, ok := data.LevelTableByName(class.LevelTable)
	if !ok {
		return nil, fmt.Errorf("class %q references unknown level table %q", class.Name, class.LevelTable)
	}

	builder := newRewardBuilder()

	// Step 2: base score.
	var baseScore uint32
	for i := range block.Activities {
		baseScore += block.Activities[i].Score()
	}

	// Step 3: badges.
	for i := range block.Activities {
		act := &block.Activities[i]
		attrs := act.AttrMap()
		badge, ok := data.MatchBadge(act.Name, attrs)
		if !ok {
			continue
		}
		progress := badge.Descriptor.Progress(attrs)
		earned := badge.EarnedLevels(progress)
		if len(earned) == 0 {
			continue
		}
		sourceName := badge.ID.String()
		names := make([]string, 0, len(earned))
		for _, lvl := range earned {
			builder.AddXP(sourceName, lvl.XP)
			for t, amount := range lvl.Currencies {
				builder.AddCurrency(sourceName, t, amount)
			}
			names = append(names, lvl.Name)
		}
		builder.AddBadge(BadgeInfo{
			Name:         badge.Name,
			Count:        progress,
			HighestLevel: names[len(names)-1],
			LevelsEarned: names,
		})
	}

	// Step 4: base XP.
	builder.AddXP("base", baseScore)

	// Step 5: modifiers.
	for _, sel := range report.Modifiers {
		modifier, ok := data.ModifierByName(sel.Name)
		if !ok {
			continue
		}
		value, ok := modifier.ValueFor(sel.Value)
		if !ok {
			continue
		}
		if value.XP != nil {
			_, added := value.XP.Apply(builder.TotalXP())
			builder.AddXP(modifier.Name, added)
		}
		totals := builder.TotalCurrencies()
		for t, formula := range value.Currencies {
			_, added := formula.Apply(totals[t])
			builder.AddCurrency(modifier.Name, t, added)
		}
	}
	earnedXP := builder.TotalXP()

	// Step 6: character leveling.
	previousXP, previousLevel := character.XP, character.Level
	character.XP, character.Level = foldXP(character.XP, character.Level, earnedXP, levelTable)
	if character.XP != previousXP || character.Level != previousLevel {
		if err := p.characters.UpdateProgression(ctx, q, character); err != nil {
			return nil, err
		}
	}

	// Step 7: prestige leveling.
	if err := p.foldPrestige(ctx, q, shared, class, earnedXP, builder); err != nil {
		return nil, err
	}

	// Step 8: challenges.
	if err := p.applyChallenges(ctx, q, user.ID, block, builder); err != nil {
		return nil, err
	}

	// In-match consumptions shrink stacks and materialize pack draws.
	for i := range block.Activities {
		act := &block.Activities[i]
		if act.Name != "_itemConsumed" {
			continue
		}
		if err := p.consumeActivity(ctx, q, user.ID, act, builder); err != nil {
			return nil, err
		}
	}

	// Step 9: currency.
	if err := p.currency.AddMany(ctx, q, user.ID, builder.TotalCurrencies()); err != nil {
		return nil, err
	}

	// Step 10: shape the response.
	result := &PlayerResult{
		PreviousXP:     previousXP,
		CurrentXP:      character.XP,
		PreviousLevel:  previousLevel,
		CurrentLevel:   character.Level,
		LeveledUp:      character.Level != previousLevel,
		Score:          baseScore,
		TotalScore:     earnedXP,
		CharacterClass: class.Name,
	}
	builder.Emit(result)
	return result, nil
}

// foldPrestige folds earned XP into the class family's shared prestige
// entry, creating it on first contact.
func (p *Pipeline) foldPrestige(ctx context.Context, q db.Querier, shared *model.SharedData, class *data.Class, earnedXP uint32, builder *rewardBuilder) error {
	table, ok := data.LevelTableByName(class.PrestigeTable)
	if !ok {
		return fmt.Errorf("class %q references unknown prestige table %q", class.Name, class.PrestigeTable)
	}
	entry := shared.Progression(class.PrestigeTable)
	if entry == nil {
		next, _ := table.Requirement(1)
		shared.SharedProgression = append(shared.SharedProgression, model.PrestigeProgression{
			Name:  class.PrestigeTable,
			Level: 1,
			XP:    model.XP{Next: uint32(next)},
		})
		entry = &shared.SharedProgression[len(shared.SharedProgression)-1]
	}
	builder.SnapshotPrestigeBefore(*entry)
	entry.XP, entry.Level = foldXP(entry.XP, entry.Level, earnedXP, table)
	builder.SnapshotPrestigeAfter(*entry)
	return p.shared.SetProgression(ctx, q, shared.UserID, shared.SharedProgression)
}

type challengeChange struct {
	challenge *data.Challenge
	counter   *data.CounterDef
	progress  uint32
}

// applyChallenges matches every activity against the challenge counters,
// merges duplicate (challenge, counter) changes, and writes them through.
func (p *Pipeline) applyChallenges(ctx context.Context, q db.Querier, userID uint32, block *PlayerReport, builder *rewardBuilder) error {
	type key struct {
		challenge uuid.UUID
		counter   string
	}
	var order []key
	merged := make(map[key]*challengeChange)

	for i := range block.Activities {
		act := &block.Activities[i]
		attrs := act.AttrMap()
		challenge, counter, ok := data.MatchChallengeCounter(act.Name, attrs)
		if !ok {
			continue
		}
		k := key{challenge: challenge.ID, counter: counter.Name}
		if existing, ok := merged[k]; ok {
			existing.progress += counter.Descriptor.Progress(attrs)
			continue
		}
		merged[k] = &challengeChange{
			challenge: challenge,
			counter:   counter,
			progress:  counter.Descriptor.Progress(attrs),
		}
		order = append(order, k)
	}

	for _, k := range order {
		change := merged[k]
		counter, status, err := p.challenges.UpdateCounter(ctx, q,
			userID, change.challenge.ID, change.counter.Name,
			change.counter.Target, change.progress, change.challenge.Repeatable)
		if err != nil {
			return err
		}
		builder.AddChallenge(ChallengeUpdate{
			ChallengeID:   change.challenge.ID,
			ChallengeName: change.challenge.Name,
			CounterName:   change.counter.Name,
			Status:        status,
			Counter:       *counter,
		})
	}
	return nil
}

// draw samples a pack with the pipeline's rng.
func (p *Pipeline) draw(pack *data.Pack) []*data.ItemDefinition {
	p.rngMu.Lock()
	defer p.rngMu.Unlock()
	return pack.Draw(p.rng)
}
