// Package pack draws booster packs from a collection's card pool.
package pack

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/erazemk/tcgpocket/internal/model"
)

// ErrNoCards is returned when a collection has no cards to draw from.
var ErrNoCards = errors.New("no cards available in collection")

// Odds is the chance of a rolled slot landing on one rarity.
type Odds struct {
	Rarity      string  `toml:"rarity" json:"rarity"`
	Probability float64 `toml:"probability" json:"probability"`
}

// Config controls pack size and rarity odds. Odds are cumulated in order.
type Config struct {
	CardsPerPack int    `toml:"cards_per_pack"`
	Odds         []Odds `toml:"odds"`
}

// DefaultCardsPerPack is the number of cards in a pack.
const DefaultCardsPerPack = 6

// DefaultConfig returns the standard pack layout.
func DefaultConfig() Config {
	return Config{
		CardsPerPack: DefaultCardsPerPack,
		Odds: []Odds{
			{model.RarityCommon, 0.65},
			{model.RarityUncommon, 0.20},
			{model.RarityRare, 0.10},
			{model.RarityHolo, 0.03},
			{model.RarityUltraRare, 0.015},
			{model.RaritySecretRare, 0.005},
		},
	}
}

// Validate checks pack size and odds.
func (c Config) Validate() error {
	if c.CardsPerPack < 1 {
		return fmt.Errorf("cards_per_pack must be at least 1")
	}

	seen := map[string]bool{}
	var sum float64
	for _, o := range c.Odds {
		if !model.ValidRarity(o.Rarity) {
			return fmt.Errorf("unknown rarity %q in odds", o.Rarity)
		}
		if seen[o.Rarity] {
			return fmt.Errorf("rarity %q listed twice in odds", o.Rarity)
		}
		seen[o.Rarity] = true
		if o.Probability < 0 {
			return fmt.Errorf("negative probability for %q", o.Rarity)
		}
		sum += o.Probability
	}
	// Allow for float rounding in hand-written tables.
	if sum > 1+1e-9 {
		return fmt.Errorf("odds sum to %.4f, more than 1", sum)
	}
	return nil
}

// Opener draws packs. It is safe for concurrent use.
type Opener struct {
	cfg Config

	mu  sync.Mutex
	rng *rand.Rand
}

// NewOpener creates an opener. A nil src seeds from the runtime's random source.
func NewOpener(cfg Config, src rand.Source) (*Opener, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Opener{cfg: cfg, rng: rand.New(src)}, nil
}

// CardsPerPack returns the configured pack size.
func (o *Opener) CardsPerPack() int {
	return o.cfg.CardsPerPack
}

// Probabilities returns the odds table keyed by rarity.
func (o *Opener) Probabilities() map[string]float64 {
	p := make(map[string]float64, len(o.cfg.Odds))
	for _, odds := range o.cfg.Odds {
		p[odds.Rarity] = odds.Probability
	}
	return p
}

// Draw pulls one pack from pool. The first slot is an Energy card and the
// second a Trainer card; the rest roll a rarity. Any slot whose card type or
// rarity is absent from pool takes a random card from the whole pool.
func (o *Opener) Draw(pool []model.Card) ([]model.Card, error) {
	if len(pool) == 0 {
		return nil, ErrNoCards
	}

	byType := map[string][]model.Card{}
	byRarity := map[string][]model.Card{}
	for _, c := range pool {
		byType[c.CardType] = append(byType[c.CardType], c)
		byRarity[c.Rarity] = append(byRarity[c.Rarity], c)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	pulled := make([]model.Card, 0, o.cfg.CardsPerPack)
	for _, t := range []string{model.CardTypeEnergy, model.CardTypeTrainer} {
		if len(pulled) == o.cfg.CardsPerPack {
			break
		}
		pulled = append(pulled, o.pick(byType[t], pool))
	}
	for len(pulled) < o.cfg.CardsPerPack {
		pulled = append(pulled, o.pick(byRarity[o.rollRarity()], pool))
	}
	return pulled, nil
}

// rollRarity picks a rarity by cumulative odds. Rolls past the table's
// total land on Common.
func (o *Opener) rollRarity() string {
	roll := o.rng.Float64()
	var cumulative float64
	for _, odds := range o.cfg.Odds {
		cumulative += odds.Probability
		if roll <= cumulative {
			return odds.Rarity
		}
	}
	return model.RarityCommon
}

func (o *Opener) pick(candidates, fallback []model.Card) model.Card {
	if len(candidates) == 0 {
		candidates = fallback
	}
	return candidates[o.rng.IntN(len(candidates))]
}
