package reconcile

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/erazemk/tcgpocket/internal/model"
)

// SortMode selects the ordering applied by Sort.
type SortMode string

// Sort modes.
const (
	SortNumber SortMode = "number"
	SortName   SortMode = "name"
	SortRarity SortMode = "rarity"
)

// ParseSortMode maps a query value to a SortMode. Anything unrecognised
// sorts by number.
func ParseSortMode(s string) SortMode {
	switch SortMode(strings.ToLower(strings.TrimSpace(s))) {
	case SortName:
		return SortName
	case SortRarity:
		return SortRarity
	default:
		return SortNumber
	}
}

// MissingCardName is the name a row without a card sorts under.
func MissingCardName(cardNumber int) string {
	return fmt.Sprintf("Missing Card %d", cardNumber)
}

// Sort returns a stably sorted copy of rows. The input is not modified.
func Sort(rows []Row, mode SortMode) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)

	switch mode {
	case SortName:
		// Collators keep scratch buffers, so each call gets its own.
		col := collate.New(language.English)
		slices.SortStableFunc(out, func(a, b Row) int {
			return col.CompareString(a.displayName(), b.displayName())
		})
	case SortRarity:
		slices.SortStableFunc(out, func(a, b Row) int {
			return cmp.Compare(b.rarityRank(), a.rarityRank())
		})
	default:
		slices.SortStableFunc(out, func(a, b Row) int {
			return cmp.Compare(a.CardNumber, b.CardNumber)
		})
	}
	return out
}

func (r Row) displayName() string {
	if r.Card == nil {
		return MissingCardName(r.CardNumber)
	}
	return r.Card.Name
}

func (r Row) rarityRank() int {
	if r.Card == nil {
		return 0
	}
	return model.RarityRank(r.Card.Rarity)
}
