// Package reconcile turns a user's owned card instances and a collection's
// numbered manifest into ordered, gap-aware display rows.
//
// Everything here is pure: no I/O, no shared state, no errors. Malformed
// input (blank card IDs, a nil overview, existing slots without a card) is
// skipped or degraded rather than reported.
package reconcile

import "github.com/erazemk/tcgpocket/internal/model"

// Row is one displayable entry, either an owned card or a manifest slot.
type Row struct {
	CardNumber int         `json:"card_number"`
	Exists     bool        `json:"exists"`
	Card       *model.Card `json:"card"`
	Quantity   int         `json:"quantity"`
	Owned      bool        `json:"owned"`
}

// Grouped holds one owned row per card ID and remembers the order in which
// card IDs were first seen.
type Grouped struct {
	rows  map[string]*Row
	order []string
}

// Group folds instances into one row per distinct card ID, counting copies.
// Instances without a card ID are ignored.
func Group(instances []model.CardInstance) *Grouped {
	g := &Grouped{rows: make(map[string]*Row)}
	for _, inst := range instances {
		if inst.CardID == "" {
			continue
		}
		row, ok := g.rows[inst.CardID]
		if !ok {
			card := inst.CardDefinition()
			row = &Row{
				CardNumber: inst.CardNumber,
				Exists:     true,
				Card:       &card,
				Owned:      true,
			}
			g.rows[inst.CardID] = row
			g.order = append(g.order, inst.CardID)
		}
		row.Quantity++
	}
	return g
}

// Len returns the number of distinct card IDs.
func (g *Grouped) Len() int {
	return len(g.order)
}

// Get returns the row for cardID.
func (g *Grouped) Get(cardID string) (Row, bool) {
	row, ok := g.rows[cardID]
	if !ok {
		return Row{}, false
	}
	return copyRow(*row), true
}

// Quantity returns how many copies of cardID were grouped.
func (g *Grouped) Quantity(cardID string) int {
	if row, ok := g.rows[cardID]; ok {
		return row.Quantity
	}
	return 0
}

// Total returns the number of grouped instances.
func (g *Grouped) Total() int {
	total := 0
	for _, row := range g.rows {
		total += row.Quantity
	}
	return total
}

// Rows returns a fresh slice of the grouped rows in first-seen order.
func (g *Grouped) Rows() []Row {
	rows := make([]Row, 0, len(g.order))
	for _, id := range g.order {
		rows = append(rows, copyRow(*g.rows[id]))
	}
	return rows
}

// Rows builds the display rows for one collection.
//
// Without an overview, or with showMissing false, only owned cards are
// returned, one row per card ID. Otherwise every manifest slot produces a row
// in manifest order: authored slots carry the owned quantity (possibly zero),
// unauthored slots become placeholders.
func Rows(instances []model.CardInstance, overview *model.Overview, showMissing bool) []Row {
	g := Group(instances)
	if overview == nil || !showMissing {
		return g.Rows()
	}

	rows := make([]Row, 0, len(overview.CompleteSet))
	for _, entry := range overview.CompleteSet {
		// An existing slot without its card is treated as unauthored.
		if !entry.Exists || entry.Card == nil {
			rows = append(rows, Row{CardNumber: entry.CardNumber})
			continue
		}
		card := *entry.Card
		qty := g.Quantity(card.ID)
		rows = append(rows, Row{
			CardNumber: entry.CardNumber,
			Exists:     true,
			Card:       &card,
			Quantity:   qty,
			Owned:      qty > 0,
		})
	}
	return rows
}

func copyRow(r Row) Row {
	if r.Card != nil {
		card := *r.Card
		r.Card = &card
	}
	return r
}
