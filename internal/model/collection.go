package model

import "time"

// Collection is an administrator-defined card set with a fixed target size.
type Collection struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	TotalCardsInSet int       `json:"total_cards_in_set"`
	ReleaseDate     string    `json:"release_date,omitempty"`
	ImageURL        string    `json:"image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`

	// Revision changes whenever a card is added to or removed from the collection.
	Revision int64 `json:"revision"`

	// Joined fields (not always populated).
	ActualCards int `json:"actual_cards"`
}

// ManifestEntry is one numbered slot of a collection. Card is set iff Exists.
type ManifestEntry struct {
	CardNumber int   `json:"card_number"`
	Exists     bool  `json:"exists"`
	Card       *Card `json:"card"`
}

// Overview is the complete numbered manifest of a collection, including
// slots for which no card has been authored yet.
type Overview struct {
	Collection         Collection      `json:"collection"`
	CompleteSet        []ManifestEntry `json:"complete_set"`
	TotalCardsInSet    int             `json:"total_cards_in_set"`
	ActualCardsCreated int             `json:"actual_cards_created"`
}

// NewOverview lays cards out over the dense slot range 1..collection.TotalCardsInSet.
// Cards numbered outside that range are not part of the manifest.
func NewOverview(collection Collection, cards []Card) *Overview {
	bySlot := make(map[int]Card, len(cards))
	for _, c := range cards {
		bySlot[c.CardNumber] = c
	}

	entries := make([]ManifestEntry, 0, collection.TotalCardsInSet)
	for n := 1; n <= collection.TotalCardsInSet; n++ {
		entry := ManifestEntry{CardNumber: n}
		if c, ok := bySlot[n]; ok {
			entry.Exists = true
			entry.Card = &c
		}
		entries = append(entries, entry)
	}

	return &Overview{
		Collection:         collection,
		CompleteSet:        entries,
		TotalCardsInSet:    collection.TotalCardsInSet,
		ActualCardsCreated: len(cards),
	}
}
