package model

import "time"

// CardInstance is one owned copy of a card, recorded when a pack is opened.
// Card attributes are copied at pull time so instances outlive their definition.
type CardInstance struct {
	ID           int64     `json:"instance_id"`
	UserID       int64     `json:"user_id"`
	PackID       int64     `json:"pack_id"`
	CardID       string    `json:"id"`
	CollectionID string    `json:"collection_id"`
	CardNumber   int       `json:"card_number"`
	Name         string    `json:"name"`
	Rarity       string    `json:"rarity"`
	CardType     string    `json:"card_type"`
	ImageURL     string    `json:"image_url"`
	CollectedAt  time.Time `json:"collected_at"`
}

// CardDefinition rebuilds the card definition carried by the instance.
func (ci CardInstance) CardDefinition() Card {
	return Card{
		ID:           ci.CardID,
		CollectionID: ci.CollectionID,
		CardNumber:   ci.CardNumber,
		Name:         ci.Name,
		Rarity:       ci.Rarity,
		CardType:     ci.CardType,
		ImageURL:     ci.ImageURL,
	}
}

// PackOpening is the result of opening one booster pack.
type PackOpening struct {
	ID             int64     `json:"pack_id"`
	UserID         int64     `json:"user_id"`
	CollectionID   string    `json:"collection_id"`
	CollectionName string    `json:"collection_name"`
	Cards          []Card    `json:"cards"`
	OpenedAt       time.Time `json:"opened_at"`
}

// CollectionStat counts a user's copies and distinct cards within one collection.
type CollectionStat struct {
	Count  int `json:"count"`
	Unique int `json:"unique"`
}

// UserCollection summarises everything a user has pulled.
type UserCollection struct {
	UserID           int64                     `json:"user_id"`
	CollectedCards   []CardInstance            `json:"collected_cards"`
	TotalPacksOpened int                       `json:"total_packs_opened"`
	UniqueCards      int                       `json:"unique_cards"`
	TotalCards       int                       `json:"total_cards"`
	RarityCounts     map[string]int            `json:"rarity_counts"`
	CollectionStats  map[string]CollectionStat `json:"collection_stats"`
}

// NewUserCollection derives the summary statistics from a user's instances.
func NewUserCollection(userID int64, instances []CardInstance, packsOpened int) *UserCollection {
	uc := &UserCollection{
		UserID:           userID,
		CollectedCards:   instances,
		TotalPacksOpened: packsOpened,
		TotalCards:       len(instances),
		RarityCounts:     map[string]int{},
		CollectionStats:  map[string]CollectionStat{},
	}
	if uc.CollectedCards == nil {
		uc.CollectedCards = []CardInstance{}
	}

	unique := map[string]bool{}
	perCollection := map[string]map[string]bool{}
	for _, inst := range instances {
		unique[inst.CardID] = true

		rarity := inst.Rarity
		if rarity == "" {
			rarity = "Unknown"
		}
		uc.RarityCounts[rarity]++

		collID := inst.CollectionID
		if collID == "" {
			collID = "Unknown"
		}
		if perCollection[collID] == nil {
			perCollection[collID] = map[string]bool{}
		}
		perCollection[collID][inst.CardID] = true
		stat := uc.CollectionStats[collID]
		stat.Count++
		uc.CollectionStats[collID] = stat
	}

	for collID, cards := range perCollection {
		stat := uc.CollectionStats[collID]
		stat.Unique = len(cards)
		uc.CollectionStats[collID] = stat
	}
	uc.UniqueCards = len(unique)
	return uc
}
