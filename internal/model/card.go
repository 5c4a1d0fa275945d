package model

import "time"

// Card is a card definition occupying one numbered slot of a collection.
type Card struct {
	ID           string    `json:"id"`
	CollectionID string    `json:"collection_id"`
	CardNumber   int       `json:"card_number"`
	Name         string    `json:"name"`
	Rarity       string    `json:"rarity"`
	CardType     string    `json:"card_type"`
	HP           *int      `json:"hp,omitempty"`
	Attack1      string    `json:"attack_1,omitempty"`
	Attack2      string    `json:"attack_2,omitempty"`
	Weakness     string    `json:"weakness,omitempty"`
	Resistance   string    `json:"resistance,omitempty"`
	Description  string    `json:"description,omitempty"`
	SetName      string    `json:"set_name,omitempty"`
	ImageURL     string    `json:"image_url"`
	CreatedAt    time.Time `json:"created_at"`
}

// Rarity tiers, lowest first.
const (
	RarityCommon     = "Common"
	RarityUncommon   = "Uncommon"
	RarityRare       = "Rare"
	RarityHolo       = "Holo"
	RarityUltraRare  = "Ultra Rare"
	RaritySecretRare = "Secret Rare"
)

// Rarities lists every rarity tier in ascending rank.
var Rarities = []string{
	RarityCommon,
	RarityUncommon,
	RarityRare,
	RarityHolo,
	RarityUltraRare,
	RaritySecretRare,
}

// RarityRank returns the position of rarity in the fixed total order
// (Common=1 ... Secret Rare=6). Unknown or empty rarities rank 0.
func RarityRank(rarity string) int {
	for i, r := range Rarities {
		if r == rarity {
			return i + 1
		}
	}
	return 0
}

// ValidRarity reports whether rarity is one of the known tiers.
func ValidRarity(rarity string) bool {
	return RarityRank(rarity) > 0
}

// Card types.
const (
	CardTypePokemon = "Pokemon"
	CardTypeTrainer = "Trainer"
	CardTypeEnergy  = "Energy"
)

// CardTypes lists every card type.
var CardTypes = []string{CardTypePokemon, CardTypeTrainer, CardTypeEnergy}

// ValidCardType reports whether cardType is a known card type.
func ValidCardType(cardType string) bool {
	for _, t := range CardTypes {
		if t == cardType {
			return true
		}
	}
	return false
}
