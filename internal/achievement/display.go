package achievement

// Rarity display palette. These feed the celebration UI and are denormalized
// onto earned records at award time.

var rarityColors = map[Rarity]string{
	RarityCommon:    "#9CA3AF",
	RarityUncommon:  "#34D399",
	RarityRare:      "#60A5FA",
	RarityEpic:      "#A78BFA",
	RarityLegendary: "#FBBF24",
}

var rarityGlows = map[Rarity]string{
	RarityCommon:    "shadow-gray-400/40",
	RarityUncommon:  "shadow-emerald-400/50",
	RarityRare:      "shadow-blue-400/50",
	RarityEpic:      "shadow-purple-400/60",
	RarityLegendary: "shadow-amber-400/70",
}

// RarityColor returns the accent color for a rarity. Unknown rarities fall
// back to the common color.
func RarityColor(r Rarity) string {
	if c, ok := rarityColors[r]; ok {
		return c
	}
	return rarityColors[RarityCommon]
}

// RarityGlow returns the glow style token for a rarity.
func RarityGlow(r Rarity) string {
	if g, ok := rarityGlows[r]; ok {
		return g
	}
	return rarityGlows[RarityCommon]
}
