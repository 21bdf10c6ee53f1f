package extract

// MaterialEntry is one (item, quantity) line consumed by a recipe.
// Entries repeating the same item are kept separate; the document's
// line items are preserved as listed.
type MaterialEntry struct {
	ItemID   int64 `json:"itemIdentity"`
	Quantity int64 `json:"quantity"`
}

// Record is the structured form of one recipe page.
type Record struct {
	RecipeID       int64           `json:"recipeIdentity"`
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	RequiredSkill  int             `json:"requiredSkill"`
	IconToken      string          `json:"iconToken"`
	Materials      []MaterialEntry `json:"materials"`
	OutputItemID   int64           `json:"outputItemIdentity"`
	OutputQuantity int64           `json:"outputQuantity"`
	SourceRef      string          `json:"sourceReference"`
	ExtractedAt    string          `json:"extractedAtTimestamp"`
}
