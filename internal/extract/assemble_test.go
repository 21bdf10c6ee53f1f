package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/recipecrawl/internal/refs"
)

func fixedAssembler() *Assembler {
	return &Assembler{Now: func() time.Time {
		return time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	}}
}

func feastRef() refs.Reference {
	return refs.Reference{
		URL:      "https://www.wowhead.com/classic/spell=12345/grand-feast",
		RecipeID: 12345,
	}
}

const feastPage = `<!DOCTYPE html>
<html><body>
<div class="breadcrumb">
  <a href="/">Home</a>
  <a href="/classic/spells">Spells</a>
  <a href="/classic/spells/professions/cooking">Cooking</a>
</div>
<h1 class="heading-size-1">Grand Feast</h1>
<div style="background-image: url(&quot;https://wow.zamimg.com/images/wow/icons/large/inv_misc_food_49.jpg&quot;)"></div>
<div>Requires Cooking (275)</div>
<div id="tooltip54321">
  <div class="indent">Reagents: <a href="/classic/item=55555/red-herring">Red Herring</a> (9)</div>
  <span><a href="/classic/item=44444/wrong">Wrong (9)</a></span>
</div>
<div id="tooltip12345">
  <div class="indent">Reagents: <a href="/classic/item=30817/simple-flour">Flour</a> (2), <a href="/classic/item=1179/ice-cold-milk">Sugar</a> (1)</div>
  <span class="q3"><a href="/classic/item=13934/grand-feast-item">Feast (4)</a></span>
</div>
</body></html>`

func TestAssembleFullRecipe(t *testing.T) {
	rec, err := fixedAssembler().Assemble(feastPage, feastRef())
	require.NoError(t, err)

	assert.Equal(t, int64(12345), rec.RecipeID)
	assert.Equal(t, "Grand Feast", rec.Name)
	assert.Equal(t, "Cooking", rec.Category)
	assert.Equal(t, 275, rec.RequiredSkill)
	assert.Equal(t, "inv_misc_food_49", rec.IconToken)
	assert.Equal(t, []MaterialEntry{
		{ItemID: 30817, Quantity: 2},
		{ItemID: 1179, Quantity: 1},
	}, rec.Materials)
	assert.Equal(t, int64(13934), rec.OutputItemID)
	assert.Equal(t, int64(4), rec.OutputQuantity)
	assert.Equal(t, "https://www.wowhead.com/classic/spell=12345/grand-feast", rec.SourceRef)
	assert.Equal(t, "2024-01-15 10:30:00", rec.ExtractedAt)
}

func TestAssembleScopesToIdentityTooltip(t *testing.T) {
	// The decoy tooltip comes first in the document; a global lookup
	// would land on it.
	rec, err := fixedAssembler().Assemble(feastPage, feastRef())
	require.NoError(t, err)

	for _, mat := range rec.Materials {
		assert.NotEqual(t, int64(55555), mat.ItemID)
	}
	assert.NotEqual(t, int64(44444), rec.OutputItemID)
}

func TestAssembleMissingName(t *testing.T) {
	page := `<html><body><div id="tooltip12345"><div>Reagents: <a href="/classic/item=1/x">X</a> (1)</div></div></body></html>`

	rec, err := fixedAssembler().Assemble(page, feastRef())
	require.Error(t, err)

	var failure *Failure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, KindMissingName, failure.Kind)
	assert.Equal(t, feastRef(), failure.Ref)
	// Never a partially-populated record alongside a failure.
	assert.Equal(t, Record{}, rec)
}

func TestAssembleAbsentTooltip(t *testing.T) {
	page := `<html><body><h1 class="heading-size-1">Sparse Recipe</h1></body></html>`

	rec, err := fixedAssembler().Assemble(page, feastRef())
	require.NoError(t, err)

	assert.Empty(t, rec.Materials)
	assert.NotNil(t, rec.Materials)
	assert.Equal(t, int64(0), rec.OutputItemID)
	assert.Equal(t, int64(1), rec.OutputQuantity)
	assert.Equal(t, "Unknown", rec.Category)
	assert.Equal(t, 0, rec.RequiredSkill)
	assert.Equal(t, "", rec.IconToken)
}

func TestAssembleSelfReferenceCorrected(t *testing.T) {
	page := fmt.Sprintf(`<html><body>
<h1 class="heading-size-1">Self Referential</h1>
<div id="tooltip%d">
  <div>Reagents: <a href="/classic/item=2678/spice">Spice</a> (2)</div>
  <span><a href="/classic/item=%d/itself">Itself</a></span>
</div>
</body></html>`, 12345, 12345)

	rec, err := fixedAssembler().Assemble(page, feastRef())
	require.NoError(t, err)

	// The tooltip reuses the recipe id for the crafted item; that is a
	// false match, not a self-crafting recipe.
	assert.Equal(t, int64(0), rec.OutputItemID)
	assert.Equal(t, int64(1), rec.OutputQuantity)
}

func TestAssembleDuplicateMaterialsNotMerged(t *testing.T) {
	page := `<html><body>
<h1 class="heading-size-1">Doubled Up</h1>
<div id="tooltip12345">
  <div>Reagents: <a href="/classic/item=2678/spice">Spice</a> (2), <a href="/classic/item=2678/spice">Spice</a> (3)</div>
  <span><a href="/classic/item=9999/out">Out</a></span>
</div>
</body></html>`

	rec, err := fixedAssembler().Assemble(page, feastRef())
	require.NoError(t, err)

	// Two line items for the same item stay two line items, each with
	// its own quantity.
	assert.Equal(t, []MaterialEntry{
		{ItemID: 2678, Quantity: 2},
		{ItemID: 2678, Quantity: 3},
	}, rec.Materials)
}

func TestAssembleQuantityDefaultsToOne(t *testing.T) {
	page := `<html><body>
<h1 class="heading-size-1">Uncounted</h1>
<div id="tooltip12345">
  <div>Reagents: <a href="/classic/item=2678/spice">Spice</a></div>
  <span><a href="/classic/item=9999/out">Out</a></span>
</div>
</body></html>`

	rec, err := fixedAssembler().Assemble(page, feastRef())
	require.NoError(t, err)

	require.Len(t, rec.Materials, 1)
	assert.Equal(t, int64(1), rec.Materials[0].Quantity)
	assert.Equal(t, int64(1), rec.OutputQuantity)
}

func TestAssembleIdempotent(t *testing.T) {
	a := fixedAssembler()
	ref := feastRef()

	first, err := a.Assemble(feastPage, ref)
	require.NoError(t, err)
	second, err := a.Assemble(feastPage, ref)
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON)
}

func TestRecordFieldNames(t *testing.T) {
	rec, err := fixedAssembler().Assemble(feastPage, feastRef())
	require.NoError(t, err)

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	for _, field := range []string{
		"recipeIdentity", "name", "category", "requiredSkill", "iconToken",
		"materials", "itemIdentity", "quantity", "outputItemIdentity",
		"outputQuantity", "sourceReference", "extractedAtTimestamp",
	} {
		assert.Contains(t, string(data), `"`+field+`"`)
	}
}
