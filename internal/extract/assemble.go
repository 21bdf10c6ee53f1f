// Package extract turns one fetched document into a structured recipe
// record. Every field extractor tolerates absence; only a missing
// title or an unparseable document fails the record.
package extract

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"

	"github.com/go-scripts/recipecrawl/internal/refs"
)

const timestampFormat = "2006-01-02 15:04:05"

// Assembler runs the field extractors against one document.
type Assembler struct {
	// Now supplies the extraction timestamp. Injected so extracting
	// the same document twice yields byte-identical records.
	Now func() time.Time
}

// NewAssembler returns an assembler on the wall clock.
func NewAssembler() *Assembler {
	return &Assembler{Now: time.Now}
}

// Assemble parses the rendered content and produces either a complete
// Record or a *Failure. The recipe identity comes from the reference,
// not the document; documents do not reliably self-report it.
func (a *Assembler) Assemble(content string, ref refs.Reference) (Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return Record{}, &Failure{Kind: KindMalformedDocument, Ref: ref, Err: err}
	}

	name, ok := extractName(doc)
	if !ok {
		return Record{}, &Failure{Kind: KindMissingName, Ref: ref}
	}

	scope := tooltipScope(doc, ref.RecipeID)
	if scope == nil {
		log.Warn("tooltip container absent, likely a bad scrape",
			"recipe", ref.RecipeID, "url", ref.URL)
	}

	materials := extractMaterials(scope)
	if materials == nil {
		// Empty, not null, in the serialized record.
		materials = []MaterialEntry{}
	}
	if scope != nil && len(materials) == 0 {
		log.Warn("recipe has no reagents", "recipe", ref.RecipeID, "name", name)
	}

	outputID, outputQty, found := extractOutput(scope)
	if scope != nil && !found {
		log.Warn("tooltip has no result link", "recipe", ref.RecipeID, "name", name)
	}
	outputID = correctSelfReference(ref.RecipeID, outputID)

	return Record{
		RecipeID:       ref.RecipeID,
		Name:           name,
		Category:       extractCategory(doc),
		RequiredSkill:  extractRequiredSkill(doc),
		IconToken:      extractIconToken(doc),
		Materials:      materials,
		OutputItemID:   outputID,
		OutputQuantity: outputQty,
		SourceRef:      ref.URL,
		ExtractedAt:    a.Now().Format(timestampFormat),
	}, nil
}
