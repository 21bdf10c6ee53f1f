package extract

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Selectors and patterns are fixed per release. The source's markup is
// not probed or adapted to at runtime.
const (
	titleSelector      = "h1.heading-size-1"
	breadcrumbSelector = ".breadcrumb a"
	itemLinkSelector   = "a[href*='item=']"
)

var (
	skillPattern    = regexp.MustCompile(`Requires [^()]+ \(([0-9]+)\)`)
	iconPattern     = regexp.MustCompile(`background-image:\s*url\(["']?([^"')]+?)["']?\)`)
	itemHrefPattern = regexp.MustCompile(`item=([0-9]+)`)
	trailingQty     = regexp.MustCompile(`\(([0-9]+)\)\s*$`)
	whitespaceRun   = regexp.MustCompile(`\s\s+`)
)

// extractName returns the first primary-title heading, or false when
// the page has none.
func extractName(doc *goquery.Document) (string, bool) {
	name := cleanText(doc.Find(titleSelector).First().Text())
	return name, name != ""
}

// extractCategory returns the last link of the breadcrumb trail,
// defaulting to "Unknown" when the trail is absent.
func extractCategory(doc *goquery.Document) string {
	if c := cleanText(doc.Find(breadcrumbSelector).Last().Text()); c != "" {
		return c
	}
	return "Unknown"
}

// extractRequiredSkill scans the document text for the first
// "Requires <label> (<n>)" block. Recipes without a prerequisite
// legitimately omit it, so absence defaults to 0.
func extractRequiredSkill(doc *goquery.Document) int {
	m := skillPattern.FindStringSubmatch(doc.Text())
	if m == nil {
		return 0
	}
	skill, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return skill
}

// extractIconToken finds the first style attribute carrying a
// background-image and returns the trailing filename component without
// its extension. Empty when no icon is styled in.
func extractIconToken(doc *goquery.Document) string {
	token := ""
	doc.Find("[style]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		style, _ := s.Attr("style")
		m := iconPattern.FindStringSubmatch(style)
		if m == nil {
			return true
		}
		base := path.Base(m[1])
		token = strings.TrimSuffix(base, path.Ext(base))
		return false
	})
	return token
}

// tooltipScope returns the markup region keyed by the recipe identity,
// or nil when the page lacks it. All reagent and result lookups run
// relative to this scope, never globally: pages routinely carry
// several tooltips and a globally-first match can land in the wrong
// one.
func tooltipScope(doc *goquery.Document, recipeID int64) *goquery.Selection {
	sel := doc.Find(fmt.Sprintf("#tooltip%d", recipeID))
	if sel.Length() == 0 {
		return nil
	}
	return sel.First()
}

// reagentsSection returns the tightest element inside the scope whose
// text begins with the "Reagents" label, or nil.
func reagentsSection(scope *goquery.Selection) *goquery.Selection {
	var section *goquery.Selection
	scope.Find("*").Each(func(_ int, s *goquery.Selection) {
		if strings.HasPrefix(strings.TrimSpace(s.Text()), "Reagents") {
			section = s
		}
	})
	return section
}

// extractMaterials enumerates the item links of the reagents section in
// document order. Quantities come from the section's flattened text:
// the first "<displayText> (<n>)" occurrence at or after the previous
// match, so repeated display names resolve to their own quantities.
// An absent section yields an empty list, not a failure.
func extractMaterials(scope *goquery.Selection) []MaterialEntry {
	if scope == nil {
		return nil
	}
	section := reagentsSection(scope)
	if section == nil {
		return nil
	}

	text := section.Text()
	cursor := 0
	var materials []MaterialEntry
	section.Find(itemLinkSelector).Each(func(_ int, link *goquery.Selection) {
		id, ok := itemIDFromHref(link)
		if !ok {
			return
		}
		qty, next := quantityAfter(text, linkText(link), cursor)
		cursor = next
		materials = append(materials, MaterialEntry{ItemID: id, Quantity: qty})
	})
	return materials
}

// quantityAfter searches text from offset for "<display> (<n>)" and
// returns the quantity plus the offset to resume from. No match means
// the document lists the reagent without a count: quantity 1.
func quantityAfter(text, display string, offset int) (int64, int) {
	if display == "" || offset >= len(text) {
		return 1, offset
	}
	pattern, err := regexp.Compile(regexp.QuoteMeta(display) + `\s*\(([0-9]+)\)`)
	if err != nil {
		return 1, offset
	}
	loc := pattern.FindStringSubmatchIndex(text[offset:])
	if loc == nil {
		return 1, offset
	}
	qty, err := strconv.ParseInt(text[offset+loc[2]:offset+loc[3]], 10, 64)
	if err != nil || qty < 1 {
		return 1, offset + loc[1]
	}
	return qty, offset + loc[1]
}

// extractOutput resolves the crafted item from the last item link in
// the identity-scoped tooltip, with its quantity taken from the
// trailing parenthesized integer of the link's text. Both fall back to
// the (0, 1) sentinel pair: no tooltip, or a tooltip without a result
// link, produces an unknown output rather than a failure.
func extractOutput(scope *goquery.Selection) (itemID int64, quantity int64, found bool) {
	if scope == nil {
		return 0, 1, false
	}
	link := scope.Find(itemLinkSelector).Last()
	if link.Length() == 0 {
		return 0, 1, false
	}
	id, ok := itemIDFromHref(link)
	if !ok {
		return 0, 1, false
	}
	quantity = 1
	if m := trailingQty.FindStringSubmatch(linkText(link)); m != nil {
		if q, err := strconv.ParseInt(m[1], 10, 64); err == nil && q >= 1 {
			quantity = q
		}
	}
	return id, quantity, true
}

// correctSelfReference enforces the output-identity invariant: the
// tooltip markup reuses one container id for both the recipe and the
// crafted item, so an output equal to the recipe identity is a false
// match and is forced to the unknown sentinel.
func correctSelfReference(recipeID, outputID int64) int64 {
	if outputID == recipeID {
		return 0
	}
	return outputID
}

func itemIDFromHref(link *goquery.Selection) (int64, bool) {
	href, _ := link.Attr("href")
	m := itemHrefPattern.FindStringSubmatch(href)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// linkText flattens a link's node text, collapsing the whitespace the
// renderer leaves behind.
func linkText(link *goquery.Selection) string {
	var b strings.Builder
	for _, n := range link.Nodes {
		nodeText(n, &b)
	}
	return cleanText(b.String())
}

func nodeText(n *html.Node, b *strings.Builder) {
	if n == nil {
		return
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		nodeText(child, b)
	}
}

func cleanText(s string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
}
