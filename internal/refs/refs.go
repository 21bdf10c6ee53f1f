// Package refs validates hand-maintained recipe page lists. Invalid
// lines are expected noise, not errors: they are dropped silently and
// only well-formed references reach the scraper.
package refs

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// DefaultHost is the single supported source authority.
const DefaultHost = "www.wowhead.com"

// idPattern matches the recipe-path marker followed by its decimal
// identity. ASCII digits only; locale never enters the picture.
var idPattern = regexp.MustCompile(`spell=([0-9]+)`)

// Reference is a normalized locator for one recipe page together with
// the identity parsed out of it. Every well-formed reference carries
// exactly one identity.
type Reference struct {
	URL      string
	RecipeID int64
}

func (r Reference) String() string {
	return r.URL
}

// Validator decides whether a raw text line names a supported recipe
// reference.
type Validator struct {
	Host string
}

// NewValidator returns a validator bound to the given source host,
// falling back to DefaultHost when empty.
func NewValidator(host string) Validator {
	if host == "" {
		host = DefaultHost
	}
	return Validator{Host: host}
}

// Validate trims the line and reports whether it names a supported
// recipe page. Blank lines and comment lines (#) are rejected without
// ceremony, as is any locator on the wrong host or without the recipe
// path marker.
func (v Validator) Validate(line string) (Reference, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Reference{}, false
	}

	u, err := url.Parse(line)
	if err != nil {
		return Reference{}, false
	}
	if u.Hostname() != v.Host {
		return Reference{}, false
	}

	m := idPattern.FindStringSubmatch(u.Path)
	if m == nil {
		return Reference{}, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return Reference{}, false
	}

	return Reference{URL: u.String(), RecipeID: id}, true
}

// Clean applies Validate to each line in order, keeping accepted
// references and dropping the rest.
func (v Validator) Clean(lines []string) []Reference {
	refs := make([]Reference, 0, len(lines))
	for _, line := range lines {
		if ref, ok := v.Validate(line); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

// LoadFile reads a newline-delimited reference list and returns the
// valid references in file order.
func (v Validator) LoadFile(path string) ([]Reference, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference list: %w", err)
	}
	defer f.Close()

	var refs []Reference
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if ref, ok := v.Validate(scanner.Text()); ok {
			refs = append(refs, ref)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read reference list: %w", err)
	}
	return refs, nil
}
