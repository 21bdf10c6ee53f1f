package pricing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	goldPattern   = regexp.MustCompile(`([0-9]+)g`)
	silverPattern = regexp.MustCompile(`([0-9]+)s`)
	copperPattern = regexp.MustCompile(`([0-9]+)c`)
)

// FormatCoins renders a copper amount as "Xg Ys Zc", omitting leading
// zero denominations.
func FormatCoins(copper int64) string {
	if copper < 0 {
		return "-" + FormatCoins(-copper)
	}
	gold := copper / 10000
	silver := (copper % 10000) / 100
	c := copper % 100
	switch {
	case gold > 0:
		return fmt.Sprintf("%dg %ds %dc", gold, silver, c)
	case silver > 0:
		return fmt.Sprintf("%ds %dc", silver, c)
	default:
		return fmt.Sprintf("%dc", c)
	}
}

// ParseCoins reads a "Xg Ys Zc" string back into copper. Missing
// denominations count as zero.
func ParseCoins(s string) int64 {
	negative := strings.HasPrefix(strings.TrimSpace(s), "-")
	var total int64
	if m := goldPattern.FindStringSubmatch(s); m != nil {
		n, _ := strconv.ParseInt(m[1], 10, 64)
		total += n * 10000
	}
	if m := silverPattern.FindStringSubmatch(s); m != nil {
		n, _ := strconv.ParseInt(m[1], 10, 64)
		total += n * 100
	}
	if m := copperPattern.FindStringSubmatch(s); m != nil {
		n, _ := strconv.ParseInt(m[1], 10, 64)
		total += n
	}
	if negative {
		return -total
	}
	return total
}
