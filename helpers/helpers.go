package helpers

import (
	"fmt"
	"image/color"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/gamut"
)

// ShortenAddr shortens a Bitcoin address for display
func ShortenAddr(addr string) string {
	if len(addr) < 12 {
		return addr
	}
	return addr[:8] + "…" + addr[len(addr)-4:]
}

// ShortenID shortens an inscription id or txid for display
func ShortenID(id string) string {
	if len(id) < 16 {
		return id
	}
	return id[:10] + "…" + id[len(id)-6:]
}

var bech32Re = regexp.MustCompile("^(bc1|tb1)[02-9ac-hj-np-z]{11,87}$")
var base58Re = regexp.MustCompile("^[13mn2][1-9A-HJ-NP-Za-km-z]{25,34}$")

// IsValidBitcoinAddress checks if a string looks like a Bitcoin address
// (bech32 or legacy base58, mainnet or testnet)
func IsValidBitcoinAddress(s string) bool {
	return bech32Re.MatchString(strings.ToLower(s)) || base58Re.MatchString(s)
}

// FormatSats formats a satoshi amount as BTC with proper decimals
func FormatSats(sats int64) string {
	sign := ""
	if sats < 0 {
		sign = "-"
		sats = -sats
	}
	return fmt.Sprintf("%s%d.%08d BTC", sign, sats/100_000_000, sats%100_000_000)
}

// FormatSatsPtr formats an optional satoshi amount, rendering unknown values
// as a placeholder
func FormatSatsPtr(sats *int64) string {
	if sats == nil {
		return "—"
	}
	return FormatSats(*sats)
}

// FormatTimestamp formats a unix timestamp for display
func FormatTimestamp(ts int64) string {
	if ts == 0 {
		return "unknown"
	}
	return time.Unix(ts, 0).UTC().Format("2006-01-02 15:04")
}

// FadeString creates a gradient colored string
func FadeString(s string, firstColor string, lastColor string) string {
	blends := gamut.Blends(lipgloss.Color(firstColor), lipgloss.Color(lastColor), len(s))
	return rainbow(lipgloss.NewStyle(), s, blends)
}

func rainbow(baseStyle lipgloss.Style, str string, colors []color.Color) string {
	var result string
	for i, c := range str {
		col, _ := colorful.MakeColor(colors[i%len(colors)])
		result += baseStyle.Foreground(lipgloss.Color(col.Hex())).Render(string(c))
	}
	return result
}

// Max returns the maximum of two integers
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Min returns the minimum of two integers
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
