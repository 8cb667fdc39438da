// Package insights generates the narrative sections of a monthly report
package insights

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
)

// Totals is the slice of a month aggregate the narrative depends on
type Totals struct {
	Year        int
	Month       time.Month
	Total       int
	CEC         int
	PNP         int
	Category    int
	Events      int
	LatestScore int
}

// Report bundles every generated section
type Report struct {
	ExecutiveSummary  string
	StrategicInsights []string
	KeyHighlights     []string
}

// Build generates all sections
func Build(t Totals) Report {
	return Report{
		ExecutiveSummary:  ExecutiveSummary(t),
		StrategicInsights: StrategicInsights(t),
		KeyHighlights:     KeyHighlights(t),
	}
}

// ExecutiveSummary picks a register by how many draws the month has seen
func ExecutiveSummary(t Totals) string {
	month := fmt.Sprintf("%s %d", t.Month, t.Year)
	total := humanize.Comma(int64(t.Total))
	switch {
	case t.Events <= 0:
		return fmt.Sprintf("🗓️ Executive Summary: %s has no Express Entry draws yet; this report updates as invitations are issued.", month)
	case t.Events == 1:
		return fmt.Sprintf("🏗️ Executive Summary: %s begins with %s ITAs issued in the first draw, establishing the month's foundation with %s CEC and %s PNP selections.",
			month, total, humanize.Comma(int64(t.CEC)), humanize.Comma(int64(t.PNP)))
	case t.Events == 2:
		return fmt.Sprintf("📈 Executive Summary: %s continues with %s total ITAs across %d draws, building on the month's opening draw.", month, total, t.Events)
	case t.Events == 3:
		return fmt.Sprintf("🚀 Executive Summary: %s demonstrates strong momentum with %s ITAs across %d draws, indicating consistent immigration activity.", month, total, t.Events)
	default:
		return fmt.Sprintf("📊 Executive Summary: %s maintains steady pace with %s ITAs across %d draws, reflecting sustained immigration strategy.", month, total, t.Events)
	}
}

// StrategicInsights reports shares of the total and the latest cutoff
func StrategicInsights(t Totals) []string {
	out := []string{}
	if t.CEC > 0 && t.Total > 0 {
		out = append(out, fmt.Sprintf("CEC candidates represent %s%% of total selections, maintaining domestic experience priority.", Percent(t.CEC, t.Total)))
	}
	if t.PNP > 0 && t.Total > 0 {
		out = append(out, fmt.Sprintf("PNP selections at %s%% demonstrate continued federal-provincial coordination.", Percent(t.PNP, t.Total)))
	}
	if t.Category > 0 && t.Total > 0 {
		out = append(out, fmt.Sprintf("Category-based draws represent %s%% of total ITAs, showing targeted immigration strategy.", Percent(t.Category, t.Total)))
	}
	if t.LatestScore > 0 {
		out = append(out, fmt.Sprintf("Latest CRS score of %d indicates current competition level in the pool.", t.LatestScore))
	}
	return out
}

// KeyHighlights lists headline counts; the category line only when non-zero
func KeyHighlights(t Totals) []string {
	out := []string{
		humanize.Comma(int64(t.Total)) + " Total ITAs",
		humanize.Comma(int64(t.CEC)) + " CEC",
		humanize.Comma(int64(t.PNP)) + " PNP",
	}
	if t.Category > 0 {
		out = append(out, humanize.Comma(int64(t.Category))+" Category-Based")
	}
	return out
}

// Percent formats part/whole with one decimal
func Percent(part, whole int) string {
	if whole == 0 {
		return "0.0"
	}
	return strconv.FormatFloat(float64(part)*100/float64(whole), 'f', 1, 64)
}

// Impact buckets a month total into a level label
func Impact(itas int) string {
	switch {
	case itas >= 4000:
		return "Critical"
	case itas >= 2000:
		return "High"
	case itas >= 1000:
		return "Moderate"
	default:
		return "Low"
	}
}

var strategies = [...]string{
	"Foundation Month",
	"French-Speaking Launch",
	"Spring Expansion",
	"Category Diversification",
	"Healthcare Focus",
	"Summer Acceleration",
	"Mid-Year Review",
	"Late Summer Push",
	"Fall Strategy",
	"Q4 Preparation",
	"Pre-Year End",
	"Year End Review",
}

var emojis = [...]string{"❄️", "🌸", "🌱", "🌷", "🌿", "☀️", "🌻", "🍂", "🍁", "🎃", "🍂", "❄️"}

// Strategy returns the editorial theme of a calendar month
func Strategy(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return strategies[m-1]
}

// Emoji returns the seasonal marker of a calendar month
func Emoji(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return emojis[m-1]
}
