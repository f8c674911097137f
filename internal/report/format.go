// Package report renders the structured weather report text consumed by
// the presentation layer. The label set and ordering are a compatibility
// contract: the client extracts fields by locating label substrings, so
// labels are never reordered, renamed, or omitted. A missing value
// renders as an explicit no-data marker instead.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tenkiweb/tenki/internal/city"
	"github.com/tenkiweb/tenki/internal/weatherapi"
)

// NoData marks a field whose upstream value is missing. Never render an
// empty string: the client's text extraction would silently produce
// blank UI fields.
const NoData = "データなし"

// hourlySteps and hourlyStepSize control the hourly breakdown window:
// four 3-hour steps starting at the current hour.
const (
	hourlySteps    = 4
	hourlyStepSize = 3
)

// Summaries carries the annotator output included in a report.
type Summaries struct {
	Pollen     string
	YellowSand string
}

// Format renders the full report for one city. It is pure: the same
// payload, summaries, and clock always produce the same text.
func Format(p weatherapi.Payload, env Summaries, cfg city.Config, now time.Time) string {
	var b strings.Builder

	b.WriteString("# 今日の天気\n\n")

	fmt.Fprintf(&b, "**☁️☔️ 現在の天気:** %s\n", orNoData(p.Current.Condition.Text))
	fmt.Fprintf(&b, "**🌡️ 現在の気温:** %s℃ / 体感温度 %s℃\n", temp(p.Current.TempC), temp(p.Current.FeelslikeC))

	day := p.Today()
	if day != nil {
		fmt.Fprintf(&b, "**📅 今日の予想気温:** 最高 %s℃ / 最低 %s℃\n", temp(day.Day.MaxtempC), temp(day.Day.MintempC))
		fmt.Fprintf(&b, "**🌧 降水確率:** %d%%\n", day.Day.DailyChanceOfRain)
	} else {
		fmt.Fprintf(&b, "**📅 今日の予想気温:** %s\n", NoData)
		fmt.Fprintf(&b, "**🌧 降水確率:** %s\n", NoData)
	}

	b.WriteString("\n**⏰ 時間ごとの予報:**")
	if day != nil && len(day.Hour) > 0 {
		b.WriteString("\n")
		for _, h := range hourlyWindow(day.Hour, now) {
			fmt.Fprintf(&b, "* %d時: %s℃ (%s)\n", h.hour, temp(h.tempC), orNoData(h.condition))
		}
	} else {
		fmt.Fprintf(&b, " %s\n", NoData)
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "**🍃 風:** %s km/h (%s)\n", num(p.Current.WindKph), orNoData(p.Current.WindDir))
	fmt.Fprintf(&b, "**💧 湿度:** %s %%\n", num(p.Current.Humidity))
	fmt.Fprintf(&b, "**⬇️ 気圧:** %s hPa\n", num(p.Current.PressureMb))

	fmt.Fprintf(&b, "\n**🌲 花粉:** %s\n", orNoData(env.Pollen))
	fmt.Fprintf(&b, "\n**💛 黄砂:** %s\n", orNoData(env.YellowSand))

	if pm := p.Current.AirQuality.PM25; pm != nil {
		fmt.Fprintf(&b, "\n**🌫 PM2.5:** %.0f μg/m³\n", *pm)
	} else {
		fmt.Fprintf(&b, "\n**🌫 PM2.5:** %s\n", NoData)
	}

	fmt.Fprintf(&b, "\n%s%sの天気情報です。データは %s に更新されました。\n",
		cfg.NameJA, cfg.Suffix, orNoData(p.Location.Localtime))

	return b.String()
}

type hourEntry struct {
	hour      int
	tempC     float64
	condition string
}

// hourlyWindow selects up to four forecast hours in 3-hour steps
// starting at the current hour, wrapping past midnight within the same
// forecast day the way the upstream's 24-entry hour array allows.
func hourlyWindow(hours []weatherapi.Hour, now time.Time) []hourEntry {
	out := make([]hourEntry, 0, hourlySteps)
	start := now.Hour()
	for i := 0; i < hourlySteps; i++ {
		h := (start + i*hourlyStepSize) % 24
		if h >= len(hours) {
			continue
		}
		entry := hours[h]
		out = append(out, hourEntry{
			hour:      h,
			tempC:     entry.TempC,
			condition: entry.Condition.Text,
		})
	}
	return out
}

// temp renders a temperature with one decimal place (5.2 → "5.2",
// 8 → "8.0"), matching what the presentation layer expects.
func temp(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// num renders other numerics without trailing zeros, passing upstream
// units through unchanged.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orNoData(s string) string {
	if strings.TrimSpace(s) == "" {
		return NoData
	}
	return s
}
