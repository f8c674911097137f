package report

import (
	"fmt"

	"github.com/tenkiweb/tenki/internal/city"
)

// FallbackPrompt returns the generative-text prompt used when the live
// weather provider is down and no cache exists. The model is asked to
// reproduce the report's label structure so the presentation layer can
// still extract fields from the result.
func FallbackPrompt(cfg city.Config) string {
	name := cfg.NameJA + cfg.Suffix
	return fmt.Sprintf(`あなたは、%sの天気情報を提供するアシスタントです。
今日の%sの天気、気温、気圧、花粉、黄砂、PM2.5の情報を、以下の形式で提供してください。
データがない場合は、「%s」と記載してください。

# 今日の天気

**☁️☔️ 現在の天気:** [天気]
**🌡️ 現在の気温:** [気温]℃ / 体感温度 [体感温度]℃
**📅 今日の予想気温:** 最高 [最高気温]℃ / 最低 [最低気温]℃
**🌧 降水確率:** [降水確率]%%

**⏰ 時間ごとの予報:**
[時間ごとの予報を箇条書きで表示]

**🍃 風:** [風速] km/h ([風向き])
**💧 湿度:** [湿度] %%
**⬇️ 気圧:** [気圧] hPa

**🌲 花粉:** [花粉情報]

**💛 黄砂:** [黄砂情報]

**🌫 PM2.5:** [PM2.5情報]

**📝 一言:**
[全体的なコメント]`, name, name, NoData)
}
