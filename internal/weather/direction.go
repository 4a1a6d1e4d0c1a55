package weather

import "math"

// compassLabels は16方位のラベル。22.5度刻みでNから時計回り。
var compassLabels = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// sectorWidth は1方位あたりの角度。
const sectorWidth = 360.0 / 16.0

// WindDirection は風向の度数を16方位のラベルに変換する。
// 最近接の方位に丸め、360度で折り返す（0度と360度はどちらもN）。
func WindDirection(degrees float64) string {
	index := int(math.Round(degrees/sectorWidth)) % len(compassLabels)
	if index < 0 {
		index += len(compassLabels)
	}
	return compassLabels[index]
}
