package model

// TemperatureUnit は温度の表示単位を表す。
type TemperatureUnit string

const (
	// UnitCelsius は摂氏表示。
	UnitCelsius TemperatureUnit = "C"
	// UnitFahrenheit は華氏表示。
	UnitFahrenheit TemperatureUnit = "F"
)

// Preference はユーザー設定のドキュメントを表す。
// ストア上は単一行として保持される（論理的にシングルトン）。
type Preference struct {
	Location        string          `json:"location"`
	NewsCategory    string          `json:"news_category"`
	TemperatureUnit TemperatureUnit `json:"temperature_unit,omitempty"`
}

// DefaultPreference はユーザー設定が未保存の場合のデフォルト値を返す。
func DefaultPreference() *Preference {
	return &Preference{
		Location:        "New York",
		NewsCategory:    "general",
		TemperatureUnit: UnitCelsius,
	}
}

// Quote は表示用の格言を表す。作成後は変更されない。
type Quote struct {
	ID     string `json:"-"`
	Text   string `json:"text"`
	Author string `json:"author"`
}

// CurrentConditions は現在の気象状況を表す。
type CurrentConditions struct {
	Temp          int
	FeelsLike     int
	Humidity      int
	WindSpeed     int
	WindDirection string
	Condition     string
	Description   string
	Icon          string
	Pressure      int
	VisibilityKm  float64
	RainMM        float64
	CloudsPercent int
	Sunrise       string
	Sunset        string
}

// ForecastDay は1日分の予報を表す。
type ForecastDay struct {
	Date          string
	TempMax       int
	TempMin       int
	Condition     string
	Description   string
	Icon          string
	Humidity      int
	WindSpeed     int
	WindDirection string
	RainMM        float64
	CloudsPercent int
	PopPercent    int
}

// Weather は天気データ一式を表す。
// 外部APIの失敗時はDegradedがtrueになり、固定のデフォルト値が入る。
type Weather struct {
	Current        CurrentConditions
	Forecast       []ForecastDay
	Location       string
	Country        string
	Degraded       bool
	DegradedReason string
}

// Article はニュース記事を表す。
type Article struct {
	Title       string
	Source      string
	URL         string
	PublishedAt string
	Description string
}

// News はニュースデータ一式を表す。
// 外部APIの失敗時はDegradedがtrueになり、固定の案内記事が入る。
type News struct {
	Articles       []Article
	Degraded       bool
	DegradedReason string
}

// DateTimeInfo は表示用の現在日時を表す。
type DateTimeInfo struct {
	Date string
	Time string
}

// DashboardContext はページ描画に使う集約コンテキストを表す。
type DashboardContext struct {
	Weather  *Weather
	News     *News
	DateTime DateTimeInfo
	Quote    *Quote
	Events   []DisplayEvent
}
