package weatherapi

// Payload is the raw WeatherAPI.com forecast response, retained on the
// cached report so a reformat never needs a re-fetch. Only the fields
// the report formatter consumes are modelled.
type Payload struct {
	Location Location `json:"location"`
	Current  Current  `json:"current"`
	Forecast Forecast `json:"forecast"`
}

type Location struct {
	Name      string `json:"name"`
	Localtime string `json:"localtime"`
}

type Current struct {
	TempC      float64    `json:"temp_c"`
	FeelslikeC float64    `json:"feelslike_c"`
	Humidity   float64    `json:"humidity"`
	WindKph    float64    `json:"wind_kph"`
	WindDir    string     `json:"wind_dir"`
	PressureMb float64    `json:"pressure_mb"`
	Condition  Condition  `json:"condition"`
	AirQuality AirQuality `json:"air_quality"`
}

type Condition struct {
	Text string `json:"text"`
}

// AirQuality carries PM2.5 as a pointer: the upstream omits the block
// entirely when air-quality data is unavailable for a location.
type AirQuality struct {
	PM25 *float64 `json:"pm2_5"`
}

type Forecast struct {
	Forecastday []ForecastDay `json:"forecastday"`
}

type ForecastDay struct {
	Day  Day    `json:"day"`
	Hour []Hour `json:"hour"`
}

type Day struct {
	MaxtempC          float64 `json:"maxtemp_c"`
	MintempC          float64 `json:"mintemp_c"`
	DailyChanceOfRain int     `json:"daily_chance_of_rain"`
}

type Hour struct {
	Time      string    `json:"time"`
	TempC     float64   `json:"temp_c"`
	Condition Condition `json:"condition"`
}

// Today returns the first forecast day, or nil when the upstream
// response carried no forecast block.
func (p Payload) Today() *ForecastDay {
	if len(p.Forecast.Forecastday) == 0 {
		return nil
	}
	return &p.Forecast.Forecastday[0]
}
