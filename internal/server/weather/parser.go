package weather

import (
	"fmt"

	"github.com/dmitrijs2005/weatherdiary/internal/common"
	"github.com/goccy/go-json"
)

// Reading is the part of an OpenWeatherMap reply the diary keeps.
type Reading struct {
	Temperature float64
	Condition   string
	Icon        string
}

type payload struct {
	Main *struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Main string `json:"main"`
		Icon string `json:"icon"`
	} `json:"weather"`
}

// Parse extracts main.temp, weather[0].main and weather[0].icon. Anything
// that is not valid JSON of that shape yields common.ErrWeatherParse.
func Parse(raw []byte) (Reading, error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Reading{}, fmt.Errorf("%w: %v", common.ErrWeatherParse, err)
	}
	if p.Main == nil || p.Main.Temp == nil {
		return Reading{}, fmt.Errorf("%w: missing main.temp", common.ErrWeatherParse)
	}
	if len(p.Weather) == 0 {
		return Reading{}, fmt.Errorf("%w: missing weather[0]", common.ErrWeatherParse)
	}

	return Reading{
		Temperature: *p.Main.Temp,
		Condition:   p.Weather[0].Main,
		Icon:        p.Weather[0].Icon,
	}, nil
}
