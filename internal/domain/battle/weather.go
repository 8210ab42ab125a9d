package battle

import (
	"fmt"
	"strings"

	"github.com/okian/raidtier/internal/domain/typechart"
)

// Weather is an in-game weather condition.
type Weather string

// Weather conditions. NoWeather boosts nothing.
const (
	NoWeather    Weather = ""
	Sunny        Weather = "sunny"
	Rainy        Weather = "rainy"
	PartlyCloudy Weather = "partly_cloudy"
	Cloudy       Weather = "cloudy"
	Windy        Weather = "windy"
	Snow         Weather = "snow"
	Fog          Weather = "fog"
)

var weatherBoosts = map[Weather][]typechart.Type{
	Sunny:        {typechart.Fire, typechart.Grass, typechart.Ground},
	Rainy:        {typechart.Water, typechart.Electric, typechart.Bug},
	PartlyCloudy: {typechart.Normal, typechart.Rock},
	Cloudy:       {typechart.Fairy, typechart.Fighting, typechart.Poison},
	Windy:        {typechart.Dragon, typechart.Flying, typechart.Psychic},
	Snow:         {typechart.Ice, typechart.Steel},
	Fog:          {typechart.Dark, typechart.Ghost},
}

// ParseWeather accepts the names above; "" and "none" mean no weather.
func ParseWeather(s string) (Weather, error) {
	w := Weather(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_"))
	if w == "none" || w == NoWeather {
		return NoWeather, nil
	}
	if _, ok := weatherBoosts[w]; !ok {
		return NoWeather, fmt.Errorf("%w: unknown weather %q", ErrValidation, s)
	}
	return w, nil
}

// Boosts reports whether moves of type t are boosted in w.
func (w Weather) Boosts(t typechart.Type) bool {
	return typechart.Contains(weatherBoosts[w], t)
}

// Boosted returns the boosted types.
func (w Weather) Boosted() []typechart.Type {
	return append([]typechart.Type(nil), weatherBoosts[w]...)
}
