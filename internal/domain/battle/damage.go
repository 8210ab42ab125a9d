// Package battle computes move damage, moveset selection and the
// performance metrics derived from them.
package battle

import "math"

// Bonus multipliers applied on top of the base damage.
const (
	STABMultiplier    = 1.2
	WeatherMultiplier = 1.2
)

// Damage returns the damage of one hit:
//
//	floor(0.5 * power * attack/defense) + 1
//
// scaled by STAB, weather and effectiveness, then floored. Zero power deals
// no damage.
func Damage(attack, defense, power, effectiveness float64, stab, weatherBoosted bool) int {
	if power <= 0 || defense <= 0 {
		return 0
	}
	dmg := math.Floor(0.5*power*attack/defense) + 1
	if stab {
		dmg *= STABMultiplier
	}
	if weatherBoosted {
		dmg *= WeatherMultiplier
	}
	dmg *= effectiveness
	return int(math.Floor(dmg))
}

// PerSecond converts an amount per use into an amount per second.
func PerSecond(amount float64, cooldownMs int) float64 {
	if cooldownMs <= 0 {
		return 0
	}
	return amount / (float64(cooldownMs) / 1000)
}

// CycleDPS blends fast and charged move rates, weighting each move's DPS
// by the other's energy rate. When either rate is zero the charged move is
// never fired and the fast move's DPS is returned.
func CycleDPS(fastDPS, fastEPS, chargedDPS, chargedEPS float64) float64 {
	if fastEPS == 0 || chargedEPS == 0 {
		return fastDPS
	}
	return (fastDPS*chargedEPS + chargedDPS*fastEPS) / (chargedEPS + fastEPS)
}
