// Package trafficconfig is the parameter bundle driving every
// statistical draw in the simulation (desired speed, spawn
// rate, accident/blockage severity and duration, time-of-day vehicle
// mix, and the congestion sampling mean/sigma). Load decodes an
// optional JSON parameter file; Default supplies the hard-coded bundle
// that callers use when no file is given or decoding fails.
package trafficconfig

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"urbannav/backend/network"
)

// SpeedParams is a speed distribution for one vehicle mode, km/h.
type SpeedParams struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// DurationParams is a duration distribution in minutes.
type DurationParams struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// CongestionParams parameterizes the per-tick global congestion factor.
type CongestionParams struct {
	Mean           float64 `json:"mean"`
	StdDev         float64 `json:"std_dev"`
	PeakHours      []int   `json:"peak_hours"`
	PeakMultiplier float64 `json:"peak_multiplier"`
}

// AccidentParams parameterizes accident generation.
type AccidentParams struct {
	RatePerHour         float64            `json:"rate_per_hour"`
	SeverityDistribution map[string]float64 `json:"severity_distribution"`
	DurationMinutes     DurationParams     `json:"duration_minutes"`
}

// BlockageParams parameterizes blockage generation.
type BlockageParams struct {
	RatePerHour     float64        `json:"rate_per_hour"`
	DurationMinutes DurationParams `json:"duration_minutes"`
}

// SpawnRateParams parameterizes the auto-spawn interval.
type SpawnRateParams struct {
	VehiclesPerMinuteMean   float64 `json:"vehicles_per_minute_mean"`
	VehiclesPerMinuteStdDev float64 `json:"vehicles_per_minute_std_dev"`
	OffPeakMultiplier       float64 `json:"off_peak_multiplier"`
}

// TimePeriodMix is the vehicle-kind split active during a set of hours.
type TimePeriodMix struct {
	Hours      []int   `json:"hours"`
	Car        float64 `json:"car"`
	Bicycle    float64 `json:"bicycle"`
	Pedestrian float64 `json:"pedestrian"`
}

// Config is the full traffic parameter bundle.
type Config struct {
	Speeds             map[string]SpeedParams   `json:"speed_kmh"`
	Congestion         CongestionParams         `json:"congestion"`
	Accidents          AccidentParams           `json:"accidents"`
	Blockages          BlockageParams           `json:"blockages"`
	SpawnRate   SpawnRateParams          `json:"spawn_rate"`
	VehicleMix  map[string]TimePeriodMix `json:"vehicle_distribution"`
}

// SeverityMultiplier maps an accident severity to the factor applied
// to the affected edge's multiplier.
var SeverityMultiplier = map[string]float64{
	"minor":    2.0,
	"moderate": 4.0,
	"severe":   10.0,
}

// Default returns the hard-coded parameter bundle used when no config
// file is supplied or the supplied file fails to decode.
func Default() *Config {
	return &Config{
		Speeds: map[string]SpeedParams{
			string(network.ModeCar):        {Mean: 63.5, StdDev: 17.02, Min: 0, Max: 100},
			string(network.ModeBicycle):    {Mean: 25.0, StdDev: 8.0, Min: 5, Max: 40},
			string(network.ModePedestrian): {Mean: 5.0, StdDev: 1.5, Min: 2, Max: 8},
		},
		Congestion: CongestionParams{
			Mean:           0.425,
			StdDev:         0.2,
			PeakHours:      []int{9, 10, 17, 18},
			PeakMultiplier: 2.0,
		},
		Accidents: AccidentParams{
			RatePerHour: 5,
			SeverityDistribution: map[string]float64{
				"minor": 0.70, "moderate": 0.25, "severe": 0.05,
			},
			DurationMinutes: DurationParams{Mean: 45, StdDev: 20, Min: 10, Max: 120},
		},
		Blockages: BlockageParams{
			RatePerHour:     3,
			DurationMinutes: DurationParams{Mean: 30, StdDev: 15, Min: 5, Max: 90},
		},
		SpawnRate: SpawnRateParams{
			VehiclesPerMinuteMean:   25,
			VehiclesPerMinuteStdDev: 5.6,
			OffPeakMultiplier:       0.4,
		},
		VehicleMix: map[string]TimePeriodMix{
			"morning_rush": {Hours: []int{7, 8, 9}, Car: 0.70, Bicycle: 0.10, Pedestrian: 0.20},
			"midday":       {Hours: []int{10, 11, 12, 13, 14, 15, 16}, Car: 0.60, Bicycle: 0.15, Pedestrian: 0.25},
			"evening_rush": {Hours: []int{17, 18, 19}, Car: 0.70, Bicycle: 0.10, Pedestrian: 0.20},
			"night":        {Hours: []int{20, 21, 22, 23, 0, 1, 2, 3, 4, 5, 6}, Car: 0.65, Bicycle: 0.05, Pedestrian: 0.30},
		},
	}
}

// Load decodes a JSON parameter bundle. On a decode error it returns
// the error and no config; the caller (main.go's loadConfig path) logs a
// warning and falls back to Default. Keys absent from the document are
// left at their zero values; they are not filled in from Default.
func Load(r io.Reader) (*Config, error) {
	dec := json.NewDecoder(r)
	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("trafficconfig: decode config: %w", err)
	}
	return &cfg, nil
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// SampleSpeed draws a desired speed in km/h for the given mode from
// its Normal distribution, clamped to [min, max].
func (c *Config) SampleSpeed(mode network.Mode, rng *rand.Rand) float64 {
	p, ok := c.Speeds[string(mode)]
	if !ok {
		p = SpeedParams{Mean: 50, StdDev: 10, Min: 10, Max: 80}
	}
	dist := distuv.Normal{Mu: p.Mean, Sigma: p.StdDev, Src: rng}
	return clamp(dist.Rand(), p.Min, p.Max)
}

// SampleDuration draws a duration in seconds from a minute-scale
// Normal distribution, clamped to [min, max] minutes.
func SampleDuration(p DurationParams, rng *rand.Rand) float64 {
	dist := distuv.Normal{Mu: p.Mean, Sigma: p.StdDev, Src: rng}
	minutes := clamp(dist.Rand(), p.Min, p.Max)
	return minutes * 60.0
}

// SampleAccidentDuration draws an accident duration in seconds.
func (c *Config) SampleAccidentDuration(rng *rand.Rand) float64 {
	return SampleDuration(c.Accidents.DurationMinutes, rng)
}

// SampleBlockageDuration draws a blockage duration in seconds.
func (c *Config) SampleBlockageDuration(rng *rand.Rand) float64 {
	return SampleDuration(c.Blockages.DurationMinutes, rng)
}

// SampleAccidentSeverity draws "minor"/"moderate"/"severe" from the
// configured cumulative distribution.
func (c *Config) SampleAccidentSeverity(rng *rand.Rand) string {
	minor := c.Accidents.SeverityDistribution["minor"]
	moderate := c.Accidents.SeverityDistribution["moderate"]
	r := rng.Float64()
	switch {
	case r < minor:
		return "minor"
	case r < minor+moderate:
		return "moderate"
	default:
		return "severe"
	}
}

// SampleSpawnRate draws vehicles-per-minute from the spawn-rate Normal
// distribution, floored at 1 before the peak/off-peak multiplier is
// applied, so the effective off-peak floor is 0.4 veh/min, not 1.
func (c *Config) SampleSpawnRate(isPeakHour bool, rng *rand.Rand) float64 {
	dist := distuv.Normal{Mu: c.SpawnRate.VehiclesPerMinuteMean, Sigma: c.SpawnRate.VehiclesPerMinuteStdDev, Src: rng}
	sampled := dist.Rand()
	if sampled < 1 {
		sampled = 1
	}
	mult := c.SpawnRate.OffPeakMultiplier
	if isPeakHour {
		mult = 1.0
	}
	return sampled * mult
}

// SampleCongestionFactor draws the per-tick global congestion base
// value from its Normal distribution, clamped to [0,1].
func (c *Config) SampleCongestionFactor(rng *rand.Rand) float64 {
	dist := distuv.Normal{Mu: c.Congestion.Mean, Sigma: c.Congestion.StdDev, Src: rng}
	return clamp(dist.Rand(), 0, 1)
}

// IsPeakHour reports whether the given simulation hour is one of the
// configured peak hours.
func (c *Config) IsPeakHour(hour int) bool {
	for _, h := range c.Congestion.PeakHours {
		if h == hour {
			return true
		}
	}
	return false
}

// VehicleDistribution returns the car/bicycle/pedestrian mix active
// for the given simulation hour, falling back to a flat default when
// no configured period covers it.
func (c *Config) VehicleDistribution(hour int) TimePeriodMix {
	for _, period := range c.VehicleMix {
		for _, h := range period.Hours {
			if h == hour {
				return period
			}
		}
	}
	return TimePeriodMix{Car: 0.65, Bicycle: 0.05, Pedestrian: 0.15}
}

// SampleVehicleKind draws a mode from the cumulative distribution mix
// (car, then bicycle, then pedestrian), matching the
// cumulative-probability draw used for both auto-spawn and explicit
// random-batch spawning.
func (mix TimePeriodMix) SampleVehicleKind(rng *rand.Rand) network.Mode {
	r := rng.Float64()
	cumulative := mix.Car
	if r <= cumulative {
		return network.ModeCar
	}
	cumulative += mix.Bicycle
	if r <= cumulative {
		return network.ModeBicycle
	}
	return network.ModePedestrian
}
