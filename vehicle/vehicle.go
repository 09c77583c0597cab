// Package vehicle implements the simulated agent: a Vehicle moving
// node-to-node along a path with physics-based position interpolation,
// and a Manager tracking every vehicle plus the edge occupancy derived
// from their positions.
package vehicle

import (
	"fmt"
	"math/rand"

	"urbannav/backend/network"
	"urbannav/backend/trafficconfig"
)

// Status is the lifecycle state of a Vehicle.
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusMoving    Status = "moving"
	StatusStuck     Status = "stuck"
	StatusArrived   Status = "arrived"
	StatusRerouting Status = "rerouting"
)

// CapacityUsage is the edge-capacity weight of a vehicle kind (cars
// take a full unit, bicycles half, pedestrians a fifth).
var CapacityUsage = map[network.Mode]float64{
	network.ModeCar:        1.0,
	network.ModeBicycle:    0.5,
	network.ModePedestrian: 0.2,
}

// kmhToPixelsPerSec is the speed-unit conversion factor used so a
// vehicle's sampled km/h speed can be compared directly against
// pixel-scaled edge lengths.
const kmhToPixelsPerSec = 1.0

// minSpeedThreshold below which a near-stopped vehicle is snapped to
// exactly zero speed, to avoid floating-point jitter at a standstill.
const minSpeedThreshold = 0.5

// acceleration is how quickly current speed chases target speed,
// in speed-units per second.
const acceleration = 0.3

// Vehicle is a single simulated agent traversing the road network.
type Vehicle struct {
	ID         string
	Mode       network.Mode
	StartNode  string
	GoalNode   string
	CurrentNode string
	NextNode   string
	Path       []string
	PathIndex  int
	Status     Status

	SpeedMultiplier float64 // desired cruising speed, pixels/sec
	CapacityUsage   float64
	SpawnedAtTick   int64
	ArrivedAtTick   int64

	TotalDistance float64
	WaitTime      float64
	RerouteCount  int

	PositionOnEdge float64 // 0..1 along the current edge
	CurrentSpeed   float64
	TargetSpeed    float64
}

// New builds a waiting vehicle at startNode bound for goalNode, with a
// speed sampled from the configured distribution for its mode.
func New(id string, mode network.Mode, startNode, goalNode string, cfg *trafficconfig.Config, rng *rand.Rand) *Vehicle {
	speed := cfg.SampleSpeed(mode, rng) * kmhToPixelsPerSec
	return &Vehicle{
		ID:              id,
		Mode:            mode,
		StartNode:       startNode,
		GoalNode:        goalNode,
		CurrentNode:     startNode,
		Status:          StatusWaiting,
		SpeedMultiplier: speed,
		CapacityUsage:   CapacityUsage[mode],
		TargetSpeed:     speed,
	}
}

// SetPath installs a new path and resets edge-local position tracking.
func (v *Vehicle) SetPath(path []string) {
	v.Path = path
	v.PathIndex = 0
	v.PositionOnEdge = 0.0
	if len(path) > 1 {
		v.NextNode = path[1]
		v.Status = StatusMoving
	} else {
		v.NextNode = ""
	}
}

// CurrentEdge returns the edge the vehicle occupies or is moving
// toward, or the zero key and false if the vehicle has no next node.
func (v *Vehicle) CurrentEdge() (network.EdgeKey, bool) {
	if v.NextNode == "" {
		return network.EdgeKey{}, false
	}
	return network.EdgeKey{From: v.CurrentNode, To: v.NextNode}, true
}

// MoveToNextNode advances the vehicle to the next path node. Returns
// false once the vehicle has reached its destination or has no path.
func (v *Vehicle) MoveToNextNode(tick int64) bool {
	if len(v.Path) == 0 || v.PathIndex >= len(v.Path)-1 {
		v.Status = StatusArrived
		v.ArrivedAtTick = tick
		return false
	}
	v.PathIndex++
	v.CurrentNode = v.Path[v.PathIndex]

	if v.PathIndex < len(v.Path)-1 {
		v.NextNode = v.Path[v.PathIndex+1]
		v.Status = StatusMoving
		v.PositionOnEdge = 0.0
	} else {
		v.NextNode = ""
		v.Status = StatusArrived
		v.ArrivedAtTick = tick
		return false
	}
	return true
}

// UpdatePosition advances the vehicle's position along its current
// edge by deltaTime seconds, chasing TargetSpeed at the configured
// acceleration. Returns true once the vehicle reaches the edge's end.
func (v *Vehicle) UpdatePosition(deltaTime, edgeLength float64) bool {
	if v.Status != StatusMoving && v.Status != StatusStuck {
		return false
	}
	if v.Status == StatusStuck && v.CurrentSpeed == 0.0 && v.TargetSpeed == 0.0 {
		return false
	}

	diff := v.TargetSpeed - v.CurrentSpeed
	switch {
	case diff > -acceleration*deltaTime && diff < acceleration*deltaTime:
		v.CurrentSpeed = v.TargetSpeed
	case diff > 0:
		v.CurrentSpeed += acceleration * deltaTime
	default:
		v.CurrentSpeed -= acceleration * deltaTime
	}

	if v.TargetSpeed < 1.0 && (v.CurrentSpeed < minSpeedThreshold && v.CurrentSpeed > -minSpeedThreshold) {
		v.CurrentSpeed = 0.0
		return false
	}

	distanceMoved := v.CurrentSpeed * deltaTime
	positionChange := distanceMoved / edgeLength
	if positionChange > 0.0001 || positionChange < -0.0001 {
		v.PositionOnEdge += positionChange
		if v.PositionOnEdge < 0 {
			v.PositionOnEdge = 0
		}
		if v.PositionOnEdge > 1 {
			v.PositionOnEdge = 1
		}
	}

	if v.PositionOnEdge >= 1.0 {
		v.PositionOnEdge = 1.0
		return true
	}
	return false
}

// SlowDownForVehicleAhead applies car-following hysteresis: below
// minDistance the vehicle freezes, between minDistance and 1.5x it
// crawls, and only at 2.5x minDistance does it resume full speed —
// the wide resume band prevents oscillation between states.
func (v *Vehicle) SlowDownForVehicleAhead(distanceToVehicle, minDistance float64) {
	resumeDistance := minDistance * 2.5
	switch {
	case distanceToVehicle < minDistance:
		v.TargetSpeed = 0.0
		v.CurrentSpeed = 0.0
		v.Status = StatusStuck
	case distanceToVehicle < minDistance*1.5:
		speedRatio := distanceToVehicle / (minDistance * 2)
		minCrawlSpeed := v.SpeedMultiplier * 0.15
		target := v.SpeedMultiplier * speedRatio
		if target < minCrawlSpeed {
			target = minCrawlSpeed
		}
		v.TargetSpeed = target
	case distanceToVehicle >= resumeDistance:
		v.TargetSpeed = v.SpeedMultiplier
		if v.Status == StatusStuck {
			v.Status = StatusMoving
		}
	}
}

// IncrementReroute records a reroute and marks the vehicle as such.
func (v *Vehicle) IncrementReroute() {
	v.RerouteCount++
	v.Status = StatusRerouting
}

// AddWaitTime accumulates stuck-in-traffic time.
func (v *Vehicle) AddWaitTime(delta float64) {
	v.WaitTime += delta
	v.Status = StatusStuck
}

// TravelTicks returns the number of ticks between spawn and arrival,
// or -1 if the vehicle has not yet arrived.
func (v *Vehicle) TravelTicks() int64 {
	if v.ArrivedAtTick == 0 {
		return -1
	}
	return v.ArrivedAtTick - v.SpawnedAtTick
}

func (v *Vehicle) String() string {
	return fmt.Sprintf("Vehicle(%s, %s, %s->%s, %s)", v.ID, v.Mode, v.CurrentNode, v.GoalNode, v.Status)
}
