// Package sim implements the tick-driven engine owning the vehicle
// population, the traffic multiplier table, accidents and blockages,
// the accelerated clock, and the hotspot list, tying the graph store,
// traffic config, pathfinder, and analyzer together into one
// atomic-per-tick simulation.
package sim

import (
	"fmt"
	"log"
	"math/rand"
	"sort"
	"sync"
	"time"

	"urbannav/backend/analyzer"
	"urbannav/backend/network"
	"urbannav/backend/pathfind"
	"urbannav/backend/trafficconfig"
	"urbannav/backend/vehicle"
)

// defaultTrafficMultiplier is the value every edge's multiplier starts
// and is restored to once an accident/blockage lapses.
const defaultTrafficMultiplier = 1.0

// stuckRecheckInterval is how often frozen vehicles are retried.
const stuckRecheckInterval = 10 * time.Second

// carFollowingMinDistance is the safe following gap in pixels.
const carFollowingMinDistance = 30.0

// maxDeltaTime caps a single tick's wall-clock delta to avoid jumps
// after the engine has been idle (e.g. a debugger pause).
const maxDeltaTime = 0.2

// rerouteCongestionThreshold triggers a reroute when an upcoming
// edge's congestion probability exceeds this value.
const rerouteCongestionThreshold = 0.5

// upcomingEdgeLookahead is how many edges ahead of the vehicle's
// current position are inspected for reroute triggers.
const upcomingEdgeLookahead = 3

// fallbackEdgeLength is used for kinematics when an edge has no
// recorded distance.
const fallbackEdgeLength = 100.0

// Accident is an active incident penalizing one edge's multiplier.
type Accident struct {
	ID          string
	From, To    string
	Severity    string
	CreatedAt   time.Time
	DurationSec float64
}

// Blockage is an active full closure of one edge. DurationSec is zero
// for an explicitly created blockage (BlockRoad), which only lifts via
// UnblockRoad, and non-zero for a generated one, which auto-expires.
type Blockage struct {
	From, To    string
	Reason      string
	CreatedAt   time.Time
	DurationSec float64
}

// Simulator is the tick engine. One instance binds to one graph;
// switching maps means constructing a new Simulator.
type Simulator struct {
	mu sync.Mutex

	net     *network.RoadNetwork
	cfg     *trafficconfig.Config
	manager *vehicle.Manager
	analyze *analyzer.Analyzer
	clock   *Clock
	rng     *rand.Rand

	multipliers map[network.EdgeKey]float64
	blocked     map[network.EdgeKey]bool
	accidents   map[string]*Accident
	blockages   map[network.EdgeKey]*Blockage
	hotspots    []network.EdgeKey

	step         int64
	isRunning    bool
	totalSpawned int
	nextVehicle  int64
	nextAccident int64

	startTime          time.Time
	lastTickTime       time.Time
	lastSpawnTime      time.Time
	lastStuckCheckTime time.Time

	events []Event
}

// New constructs a Simulator over a loaded graph and traffic config,
// seeding its random source.
func New(net *network.RoadNetwork, cfg *trafficconfig.Config, seed int64) *Simulator {
	s := &Simulator{
		net:     net,
		cfg:     cfg,
		manager: vehicle.NewManager(),
		clock:   NewClock(),
		rng:     rand.New(rand.NewSource(seed)),

		multipliers: make(map[network.EdgeKey]float64),
		blocked:     make(map[network.EdgeKey]bool),
		accidents:   make(map[string]*Accident),
		blockages:   make(map[network.EdgeKey]*Blockage),
	}
	s.analyze = analyzer.New(net, s.manager)
	s.initMultipliers()
	s.hotspots = selectHotspots(net, s.rng)

	now := time.Now()
	s.startTime = now
	s.lastTickTime = now
	s.lastSpawnTime = now
	s.lastStuckCheckTime = now
	return s
}

func (s *Simulator) initMultipliers() {
	for _, e := range s.net.Edges() {
		s.multipliers[e.Key()] = defaultTrafficMultiplier
	}
}

// Reset discards all vehicles, accidents, and blockages, restores
// every multiplier to default, and restarts the clock at 7 AM. The
// graph itself is kept — construct a new Simulator to switch maps.
func (s *Simulator) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.manager.Reset()
	s.accidents = make(map[string]*Accident)
	s.blockages = make(map[network.EdgeKey]*Blockage)
	s.blocked = make(map[network.EdgeKey]bool)
	s.initMultipliers()
	s.step = 0
	s.isRunning = false
	s.totalSpawned = 0
	s.nextVehicle = 0
	s.nextAccident = 0

	now := time.Now()
	s.startTime = now
	s.lastTickTime = now
	s.lastSpawnTime = now
	s.lastStuckCheckTime = now
}

// Stop clears the is_running flag consulted by bulk-run helpers;
// individual ticks cannot be interrupted mid-execution.
func (s *Simulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isRunning = false
}

// Run marks the simulation running, for bulk-run helpers that poll
// IsRunning between ticks.
func (s *Simulator) Run() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isRunning = true
}

// IsRunning reports the bulk-run flag's current value.
func (s *Simulator) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// TickReport summarizes one completed tick.
type TickReport struct {
	Step           int64
	ActiveVehicles int
	Moved          int
	Arrived        int
	TotalVehicles  int
	DeltaTime      float64
	ElapsedTime    float64
	Accidents      []*Accident
	BlockedRoads   []*Blockage
}

// Tick advances the simulation by one atomic step, following the
// order: clock/delta, congestion sample, auto-spawn, accident/blockage
// generation, expiry, stuck recovery, analyzer refresh, hotspot
// penalty, two-pass vehicle update, and edge-occupancy rebuild.
func (s *Simulator) Tick() TickReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	deltaTime := now.Sub(s.lastTickTime).Seconds()
	if deltaTime > maxDeltaTime {
		deltaTime = maxDeltaTime
	}
	if deltaTime < 0 {
		deltaTime = 0
	}
	s.lastTickTime = now
	s.step++
	s.events = s.events[:0]

	elapsedReal := now.Sub(s.startTime).Seconds()
	simTime := s.clock.At(elapsedReal)
	isPeak := s.cfg.IsPeakHour(simTime.Hour)
	peakMult := 1.0
	if isPeak {
		peakMult = s.cfg.Congestion.PeakMultiplier
	}
	baseCongestion := s.cfg.SampleCongestionFactor(s.rng)
	congestionFactor := baseCongestion * peakMult * (elapsedReal/60.0 + 0.5)
	if congestionFactor > 1 {
		congestionFactor = 1
	}
	if congestionFactor < 0 {
		congestionFactor = 0
	}

	s.autoSpawn(now, isPeak, simTime.Hour)
	s.maybeCreateAccident()
	s.maybeCreateBlockage()
	s.expireAccidents(now)
	s.expireBlockages(now)

	if now.Sub(s.lastStuckCheckTime) >= stuckRecheckInterval {
		s.checkStuckVehicles()
		s.lastStuckCheckTime = now
	}

	s.analyze.UpdateMultipliers(s.multipliers, s.rng)
	applyHotspotPenalty(s.multipliers, s.hotspots, congestionFactor, s.rng)

	active := s.manager.Active()

	// Pass 1: blocked-edge reroute and car-following speed adjustment.
	for _, v := range active {
		if v.Status == vehicle.StatusArrived || v.NextNode == "" {
			continue
		}
		edge := network.EdgeKey{From: v.CurrentNode, To: v.NextNode}
		if s.blocked[edge] || s.shouldReroute(v) {
			s.rerouteVehicle(v)
			continue
		}
		s.applyCarFollowing(v)
	}

	// Pass 2: kinematic update and node transitions.
	moved := 0
	arrived := 0
	for _, v := range active {
		if v.Status == vehicle.StatusArrived || v.NextNode == "" {
			continue
		}
		edge := network.EdgeKey{From: v.CurrentNode, To: v.NextNode}
		if s.blocked[edge] {
			v.TargetSpeed = 0
			v.CurrentSpeed = 0
			v.Status = vehicle.StatusStuck
			continue
		}
		edgeLength := s.edgeLength(edge)
		if v.UpdatePosition(deltaTime, edgeLength) {
			moved++
			v.MoveToNextNode(s.step)
			if v.Status == vehicle.StatusArrived {
				arrived++
				s.manager.MarkArrived(v.ID)
				s.events = append(s.events, VehicleArrivedEvent{
					VehicleID: v.ID, Tick: s.step, TravelTicks: v.TravelTicks(), RerouteCount: v.RerouteCount,
				})
			}
		}
	}

	s.manager.UpdateEdgeOccupancy()

	report := TickReport{
		Step:           s.step,
		ActiveVehicles: len(active) - arrived,
		Moved:          moved,
		Arrived:        arrived,
		TotalVehicles:  len(s.manager.All()),
		DeltaTime:      deltaTime,
		ElapsedTime:    elapsedReal,
		Accidents:      s.accidentList(),
		BlockedRoads:   s.blockageList(),
	}
	s.events = append(s.events, TickSummaryEvent{
		Tick: s.step, ActiveVehicles: report.ActiveVehicles, Moved: moved, Arrived: arrived, TotalSpawned: s.totalSpawned,
	})
	return report
}

func (s *Simulator) edgeLength(key network.EdgeKey) float64 {
	e := s.net.Edge(key.From, key.To)
	if e == nil || e.Distance <= 0 {
		return fallbackEdgeLength
	}
	return e.Distance
}

// Events returns the events emitted by the most recently completed tick.
func (s *Simulator) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *Simulator) applyCarFollowing(v *vehicle.Vehicle) {
	onEdge := s.manager.VehiclesOnEdge(v.CurrentNode, v.NextNode)
	edgeLength := s.edgeLength(network.EdgeKey{From: v.CurrentNode, To: v.NextNode})

	var ahead *vehicle.Vehicle
	minGap := -1.0
	for _, other := range onEdge {
		if other.ID == v.ID {
			continue
		}
		if other.PositionOnEdge <= v.PositionOnEdge {
			continue
		}
		gap := (other.PositionOnEdge - v.PositionOnEdge) * edgeLength
		if minGap < 0 || gap < minGap {
			minGap = gap
			ahead = other
		}
	}

	if ahead != nil {
		v.SlowDownForVehicleAhead(minGap, carFollowingMinDistance)
	} else {
		v.TargetSpeed = v.SpeedMultiplier
		if v.Status == vehicle.StatusStuck {
			v.Status = vehicle.StatusMoving
		}
	}
}

// --- rerouting ---

func (s *Simulator) shouldReroute(v *vehicle.Vehicle) bool {
	if len(v.Path) < 2 {
		return false
	}
	if v.NextNode != "" && s.blocked[network.EdgeKey{From: v.CurrentNode, To: v.NextNode}] {
		return true
	}

	upperBound := v.PathIndex + upcomingEdgeLookahead
	if upperBound > len(v.Path)-1 {
		upperBound = len(v.Path) - 1
	}
	upcoming := make([]network.EdgeKey, 0, upcomingEdgeLookahead)
	for i := v.PathIndex; i < upperBound; i++ {
		upcoming = append(upcoming, network.EdgeKey{From: v.Path[i], To: v.Path[i+1]})
	}

	for _, edge := range upcoming {
		if s.blocked[edge] {
			return true
		}
	}
	for _, edge := range upcoming {
		if s.analyze.CongestionProbability(edge.From, edge.To) > rerouteCongestionThreshold {
			return true
		}
	}
	return false
}

func (s *Simulator) rerouteVehicle(v *vehicle.Vehicle) {
	newPath, _, err := pathfind.Search(s.net, s.multipliers, s.blocked, v.CurrentNode, v.GoalNode, v.Mode)
	if err == nil && len(newPath) > 0 {
		v.SetPath(newPath)
		v.IncrementReroute()
		v.TargetSpeed = v.SpeedMultiplier
		v.Status = vehicle.StatusMoving
		s.events = append(s.events, VehicleReroutedEvent{VehicleID: v.ID, From: v.CurrentNode, Tick: s.step})
		return
	}
	v.TargetSpeed = 0
	v.CurrentSpeed = 0
	v.Status = vehicle.StatusStuck
	s.events = append(s.events, VehicleStuckEvent{VehicleID: v.ID, Node: v.CurrentNode, Tick: s.step})
}

func (s *Simulator) checkStuckVehicles() {
	for _, v := range s.manager.Active() {
		if v.Status != vehicle.StatusStuck || v.CurrentSpeed != 0 {
			continue
		}
		newPath, _, err := pathfind.Search(s.net, s.multipliers, s.blocked, v.CurrentNode, v.GoalNode, v.Mode)
		if err == nil && len(newPath) > 0 {
			v.SetPath(newPath)
			v.IncrementReroute()
			v.TargetSpeed = v.SpeedMultiplier
			v.Status = vehicle.StatusMoving
		}
	}
}

// --- spawning ---

func (s *Simulator) newVehicleID(mode network.Mode) string {
	s.nextVehicle++
	return fmt.Sprintf("%s_%d", mode, s.nextVehicle)
}

func (s *Simulator) autoSpawn(now time.Time, isPeak bool, simHour int) {
	rate := s.cfg.SampleSpawnRate(isPeak, s.rng)
	if rate <= 0 {
		return
	}
	interval := 60.0 / rate
	if now.Sub(s.lastSpawnTime).Seconds() < interval {
		return
	}
	mix := s.cfg.VehicleDistribution(simHour)
	mode := mix.SampleVehicleKind(s.rng)
	if _, err := s.spawnVehicleLocked(mode, "", ""); err == nil {
		s.lastSpawnTime = now
	}
}

// SpawnVehicle creates a vehicle of the given mode between start and
// goal (random distinct nodes when either is empty), pathing it
// immediately. Returns an error if no path exists.
func (s *Simulator) SpawnVehicle(mode network.Mode, start, goal string) (*vehicle.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spawnVehicleLocked(mode, start, goal)
}

func (s *Simulator) spawnVehicleLocked(mode network.Mode, start, goal string) (*vehicle.Vehicle, error) {
	nodes := s.net.Nodes()
	if len(nodes) == 0 {
		return nil, fmt.Errorf("sim: empty graph")
	}
	if start == "" {
		for {
			start = nodes[s.rng.Intn(len(nodes))]
			if start != goal {
				break
			}
		}
	}
	if goal == "" {
		for {
			goal = nodes[s.rng.Intn(len(nodes))]
			if goal != start {
				break
			}
		}
	}

	path, _, err := pathfind.Search(s.net, s.multipliers, s.blocked, start, goal, mode)
	if err != nil {
		return nil, fmt.Errorf("sim: spawn %s: %w", mode, err)
	}

	id := s.newVehicleID(mode)
	v := vehicle.New(id, mode, start, goal, s.cfg, s.rng)
	v.SpawnedAtTick = s.step
	v.SetPath(path)
	s.manager.Add(v)
	s.totalSpawned++
	s.events = append(s.events, VehicleSpawnedEvent{VehicleID: id, Mode: string(mode), From: start, To: goal, Tick: s.step})
	return v, nil
}

// SpawnRandom spawns count vehicles drawn from the given distribution
// (the current-hour time-of-day mix when distribution is nil).
func (s *Simulator) SpawnRandom(count int, distribution *trafficconfig.TimePeriodMix) []*vehicle.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()

	mix := distribution
	if mix == nil {
		hour := s.clock.At(time.Since(s.startTime).Seconds()).Hour
		m := s.cfg.VehicleDistribution(hour)
		mix = &m
	}

	spawned := make([]*vehicle.Vehicle, 0, count)
	for i := 0; i < count; i++ {
		mode := mix.SampleVehicleKind(s.rng)
		v, err := s.spawnVehicleLocked(mode, "", "")
		if err == nil {
			spawned = append(spawned, v)
		}
	}
	return spawned
}

// GetVehicle looks up a vehicle by id.
func (s *Simulator) GetVehicle(id string) (*vehicle.Vehicle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.manager.Get(id)
	return v, v != nil
}

// RemoveVehicle deletes a vehicle from the simulation.
func (s *Simulator) RemoveVehicle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.Remove(id)
}

// AllVehicles returns every tracked vehicle.
func (s *Simulator) AllVehicles() []*vehicle.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.All()
}

// Stats returns aggregate vehicle statistics, as used by shutdown reports.
func (s *Simulator) Stats() vehicle.Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.Stats()
}

// PredictCongestion projects an edge's congestion probability
// timeSteps ticks into the future from its recent multiplier history.
func (s *Simulator) PredictCongestion(from, to string, timeSteps int) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyze.PredictCongestion(from, to, timeSteps)
}

// --- path ---

// Path runs a shortest-route search between start and goal for the
// given mode using the simulator's live multiplier table and blocked set.
func (s *Simulator) Path(start, goal string, mode network.Mode) ([]string, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pathfind.Search(s.net, s.multipliers, s.blocked, start, goal, mode)
}

// --- accidents & blockages ---

// CreateAccident creates an accident on (from, to) — a random edge
// when either endpoint is empty — sampling severity and duration from
// the configured distributions and scaling the edge's multiplier.
func (s *Simulator) CreateAccident(from, to string) (*Accident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createAccidentLocked(from, to)
}

func (s *Simulator) createAccidentLocked(from, to string) (*Accident, error) {
	if from == "" || to == "" {
		edge, ok := s.randomEdge()
		if !ok {
			return nil, fmt.Errorf("sim: no edges available")
		}
		from, to = edge.From, edge.To
	} else if s.net.Edge(from, to) == nil {
		return nil, fmt.Errorf("sim: unknown edge %s->%s", from, to)
	}

	s.nextAccident++
	severity := s.cfg.SampleAccidentSeverity(s.rng)
	duration := s.cfg.SampleAccidentDuration(s.rng)
	acc := &Accident{
		ID:          fmt.Sprintf("accident_%d", s.nextAccident),
		From:        from,
		To:          to,
		Severity:    severity,
		CreatedAt:   time.Now(),
		DurationSec: duration,
	}
	s.accidents[acc.ID] = acc

	key := network.EdgeKey{From: from, To: to}
	s.multipliers[key] *= trafficconfig.SeverityMultiplier[severity]
	s.events = append(s.events, AccidentCreatedEvent{
		AccidentID: acc.ID, From: from, To: to, Severity: severity, DurationSec: duration, Tick: s.step,
	})
	return acc, nil
}

func (s *Simulator) maybeCreateAccident() {
	ratePerHour := s.cfg.Accidents.RatePerHour
	probPerTick := ratePerHour / 3600.0 / 20.0
	if s.rng.Float64() < probPerTick {
		s.createAccidentLocked("", "")
	}
}

// ResolveAccident restores the affected edge's multiplier and removes
// the accident. Returns false if the id is unknown.
func (s *Simulator) ResolveAccident(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolveAccidentLocked(id)
}

func (s *Simulator) resolveAccidentLocked(id string) bool {
	acc, ok := s.accidents[id]
	if !ok {
		return false
	}
	key := network.EdgeKey{From: acc.From, To: acc.To}
	s.multipliers[key] /= trafficconfig.SeverityMultiplier[acc.Severity]
	delete(s.accidents, id)
	s.events = append(s.events, AccidentResolvedEvent{AccidentID: id, Tick: s.step})
	return true
}

func (s *Simulator) expireAccidents(now time.Time) {
	for id, acc := range s.accidents {
		if now.Sub(acc.CreatedAt).Seconds() > acc.DurationSec {
			s.resolveAccidentLocked(id)
		}
	}
}

// Accidents lists every active accident.
func (s *Simulator) Accidents() []*Accident {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accidentList()
}

func (s *Simulator) accidentList() []*Accident {
	out := make([]*Accident, 0, len(s.accidents))
	for _, a := range s.accidents {
		out = append(out, a)
	}
	return out
}

// BlockRoad fully closes an edge with the given reason (defaulting to
// "construction"). Returns false if the edge does not exist or is
// already blocked — a no-op, per the error-handling design.
func (s *Simulator) BlockRoad(from, to, reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := network.EdgeKey{From: from, To: to}
	if s.net.Edge(from, to) == nil {
		return false
	}
	if _, already := s.blockages[key]; already {
		return false
	}
	if reason == "" {
		reason = "construction"
	}
	b := &Blockage{From: from, To: to, Reason: reason, CreatedAt: time.Now(), DurationSec: 0}
	s.blockages[key] = b
	s.blocked[key] = true
	s.multipliers[key] = 100.0
	s.events = append(s.events, BlockageCreatedEvent{From: from, To: to, Reason: reason, Tick: s.step})
	return true
}

func (s *Simulator) createBlockageLocked() {
	edge, ok := s.randomEdge()
	if !ok {
		return
	}
	key := edge.Key()
	if _, already := s.blockages[key]; already {
		return
	}
	duration := s.cfg.SampleBlockageDuration(s.rng)
	reasons := []string{"construction", "maintenance", "event", "emergency"}
	reason := reasons[s.rng.Intn(len(reasons))]

	b := &Blockage{From: edge.From, To: edge.To, Reason: reason, CreatedAt: time.Now(), DurationSec: duration}
	s.blockages[key] = b
	s.blocked[key] = true
	s.multipliers[key] = 100.0
	s.events = append(s.events, BlockageCreatedEvent{From: edge.From, To: edge.To, Reason: reason, DurationSec: duration, Tick: s.step})
}

func (s *Simulator) maybeCreateBlockage() {
	ratePerHour := s.cfg.Blockages.RatePerHour
	probPerTick := ratePerHour / 3600.0 / 20.0
	if s.rng.Float64() < probPerTick {
		s.createBlockageLocked()
	}
}

// UnblockRoad reopens a previously blocked edge, restoring its
// multiplier to default. Returns false if it was not blocked.
func (s *Simulator) UnblockRoad(from, to string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unblockRoadLocked(from, to)
}

func (s *Simulator) unblockRoadLocked(from, to string) bool {
	key := network.EdgeKey{From: from, To: to}
	if _, ok := s.blockages[key]; !ok {
		return false
	}
	delete(s.blockages, key)
	delete(s.blocked, key)
	s.multipliers[key] = defaultTrafficMultiplier
	s.events = append(s.events, BlockageResolvedEvent{From: from, To: to, Tick: s.step})
	return true
}

func (s *Simulator) expireBlockages(now time.Time) {
	for key, b := range s.blockages {
		if b.DurationSec <= 0 {
			continue // explicitly blocked via BlockRoad; only UnblockRoad lifts it
		}
		if now.Sub(b.CreatedAt).Seconds() > b.DurationSec {
			s.unblockRoadLocked(key.From, key.To)
		}
	}
}

// BlockedRoads lists every currently blocked edge.
func (s *Simulator) BlockedRoads() []*Blockage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blockageList()
}

func (s *Simulator) blockageList() []*Blockage {
	out := make([]*Blockage, 0, len(s.blockages))
	for _, b := range s.blockages {
		out = append(out, b)
	}
	return out
}

func (s *Simulator) randomEdge() (*network.Edge, bool) {
	edges := s.net.Edges()
	if len(edges) == 0 {
		return nil, false
	}
	return edges[s.rng.Intn(len(edges))], true
}

// --- state & reporting ---

// SimulationState is the full queryable snapshot returned between ticks.
type SimulationState struct {
	Step               int64
	IsRunning          bool
	Vehicles           []*vehicle.Vehicle
	VehicleStatistics  vehicle.Statistics
	TrafficStatistics  analyzer.GlobalStatistics
	EdgeTraffic        []analyzer.EdgeTraffic
	TrafficMultipliers map[string]float64
	TotalSpawned       int
}

// State returns a full snapshot of the simulation, safe to read
// between ticks.
func (s *Simulator) State() SimulationState {
	s.mu.Lock()
	defer s.mu.Unlock()

	multipliers := make(map[string]float64, len(s.multipliers))
	for k, v := range s.multipliers {
		multipliers[k.String()] = v
	}

	return SimulationState{
		Step:               s.step,
		IsRunning:          s.isRunning,
		Vehicles:           s.manager.All(),
		VehicleStatistics:  s.manager.Stats(),
		TrafficStatistics:  s.analyze.Global(),
		EdgeTraffic:        s.analyze.EdgeTrafficData(),
		TrafficMultipliers: multipliers,
		TotalSpawned:       s.totalSpawned,
	}
}

// SimTime returns the current accelerated simulation time.
func (s *Simulator) SimTime() SimTime {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.At(time.Since(s.startTime).Seconds())
}

// BottleneckProbability pairs a bottleneck edge with its live congestion probability.
type BottleneckProbability struct {
	From, To    string
	Density     float64
	Probability float64
}

// NodeCongestion is a single intersection's average outgoing density.
type NodeCongestion struct {
	Node       string
	Congestion float64
}

// CongestionReport bundles bottlenecks, the most congested
// intersections, and the global traffic statistics snapshot.
type CongestionReport struct {
	Bottlenecks            []BottleneckProbability
	CongestedIntersections []NodeCongestion
	GlobalStats            analyzer.GlobalStatistics
}

// CongestionReport computes the reporting bundle: bottleneck edges,
// congested intersections, and global statistics.
func (s *Simulator) CongestionReport() CongestionReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	bottlenecks := s.analyze.Bottlenecks(0.5)
	withProb := make([]BottleneckProbability, 0, len(bottlenecks))
	for _, b := range bottlenecks {
		withProb = append(withProb, BottleneckProbability{
			From: b.From, To: b.To, Density: b.Density,
			Probability: s.analyze.CongestionProbability(b.From, b.To),
		})
	}

	var congested []NodeCongestion
	for _, node := range s.net.Nodes() {
		c := s.analyze.NodeCongestion(node)
		if c > 0.5 {
			congested = append(congested, NodeCongestion{Node: node, Congestion: c})
		}
	}
	sort.Slice(congested, func(i, j int) bool { return congested[i].Congestion > congested[j].Congestion })
	if len(congested) > 10 {
		congested = congested[:10]
	}

	return CongestionReport{
		Bottlenecks:            withProb,
		CongestedIntersections: congested,
		GlobalStats:            s.analyze.Global(),
	}
}

// Log mirrors the surrounding adapter's plain diagnostic style for
// engine-level notices (config fallback, graph load).
func Log(format string, args ...interface{}) {
	log.Printf("sim: "+format, args...)
}
