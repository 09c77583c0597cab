package sim

import (
	"testing"
	"time"

	"urbannav/backend/network"
	"urbannav/backend/trafficconfig"
	"urbannav/backend/vehicle"
)

func testGraph() *network.RoadNetwork {
	g := network.New()
	g.AddNode("A", 0, 0)
	g.AddNode("B", 100, 0)
	g.AddNode("C", 200, 0)
	g.AddNode("D", 300, 0)
	modes := map[network.Mode]bool{network.ModeCar: true, network.ModeBicycle: true, network.ModePedestrian: true}
	g.AddEdge("A", "B", 100, modes, false)
	g.AddEdge("B", "A", 100, modes, false)
	g.AddEdge("B", "C", 100, modes, false)
	g.AddEdge("C", "B", 100, modes, false)
	g.AddEdge("C", "D", 100, modes, false)
	g.AddEdge("D", "C", 100, modes, false)
	return g
}

func newTestSimulator() *Simulator {
	return New(testGraph(), trafficconfig.Default(), 42)
}

func TestNewInitializesMultipliersForEveryEdge(t *testing.T) {
	s := newTestSimulator()
	if len(s.multipliers) != len(s.net.Edges()) {
		t.Fatalf("multipliers has %d entries, want %d", len(s.multipliers), len(s.net.Edges()))
	}
	for _, m := range s.multipliers {
		if m != defaultTrafficMultiplier {
			t.Fatalf("multiplier = %v, want default %v", m, defaultTrafficMultiplier)
		}
	}
}

func TestSpawnVehicleFindsPath(t *testing.T) {
	s := newTestSimulator()
	v, err := s.SpawnVehicle(network.ModeCar, "A", "D")
	if err != nil {
		t.Fatalf("SpawnVehicle: %v", err)
	}
	if v.CurrentNode != "A" || v.GoalNode != "D" {
		t.Fatalf("unexpected vehicle endpoints: %+v", v)
	}
	if len(s.AllVehicles()) != 1 {
		t.Fatalf("expected 1 tracked vehicle, got %d", len(s.AllVehicles()))
	}
}

func TestSpawnVehicleUnknownNodeErrors(t *testing.T) {
	s := newTestSimulator()
	if _, err := s.SpawnVehicle(network.ModeCar, "A", "Nowhere"); err == nil {
		t.Fatal("expected an error spawning toward an unknown node")
	}
}

func TestSpawnRandomRespectsCount(t *testing.T) {
	s := newTestSimulator()
	spawned := s.SpawnRandom(5, nil)
	if len(spawned) != 5 {
		t.Fatalf("SpawnRandom(5) returned %d vehicles", len(spawned))
	}
	if len(s.AllVehicles()) != 5 {
		t.Fatalf("AllVehicles() = %d, want 5", len(s.AllVehicles()))
	}
}

func TestGetVehicleAndRemoveVehicle(t *testing.T) {
	s := newTestSimulator()
	v, err := s.SpawnVehicle(network.ModeCar, "A", "D")
	if err != nil {
		t.Fatalf("SpawnVehicle: %v", err)
	}
	if _, ok := s.GetVehicle(v.ID); !ok {
		t.Fatal("GetVehicle should find the just-spawned vehicle")
	}
	if !s.RemoveVehicle(v.ID) {
		t.Fatal("RemoveVehicle should report true for an existing vehicle")
	}
	if _, ok := s.GetVehicle(v.ID); ok {
		t.Fatal("GetVehicle should no longer find a removed vehicle")
	}
}

func TestTickIncrementsStep(t *testing.T) {
	s := newTestSimulator()
	first := s.Tick()
	if first.Step != 1 {
		t.Fatalf("first tick Step = %d, want 1", first.Step)
	}
	second := s.Tick()
	if second.Step != 2 {
		t.Fatalf("second tick Step = %d, want 2", second.Step)
	}
}

func TestTickBackToBackHasNearZeroDeltaAndDoesNotMoveVehicles(t *testing.T) {
	s := newTestSimulator()
	v, err := s.SpawnVehicle(network.ModeCar, "A", "D")
	if err != nil {
		t.Fatalf("SpawnVehicle: %v", err)
	}
	posBefore := v.PositionOnEdge

	r1 := s.Tick()
	r2 := s.Tick()
	if r2.Step != r1.Step+1 {
		t.Fatalf("step did not increment by exactly 1: %d -> %d", r1.Step, r2.Step)
	}
	if r2.DeltaTime > 1e-2 {
		t.Fatalf("back-to-back tick DeltaTime = %v, want near zero", r2.DeltaTime)
	}
	if v.PositionOnEdge != posBefore {
		t.Fatalf("vehicle position moved on a near-zero delta tick: %v -> %v", posBefore, v.PositionOnEdge)
	}
}

func TestTickReportTracksTotalVehicles(t *testing.T) {
	s := newTestSimulator()
	s.SpawnRandom(3, nil)
	r := s.Tick()
	if r.TotalVehicles != 3 {
		t.Fatalf("TotalVehicles = %d, want 3", r.TotalVehicles)
	}
}

func TestAccidentCreateAndResolveRoundTrip(t *testing.T) {
	s := newTestSimulator()
	acc, err := s.CreateAccident("A", "B")
	if err != nil {
		t.Fatalf("CreateAccident: %v", err)
	}
	key := network.EdgeKey{From: "A", To: "B"}
	mult := s.multipliers[key]
	if mult == defaultTrafficMultiplier {
		t.Fatalf("multiplier unchanged after accident creation: %v", mult)
	}
	if len(s.Accidents()) != 1 {
		t.Fatalf("expected 1 active accident, got %d", len(s.Accidents()))
	}

	if !s.ResolveAccident(acc.ID) {
		t.Fatal("ResolveAccident should report true for a known id")
	}
	if got := s.multipliers[key]; got != defaultTrafficMultiplier {
		t.Fatalf("multiplier after resolve = %v, want restored to %v", got, defaultTrafficMultiplier)
	}
	if len(s.Accidents()) != 0 {
		t.Fatalf("expected 0 active accidents after resolve, got %d", len(s.Accidents()))
	}
}

func TestAccidentUnknownEdgeErrors(t *testing.T) {
	s := newTestSimulator()
	if _, err := s.CreateAccident("A", "Nowhere"); err == nil {
		t.Fatal("expected an error creating an accident on an unknown edge")
	}
}

func TestResolveAccidentUnknownIDReturnsFalse(t *testing.T) {
	s := newTestSimulator()
	if s.ResolveAccident("accident_999") {
		t.Fatal("ResolveAccident on an unknown id should report false")
	}
}

func TestBlockRoadAndUnblockRoadRoundTrip(t *testing.T) {
	s := newTestSimulator()
	if !s.BlockRoad("A", "B", "") {
		t.Fatal("BlockRoad should succeed on an existing edge")
	}
	key := network.EdgeKey{From: "A", To: "B"}
	if !s.blocked[key] {
		t.Fatal("edge should be marked blocked")
	}
	blockages := s.BlockedRoads()
	if len(blockages) != 1 || blockages[0].Reason != "construction" {
		t.Fatalf("expected 1 blockage defaulting to reason=construction, got %+v", blockages)
	}

	if !s.UnblockRoad("A", "B") {
		t.Fatal("UnblockRoad should report true for a blocked edge")
	}
	if s.blocked[key] {
		t.Fatal("edge should no longer be blocked")
	}
	if got := s.multipliers[key]; got != defaultTrafficMultiplier {
		t.Fatalf("multiplier after unblock = %v, want restored to %v", got, defaultTrafficMultiplier)
	}
}

func TestBlockRoadAlreadyBlockedIsNoOp(t *testing.T) {
	s := newTestSimulator()
	if !s.BlockRoad("A", "B", "maintenance") {
		t.Fatal("first BlockRoad call should succeed")
	}
	if s.BlockRoad("A", "B", "event") {
		t.Fatal("blocking an already-blocked edge should report false")
	}
	if s.BlockedRoads()[0].Reason != "maintenance" {
		t.Fatal("re-blocking should not overwrite the original reason")
	}
}

func TestBlockRoadUnknownEdgeReturnsFalse(t *testing.T) {
	s := newTestSimulator()
	if s.BlockRoad("A", "Nowhere", "") {
		t.Fatal("BlockRoad on an unknown edge should report false")
	}
}

func TestUnblockRoadNotBlockedReturnsFalse(t *testing.T) {
	s := newTestSimulator()
	if s.UnblockRoad("A", "B") {
		t.Fatal("UnblockRoad on a never-blocked edge should report false")
	}
}

func TestPathUsesLiveBlockedSet(t *testing.T) {
	// Add a B-E-C bypass so a route to D remains once B->C is blocked.
	g := testGraph()
	g.AddNode("E", 150, 80)
	modes := map[network.Mode]bool{network.ModeCar: true}
	g.AddEdge("B", "E", 50, modes, false)
	g.AddEdge("E", "C", 50, modes, false)
	s := New(g, trafficconfig.Default(), 42)
	path, _, err := s.Path("A", "D", network.ModeCar)
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if len(path) == 0 || path[0] != "A" || path[len(path)-1] != "D" {
		t.Fatalf("unexpected path: %v", path)
	}

	s.BlockRoad("B", "C", "")
	path2, _, err := s.Path("A", "D", network.ModeCar)
	if err != nil {
		t.Fatalf("Path after block: %v", err)
	}
	for i := 0; i < len(path2)-1; i++ {
		if path2[i] == "B" && path2[i+1] == "C" {
			t.Fatalf("path still crosses the blocked edge B->C: %v", path2)
		}
	}
}

func TestStateSnapshotReflectsSpawns(t *testing.T) {
	s := newTestSimulator()
	s.SpawnRandom(4, nil)
	st := s.State()
	if st.TotalSpawned != 4 {
		t.Fatalf("TotalSpawned = %d, want 4", st.TotalSpawned)
	}
	if len(st.Vehicles) != 4 {
		t.Fatalf("len(Vehicles) = %d, want 4", len(st.Vehicles))
	}
	if len(st.TrafficMultipliers) != len(s.net.Edges()) {
		t.Fatalf("TrafficMultipliers has %d entries, want %d", len(st.TrafficMultipliers), len(s.net.Edges()))
	}
}

func TestSimTimeStartsAtMorningRush(t *testing.T) {
	s := newTestSimulator()
	st := s.SimTime()
	if st.Hour != 7 {
		t.Fatalf("SimTime().Hour = %d, want 7 at startup", st.Hour)
	}
}

func TestPredictCongestionWithinProbabilityRange(t *testing.T) {
	s := newTestSimulator()
	p := s.PredictCongestion("A", "B", 5)
	if p < 0 || p > 1 {
		t.Fatalf("PredictCongestion = %v, want within [0,1]", p)
	}
}

func TestCongestionReportCoversGlobalStats(t *testing.T) {
	s := newTestSimulator()
	s.SpawnRandom(5, nil)
	report := s.CongestionReport()
	if report.GlobalStats.TotalEdges != len(s.net.Edges()) {
		t.Fatalf("GlobalStats.TotalEdges = %d, want %d", report.GlobalStats.TotalEdges, len(s.net.Edges()))
	}
}

func TestRunStopIsRunning(t *testing.T) {
	s := newTestSimulator()
	if s.IsRunning() {
		t.Fatal("a fresh Simulator should not be running")
	}
	s.Run()
	if !s.IsRunning() {
		t.Fatal("Run() should mark the simulator running")
	}
	s.Stop()
	if s.IsRunning() {
		t.Fatal("Stop() should clear the running flag")
	}
}

func TestResetClearsVehiclesAccidentsAndBlockages(t *testing.T) {
	s := newTestSimulator()
	s.SpawnRandom(2, nil)
	s.CreateAccident("A", "B")
	s.BlockRoad("C", "D", "")
	s.Tick()

	s.Reset()
	if len(s.AllVehicles()) != 0 {
		t.Fatal("Reset should clear all vehicles")
	}
	if len(s.Accidents()) != 0 {
		t.Fatal("Reset should clear all accidents")
	}
	if len(s.BlockedRoads()) != 0 {
		t.Fatal("Reset should clear all blockages")
	}
	for _, m := range s.multipliers {
		if m != defaultTrafficMultiplier {
			t.Fatalf("Reset should restore every multiplier to default, found %v", m)
		}
	}
	if s.step != 0 {
		t.Fatalf("Reset should zero the step counter, got %d", s.step)
	}
}

func TestEventsClearedEachTick(t *testing.T) {
	s := newTestSimulator()
	s.Tick()
	s.SpawnVehicle(network.ModeCar, "A", "D")
	s.Tick()
	for _, e := range s.Events() {
		if _, ok := e.(VehicleSpawnedEvent); ok {
			t.Fatal("a spawn event emitted before this tick should not linger")
		}
	}
}

func TestStatsMatchesManagerStats(t *testing.T) {
	s := newTestSimulator()
	s.SpawnRandom(3, nil)
	stats := s.Stats()
	if stats.TotalVehicles != 3 {
		t.Fatalf("Stats().TotalVehicles = %d, want 3", stats.TotalVehicles)
	}
}

func TestCheckStuckVehiclesReroutesWhenPathReopens(t *testing.T) {
	s := newTestSimulator()
	v, err := s.SpawnVehicle(network.ModeCar, "A", "D")
	if err != nil {
		t.Fatalf("SpawnVehicle: %v", err)
	}
	v.Status = vehicle.StatusStuck
	v.CurrentSpeed = 0
	v.CurrentNode = "B"
	v.GoalNode = "D"

	s.checkStuckVehicles()
	if v.Status != vehicle.StatusMoving {
		t.Fatalf("expected a stuck vehicle with a live path to resume moving, got %v", v.Status)
	}
}

func TestLastTickTimeAdvancesAcrossTicks(t *testing.T) {
	s := newTestSimulator()
	before := s.lastTickTime
	time.Sleep(time.Millisecond)
	s.Tick()
	if !s.lastTickTime.After(before) {
		t.Fatal("lastTickTime should advance after a tick")
	}
}
