package vehicle

import (
	"math/rand"
	"testing"

	"urbannav/backend/network"
	"urbannav/backend/trafficconfig"
)

func spawn(m *Manager, id string, mode network.Mode, path []string) *Vehicle {
	cfg := trafficconfig.Default()
	rng := rand.New(rand.NewSource(7))
	v := New(id, mode, path[0], path[len(path)-1], cfg, rng)
	v.SetPath(path)
	m.Add(v)
	return v
}

func TestManagerAddMarksActiveUnlessArrived(t *testing.T) {
	m := NewManager()
	spawn(m, "v1", network.ModeCar, []string{"A", "B"})
	if len(m.Active()) != 1 {
		t.Fatalf("expected 1 active vehicle, got %d", len(m.Active()))
	}

	arrived := spawn(m, "v2", network.ModeCar, []string{"A", "B"})
	arrived.Status = StatusArrived
	m.Add(arrived)
	active := m.Active()
	for _, v := range active {
		if v.ID == "v2" {
			t.Fatal("an already-arrived vehicle should not be marked active on Add")
		}
	}
}

func TestUpdateEdgeOccupancyReflectsActiveVehicles(t *testing.T) {
	m := NewManager()
	spawn(m, "v1", network.ModeCar, []string{"A", "B"})
	spawn(m, "v2", network.ModeBicycle, []string{"A", "B"})
	m.UpdateEdgeOccupancy()

	onEdge := m.VehiclesOnEdge("A", "B")
	if len(onEdge) != 2 {
		t.Fatalf("VehiclesOnEdge(A,B) = %d, want 2", len(onEdge))
	}
	if m.EdgeVehicleCount("A", "B") != 2 {
		t.Fatalf("EdgeVehicleCount = %d, want 2", m.EdgeVehicleCount("A", "B"))
	}
	want := CapacityUsage[network.ModeCar] + CapacityUsage[network.ModeBicycle]
	if got := m.EdgeCapacityUsage("A", "B"); got != want {
		t.Fatalf("EdgeCapacityUsage = %v, want %v", got, want)
	}
}

func TestUpdateEdgeOccupancyExcludesArrivedVehicles(t *testing.T) {
	m := NewManager()
	v := spawn(m, "v1", network.ModeCar, []string{"A", "B"})
	m.MarkArrived(v.ID)
	m.UpdateEdgeOccupancy()
	if got := m.EdgeVehicleCount("A", "B"); got != 0 {
		t.Fatalf("arrived vehicle still counted on edge: %d", got)
	}
}

func TestRemoveScrubsOccupancy(t *testing.T) {
	m := NewManager()
	v := spawn(m, "v1", network.ModeCar, []string{"A", "B"})
	m.UpdateEdgeOccupancy()
	if !m.Remove(v.ID) {
		t.Fatal("Remove on an existing vehicle should report true")
	}
	if m.Remove(v.ID) {
		t.Fatal("Remove on an already-removed vehicle should report false")
	}
	if got := m.EdgeVehicleCount("A", "B"); got != 0 {
		t.Fatalf("removed vehicle still counted on edge: %d", got)
	}
}

func TestStatsAggregatesAcrossModes(t *testing.T) {
	m := NewManager()
	spawn(m, "v1", network.ModeCar, []string{"A", "B"})
	v2 := spawn(m, "v2", network.ModeBicycle, []string{"A", "B"})
	m.MarkArrived(v2.ID)

	stats := m.Stats()
	if stats.TotalVehicles != 2 {
		t.Fatalf("TotalVehicles = %d, want 2", stats.TotalVehicles)
	}
	if stats.ActiveVehicles != 1 {
		t.Fatalf("ActiveVehicles = %d, want 1", stats.ActiveVehicles)
	}
	if stats.ArrivedVehicles != 1 {
		t.Fatalf("ArrivedVehicles = %d, want 1", stats.ArrivedVehicles)
	}
	if stats.VehiclesByMode[network.ModeCar] != 1 || stats.VehiclesByMode[network.ModeBicycle] != 1 {
		t.Fatalf("unexpected mode breakdown: %+v", stats.VehiclesByMode)
	}
}

func TestResetEmptiesManager(t *testing.T) {
	m := NewManager()
	spawn(m, "v1", network.ModeCar, []string{"A", "B"})
	m.Reset()
	if len(m.All()) != 0 || len(m.Active()) != 0 {
		t.Fatal("Reset should leave no vehicles behind")
	}
}
