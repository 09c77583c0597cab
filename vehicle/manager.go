package vehicle

import "urbannav/backend/network"

// Manager owns every vehicle in the simulation, the set of currently
// active (not yet arrived) vehicle IDs, and the edge occupancy table
// rebuilt each tick from vehicle positions.
type Manager struct {
	vehicles map[string]*Vehicle
	active   map[string]bool
	occupied map[network.EdgeKey][]string
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{
		vehicles: make(map[string]*Vehicle),
		active:   make(map[string]bool),
		occupied: make(map[network.EdgeKey][]string),
	}
}

// Add registers a vehicle, marking it active unless already arrived.
func (m *Manager) Add(v *Vehicle) {
	m.vehicles[v.ID] = v
	if v.Status != StatusArrived {
		m.active[v.ID] = true
	} else {
		delete(m.active, v.ID)
	}
}

// Remove deletes a vehicle and scrubs it from occupancy tracking.
func (m *Manager) Remove(id string) bool {
	if _, ok := m.vehicles[id]; !ok {
		return false
	}
	delete(m.vehicles, id)
	delete(m.active, id)
	for edge, ids := range m.occupied {
		for i, vid := range ids {
			if vid == id {
				m.occupied[edge] = append(ids[:i], ids[i+1:]...)
				break
			}
		}
	}
	return true
}

// Get returns the vehicle by id, or nil if absent.
func (m *Manager) Get(id string) *Vehicle { return m.vehicles[id] }

// All returns every vehicle, in no particular order.
func (m *Manager) All() []*Vehicle {
	out := make([]*Vehicle, 0, len(m.vehicles))
	for _, v := range m.vehicles {
		out = append(out, v)
	}
	return out
}

// Active returns every vehicle that has not yet arrived.
func (m *Manager) Active() []*Vehicle {
	out := make([]*Vehicle, 0, len(m.active))
	for id := range m.active {
		if v, ok := m.vehicles[id]; ok {
			out = append(out, v)
		}
	}
	return out
}

// VehiclesOnEdge returns every vehicle currently occupying (from, to).
func (m *Manager) VehiclesOnEdge(from, to string) []*Vehicle {
	ids := m.occupied[network.EdgeKey{From: from, To: to}]
	out := make([]*Vehicle, 0, len(ids))
	for _, id := range ids {
		if v, ok := m.vehicles[id]; ok {
			out = append(out, v)
		}
	}
	return out
}

// UpdateEdgeOccupancy clears and rebuilds the edge occupancy table
// from every active vehicle's current edge. Must run after vehicles
// move, before the analyzer reads density.
func (m *Manager) UpdateEdgeOccupancy() {
	for k := range m.occupied {
		delete(m.occupied, k)
	}
	for _, v := range m.Active() {
		key, ok := v.CurrentEdge()
		if !ok {
			continue
		}
		m.occupied[key] = append(m.occupied[key], v.ID)
	}
}

// EdgeVehicleCount is the number of vehicles currently on an edge.
func (m *Manager) EdgeVehicleCount(from, to string) int {
	return len(m.occupied[network.EdgeKey{From: from, To: to}])
}

// EdgeCapacityUsage sums the capacity-usage weight of every vehicle on
// an edge (cars 1.0, bicycles 0.5, pedestrians 0.2).
func (m *Manager) EdgeCapacityUsage(from, to string) float64 {
	var sum float64
	for _, v := range m.VehiclesOnEdge(from, to) {
		sum += v.CapacityUsage
	}
	return sum
}

// MarkArrived removes a vehicle from the active set (but keeps its
// record for reporting) and sets its status to arrived.
func (m *Manager) MarkArrived(id string) {
	if m.active[id] {
		delete(m.active, id)
		if v, ok := m.vehicles[id]; ok {
			v.Status = StatusArrived
		}
	}
}

// ClearArrived deletes every vehicle whose status is arrived.
func (m *Manager) ClearArrived() {
	for id, v := range m.vehicles {
		if v.Status == StatusArrived {
			m.Remove(id)
		}
	}
}

// Reset empties the manager entirely.
func (m *Manager) Reset() {
	m.vehicles = make(map[string]*Vehicle)
	m.active = make(map[string]bool)
	m.occupied = make(map[network.EdgeKey][]string)
}

// Statistics summarizes the manager's current vehicle population.
type Statistics struct {
	TotalVehicles     int
	ActiveVehicles    int
	ArrivedVehicles   int
	AverageWaitTime   float64
	TotalReroutes     int
	VehiclesByMode    map[network.Mode]int
}

// Stats computes a Statistics snapshot over every tracked vehicle.
func (m *Manager) Stats() Statistics {
	all := m.All()
	stats := Statistics{
		TotalVehicles:  len(all),
		ActiveVehicles: len(m.active),
		VehiclesByMode: map[network.Mode]int{
			network.ModeCar: 0, network.ModeBicycle: 0, network.ModePedestrian: 0,
		},
	}
	var totalWait float64
	for _, v := range all {
		if v.Status == StatusArrived {
			stats.ArrivedVehicles++
		}
		totalWait += v.WaitTime
		stats.TotalReroutes += v.RerouteCount
		stats.VehiclesByMode[v.Mode]++
	}
	if len(all) > 0 {
		stats.AverageWaitTime = totalWait / float64(len(all))
	}
	return stats
}
