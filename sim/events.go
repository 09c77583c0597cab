package sim

// Event is a marker for every simulation event a tick can emit.
type Event interface{ isEvent() }

// VehicleSpawnedEvent signals a newly created vehicle with an initial path.
type VehicleSpawnedEvent struct {
	VehicleID string
	Mode      string
	From      string
	To        string
	Tick      int64
}

func (VehicleSpawnedEvent) isEvent() {}

// VehicleArrivedEvent signals a vehicle reaching its destination.
type VehicleArrivedEvent struct {
	VehicleID    string
	Tick         int64
	TravelTicks  int64
	RerouteCount int
}

func (VehicleArrivedEvent) isEvent() {}

// VehicleReroutedEvent signals a vehicle recalculating its path mid-trip.
type VehicleReroutedEvent struct {
	VehicleID string
	From      string
	Tick      int64
}

func (VehicleReroutedEvent) isEvent() {}

// VehicleStuckEvent signals a vehicle unable to find any onward route.
type VehicleStuckEvent struct {
	VehicleID string
	Node      string
	Tick      int64
}

func (VehicleStuckEvent) isEvent() {}

// AccidentCreatedEvent signals a new accident and the multiplier penalty applied.
type AccidentCreatedEvent struct {
	AccidentID  string
	From, To    string
	Severity    string
	DurationSec float64
	Tick        int64
}

func (AccidentCreatedEvent) isEvent() {}

// AccidentResolvedEvent signals an accident being resolved, either by
// expiry or by an explicit ResolveAccident call.
type AccidentResolvedEvent struct {
	AccidentID string
	Tick       int64
}

func (AccidentResolvedEvent) isEvent() {}

// BlockageCreatedEvent signals a new road blockage.
type BlockageCreatedEvent struct {
	From, To    string
	Reason      string
	DurationSec float64
	Tick        int64
}

func (BlockageCreatedEvent) isEvent() {}

// BlockageResolvedEvent signals a blockage being lifted, either by
// expiry or by an explicit UnblockRoad call.
type BlockageResolvedEvent struct {
	From, To string
	Tick     int64
}

func (BlockageResolvedEvent) isEvent() {}

// TickSummaryEvent is emitted once per tick with headline counters.
type TickSummaryEvent struct {
	Tick           int64
	ActiveVehicles int
	Moved          int
	Arrived        int
	TotalSpawned   int
}

func (TickSummaryEvent) isEvent() {}
