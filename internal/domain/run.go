package domain

// RunState enumerates pipeline milestones of a single pass.
type RunState string

const (
	StateDiscovering RunState = "discovering"
	StateFiltering   RunState = "filtering"
	StateEmpty       RunState = "empty"
	StateExtracting  RunState = "extracting"
	StateNoSurvivors RunState = "no_survivors"
	StateFormatting  RunState = "formatting"
	StatePublishing  RunState = "publishing"
)

// Terminal reports whether a run ends in this state.
func (s RunState) Terminal() bool {
	switch s {
	case StateEmpty, StateNoSurvivors, StatePublishing:
		return true
	default:
		return false
	}
}

// Delivery records the outcome of one channel publish.
type Delivery struct {
	Channel string
	Err     error
}

// Delivered reports whether the channel publish fully succeeded.
func (d Delivery) Delivered() bool {
	return d.Err == nil
}

// RunReport summarizes a pipeline pass.
type RunReport struct {
	RunID      string
	State      RunState
	Discovered int
	Fresh      []string
	// Articles counts digest entries that survived extraction and
	// translation; per-channel success is in Deliveries.
	Articles   int
	Deliveries []Delivery
}
