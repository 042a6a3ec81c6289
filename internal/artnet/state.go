package artnet

import "sync"

// State is the last value written to every channel of every used universe.
type State struct {
	mu        sync.Mutex
	universes UniverseStateMap
}

func NewState() *State {
	return &State{universes: UniverseStateMap{}}
}

// SetChannel ignores channels outside the universe.
func (s *State) SetChannel(universe, channel uint16, value uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(universe, channel, value)
}

func (s *State) SetChannelValues(values []ChannelValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range values {
		s.set(v.Universe, v.Channel, v.Value)
	}
}

func (s *State) set(universe, channel uint16, value uint8) {
	if channel >= channelsPerUniverse {
		return
	}
	u := s.universes[universe]
	u[channel] = value
	s.universes[universe] = u
}

// Get returns a copy of every universe.
func (s *State) Get() UniverseStateMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(UniverseStateMap, len(s.universes))
	for k, v := range s.universes {
		out[k] = v
	}
	return out
}
