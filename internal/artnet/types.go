package artnet

// ChannelValue defines an ArtNet Universe and the value of the DMX channel.
type ChannelValue struct {
	Universe uint16 // Universe: старший байт - Net, младший байт - SubUni.
	Channel  uint16 // Channel: номер байта (канал).
	Value    uint8  // Value: значение для канала.
}

// channelsPerUniverse is the size of a DMX universe.
const channelsPerUniverse = 512

// Universe wraps the 512 byte array for convenience.
type Universe [channelsPerUniverse]byte

// UniverseStateMap holds the state of all used universes.
type UniverseStateMap map[uint16]Universe
