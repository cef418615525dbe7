package app

const (
	// SoloHumans seats one human against three automated seats.
	SoloHumans = 1
	// HotSeatHumans seats four humans sharing one device.
	HotSeatHumans = 4
)
