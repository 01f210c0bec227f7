package models

// InstrumentCode is the upstream identifier of a tracked instrument
// (e.g. "gds_AUTD", "hf_XAU"). It is used both as the value of the
// "codes" query parameter and as the lookup key into a parsed Feed.
type InstrumentCode string

// Instrument pairs a human-readable exchange/metal name with its code.
//
// Instruments come from the instruments file (see config.LoadInstruments)
// and never change after startup.
type Instrument struct {
	Name string         `json:"name" mapstructure:"name" example:"Shanghai"`
	Code InstrumentCode `json:"code" mapstructure:"code" example:"gds_AUTD"`
}
