package model

// DefaultSource tags trigger calls made by the probe.
const DefaultSource = "test-script"

// TriggerPayload is the JSON body sent to the update function. Optional
// fields are omitted when empty and forwarded verbatim otherwise.
type TriggerPayload struct {
	LocationID    string `json:"location_id,omitempty"`
	Start         string `json:"start"`
	End           string `json:"end"`
	NOAAStationID string `json:"noaa_station_id,omitempty"`
	Source        string `json:"source,omitempty"`
}

// NewTriggerPayload fills the window bounds and the default source tag.
func NewTriggerPayload(w Window) TriggerPayload {
	return TriggerPayload{
		Start:  w.StartISO(),
		End:    w.EndISO(),
		Source: DefaultSource,
	}
}
