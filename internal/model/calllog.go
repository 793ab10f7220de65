package model

const (
	CallInbound  = "inbound"
	CallOutbound = "outbound"
)

// CallLog is one IVR call. The console only lists them.
type CallLog struct {
	ID           string `json:"id,omitempty"`
	Caller       string `json:"caller"`
	Receiver     string `json:"receiver,omitempty"`
	Agent        string `json:"agent,omitempty"`
	Direction    string `json:"direction,omitempty"`
	Status       string `json:"status,omitempty"`
	Duration     int    `json:"duration,omitempty"`
	RecordingURL string `json:"recordingUrl,omitempty"`
	Timestamps
}

func (c CallLog) RecordID() string { return c.ID }

func (c CallLog) WithDefaults() CallLog {
	c.Direction = orDefault(c.Direction, CallInbound)
	c.Status = orDefault(c.Status, "completed")
	return c
}
