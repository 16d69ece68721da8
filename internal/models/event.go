package models

// InboundEvent is the POST /collect payload sent by the funnel page.
// event_id is required and is the sole dedup key; everything else is
// optional browser-side tracking context.
type InboundEvent struct {
	EventID        string                 `json:"event_id"`
	EventName      string                 `json:"event_name,omitempty"`
	EventSourceURL string                 `json:"event_source_url,omitempty"`
	FBP            string                 `json:"fbp,omitempty"`
	FBC            string                 `json:"fbc,omitempty"`
	ExternalID     string                 `json:"external_id,omitempty"`
	CustomData     map[string]interface{} `json:"custom_data,omitempty"`
}

// CollectResponse is returned by POST /collect.
// Duplicate indicates the event_id was already seen inside the dedup
// window; Status carries the provider's HTTP status when a forward was
// attempted.
type CollectResponse struct {
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Count     int64  `json:"count,omitempty"`
	Status    int    `json:"status,omitempty"`
}

// StatsResponse is returned by GET /stats.
type StatsResponse struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}
