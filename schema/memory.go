package schema

import (
	"encoding/json"
	"time"
)

// SessionPayload is the analysis summary persisted for one pipeline run.
type SessionPayload struct {
	DateRange  DateRange          `json:"date_range"`
	KPIs       map[string]float64 `json:"kpis"`
	TopTrends  []TrendRecord      `json:"top_trends"`
	Hypotheses []Hypothesis       `json:"key_hypotheses"`
}

// Session is the immutable record of one pipeline run. Sessions are
// append-only and never mutated after creation.
type Session struct {
	ID        string         `json:"session_id"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   SessionPayload `json:"data"`

	// extra holds unknown fields from older or newer memory files so a
	// rewrite never strips them.
	extra map[string]json.RawMessage
}

// Insight is a freeform named observation with provenance.
type Insight struct {
	Category  string    `json:"category"`
	Text      string    `json:"text"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`

	extra map[string]json.RawMessage
}

// sessionKnown mirrors Session's known JSON fields for two-pass decoding.
type sessionKnown struct {
	ID        string         `json:"session_id"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   SessionPayload `json:"data"`
}

// UnmarshalJSON decodes known fields and retains everything else verbatim.
func (s *Session) UnmarshalJSON(data []byte) error {
	var known sessionKnown
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	s.ID = known.ID
	s.Timestamp = known.Timestamp
	s.Payload = known.Payload

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	delete(raw, "session_id")
	delete(raw, "timestamp")
	delete(raw, "data")
	if len(raw) > 0 {
		s.extra = raw
	}
	return nil
}

// MarshalJSON re-emits known fields alongside any retained unknown fields.
func (s Session) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.extra)+3)
	for k, v := range s.extra {
		out[k] = v
	}
	out["session_id"] = s.ID
	out["timestamp"] = s.Timestamp
	out["data"] = s.Payload
	return json.Marshal(out)
}

type insightKnown struct {
	Category  string    `json:"category"`
	Text      string    `json:"text"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}

// UnmarshalJSON decodes known fields and retains everything else verbatim.
func (i *Insight) UnmarshalJSON(data []byte) error {
	var known insightKnown
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	i.Category = known.Category
	i.Text = known.Text
	i.SessionID = known.SessionID
	i.Timestamp = known.Timestamp

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	delete(raw, "category")
	delete(raw, "text")
	delete(raw, "session_id")
	delete(raw, "timestamp")
	if len(raw) > 0 {
		i.extra = raw
	}
	return nil
}

// MarshalJSON re-emits known fields alongside any retained unknown fields.
func (i Insight) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(i.extra)+4)
	for k, v := range i.extra {
		out[k] = v
	}
	out["category"] = i.Category
	out["text"] = i.Text
	out["session_id"] = i.SessionID
	out["timestamp"] = i.Timestamp
	return json.Marshal(out)
}

// MemoryStats summarizes the contents of the memory store.
type MemoryStats struct {
	TotalSessions   int       `json:"total_sessions"`
	TotalInsights   int       `json:"total_insights"`
	KPIDatesTracked int       `json:"kpi_dates_tracked"`
	CreatedAt       time.Time `json:"created_at"`
	LastUpdated     time.Time `json:"last_updated"`
}
