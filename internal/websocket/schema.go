package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError    Event = "error"
	EventPlanning Event = "planning"
	EventPong     Event = "pong"
)

// PlanningEventResponse relays a committed planning mutation to subscribers.
type PlanningEventResponse struct {
	Event     Event  `json:"event"`
	Type      string `json:"type"` // "assigned", "cancelled", "repaired"
	TeacherID int    `json:"teacher_id"`
	SessionID int    `json:"session_id"`
	At        string `json:"at"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
