package contract

type EventType string

const (
	EventPing EventType = "ping"
	EventAck  EventType = "ACK"

	EventSessionExpired EventType = "SESSION_EXPIRED"

	EventNoteCreated EventType = "NOTE_CREATED"
	EventNoteDeleted EventType = "NOTE_DELETED"
)

// IncomingSocketMessage is used for messages we receive from the users.
type IncomingSocketMessage struct {
	Type EventType `json:"type"`
}

// OutgoingSocketMessage is what we send to the Client
type OutgoingSocketMessage struct {
	Type EventType `json:"type"`
	Data any       `json:"data,omitempty"`
}
