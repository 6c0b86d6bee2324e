package protocol

import (
	"encoding/json"
	"fmt"
)

// MessageType discriminates the JSON frames on the wire.
type MessageType string

// Client → server message types.
const (
	TypePing   MessageType = "Ping"   // keepalive probe
	TypeFind   MessageType = "Find"   // matchmaking join-or-create
	TypeCreate MessageType = "Create" // always create a new game
	TypeJoin   MessageType = "Join"   // explicit join by game uuid
	TypeAction MessageType = "Action" // turn action (Hit/Stand)
)

// Server → client message types.
const (
	TypePong     MessageType = "Pong"
	TypeCreated  MessageType = "Created"
	TypeJoined   MessageType = "Joined"
	TypeNotFound MessageType = "NotFound"
	TypeFull     MessageType = "Full"
	TypeSync     MessageType = "Sync"
)

// ClientMessage is the decoded form of any client frame. All frames are flat
// objects; fields not used by a given type are left at their zero value.
type ClientMessage struct {
	Type     MessageType `json:"type"`
	Name     string      `json:"name,omitempty"`
	UUID     string      `json:"uuid,omitempty"`
	PlayerID int         `json:"playerId,omitempty"`
	Action   string      `json:"action,omitempty"`
}

// Decode parses a raw client frame.
func Decode(data []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("decode message: missing type discriminator")
	}
	return &msg, nil
}
