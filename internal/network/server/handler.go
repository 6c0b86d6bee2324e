package server

import (
	"errors"
	"log"

	"github.com/seth-ellison/express-blackjack/internal/apperrors"
	"github.com/seth-ellison/express-blackjack/internal/game/table"
	"github.com/seth-ellison/express-blackjack/internal/protocol"
)

// Handler routes decoded client frames to the registry. Dispatch is an
// exhaustive switch over the typed message constants; unknown frames are
// logged and dropped.
type Handler struct {
	registry *Registry
}

// NewHandler creates a message handler over a registry.
func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

// Handle processes one client frame.
func (h *Handler) Handle(conn table.Conn, msg *protocol.ClientMessage) {
	switch msg.Type {
	case protocol.TypePing:
		_ = conn.Send(protocol.NewPong())
	case protocol.TypeFind:
		h.handleFind(conn, msg)
	case protocol.TypeCreate:
		h.handleCreate(conn, msg)
	case protocol.TypeJoin:
		h.handleJoin(conn, msg)
	case protocol.TypeAction:
		h.handleAction(conn, msg)
	default:
		log.Printf("unknown message type %q from %s", msg.Type, conn.ID())
	}
}

func (h *Handler) handleFind(conn table.Conn, msg *protocol.ClientMessage) {
	gameID, playerID, created := h.registry.FindOrJoin(msg.Name, conn)

	typ := protocol.TypeJoined
	if created {
		typ = protocol.TypeCreated
	}
	_ = conn.Send(protocol.GameRef{Type: typ, UUID: gameID, PlayerID: playerID})

	// The second seat filling starts the opening round; everyone syncs.
	if !created {
		h.registry.SyncGame(gameID)
	}
}

func (h *Handler) handleCreate(conn table.Conn, msg *protocol.ClientMessage) {
	gameID, playerID := h.registry.CreateGame(msg.Name, conn)
	_ = conn.Send(protocol.GameRef{Type: protocol.TypeCreated, UUID: gameID, PlayerID: playerID})
}

func (h *Handler) handleJoin(conn table.Conn, msg *protocol.ClientMessage) {
	playerID, err := h.registry.JoinByID(msg.UUID, msg.Name, conn)
	switch {
	case errors.Is(err, apperrors.ErrGameNotFound):
		_ = conn.Send(protocol.GameUnavailable{Type: protocol.TypeNotFound, UUID: msg.UUID})
		return
	case errors.Is(err, apperrors.ErrGameFull):
		_ = conn.Send(protocol.GameUnavailable{Type: protocol.TypeFull, UUID: msg.UUID})
		return
	}

	_ = conn.Send(protocol.GameRef{Type: protocol.TypeJoined, UUID: msg.UUID, PlayerID: playerID})
	h.registry.SyncGame(msg.UUID)
}

func (h *Handler) handleAction(conn table.Conn, msg *protocol.ClientMessage) {
	action, ok := table.ParseAction(msg.Action)
	if !ok {
		_ = conn.Send(protocol.NewActionRejected(msg.Action, msg.PlayerID))
		return
	}

	accepted, err := h.registry.Dispatch(msg.UUID, msg.PlayerID, action, conn)
	if errors.Is(err, apperrors.ErrGameNotFound) {
		_ = conn.Send(protocol.GameUnavailable{Type: protocol.TypeNotFound, UUID: msg.UUID})
		return
	}
	if !accepted {
		log.Printf("action %s rejected for player %d in game %s", msg.Action, msg.PlayerID, msg.UUID)
		_ = conn.Send(protocol.NewActionRejected(msg.Action, msg.PlayerID))
	}
}
