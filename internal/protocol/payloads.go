package protocol

// --- Server replies ---

// Pong answers a Ping. Sent privately.
type Pong struct {
	Type MessageType `json:"type"`
}

// NewPong builds a Pong reply.
func NewPong() Pong {
	return Pong{Type: TypePong}
}

// GameRef acknowledges game entry: Created for the first seat, Joined for the
// second. PlayerID is the 1-based seat on the wire.
type GameRef struct {
	Type     MessageType `json:"type"`
	UUID     string      `json:"uuid"`
	PlayerID int         `json:"playerId"`
}

// GameUnavailable reports a failed explicit join: NotFound for an unknown
// uuid, Full for a game that already has both seats taken.
type GameUnavailable struct {
	Type MessageType `json:"type"`
	UUID string      `json:"uuid"`
}

// ActionRejected is the private reply to an out-of-turn or malformed action.
type ActionRejected struct {
	Result   bool        `json:"result"`
	Type     MessageType `json:"type"`
	Action   string      `json:"action"`
	PlayerID int         `json:"playerId"`
}

// NewActionRejected builds the rejection reply for an action attempt.
func NewActionRejected(action string, playerID int) ActionRejected {
	return ActionRejected{Result: false, Type: TypeAction, Action: action, PlayerID: playerID}
}

// Sync carries the full match snapshot. Broadcast to every socket bound to
// the game after any accepted action or round transition.
type Sync struct {
	Type  MessageType `json:"type"`
	State *GameState  `json:"state"`
}

// NewSync wraps a snapshot for broadcast.
func NewSync(state *GameState) Sync {
	return Sync{Type: TypeSync, State: state}
}

// --- Snapshot DTOs ---

// GameState is the serialized view of one match. ActivePlayerID is 1-based;
// the dealer is id 0.
type GameState struct {
	ActivePlayerID int           `json:"activePlayerId"`
	Round          int           `json:"round"`
	Players        []PlayerState `json:"players"`
	Dealer         PlayerState   `json:"dealer"`
	IsRoundEnding  bool          `json:"isRoundEnding"`
}

// PlayerState is the serialized view of one participant. For the dealer,
// Hand is the censored view while the second card is concealed; Total is
// always the true score.
type PlayerState struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Hand       []int  `json:"hand"`
	Total      int    `json:"total"`
	HasWon     bool   `json:"hasWon"`
	HasBusted  bool   `json:"hasBusted"`
	IsStanding bool   `json:"isStanding"`
	GamesWon   int    `json:"gamesWon"`
	GamesLost  int    `json:"gamesLost"`
}
