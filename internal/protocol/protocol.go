// Package protocol defines the JSON wire format between clients and
// rooms: inbound Actions and outbound ServerMessages.
package protocol

import (
	"encoding/json"
	"fmt"

	"bingoroom/internal/board"
)

// ActionKind tags an inbound client action.
type ActionKind string

const (
	ActionJoin   ActionKind = "join"
	ActionLeave  ActionKind = "leave"
	ActionMark   ActionKind = "mark"
	ActionUnmark ActionKind = "unmark"
	ActionChat   ActionKind = "chat"
)

// Payload carries the kind-specific fields of an action. Row and Col
// are pointers so a missing coordinate is distinguishable from zero.
type Payload struct {
	Row     *int   `json:"row,omitempty"`
	Col     *int   `json:"col,omitempty"`
	Message string `json:"message,omitempty"`
}

// Action is one inbound client instruction. Every action carries its
// own auth token; there is no per-connection authentication.
type Action struct {
	Kind      ActionKind `json:"action"`
	AuthToken string     `json:"authToken"`
	Payload   *Payload   `json:"payload,omitempty"`
}

// HasCoordinates reports whether both row and col are present.
func (a *Action) HasCoordinates() bool {
	return a.Payload != nil && a.Payload.Row != nil && a.Payload.Col != nil
}

// DecodeAction parses a raw inbound frame.
func DecodeAction(data []byte) (*Action, error) {
	var action Action
	if err := json.Unmarshal(data, &action); err != nil {
		return nil, fmt.Errorf("failed to decode action: %w", err)
	}

	switch action.Kind {
	case ActionJoin, ActionLeave, ActionMark, ActionUnmark, ActionChat:
	default:
		return nil, fmt.Errorf("unknown action kind %q", action.Kind)
	}
	return &action, nil
}

// MessageKind tags an outbound server message.
type MessageKind string

const (
	MessageChat       MessageKind = "chat"
	MessageCellUpdate MessageKind = "cellUpdate"
	MessageSyncBoard  MessageKind = "syncBoard"
)

// BoardState is the full grid as sent in a syncBoard message.
type BoardState struct {
	Board [][]board.Cell `json:"board"`
}

// ServerMessage is one outbound broadcast payload. Exactly the fields
// for its kind are populated.
type ServerMessage struct {
	Kind    MessageKind `json:"action"`
	Message string      `json:"message,omitempty"`
	Row     *int        `json:"row,omitempty"`
	Col     *int        `json:"col,omitempty"`
	Cell    *board.Cell `json:"cell,omitempty"`
	Board   *BoardState `json:"board,omitempty"`
}

// NewChat builds a chat broadcast. Used both for participant chat and
// for system notices like join/leave lines.
func NewChat(message string) *ServerMessage {
	return &ServerMessage{Kind: MessageChat, Message: message}
}

// NewCellUpdate builds a broadcast carrying one cell's post-mutation state.
func NewCellUpdate(row, col int, cell board.Cell) *ServerMessage {
	return &ServerMessage{
		Kind: MessageCellUpdate,
		Row:  &row,
		Col:  &col,
		Cell: &cell,
	}
}

// NewSyncBoard builds a full-board sync for a joining participant.
func NewSyncBoard(cells [][]board.Cell) *ServerMessage {
	return &ServerMessage{
		Kind:  MessageSyncBoard,
		Board: &BoardState{Board: cells},
	}
}

// Encode serializes the message for the wire.
func (m *ServerMessage) Encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s message: %w", m.Kind, err)
	}
	return data, nil
}

// DecodeServerMessage parses an outbound frame; used by tests and by
// feed consumers that inspect relayed room traffic.
func DecodeServerMessage(data []byte) (*ServerMessage, error) {
	var msg ServerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to decode server message: %w", err)
	}
	return &msg, nil
}
