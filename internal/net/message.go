package net

import (
	"encoding/json"
	"fmt"

	"SyncBoard/internal/state"
)

// Kind discriminates the messages carried over a board connection.
type Kind string

const (
	KindBoardState   Kind = "boardState"
	KindDraw         Kind = "draw"
	KindClear        Kind = "clear"
	KindCurrentUsers Kind = "currentUsers"
	KindReject       Kind = "reject"
	KindAck          Kind = "ack"
)

func (k Kind) String() string { return string(k) }

// Message is the envelope of every frame, in both directions.
//
//	server->client  boardState   data=[]DrawCommand epoch
//	server->client  draw         data=DrawCommand   seq epoch
//	server->client  clear                           epoch
//	server->client  currentUsers data=int
//	server->client  ack          data=DrawCommand   seq epoch
//	server->client  reject                          reason
//	client->server  draw         data=DrawCommand   [epoch]
//	client->server  clear
type Message struct {
	Type   Kind            `json:"type"`
	Data   json.RawMessage `json:"data,omitempty"`
	Epoch  *uint64         `json:"epoch,omitempty"`
	Seq    *uint64         `json:"seq,omitempty"`
	Reason string          `json:"reason,omitempty"`
}

func u64(v uint64) *uint64 { return &v }

func mustMarshal(v any) json.RawMessage {
	buf, err := json.Marshal(v)
	if err != nil {
		// Only plain structs, slices and ints reach here.
		panic(fmt.Sprintf("marshal %T: %v", v, err))
	}
	return buf
}

func BoardStateMessage(snap state.Snapshot) Message {
	cmds := snap.Commands
	if cmds == nil {
		cmds = []state.DrawCommand{}
	}
	return Message{Type: KindBoardState, Data: mustMarshal(cmds), Epoch: u64(snap.Epoch)}
}

func DrawMessage(cmd state.DrawCommand, seq, epoch uint64) Message {
	return Message{Type: KindDraw, Data: mustMarshal(cmd), Seq: u64(seq), Epoch: u64(epoch)}
}

// AckMessage tells a submitter its command was accepted at seq.
func AckMessage(cmd state.DrawCommand, seq, epoch uint64) Message {
	return Message{Type: KindAck, Data: mustMarshal(cmd), Seq: u64(seq), Epoch: u64(epoch)}
}

func ClearMessage(epoch uint64) Message {
	return Message{Type: KindClear, Epoch: u64(epoch)}
}

func UsersMessage(count int) Message {
	return Message{Type: KindCurrentUsers, Data: mustMarshal(count)}
}

func RejectMessage(reason string) Message {
	return Message{Type: KindReject, Reason: reason}
}

// ProposeMessage is what a participant sends to propose a segment drawn
// against the board at epoch.
func ProposeMessage(cmd state.DrawCommand, epoch uint64) Message {
	return Message{Type: KindDraw, Data: mustMarshal(cmd), Epoch: u64(epoch)}
}

func ClearRequest() Message {
	return Message{Type: KindClear}
}

// Commands decodes a boardState payload.
func (m Message) Commands() ([]state.DrawCommand, error) {
	var cmds []state.DrawCommand
	if err := json.Unmarshal(m.Data, &cmds); err != nil {
		return nil, fmt.Errorf("decode %s: %w", m.Type, err)
	}
	return cmds, nil
}

// Command decodes a draw or ack payload already accepted by the authority.
func (m Message) Command() (state.DrawCommand, error) {
	var cmd state.DrawCommand
	if err := json.Unmarshal(m.Data, &cmd); err != nil {
		return cmd, fmt.Errorf("decode %s: %w", m.Type, err)
	}
	return cmd, nil
}

// Users decodes a currentUsers payload.
func (m Message) Users() (int, error) {
	var n int
	if err := json.Unmarshal(m.Data, &n); err != nil {
		return 0, fmt.Errorf("decode %s: %w", m.Type, err)
	}
	return n, nil
}

// EpochOr returns the epoch carried by m, or def if it has none.
func (m Message) EpochOr(def uint64) uint64 {
	if m.Epoch == nil {
		return def
	}
	return *m.Epoch
}
