// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package control implements the protocol wrapper: a bidirectional mapping
// between opaque-JSON control frames and a typed command sum, and the
// field-name discipline an external peer depends on.
package control

import (
	"encoding/json"
	"fmt"

	"github.com/holo-host/ipcnet/wire"
)

// Command is the typed command sum a ProtocolWrapper carries. Exactly one
// field is meaningful for a given Method.
type Command string

const (
	CommandRaw                  Command = "raw"
	CommandRequestState         Command = "requestState"
	CommandState                Command = "state"
	CommandRequestDefaultConfig Command = "requestDefaultConfig"
	CommandDefaultConfig        Command = "defaultConfig"
	CommandSetConfig            Command = "setConfig"
	CommandConnect              Command = "connect"
	CommandPeerConnected        Command = "peerConnected"
	CommandSendMessage          Command = "send"
	CommandHandleSend           Command = "handleSend"
)

// StateData is the payload of State: the handshake state string plus
// fields the application echoes but whose semantics beyond that are not
// otherwise established.
type StateData struct {
	State    string   `json:"state"`
	ID       string   `json:"id"`
	Bindings []string `json:"bindings"`
}

// ConfigData carries an opaque, application-defined configuration string.
type ConfigData struct {
	Config string `json:"config"`
}

// ConnectData requests a connection to a peer address.
type ConnectData struct {
	Address string `json:"address"`
}

// PeerConnectData announces a newly connected peer.
type PeerConnectData struct {
	ID string `json:"id"`
}

// SendData is an outbound application message.
type SendData struct {
	MsgID     string          `json:"msgId"`
	ToAddress string          `json:"toAddress"`
	Data      json.RawMessage `json:"data"`
}

// HandleSendData is an inbound application message delivered from a peer.
type HandleSendData struct {
	MsgID       string          `json:"msgId"`
	ToAddress   string          `json:"toAddress"`
	FromAddress string          `json:"fromAddress"`
	Data        json.RawMessage `json:"data"`
}

// ProtocolWrapper is the typed command sum layered over the opaque JSON
// transport. Only the field matching Command is meaningful.
type ProtocolWrapper struct {
	Command       Command
	Raw           wire.Frame
	State         StateData
	DefaultConfig ConfigData
	SetConfig     ConfigData
	Connect       ConnectData
	PeerConnected PeerConnectData
	SendMessage   SendData
	HandleSend    HandleSendData
}

// wireMessage is the on-the-wire JSON shape, carrying the bit-exact field
// names an external peer and external tests depend on: _id, toAddress,
// fromAddress, address, bindings, config.
type wireMessage struct {
	Method      string          `json:"method"`
	State       string          `json:"state,omitempty"`
	ID          string          `json:"id,omitempty"`
	Bindings    []string        `json:"bindings,omitempty"`
	Config      string          `json:"config,omitempty"`
	Address     string          `json:"address,omitempty"`
	MsgID       string          `json:"_id,omitempty"`
	ToAddress   string          `json:"toAddress,omitempty"`
	FromAddress string          `json:"fromAddress,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
}

// From lifts a decoded wire.Frame into a ProtocolWrapper. Non-JSON frames,
// and JSON frames whose method does not match a known command, decode to
// Raw.
func From(frame wire.Frame) ProtocolWrapper {
	if !wire.IsJSON(frame) {
		return ProtocolWrapper{Command: CommandRaw, Raw: frame}
	}
	var msg wireMessage
	if err := json.Unmarshal([]byte(wire.AsJSONString(frame)), &msg); err != nil {
		return ProtocolWrapper{Command: CommandRaw, Raw: frame}
	}
	switch Command(msg.Method) {
	case CommandRequestState:
		return ProtocolWrapper{Command: CommandRequestState}
	case CommandState:
		state := msg.State
		if state == "" {
			state = "undefined"
		}
		id := msg.ID
		if id == "" {
			id = "undefined"
		}
		return ProtocolWrapper{
			Command: CommandState,
			State: StateData{
				State:    state,
				ID:       id,
				Bindings: msg.Bindings,
			},
		}
	case CommandRequestDefaultConfig:
		return ProtocolWrapper{Command: CommandRequestDefaultConfig}
	case CommandDefaultConfig:
		return ProtocolWrapper{Command: CommandDefaultConfig, DefaultConfig: ConfigData{Config: msg.Config}}
	case CommandSetConfig:
		return ProtocolWrapper{Command: CommandSetConfig, SetConfig: ConfigData{Config: msg.Config}}
	case CommandConnect:
		return ProtocolWrapper{Command: CommandConnect, Connect: ConnectData{Address: msg.Address}}
	case CommandPeerConnected:
		return ProtocolWrapper{Command: CommandPeerConnected, PeerConnected: PeerConnectData{ID: msg.ID}}
	case CommandSendMessage:
		return ProtocolWrapper{
			Command: CommandSendMessage,
			SendMessage: SendData{
				MsgID:     msg.MsgID,
				ToAddress: msg.ToAddress,
				Data:      msg.Data,
			},
		}
	case CommandHandleSend:
		return ProtocolWrapper{
			Command: CommandHandleSend,
			HandleSend: HandleSendData{
				MsgID:       msg.MsgID,
				ToAddress:   msg.ToAddress,
				FromAddress: msg.FromAddress,
				Data:        msg.Data,
			},
		}
	default:
		return ProtocolWrapper{Command: CommandRaw, Raw: frame}
	}
}

// Into encodes w as a wire.JSON frame with method equal to its command tag
// and the documented payload fields. Raw wrappers return their original
// frame unchanged.
func Into(w ProtocolWrapper) (wire.Frame, error) {
	if w.Command == CommandRaw {
		if w.Raw == nil {
			return nil, fmt.Errorf("control: Raw wrapper has no underlying frame")
		}
		return w.Raw, nil
	}

	msg := wireMessage{Method: string(w.Command)}
	switch w.Command {
	case CommandRequestState, CommandRequestDefaultConfig:
		// no payload fields
	case CommandState:
		msg.State = w.State.State
		msg.ID = w.State.ID
		msg.Bindings = w.State.Bindings
	case CommandDefaultConfig:
		msg.Config = w.DefaultConfig.Config
	case CommandSetConfig:
		msg.Config = w.SetConfig.Config
	case CommandConnect:
		msg.Address = w.Connect.Address
	case CommandPeerConnected:
		msg.ID = w.PeerConnected.ID
	case CommandSendMessage:
		msg.MsgID = w.SendMessage.MsgID
		msg.ToAddress = w.SendMessage.ToAddress
		msg.Data = w.SendMessage.Data
	case CommandHandleSend:
		msg.MsgID = w.HandleSend.MsgID
		msg.ToAddress = w.HandleSend.ToAddress
		msg.FromAddress = w.HandleSend.FromAddress
		msg.Data = w.HandleSend.Data
	default:
		return nil, fmt.Errorf("control: unknown command %q", w.Command)
	}

	b, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("control: marshal: %w", err)
	}
	return wire.JSON(b), nil
}
