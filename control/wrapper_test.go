// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package control

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/holo-host/ipcnet/wire"
)

func roundTrip(t *testing.T, w ProtocolWrapper) ProtocolWrapper {
	t.Helper()
	frame, err := Into(w)
	if err != nil {
		t.Fatalf("into: %s", err)
	}
	return From(frame)
}

func TestWrapperHandshakeRoundTrip(t *testing.T) {
	w := ProtocolWrapper{Command: CommandRequestState}
	frame, err := Into(w)
	if err != nil {
		t.Fatalf("into: %s", err)
	}
	if !wire.IsJSON(frame) {
		t.Fatal("expected a JSON frame")
	}
	if got, want := wire.AsJSONString(frame), `{"method":"requestState"}`; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
	if got := From(frame); got.Command != CommandRequestState {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestRequestDefaultConfigRoundTrip(t *testing.T) {
	got := roundTrip(t, ProtocolWrapper{Command: CommandRequestDefaultConfig})
	if got.Command != CommandRequestDefaultConfig {
		t.Fatalf("unexpected command %q", got.Command)
	}
}

func TestStateRoundTrip(t *testing.T) {
	w := ProtocolWrapper{Command: CommandState, State: StateData{
		State:    "need_config",
		ID:       "node-1",
		Bindings: []string{"a", "b"},
	}}
	got := roundTrip(t, w)
	if got.Command != CommandState || !reflect.DeepEqual(got.State, w.State) {
		t.Fatalf("got %+v, want %+v", got, w)
	}
}

func TestStateMissingFieldsDefaultToUndefined(t *testing.T) {
	frame := wire.FromString(`{"method":"state"}`)
	got := From(frame)
	if got.Command != CommandState {
		t.Fatalf("expected State, got %q", got.Command)
	}
	if got.State.State != "undefined" || got.State.ID != "undefined" {
		t.Fatalf("expected undefined defaults, got %+v", got.State)
	}
	if len(got.State.Bindings) != 0 {
		t.Fatalf("expected empty bindings, got %v", got.State.Bindings)
	}
}

func TestDefaultConfigRoundTrip(t *testing.T) {
	w := ProtocolWrapper{Command: CommandDefaultConfig, DefaultConfig: ConfigData{Config: "cfg-a"}}
	got := roundTrip(t, w)
	if got.DefaultConfig != w.DefaultConfig {
		t.Fatalf("got %+v, want %+v", got.DefaultConfig, w.DefaultConfig)
	}
}

func TestSetConfigRoundTrip(t *testing.T) {
	w := ProtocolWrapper{Command: CommandSetConfig, SetConfig: ConfigData{Config: "X"}}
	got := roundTrip(t, w)
	if got.SetConfig != w.SetConfig {
		t.Fatalf("got %+v, want %+v", got.SetConfig, w.SetConfig)
	}
}

func TestConnectRoundTrip(t *testing.T) {
	w := ProtocolWrapper{Command: CommandConnect, Connect: ConnectData{Address: "holo://peer"}}
	got := roundTrip(t, w)
	if got.Connect != w.Connect {
		t.Fatalf("got %+v, want %+v", got.Connect, w.Connect)
	}
}

func TestPeerConnectedRoundTrip(t *testing.T) {
	w := ProtocolWrapper{Command: CommandPeerConnected, PeerConnected: PeerConnectData{ID: "peer-9"}}
	got := roundTrip(t, w)
	if got.PeerConnected != w.PeerConnected {
		t.Fatalf("got %+v, want %+v", got.PeerConnected, w.PeerConnected)
	}
}

func TestSendMessageRoundTrip(t *testing.T) {
	w := ProtocolWrapper{Command: CommandSendMessage, SendMessage: SendData{
		MsgID:     "msg-1",
		ToAddress: "addr-b",
		Data:      json.RawMessage(`{"k":"v"}`),
	}}
	frame, err := Into(w)
	if err != nil {
		t.Fatalf("into: %s", err)
	}
	if got := wire.AsJSONString(frame); !jsonHasField(t, got, "_id", "msg-1") {
		t.Fatalf("expected bit-exact _id field in %s", got)
	}
	got := From(frame)
	if got.Command != CommandSendMessage {
		t.Fatalf("unexpected command %q", got.Command)
	}
	if got.SendMessage.MsgID != w.SendMessage.MsgID || got.SendMessage.ToAddress != w.SendMessage.ToAddress {
		t.Fatalf("got %+v, want %+v", got.SendMessage, w.SendMessage)
	}
}

func TestHandleSendRoundTrip(t *testing.T) {
	w := ProtocolWrapper{Command: CommandHandleSend, HandleSend: HandleSendData{
		MsgID:       "msg-2",
		ToAddress:   "addr-b",
		FromAddress: "addr-a",
		Data:        json.RawMessage(`"hello"`),
	}}
	got := roundTrip(t, w)
	if got.Command != CommandHandleSend {
		t.Fatalf("unexpected command %q", got.Command)
	}
	if got.HandleSend.MsgID != w.HandleSend.MsgID ||
		got.HandleSend.ToAddress != w.HandleSend.ToAddress ||
		got.HandleSend.FromAddress != w.HandleSend.FromAddress {
		t.Fatalf("got %+v, want %+v", got.HandleSend, w.HandleSend)
	}
}

func TestUnknownMethodDegradesToRaw(t *testing.T) {
	frame := wire.FromString(`{"method":"somethingUnexpected"}`)
	got := From(frame)
	if got.Command != CommandRaw {
		t.Fatalf("expected Raw, got %q", got.Command)
	}
	if !wire.IsJSON(got.Raw) || wire.AsJSONString(got.Raw) != wire.AsJSONString(frame) {
		t.Fatal("expected the original frame to be preserved as Raw")
	}
}

func TestNonJSONFrameDegradesToRaw(t *testing.T) {
	got := From(wire.Ping{Sent: 1})
	if got.Command != CommandRaw {
		t.Fatalf("expected Raw, got %q", got.Command)
	}
}

func TestFieldNamesAreBitExact(t *testing.T) {
	w := ProtocolWrapper{Command: CommandState, State: StateData{State: "ready", ID: "n1", Bindings: []string{"x"}}}
	frame, err := Into(w)
	if err != nil {
		t.Fatalf("into: %s", err)
	}
	raw := wire.AsJSONString(frame)
	for _, field := range []string{`"state"`, `"id"`, `"bindings"`} {
		if !jsonContains(raw, field) {
			t.Fatalf("expected field %s in %s", field, raw)
		}
	}
}

func jsonHasField(t *testing.T, raw, field, value string) bool {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("unmarshal: %s", err)
	}
	v, ok := m[field]
	return ok && v == value
}

func jsonContains(raw, substr string) bool {
	for i := 0; i+len(substr) <= len(raw); i++ {
		if raw[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
