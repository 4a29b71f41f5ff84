package session

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/painterhq/painter/internal/camera"
	"github.com/painterhq/painter/internal/engine"
	"github.com/painterhq/painter/internal/geom"
	"github.com/painterhq/painter/internal/render"
	"github.com/painterhq/painter/internal/store"
	"github.com/painterhq/painter/internal/typeid"
)

type testClient struct {
	t    *testing.T
	ctx  context.Context
	conn *websocket.Conn
	seq  int64
}

func startServer(t *testing.T, st store.Store) (*Hub, *testClient) {
	t.Helper()
	opts := engine.DefaultOptions()
	opts.Viewport = camera.NewViewport(200, 100)

	hub := NewHub(nil)
	h := NewHandler(hub, Options{Engine: opts, Store: st, DataDir: t.TempDir(), ThumbnailSize: 32}, nil)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.CloseNow() })

	c := &testClient{t: t, ctx: ctx, conn: conn}
	var w WelcomePayload
	if err := json.Unmarshal(c.expect(TypeWelcome).Payload, &w); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(w.SessionID, "sess_") {
		t.Fatalf("session id = %q", w.SessionID)
	}
	return hub, c
}

func (c *testClient) send(msgType string, payload any) {
	c.t.Helper()
	c.seq++
	msg := Message{Type: msgType, Seq: c.seq}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			c.t.Fatal(err)
		}
		msg.Payload = raw
	}
	data, _ := json.Marshal(msg)
	if err := c.conn.Write(c.ctx, websocket.MessageText, data); err != nil {
		c.t.Fatalf("write %s: %v", msgType, err)
	}
}

// expect reads until a message of msgType arrives and returns it.
func (c *testClient) expect(msgType string) Message {
	c.t.Helper()
	for {
		_, data, err := c.conn.Read(c.ctx)
		if err != nil {
			c.t.Fatalf("waiting for %s: %v", msgType, err)
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.t.Fatalf("decode: %v", err)
		}
		if msg.Type == msgType {
			return msg
		}
	}
}

// state reads until a state message satisfies ok.
func (c *testClient) state(ok func(engine.State) bool) engine.State {
	c.t.Helper()
	for {
		var st engine.State
		if err := json.Unmarshal(c.expect(TypeState).Payload, &st); err != nil {
			c.t.Fatal(err)
		}
		if ok(st) {
			return st
		}
	}
}

func (c *testClient) stroke(pts ...[2]float64) {
	c.t.Helper()
	c.send(TypePointerDown, PointerPayload{X: pts[0][0], Y: pts[0][1], Button: "left"})
	for _, p := range pts[1:] {
		c.send(TypePointerMove, PointerPayload{X: p[0], Y: p[1], Button: "left"})
	}
	last := pts[len(pts)-1]
	c.send(TypePointerUp, PointerPayload{X: last[0], Y: last[1], Button: "left"})
}

func TestSessionDraw(t *testing.T) {
	_, c := startServer(t, nil)

	c.stroke([2]float64{10, 10}, [2]float64{60, 20})
	st := c.state(func(s engine.State) bool { return s.Shapes == 1 })
	if !st.Dirty || !st.CanUndo || st.Tool != "brush" {
		t.Errorf("state = %+v", st)
	}

	var f render.Frame
	if err := json.Unmarshal(c.expect(TypeFrame).Payload, &f); err != nil {
		t.Fatal(err)
	}
	if len(f.Calls) != 1 || f.Calls[0].Primitive != render.LineStrip {
		t.Errorf("frame calls = %+v", f.Calls)
	}

	c.send(TypeUndo, nil)
	c.state(func(s engine.State) bool { return s.Shapes == 0 && s.CanRedo })
}

func TestSessionCommands(t *testing.T) {
	_, c := startServer(t, nil)

	c.send(TypeToolSelect, ToolSelectPayload{Tool: "insert:polygon"})
	c.state(func(s engine.State) bool { return s.Tool == "insert:polygon" })

	c.send(TypeColorSelect, ColorSelectPayload{Color: geom.Blue})
	c.state(func(s engine.State) bool { return s.Color == geom.Blue })

	c.send(TypeModeSwitch, ModePayload{Mode: geom.Mode3D})
	c.state(func(s engine.State) bool { return s.Mode == geom.Mode3D })

	c.send(TypeCameraOrbit, OrbitPayload{Yaw: 30})
	c.send(TypeCameraZoom, ZoomPayload{Factor: 2})
	c.send(TypeViewportResize, ResizePayload{Width: 320, Height: 240})
	var f render.Frame
	for f.State.Viewport.Width != 320 {
		if err := json.Unmarshal(c.expect(TypeFrame).Payload, &f); err != nil {
			t.Fatal(err)
		}
	}
	if f.State.Mode != geom.Mode3D {
		t.Errorf("frame mode = %s", f.State.Mode)
	}
}

func TestSessionShapeEdits(t *testing.T) {
	_, c := startServer(t, nil)
	c.stroke([2]float64{10, 10}, [2]float64{60, 10})

	// frame reads until a frame with one draw call satisfies ok.
	frame := func(ok func(render.DrawCall) bool) render.DrawCall {
		t.Helper()
		for {
			var f render.Frame
			if err := json.Unmarshal(c.expect(TypeFrame).Payload, &f); err != nil {
				t.Fatal(err)
			}
			if len(f.Calls) == 1 && ok(f.Calls[0]) {
				return f.Calls[0]
			}
		}
	}
	id := frame(func(render.DrawCall) bool { return true }).ShapeID

	c.send(TypeShapeRecolor, RecolorPayload{ID: id, Color: geom.Red})
	frame(func(d render.DrawCall) bool { return d.Color == geom.Red })

	c.send(TypeShapeTransform, TransformPayload{ID: id, X: 10, Y: 5})
	moved := frame(func(d render.DrawCall) bool { return d.Model[12] != 0 })
	if moved.Model[12] != 10 || moved.Model[13] != 5 {
		t.Errorf("model translation = (%v, %v), want (10, 5)", moved.Model[12], moved.Model[13])
	}

	c.send(TypeUndo, nil)
	frame(func(d render.DrawCall) bool { return d.Model[12] == 0 && d.Color == geom.Red })
}

func TestTransformPayloadDefaultsScale(t *testing.T) {
	var p TransformPayload
	if err := json.Unmarshal([]byte(`{"id":"shape_a","rotation":90}`), &p); err != nil {
		t.Fatal(err)
	}
	pl := p.Placement()
	if pl.ScaleX != 1 || pl.ScaleY != 1 || pl.Rotation != 90 {
		t.Errorf("placement = %+v", pl)
	}
	p.Scale = 3
	if pl := p.Placement(); pl.ScaleX != 3 || pl.ScaleY != 3 {
		t.Errorf("scaled placement = %+v", pl)
	}
}

func TestSessionErrors(t *testing.T) {
	tests := []struct {
		name    string
		msgType string
		payload any
	}{
		{"unknown type", "scene.explode", nil},
		{"bad tool", TypeToolSelect, ToolSelectPayload{Tool: "chisel"}},
		{"bad mode", TypeModeSwitch, ModePayload{Mode: "4d"}},
		{"bad button", TypePointerDown, PointerPayload{Button: "thumb"}},
		{"bad payload", TypeCameraPan, "not an object"},
		{"bad viewport", TypeViewportResize, ResizePayload{Width: -1, Height: 10}},
		{"save without target", TypeSceneSave, SavePayload{}},
		{"store not configured", TypeSceneLoad, LoadPayload{DocID: "doc_x"}},
		{"transform missing shape", TypeShapeTransform, TransformPayload{ID: "shape_gone", X: 4}},
		{"recolor missing shape", TypeShapeRecolor, RecolorPayload{ID: "shape_gone", Color: geom.Red}},
	}
	_, c := startServer(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.send(tt.msgType, tt.payload)
			var ep ErrorPayload
			if err := json.Unmarshal(c.expect(TypeError).Payload, &ep); err != nil {
				t.Fatal(err)
			}
			if ep.Request != tt.msgType || ep.Seq != c.seq || ep.Reason == "" {
				t.Errorf("error payload = %+v", ep)
			}
		})
	}
}

func TestSessionStoreRoundTrip(t *testing.T) {
	st := store.NewMemory()
	_, c := startServer(t, st)
	doc := typeid.NewDocumentID()

	c.stroke([2]float64{10, 10}, [2]float64{60, 20})
	c.state(func(s engine.State) bool { return s.Shapes == 1 })

	c.send(TypeSceneSave, SavePayload{DocID: "doc_a"})
	var ep ErrorPayload
	if err := json.Unmarshal(c.expect(TypeError).Payload, &ep); err != nil {
		t.Fatal(err)
	}
	if ep.Request != TypeSceneSave {
		t.Errorf("malformed doc id: error = %+v", ep)
	}

	c.send(TypeSceneSave, SavePayload{DocID: doc})
	var saved SavedPayload
	if err := json.Unmarshal(c.expect(TypeSaved).Payload, &saved); err != nil {
		t.Fatal(err)
	}
	if saved.DocID != doc || saved.Version != 1 {
		t.Errorf("saved = %+v", saved)
	}
	c.state(func(s engine.State) bool { return !s.Dirty })

	snap, err := st.Latest(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Thumbnail) == 0 {
		t.Error("snapshot has no thumbnail")
	}

	c.send(TypeSceneNew, ModePayload{Mode: geom.Mode3D})
	c.state(func(s engine.State) bool { return s.Shapes == 0 && s.Mode == geom.Mode3D })

	c.send(TypeSceneLoad, LoadPayload{DocID: doc})
	c.expect(TypeLoaded)
	got := c.state(func(s engine.State) bool { return s.Shapes == 1 })
	if got.Mode != geom.Mode2D || got.Dirty || got.CanUndo {
		t.Errorf("state after load = %+v", got)
	}
}

func TestSessionFileSave(t *testing.T) {
	_, c := startServer(t, nil)
	c.stroke([2]float64{10, 10}, [2]float64{60, 20})

	// Directory components are stripped from client names.
	c.send(TypeSceneSave, SavePayload{Name: "../../escape"})
	var saved SavedPayload
	if err := json.Unmarshal(c.expect(TypeSaved).Payload, &saved); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(saved.Path, "..") || !strings.HasSuffix(saved.Path, "escape.painter") {
		t.Errorf("saved path = %q", saved.Path)
	}
	if _, err := os.Stat(saved.Path); err != nil {
		t.Errorf("saved file: %v", err)
	}

	c.send(TypeSceneLoad, LoadPayload{Name: "missing"})
	c.expect(TypeError)
}

func TestHubStop(t *testing.T) {
	hub, c := startServer(t, nil)

	deadline := time.Now().Add(5 * time.Second)
	for hub.Len() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("session never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	hub.Stop(ctx)
	if hub.Len() != 0 {
		t.Errorf("sessions after Stop = %d", hub.Len())
	}

	for {
		if _, _, err := c.conn.Read(c.ctx); err != nil {
			break
		}
	}
}
