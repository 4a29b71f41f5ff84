// Package session serves one live editing session per websocket
// connection. Each session owns a private engine; nothing is shared
// between connections.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/coder/websocket"

	"github.com/painterhq/painter/internal/document"
	"github.com/painterhq/painter/internal/engine"
	"github.com/painterhq/painter/internal/render"
	"github.com/painterhq/painter/internal/scene"
	"github.com/painterhq/painter/internal/store"
	"github.com/painterhq/painter/internal/tool"
	"github.com/painterhq/painter/internal/typeid"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 64 * 1024
)

// Options configure every session served by a Handler.
type Options struct {
	Engine        engine.Options
	Store         store.Store
	DataDir       string
	ThumbnailSize int
	Logger        *slog.Logger
}

type Session struct {
	ID string

	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	inbox  chan Message
	done   chan func()
	engine *engine.Engine
	opts   Options
	logger *slog.Logger
}

func New(hub *Hub, conn *websocket.Conn, id string, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("session", id)
	eopts := opts.Engine
	eopts.Logger = logger

	return &Session{
		ID:     id,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		inbox:  make(chan Message, 64),
		done:   make(chan func(), 8),
		engine: engine.New(eopts),
		opts:   opts,
		logger: logger,
	}
}

// Serve runs the session until the connection closes or ctx ends.
func (s *Session) Serve(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.hub.add(s)
	defer s.hub.remove(s)

	go s.WritePump(ctx)
	go s.Loop(ctx)
	s.ReadPump(ctx)
}

func (s *Session) ReadPump(ctx context.Context) {
	defer s.conn.Close(websocket.StatusNormalClosure, "")

	s.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			s.logger.Debug("read error", "error", err)
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Warn("invalid message", "error", err)
			s.sendError("", 0, err)
			continue
		}

		select {
		case s.inbox <- msg:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message := <-s.send:
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := s.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				s.logger.Debug("write error", "error", err)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := s.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// Loop is the only goroutine that touches the engine. Offloaded file and
// store work hands its result back through s.done.
func (s *Session) Loop(ctx context.Context) {
	s.Send(TypeWelcome, WelcomePayload{SessionID: s.ID, State: s.engine.State()})
	s.publish()

	for {
		select {
		case msg := <-s.inbox:
			if err := s.handle(ctx, msg); err != nil {
				s.logger.Debug("request failed", "type", msg.Type, "error", err)
				s.sendError(msg.Type, msg.Seq, err)
			}
			s.publish()

		case fn := <-s.done:
			fn()
			s.publish()

		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) handle(ctx context.Context, msg Message) error {
	e := s.engine
	switch msg.Type {
	case TypePointerDown, TypePointerMove, TypePointerUp:
		p, err := decode[PointerPayload](msg.Payload)
		if err != nil {
			return err
		}
		ev, err := p.Event(msg.Type)
		if err != nil {
			return err
		}
		_, err = e.HandleEvent(ev)
		return err

	case TypeWheel:
		p, err := decode[WheelPayload](msg.Payload)
		if err != nil {
			return err
		}
		var mods tool.Modifiers
		if p.Ctrl {
			mods = tool.ModCtrl
		}
		e.Wheel(p.Delta, mods)

	case TypeToolSelect:
		p, err := decode[ToolSelectPayload](msg.Payload)
		if err != nil {
			return err
		}
		t, err := tool.Parse(p.Tool)
		if err != nil {
			return err
		}
		e.SelectTool(t)

	case TypeColorSelect:
		p, err := decode[ColorSelectPayload](msg.Payload)
		if err != nil {
			return err
		}
		e.SelectColor(p.Color)

	case TypeModeSwitch:
		p, err := decode[ModePayload](msg.Payload)
		if err != nil {
			return err
		}
		return e.SwitchMode(p.Mode)

	case TypeCameraOrbit:
		p, err := decode[OrbitPayload](msg.Payload)
		if err != nil {
			return err
		}
		e.Orbit(p.Yaw, p.Pitch, p.Roll)

	case TypeCameraPan:
		p, err := decode[PanPayload](msg.Payload)
		if err != nil {
			return err
		}
		e.Pan(p.DX, p.DY)

	case TypeCameraZoom:
		p, err := decode[ZoomPayload](msg.Payload)
		if err != nil {
			return err
		}
		e.Zoom(p.Factor)

	case TypeCameraReset:
		e.ResetCamera()

	case TypeUndo:
		e.Undo()

	case TypeRedo:
		e.Redo()

	case TypeSceneNew:
		p, err := decode[ModePayload](msg.Payload)
		if err != nil {
			return err
		}
		if p.Mode == "" {
			p.Mode = e.Mode()
		}
		return e.NewDocument(p.Mode)

	case TypeSceneClear:
		e.Clear()

	case TypeSceneSave:
		p, err := decode[SavePayload](msg.Payload)
		if err != nil {
			return err
		}
		return s.save(ctx, msg.Seq, p)

	case TypeSceneLoad:
		p, err := decode[LoadPayload](msg.Payload)
		if err != nil {
			return err
		}
		return s.load(ctx, msg.Seq, p)

	case TypeViewportResize:
		p, err := decode[ResizePayload](msg.Payload)
		if err != nil {
			return err
		}
		return e.Resize(p.Width, p.Height)

	case TypeShapeTransform:
		p, err := decode[TransformPayload](msg.Payload)
		if err != nil {
			return err
		}
		return e.TransformShape(p.ID, p.Placement())

	case TypeShapeRecolor:
		p, err := decode[RecolorPayload](msg.Payload)
		if err != nil {
			return err
		}
		return e.RecolorShape(p.ID, p.Color)

	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil
}

// save snapshots the scene and writes it off the loop.
func (s *Session) save(ctx context.Context, seq int64, p SavePayload) error {
	if p.Name == "" && p.DocID == "" {
		return errors.New("save needs a name or a docId")
	}
	if p.DocID != "" && s.opts.Store == nil {
		return errors.New("no snapshot store configured")
	}
	if p.DocID != "" {
		if err := typeid.Validate(p.DocID, typeid.PrefixDocument); err != nil {
			return err
		}
	}
	snap, rev := s.engine.Snapshot()

	go func() {
		var out SavedPayload
		err := func() error {
			if p.Name != "" {
				written, err := document.Save(ctx, s.dataPath(p.Name), snap)
				if err != nil {
					return err
				}
				out.Path = written
			}
			if p.DocID != "" {
				v, err := s.putSnapshot(ctx, p.DocID, snap)
				if err != nil {
					return err
				}
				out.DocID, out.Version = p.DocID, v
			}
			return nil
		}()

		s.post(ctx, func() {
			if err != nil {
				s.logger.Error("save scene", "error", err, "name", p.Name, "doc", p.DocID)
				s.sendError(TypeSceneSave, seq, err)
				return
			}
			s.engine.MarkSaved(rev, out.Path)
			s.Send(TypeSaved, out)
		})
	}()
	return nil
}

func (s *Session) putSnapshot(ctx context.Context, docID string, snap *scene.Scene) (int, error) {
	data, err := document.Encode(snap, docID, time.Now())
	if err != nil {
		return 0, err
	}
	size := s.opts.ThumbnailSize
	if size <= 0 {
		size = store.ThumbnailSize
	}
	thumb, err := store.Thumbnail(snap, size)
	if err != nil {
		return 0, err
	}
	return s.opts.Store.Put(ctx, docID, data, thumb)
}

// load reads a scene off the loop and swaps it in when it is complete. A
// failed load leaves the live scene alone.
func (s *Session) load(ctx context.Context, seq int64, p LoadPayload) error {
	if p.Name == "" && p.DocID == "" {
		return errors.New("load needs a name or a docId")
	}
	if p.DocID != "" && s.opts.Store == nil {
		return errors.New("no snapshot store configured")
	}
	if p.DocID != "" {
		if err := typeid.Validate(p.DocID, typeid.PrefixDocument); err != nil {
			return err
		}
	}

	go func() {
		var (
			sc  *scene.Scene
			out LoadedPayload
			err error
		)
		if p.DocID != "" {
			var snap store.Snapshot
			if p.Version > 0 {
				snap, err = s.opts.Store.Get(ctx, p.DocID, p.Version)
			} else {
				snap, err = s.opts.Store.Latest(ctx, p.DocID)
			}
			if err == nil {
				sc, err = document.Decode(snap.Document)
				out.DocID, out.Version = snap.DocID, snap.Version
			}
		} else {
			out.Path = s.dataPath(p.Name)
			sc, err = document.Load(ctx, out.Path)
		}

		s.post(ctx, func() {
			if err != nil {
				s.logger.Error("load scene", "error", err, "name", p.Name, "doc", p.DocID)
				s.sendError(TypeSceneLoad, seq, err)
				return
			}
			s.engine.Replace(sc, out.Path)
			s.Send(TypeLoaded, out)
		})
	}()
	return nil
}

// dataPath confines a client supplied file name to the data directory.
func (s *Session) dataPath(name string) string {
	return document.WithExtension(filepath.Join(s.opts.DataDir, filepath.Base(name)))
}

func (s *Session) post(ctx context.Context, fn func()) {
	select {
	case s.done <- fn:
	case <-ctx.Done():
	}
}

// publish sends the engine state and the current frame.
func (s *Session) publish() {
	s.Send(TypeState, s.engine.State())
	frame, err := render.FrameToJSON(s.engine.Frame())
	if err != nil {
		s.logger.Error("marshal frame", "error", err)
		return
	}
	s.sendRaw(TypeFrame, frame)
}

func (s *Session) Send(msgType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("marshal payload", "error", err, "type", msgType)
		return
	}
	s.sendRaw(msgType, data)
}

func (s *Session) sendRaw(msgType string, payload json.RawMessage) {
	data, err := json.Marshal(&Message{Type: msgType, Payload: payload})
	if err != nil {
		s.logger.Error("marshal message", "error", err)
		return
	}

	select {
	case s.send <- data:
	default:
		s.logger.Warn("session send buffer full, dropping message", "type", msgType)
	}
}

func (s *Session) sendError(request string, seq int64, err error) {
	s.Send(TypeError, ErrorPayload{Request: request, Seq: seq, Reason: err.Error()})
}
