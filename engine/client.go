package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"nhooyr.io/websocket"

	"github.com/sjroesink/Whisper/history"
	"github.com/sjroesink/Whisper/log"
	"github.com/sjroesink/Whisper/settings"
)

// The daemon speaks JSON text frames. Calls are answered by replies
// correlated on id; events arrive unsolicited.
type callFrame struct {
	Type    string          `json:"type"`
	ID      uint64          `json:"id"`
	Command string          `json:"command"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type serverFrame struct {
	Type string `json:"type"` // "reply" or "event"

	ID     uint64          `json:"id,omitempty"`
	OK     bool            `json:"ok,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`

	Event   string          `json:"event,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client talks to the engine daemon over a websocket.
type Client struct {
	conn   *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	nextID       uint64
	pending      map[uint64]chan serverFrame
	listeners    map[EventKind]map[int]Handler
	nextListener int
}

// Dial connects to the engine daemon and starts the read loop. The
// connection lives until Close or until ctx is cancelled.
func Dial(ctx context.Context, addr string) (*Client, error) {
	connCtx, cancel := context.WithCancel(ctx)
	conn, _, err := websocket.Dial(connCtx, addr, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("dial engine %s: %w", addr, err)
	}
	// History and asset replies overflow the library's default read limit.
	conn.SetReadLimit(1 << 20)

	c := &Client{
		conn:      conn,
		ctx:       connCtx,
		cancel:    cancel,
		pending:   map[uint64]chan serverFrame{},
		listeners: map[EventKind]map[int]Handler{},
	}
	go c.readLoop()
	return c, nil
}

// Close tears down the connection. In-flight calls fail with a closed
// connection error.
func (c *Client) Close() error {
	c.cancel()
	return c.conn.Close(websocket.StatusNormalClosure, "client shutdown")
}

func (c *Client) readLoop() {
	for {
		_, data, err := c.conn.Read(c.ctx)
		if err != nil {
			if c.ctx.Err() == nil {
				log.Warnf("engine: connection lost: %v", err)
			}
			c.cancel()
			return
		}

		var f serverFrame
		if err := json.Unmarshal(data, &f); err != nil {
			log.Warnf("engine: undecodable frame: %v", err)
			continue
		}

		switch f.Type {
		case "reply":
			c.mu.Lock()
			ch := c.pending[f.ID]
			delete(c.pending, f.ID)
			c.mu.Unlock()
			if ch != nil {
				ch <- f
			}
		case "event":
			c.dispatch(f)
		default:
			log.Warnf("engine: unknown frame type %q", f.Type)
		}
	}
}

// dispatch decodes an event frame and fans it out. Unknown event names and
// undecodable payloads are dropped with a log line, never treated as fatal.
func (c *Client) dispatch(f serverFrame) {
	kind := EventKind(f.Event)
	ev := Event{Kind: kind}

	switch kind {
	case EventRecordingStarted, EventRecordingStopped, EventTranscribing:
		// no payload
	case EventTranscriptionComplete:
		var p TranscriptionPayload
		if err := json.Unmarshal(f.Payload, &p); err != nil {
			log.Warnf("engine: %s payload: %v", kind, err)
			return
		}
		ev.Transcription = &p
	case EventError:
		var p struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(f.Payload, &p); err != nil {
			log.Warnf("engine: %s payload: %v", kind, err)
			return
		}
		ev.Message = p.Message
	case EventDownloadProgress:
		var p ProgressPayload
		if err := json.Unmarshal(f.Payload, &p); err != nil {
			log.Warnf("engine: %s payload: %v", kind, err)
			return
		}
		ev.Progress = &p
	default:
		log.Warnf("engine: unknown event %q", f.Event)
		return
	}

	c.mu.Lock()
	handlers := make([]Handler, 0, len(c.listeners[kind]))
	for _, h := range c.listeners[kind] {
		handlers = append(handlers, h)
	}
	c.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

func (c *Client) call(ctx context.Context, command string, params any, result any) error {
	var raw json.RawMessage
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("%s: encode params: %w", command, err)
		}
		raw = b
	}

	c.mu.Lock()
	c.nextID++
	id := c.nextID
	ch := make(chan serverFrame, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	frame, err := json.Marshal(callFrame{Type: "call", ID: id, Command: command, Params: raw})
	if err != nil {
		return err
	}
	if err := c.conn.Write(ctx, websocket.MessageText, frame); err != nil {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", command, err)
	}

	select {
	case f := <-ch:
		if !f.OK {
			return &CommandError{Command: command, Msg: f.Error}
		}
		if result != nil && len(f.Result) > 0 {
			if err := json.Unmarshal(f.Result, result); err != nil {
				return fmt.Errorf("%s: decode result: %w", command, err)
			}
		}
		return nil
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return ctx.Err()
	case <-c.ctx.Done():
		return fmt.Errorf("%s: connection closed", command)
	}
}

func (c *Client) StartRecording(ctx context.Context) error {
	return c.call(ctx, "start_recording", nil, nil)
}

func (c *Client) StopAndTranscribe(ctx context.Context) (string, error) {
	var text string
	err := c.call(ctx, "stop_recording_and_transcribe", nil, &text)
	return text, err
}

func (c *Client) RecordingState(ctx context.Context) (bool, error) {
	var recording bool
	err := c.call(ctx, "get_recording_state", nil, &recording)
	return recording, err
}

func (c *Client) FetchSettings(ctx context.Context) (settings.Settings, error) {
	var s settings.Settings
	err := c.call(ctx, "get_settings", nil, &s)
	return s, err
}

func (c *Client) SaveSettings(ctx context.Context, s settings.Settings) error {
	params := struct {
		Settings settings.Settings `json:"settings"`
	}{s}
	return c.call(ctx, "save_settings", params, nil)
}

func (c *Client) FetchHistory(ctx context.Context) ([]history.Entry, error) {
	var entries []history.Entry
	err := c.call(ctx, "get_history", nil, &entries)
	return entries, err
}

func (c *Client) ClearHistory(ctx context.Context) error {
	return c.call(ctx, "clear_history", nil, nil)
}

func (c *Client) FetchProviders(ctx context.Context) ([]settings.ProviderInfo, error) {
	var providers []settings.ProviderInfo
	err := c.call(ctx, "get_providers", nil, &providers)
	return providers, err
}

func (c *Client) InputDevices(ctx context.Context) ([]AudioDevice, error) {
	var devices []AudioDevice
	err := c.call(ctx, "list_input_devices", nil, &devices)
	return devices, err
}

func (c *Client) FetchAssetStatus(ctx context.Context) (AssetStatus, error) {
	var status AssetStatus
	err := c.call(ctx, "get_asset_status", nil, &status)
	return status, err
}

func (c *Client) DownloadAsset(ctx context.Context, kind AssetKind, name string) (string, error) {
	params := struct {
		Kind AssetKind `json:"kind"`
		Name string    `json:"name"`
	}{kind, name}
	var path string
	err := c.call(ctx, "download_asset", params, &path)
	return path, err
}

// Listen registers h for one event kind. The daemon pushes every event on
// the shared connection; registration is client-side routing only.
func (c *Client) Listen(kind EventKind, h Handler) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listeners[kind] == nil {
		c.listeners[kind] = map[int]Handler{}
	}
	id := c.nextListener
	c.nextListener++
	c.listeners[kind][id] = h

	return func() {
		c.mu.Lock()
		delete(c.listeners[kind], id)
		c.mu.Unlock()
	}, nil
}
