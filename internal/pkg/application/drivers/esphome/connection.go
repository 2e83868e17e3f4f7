package esphome

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sort"
	"sync"
	"time"
)

const (
	apiVersionMajor uint32 = 1
	apiVersionMinor uint32 = 10

	handshakeTimeout  = 5 * time.Second
	maxMissedPings    = 3
	maxResyncAttempts = 2

	logLevelInfo uint64 = 3
)

var ErrAuthenticationFailed = errors.New("authentication failed")
var ErrPingTimeout = errors.New("ping timeout")
var ErrNotConnected = errors.New("device not connected")

type sessionConfig struct {
	clientInfo   string
	password     string
	pingInterval time.Duration
	logLevel     uint64
}

// session is one live connection to an ESPHome device. It owns the socket,
// the frame reassembly buffer and the keepalive loop. The driver installs
// onState and onClose before the pumps start.
type session struct {
	conn net.Conn
	log  *slog.Logger

	pingInterval time.Duration
	logLevel     uint64
	now          func() time.Time

	writeMu sync.Mutex
	readBuf []byte

	mu          sync.Mutex
	info        deviceInfo
	entities    map[uint32]entityInfo
	byObjectID  map[string]entityInfo
	missedPings int
	closeErr    error

	entitiesReady chan struct{}
	readyOnce     sync.Once

	onState func(info entityInfo, state map[string]any)
	onClose func(err error)

	done      chan struct{}
	closeOnce sync.Once
}

// connectSession performs the Hello, Connect, Live handshake on conn and
// returns a session in the Live state. The whole handshake shares a single
// deadline; a device that stalls mid-handshake fails instead of hanging the
// caller.
func connectSession(conn net.Conn, cfg sessionConfig, log *slog.Logger) (*session, error) {
	s := &session{
		conn:          conn,
		log:           log,
		pingInterval:  cfg.pingInterval,
		logLevel:      cfg.logLevel,
		now:           time.Now,
		entities:      map[uint32]entityInfo{},
		byObjectID:    map[string]entityInfo{},
		entitiesReady: make(chan struct{}),
		done:          make(chan struct{}),
	}

	conn.SetDeadline(time.Now().Add(handshakeTimeout))

	err := s.send(TypeHelloRequest, encodeHelloRequest(cfg.clientInfo, apiVersionMajor, apiVersionMinor))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("hello failed: %w", err)
	}

	frame, err := s.await(TypeHelloResponse)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("hello failed: %w", err)
	}

	hello, err := decodeHelloResponse(frame.Payload)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("hello failed: %w", err)
	}

	log.Debug("hello exchanged",
		slog.String("server", hello.ServerInfo),
		slog.String("name", hello.Name),
		slog.String("api", fmt.Sprintf("%d.%d", hello.APIVersionMajor, hello.APIVersionMinor)),
	)

	if err := s.send(TypeConnectRequest, encodeConnectRequest(cfg.password)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connect failed: %w", err)
	}

	frame, err = s.await(TypeConnectResponse)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("connect failed: %w", err)
	}

	invalidPassword, err := decodeConnectResponse(frame.Payload)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("connect failed: %w", err)
	}

	if invalidPassword {
		conn.Close()
		return nil, ErrAuthenticationFailed
	}

	conn.SetDeadline(time.Time{})

	return s, nil
}

// start launches the read and keepalive pumps, then requests device info,
// the entity list, state streaming and device logs. Callers must have
// installed onState
// and onClose first; the pumps go first so replies are drained as they
// arrive.
func (s *session) start() error {
	go s.readPump()
	go s.pingLoop()

	if err := s.send(TypeDeviceInfoRequest, nil); err != nil {
		return err
	}
	if err := s.send(TypeListEntitiesRequest, nil); err != nil {
		return err
	}
	if err := s.send(TypeSubscribeStatesRequest, nil); err != nil {
		return err
	}
	if s.logLevel > 0 {
		if err := s.send(TypeSubscribeLogsRequest, encodeSubscribeLogsRequest(s.logLevel)); err != nil {
			return err
		}
	}

	return nil
}

func (s *session) send(msgType uint64, payload []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err := s.conn.Write(EncodeFrame(Frame{Type: msgType, Payload: payload}))
	return err
}

// readFrame blocks until a complete frame is available. A corrupt preamble
// drops a single byte and retries; losing sync twice in a row gives up on the
// connection rather than scanning garbage forever.
func (s *session) readFrame() (Frame, error) {
	var badSync int
	chunk := make([]byte, 4096)

	for {
		frame, n, err := DecodeFrame(s.readBuf)
		if err == nil {
			s.readBuf = s.readBuf[n:]
			return frame, nil
		}

		if errors.Is(err, ErrBadPreamble) {
			badSync++
			if badSync >= maxResyncAttempts {
				return Frame{}, fmt.Errorf("lost frame sync: %w", err)
			}
			s.readBuf = s.readBuf[1:]
			continue
		}

		if !errors.Is(err, ErrNeedMoreData) {
			return Frame{}, err
		}

		n, rerr := s.conn.Read(chunk)
		if n > 0 {
			s.readBuf = append(s.readBuf, chunk[:n]...)
		}
		if rerr != nil {
			return Frame{}, rerr
		}
	}
}

// await reads frames until one of the wanted type arrives. Anything else that
// shows up during the handshake is ignored.
func (s *session) await(msgType uint64) (Frame, error) {
	for {
		frame, err := s.readFrame()
		if err != nil {
			return Frame{}, err
		}
		if frame.Type == msgType {
			return frame, nil
		}
	}
}

func (s *session) readPump() {
	for {
		frame, err := s.readFrame()
		if err != nil {
			s.closeWith(err)
			return
		}
		s.handleFrame(frame)
	}
}

func (s *session) pingLoop() {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			missed := s.missedPings
			s.missedPings++
			s.mu.Unlock()

			if missed >= maxMissedPings {
				s.closeWith(ErrPingTimeout)
				return
			}

			if err := s.send(TypePingRequest, nil); err != nil {
				s.closeWith(err)
				return
			}
		}
	}
}

func (s *session) handleFrame(frame Frame) {
	switch frame.Type {
	case TypePingRequest:
		s.send(TypePingResponse, nil)
	case TypePingResponse:
		s.mu.Lock()
		s.missedPings = 0
		s.mu.Unlock()
	case TypeGetTimeRequest:
		s.send(TypeGetTimeResponse, encodeGetTimeResponse(uint32(s.now().Unix())))
	case TypeDisconnectRequest:
		s.send(TypeDisconnectResponse, nil)
		s.closeWith(nil)
	case TypeDisconnectResponse:
		s.closeWith(nil)
	case TypeDeviceInfoResponse:
		info, err := decodeDeviceInfoResponse(frame.Payload)
		if err != nil {
			s.log.Debug("undecodable device info", slog.String("err", err.Error()))
			return
		}
		s.mu.Lock()
		s.info = info
		s.mu.Unlock()
	case TypeListEntitiesDoneResponse:
		s.readyOnce.Do(func() { close(s.entitiesReady) })
	case TypeSubscribeLogsResponse:
		if msg, err := decodeSubscribeLogsResponse(frame.Payload); err == nil && msg != "" {
			s.log.Debug("device log", slog.String("message", msg))
		}
	default:
		s.handleEntityFrame(frame)
	}
}

func (s *session) handleEntityFrame(frame Frame) {
	if entity, ok, err := decodeListEntitiesResponse(frame.Type, frame.Payload); ok {
		if err != nil {
			s.log.Debug("undecodable entity listing", slog.String("err", err.Error()))
			return
		}
		s.mu.Lock()
		s.entities[entity.Key] = entity
		s.byObjectID[entity.ObjectID] = entity
		s.mu.Unlock()
		return
	}

	key, state, ok, err := decodeStateResponse(frame.Type, frame.Payload)
	if !ok {
		return
	}
	if err != nil {
		s.log.Debug("undecodable state update", slog.String("err", err.Error()))
		return
	}

	s.mu.Lock()
	entity, found := s.entities[key]
	cb := s.onState
	s.mu.Unlock()

	if found && cb != nil {
		cb(entity, state)
	}
}

// awaitEntities blocks until the device has finished announcing its entity
// list, then returns a stable snapshot of it.
func (s *session) awaitEntities(ctx context.Context) ([]entityInfo, error) {
	select {
	case <-s.entitiesReady:
	case <-s.done:
		return nil, s.err()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entityInfo, 0, len(s.entities))
	for _, entity := range s.entities {
		out = append(out, entity)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ObjectID < out[j].ObjectID })

	return out, nil
}

func (s *session) deviceInfo() deviceInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

func (s *session) entityByObjectID(objectID string) (entityInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entity, ok := s.byObjectID[objectID]
	return entity, ok
}

func (s *session) err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closeErr != nil {
		return s.closeErr
	}
	return ErrNotConnected
}

// close says goodbye politely and tears the connection down.
func (s *session) close() {
	s.send(TypeDisconnectRequest, nil)
	s.closeWith(nil)
}

func (s *session) closeWith(err error) {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closeErr = err
		s.mu.Unlock()

		close(s.done)
		s.conn.Close()

		if s.onClose != nil {
			s.onClose(err)
		}
	})
}
