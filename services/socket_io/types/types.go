package socketio_types

import (
	"sync"

	"Pixelhop/services/replication"
	"Pixelhop/services/rooms"
	"Pixelhop/services/scoring"

	"github.com/zishang520/socket.io/v2/socket"
)

// PlayerSession is the per-connection multiplayer state: the room the
// player currently sits in and every live handle that must be torn down
// when the player leaves or disconnects. Socket handlers and listener
// callbacks touch it from different goroutines, so every access goes
// through the mutex; teardown swaps the handles out under the lock and
// closes them outside it, which also keeps the listener goroutine from
// deadlocking against its own Close.
type PlayerSession struct {
	mu          sync.Mutex
	roomID      string
	opponentID  string
	ended       bool
	listener    *rooms.Listener
	publisher   *replication.Publisher
	remotePeer  *replication.RemotePlayer
	peerWatch   *replication.ConnectionWatch
	resultWatch *scoring.ResultWatch
	scorer      *scoring.Scorer
	// stopFeed ends the smoothed position feed toward this client
	stopFeed chan struct{}
}

// Room returns the id of the room the player currently sits in, or "".
func (ps *PlayerSession) Room() string {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.roomID
}

// Opponent returns the peer's id for the running match, or "".
func (ps *PlayerSession) Opponent() string {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.opponentID
}

// Publisher returns the live position publisher, or nil outside a match.
func (ps *PlayerSession) Publisher() *replication.Publisher {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.publisher
}

// Scorer returns the live match scorer, or nil outside a match.
func (ps *PlayerSession) Scorer() *scoring.Scorer {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.scorer
}

// BindRoom records the lobby the player entered and the listener
// projecting it.
func (ps *PlayerSession) BindRoom(roomID string, l *rooms.Listener) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.roomID = roomID
	ps.listener = l
	ps.ended = false
}

// BeginMatch records the per-match handles created when the game starts.
func (ps *PlayerSession) BeginMatch(roomID, opponentID string, pub *replication.Publisher, sc *scoring.Scorer) {
	ps.mu.Lock()
	if ps.ended {
		ps.mu.Unlock()
		pub.Stop()
		return
	}
	ps.roomID = roomID
	ps.opponentID = opponentID
	ps.publisher = pub
	ps.scorer = sc
	ps.mu.Unlock()
}

// AttachPeer records the remote player mirror. A session already torn
// down closes the handle instead of leaking it.
func (ps *PlayerSession) AttachPeer(r *replication.RemotePlayer) {
	ps.mu.Lock()
	if ps.ended {
		ps.mu.Unlock()
		r.Close()
		return
	}
	ps.remotePeer = r
	ps.mu.Unlock()
}

// AttachPeerWatch records the opponent connection watch.
func (ps *PlayerSession) AttachPeerWatch(w *replication.ConnectionWatch) {
	ps.mu.Lock()
	if ps.ended {
		ps.mu.Unlock()
		w.Close()
		return
	}
	ps.peerWatch = w
	ps.mu.Unlock()
}

// AttachResultWatch records the match result watch.
func (ps *PlayerSession) AttachResultWatch(w *scoring.ResultWatch) {
	ps.mu.Lock()
	if ps.ended {
		ps.mu.Unlock()
		w.Close()
		return
	}
	ps.resultWatch = w
	ps.mu.Unlock()
}

// AttachFeed records the stop channel of the opponent position feed.
func (ps *PlayerSession) AttachFeed(stop chan struct{}) {
	ps.mu.Lock()
	if ps.ended {
		ps.mu.Unlock()
		close(stop)
		return
	}
	ps.stopFeed = stop
	ps.mu.Unlock()
}

// CloseMatchState releases the per-match handles, keeping the lobby
// listener alive. Safe to call with any subset of handles set and from
// any goroutine; each handle is closed at most once.
func (ps *PlayerSession) CloseMatchState() {
	ps.mu.Lock()
	stop := ps.stopFeed
	pub := ps.publisher
	peer := ps.remotePeer
	watch := ps.peerWatch
	result := ps.resultWatch
	ps.stopFeed = nil
	ps.publisher = nil
	ps.remotePeer = nil
	ps.peerWatch = nil
	ps.resultWatch = nil
	ps.scorer = nil
	ps.mu.Unlock()

	if stop != nil {
		close(stop)
	}
	if pub != nil {
		pub.Stop()
	}
	if peer != nil {
		peer.Close()
	}
	if watch != nil {
		watch.Close()
	}
	if result != nil {
		result.Close()
	}
}

// Close releases everything, the lobby listener included.
func (ps *PlayerSession) Close() {
	ps.mu.Lock()
	ps.ended = true
	ps.mu.Unlock()

	ps.CloseMatchState()

	ps.mu.Lock()
	l := ps.listener
	ps.listener = nil
	ps.roomID = ""
	ps.opponentID = ""
	ps.mu.Unlock()

	if l != nil {
		l.Close()
	}
}

// SocketServer is a struct that contains the socket.io server, a map of
// socket connections and the per-user session state.
type SocketServer struct {
	Sio_server *socket.Server
	// Map to track username -> socket connections
	UserConnections map[string]*socket.Socket
	// Map to track username -> multiplayer session state
	Sessions map[string]*PlayerSession
	mutex    sync.RWMutex
}

func NewSocketServer() *SocketServer {
	return &SocketServer{
		UserConnections: make(map[string]*socket.Socket),
		Sessions:        make(map[string]*PlayerSession),
	}
}

// Add methods to manage connections
func (s *SocketServer) AddConnection(username string, socket *socket.Socket) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.UserConnections[username] = socket
	s.Sessions[username] = &PlayerSession{}
}

func (s *SocketServer) RemoveConnection(username string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.UserConnections, username)
	delete(s.Sessions, username)
}

func (s *SocketServer) GetConnection(username string) (*socket.Socket, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	socket, exists := s.UserConnections[username]
	return socket, exists
}

func (s *SocketServer) SetSession(username string, session *PlayerSession) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.Sessions[username] = session
}

func (s *SocketServer) GetSession(username string) (*PlayerSession, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	session, exists := s.Sessions[username]
	return session, exists
}
