// Package session holds the per-browser-session blotter state. Each session
// is independent: state is loaded from the flat files on first touch and
// flushed back after every mutation. Two sessions saving to the same files
// race and the later write wins; that limitation is accepted.
package session

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"hedgeblotter/internal/models"
	"hedgeblotter/internal/store"
)

// CookieName is the session cookie issued to browsers.
const CookieName = "blotter_session"

// State is one session's in-memory blotter. Vanilla and Exotic are the live
// manually-entered collections; Imports holds normalized upload rows kept
// for reconciliation and charting.
type State struct {
	mu sync.Mutex

	ID      string
	Vanilla []models.Trade
	Exotic  []models.Trade
	History []models.ClosedTrade

	MARSImport   []models.Trade
	ExoticImport []models.Trade
}

// Lock serializes access to one session's collections. The modeled workload
// is single-user, but the HTTP server itself is concurrent.
func (s *State) Lock()   { s.mu.Lock() }
func (s *State) Unlock() { s.mu.Unlock() }

type Manager struct {
	mu       sync.Mutex
	sessions map[string]*State
	store    *store.CSVStore
	logger   *zap.Logger
	entropy  io.Reader
}

func NewManager(st *store.CSVStore, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Manager{
		sessions: map[string]*State{},
		store:    st,
		logger:   logger,
		entropy:  ulid.Monotonic(rand.New(rand.NewSource(seed)), 0),
	}
}

// Get returns the session for id, creating and hydrating a fresh one when
// the id is unknown or empty. The returned id should be set back on the
// response cookie.
func (m *Manager) Get(id string) *State {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id != "" {
		if st, ok := m.sessions[id]; ok {
			return st
		}
	}
	st := &State{ID: m.newID()}
	st.Vanilla, st.Exotic = m.store.LoadLive()
	st.History = m.store.LoadHistory()
	m.sessions[st.ID] = st
	m.logger.Info("session created",
		zap.String("session_id", st.ID),
		zap.Int("vanilla", len(st.Vanilla)),
		zap.Int("exotic", len(st.Exotic)),
		zap.Int("history", len(st.History)),
	)
	return st
}

func (m *Manager) newID() string {
	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), m.entropy)
	if err != nil {
		panic(err)
	}
	return id.String()
}
