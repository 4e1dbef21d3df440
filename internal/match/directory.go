package match

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// ErrUnknownCode reports a join attempt against a code that names no
// live session.
var ErrUnknownCode = errors.New("match: unknown join code")

// DirectoryConfig holds the directory's housekeeping knobs.
type DirectoryConfig struct {
	IdleTTL     time.Duration // how long a session may sit idle before it is swept
	SweepPeriod time.Duration // how often the sweeper runs
}

// DefaultDirectoryConfig returns sensible defaults.
func DefaultDirectoryConfig() DirectoryConfig {
	return DirectoryConfig{
		IdleTTL:     30 * time.Minute,
		SweepPeriod: time.Minute,
	}
}

// Directory tracks live sessions by join code, hands joiners their
// session, and sweeps matches nobody is playing anymore.
type Directory struct {
	config   DirectoryConfig
	log      *log.Logger
	archiver Archiver

	mu       sync.RWMutex
	sessions map[string]*Session // join code -> session

	done     chan struct{}
	stopOnce sync.Once
}

// NewDirectory creates a directory. Call SetArchiver if sessions should
// persist their results, then Start.
func NewDirectory(cfg DirectoryConfig, logger *log.Logger) *Directory {
	if logger == nil {
		logger = log.Default()
	}
	def := DefaultDirectoryConfig()
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = def.IdleTTL
	}
	if cfg.SweepPeriod <= 0 {
		cfg.SweepPeriod = def.SweepPeriod
	}
	return &Directory{
		config:   cfg,
		log:      logger,
		sessions: make(map[string]*Session),
		done:     make(chan struct{}),
	}
}

// SetArchiver sets the result sink handed to every session the
// directory creates. Must be called before Start.
func (d *Directory) SetArchiver(a Archiver) {
	d.archiver = a
}

// Start launches the sweeper.
func (d *Directory) Start() {
	go d.sweepLoop()
}

// Stop shuts down the sweeper and every live session.
func (d *Directory) Stop() {
	d.stopOnce.Do(func() {
		close(d.done)
	})
	d.mu.Lock()
	defer d.mu.Unlock()
	for code, s := range d.sessions {
		s.Stop()
		delete(d.sessions, code)
	}
}

// Create starts a session hosted by the named player and registers it
// under a fresh join code.
func (d *Directory) Create(hostName string) (*Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	code := d.uniqueCode()
	s, err := NewSession(uuid.New().String(), code, hostName, d.log)
	if err != nil {
		return nil, err
	}
	s.SetArchiver(d.archiver)
	s.Start()
	d.sessions[code] = s
	d.log.Info("match created", "code", code, "id", s.ID(), "host", hostName)
	return s, nil
}

// Get returns the session registered under the code.
func (d *Directory) Get(code string) (*Session, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.sessions[strings.ToUpper(code)]
	return s, ok
}

// Join seats the named player as player2 in the session under the code.
func (d *Directory) Join(ctx context.Context, code, name string) (*Session, error) {
	s, ok := d.Get(code)
	if !ok {
		return nil, ErrUnknownCode
	}
	if err := s.AddPlayer(ctx, name); err != nil {
		return nil, err
	}
	return s, nil
}

// Remove stops the session under the code and drops it from the
// directory.
func (d *Directory) Remove(code string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	code = strings.ToUpper(code)
	if s, ok := d.sessions[code]; ok {
		s.Stop()
		delete(d.sessions, code)
	}
}

// Len returns the number of live sessions.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.sessions)
}

func (d *Directory) sweepLoop() {
	ticker := time.NewTicker(d.config.SweepPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.sweep()
		case <-d.done:
			return
		}
	}
}

func (d *Directory) sweep() {
	now := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()
	for code, s := range d.sessions {
		select {
		case <-s.Done():
			delete(d.sessions, code)
			continue
		default:
		}
		if now.Sub(s.LastActive()) > d.config.IdleTTL {
			s.Stop()
			delete(d.sessions, code)
			d.log.Info("session swept", "code", code, "id", s.ID(), "finished", s.Finished())
		}
	}
}

// uniqueCode generates a join code not already in use. Caller holds the
// lock.
func (d *Directory) uniqueCode() string {
	for {
		code := generateJoinCode()
		if _, exists := d.sessions[code]; !exists {
			return code
		}
	}
}

// generateJoinCode creates a 6-character uppercase code.
func generateJoinCode() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%06X", time.Now().UnixNano()&0xFFFFFF)
	}
	// base32 keeps the alphabet to A-Z and 2-7, easy to read aloud
	return strings.ToUpper(base32.StdEncoding.EncodeToString(b)[:6])
}
