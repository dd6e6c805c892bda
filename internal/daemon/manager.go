package daemon

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// State is written to stenod.state once the daemon has opened its tape and
// bus. TapePath and Channel are empty when that sink is disabled, so
// `stenoctl status` can tell a tape-only run from one that also publishes.
type State struct {
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"started_at"`
	Version   string    `json:"version"`
	SessionID string    `json:"session_id"`
	TapePath  string    `json:"tape_path,omitempty"`
	Channel   string    `json:"channel,omitempty"`
}

// Status is what `stenoctl status` prints. Uptime is zero unless the PID in
// stenod.pid is alive.
type Status struct {
	Running   bool
	PID       int
	StartedAt time.Time
	Uptime    time.Duration
	Version   string
	SessionID string
	TapePath  string
	Channel   string
}

// Manager guards a data directory against a second stenod and lets stenoctl
// find the one that is running.
type Manager struct {
	pidFile   string
	stateFile string
}

// NewManager uses stenod.pid and stenod.state under dir, normally
// config.StenodDir().
func NewManager(dir string) *Manager {
	return &Manager{
		pidFile:   filepath.Join(dir, "stenod.pid"),
		stateFile: filepath.Join(dir, "stenod.state"),
	}
}

// IsRunning reports whether stenod.pid names a live process. A stale file
// left by a crash reads as not running.
func (m *Manager) IsRunning() bool {
	pid, err := m.ReadPID()
	if err != nil {
		return false
	}
	return isProcessRunning(pid)
}

func (m *Manager) ReadPID() (int, error) {
	data, err := os.ReadFile(m.pidFile)
	if err != nil {
		return 0, err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID file: %w", err)
	}
	return pid, nil
}

// WritePID claims the directory for this process.
func (m *Manager) WritePID() error {
	if err := os.MkdirAll(filepath.Dir(m.pidFile), 0700); err != nil {
		return fmt.Errorf("create pid dir: %w", err)
	}
	return os.WriteFile(m.pidFile, []byte(strconv.Itoa(os.Getpid())), 0600)
}

func (m *Manager) WriteState(state *State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.stateFile), 0700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	return os.WriteFile(m.stateFile, data, 0600)
}

func (m *Manager) ReadState() (*State, error) {
	data, err := os.ReadFile(m.stateFile)
	if err != nil {
		return nil, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	return &state, nil
}

// SignalStop asks the running stenod to shut down. On Unix it receives
// SIGTERM and exits through its signal context, removing both files.
func (m *Manager) SignalStop() error {
	pid, err := m.ReadPID()
	if err != nil {
		return fmt.Errorf("read PID: %w", err)
	}

	return terminateProcess(pid)
}

func (m *Manager) Cleanup() {
	os.Remove(m.pidFile)
	os.Remove(m.stateFile)
}

func (m *Manager) Status() *Status {
	status := &Status{}

	pid, err := m.ReadPID()
	if err == nil && isProcessRunning(pid) {
		status.Running = true
		status.PID = pid
	}

	if state, err := m.ReadState(); err == nil {
		status.StartedAt = state.StartedAt
		status.Version = state.Version
		status.SessionID = state.SessionID
		status.TapePath = state.TapePath
		status.Channel = state.Channel
		if status.Running {
			status.Uptime = time.Since(state.StartedAt)
		}
	}
	return status
}
