package state

import "sync"

// User states constants
const (
	None                       = "none"
	Capturing                  = "capturing"
	AwaitingConfirmation       = "awaiting_confirmation"
	WaitingForEditValues       = "waiting_for_edit_values"
	WaitingForEditNotes        = "waiting_for_edit_notes"
	WaitingForProfileDOB       = "waiting_for_profile_dob"
	WaitingForProfileWeight    = "waiting_for_profile_weight"
	WaitingForProfileHeight    = "waiting_for_profile_height"
	WaitingForProfileCondition = "waiting_for_profile_conditions"
	WaitingForProfileMeds      = "waiting_for_profile_medications"
	WaitingForProfileContact   = "waiting_for_profile_contact"
	WaitingForDailyReminder    = "waiting_for_daily_reminder"
	WaitingForWeeklyReminder   = "waiting_for_weekly_reminder"
)

// StateManager tracks per-user conversation state and temporary data.
// Implemented in-memory and on Redis; selected by config.
type StateManager interface {
	SetUserState(userID int64, state string)
	GetUserState(userID int64) string
	SetTempData(userID int64, key string, value interface{})
	GetTempData(userID int64, key string) (interface{}, bool)
	ClearTempData(userID int64)
}

// Manager manages user states and temporary data in memory
type Manager struct {
	userStates map[int64]string
	tempData   map[int64]map[string]interface{}
	mu         sync.RWMutex
}

// NewManager creates a new in-memory state manager
func NewManager() *Manager {
	return &Manager{
		userStates: make(map[int64]string),
		tempData:   make(map[int64]map[string]interface{}),
	}
}

// SetUserState sets the state for a user
func (m *Manager) SetUserState(userID int64, state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userStates[userID] = state
}

// GetUserState gets the state for a user
func (m *Manager) GetUserState(userID int64) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, exists := m.userStates[userID]
	if !exists {
		return None
	}
	return state
}

// SetTempData sets temporary data for a user
func (m *Manager) SetTempData(userID int64, key string, value interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tempData[userID] == nil {
		m.tempData[userID] = make(map[string]interface{})
	}
	m.tempData[userID][key] = value
}

// GetTempData gets temporary data for a user
func (m *Manager) GetTempData(userID int64, key string) (interface{}, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	userData, exists := m.tempData[userID]
	if !exists {
		return nil, false
	}
	value, exists := userData[key]
	return value, exists
}

// ClearTempData clears all temporary data for a user
func (m *Manager) ClearTempData(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tempData, userID)
}
