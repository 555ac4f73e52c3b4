package midjourney

import (
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"

	"cogbot/internal/common"
)

const (
	TypeImagine   = "imagine"
	TypeRerun     = "rerun"
	TypeUpscale   = "upscale"
	TypeVariation = "variation"
)

// Session is a request relayed to MidJourney that waits for the image
type Session struct {
	UserID string
	// Progress message edited when the image arrives
	Message string
	Channel string
	Type    string
	// Prompt with its parameters, as MidJourney echoes it back
	Prompt          string
	BasePrompt      string
	Params          Params
	Index           int
	WaitingResponse bool
	Timestamp       time.Time

	age common.Stopwatch
}

// Sessions holds the pending requests of every user. Requests older
// than the maximum age are dropped by Prune
type Sessions struct {
	mu     sync.Mutex
	clock  common.Clock
	maxAge time.Duration
	byUser map[string][]*Session
}

func NewSessions(clock common.Clock, maxAge time.Duration) *Sessions {
	return &Sessions{clock: clock, maxAge: maxAge, byUser: map[string][]*Session{}}
}

// Reserve adds the session unless its user already has limit pending
// requests. The number of pending requests is returned either way
func (s *Sessions) Reserve(session *Session, limit int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := len(s.byUser[session.UserID])
	if pending >= limit {
		return pending, false
	}
	session.Timestamp = s.clock.Now()
	session.age = common.NewStopwatch(s.maxAge, s.clock)
	session.age.Start()
	s.byUser[session.UserID] = append(s.byUser[session.UserID], session)
	return pending + 1, true
}

// Count the pending requests of a user
func (s *Sessions) Count(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byUser[userID])
}

func (s *Sessions) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, sessions := range s.byUser {
		total += len(sessions)
	}
	return total
}

// Pending requests of a user, oldest first
func (s *Sessions) Of(userID string) []Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sessions := make([]Session, 0, len(s.byUser[userID]))
	for _, session := range s.byUser[userID] {
		sessions = append(sessions, *session)
	}
	return sessions
}

// Age of a session
func (s *Sessions) Age(session Session) time.Duration {
	return s.clock.Now().Sub(session.Timestamp)
}

// Match takes out the oldest waiting session whose prompt appears in
// the content of a MidJourney message, ignoring case
func (s *Sessions) Match(content string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	folded := cases.Fold().String(content)
	var found *Session
	for _, sessions := range s.byUser {
		for _, session := range sessions {
			if !session.WaitingResponse || !strings.Contains(folded, cases.Fold().String(session.Prompt)) {
				continue
			}
			if found == nil || session.Timestamp.Before(found.Timestamp) {
				found = session
			}
		}
	}
	if found == nil {
		return nil, false
	}
	s.remove(found)
	return found, true
}

// Relayed marks a session as sent to MidJourney, so its image can be matched
// and delivered to the progress message
func (s *Sessions) Relayed(session *Session, messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.Message = messageID
	session.WaitingResponse = true
}

func (s *Sessions) Remove(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(session)
}

func (s *Sessions) remove(target *Session) {
	sessions := s.byUser[target.UserID]
	for i, session := range sessions {
		if session == target {
			sessions = append(sessions[:i], sessions[i+1:]...)
			break
		}
	}
	if len(sessions) == 0 {
		delete(s.byUser, target.UserID)
		return
	}
	s.byUser[target.UserID] = sessions
}

// Prune drops the sessions past their maximum age and returns them, oldest first
func (s *Sessions) Prune() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := []*Session{}
	for userID, sessions := range s.byUser {
		kept := sessions[:0]
		for _, session := range sessions {
			if expired, _ := session.age.Stopped(); expired {
				pruned = append(pruned, session)
				continue
			}
			kept = append(kept, session)
		}
		if len(kept) == 0 {
			delete(s.byUser, userID)
		} else {
			s.byUser[userID] = kept
		}
	}
	sort.Slice(pruned, func(i, j int) bool { return pruned[i].Timestamp.Before(pruned[j].Timestamp) })
	return pruned
}
