package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key for a user's login session.
func (r *CacheKeyStruct) UserSessionKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// PlanningSessionsKey returns the cache key for the serialized planning board
// (the full session list with exams and supervisor counters).
func (r *CacheKeyStruct) PlanningSessionsKey() string {
	return "planning:sessions"
}

// PlanningEventsChannel returns the Redis PubSub channel carrying allocation
// events (assignments committed, wishes cancelled, needs recomputed).
func (r *CacheKeyStruct) PlanningEventsChannel() string {
	return "planning:events"
}

var CacheKey = NewCacheKeyStruct()
