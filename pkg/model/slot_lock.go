package model

import (
	"fmt"
	"time"
)

// SlotLock is an advisory lock document guarding the check-then-insert
// window for one (date, time) slot. Inserting a second lock with the same
// _id fails with a duplicate-key error, which surfaces as a conflict. A TTL
// index on expires_at cleans up locks abandoned by crashed holders.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// SlotLockID derives the lock identity from the slot coordinates. One lock
// per studio-wide (date, time) pair, regardless of staff assignment.
func SlotLockID(date time.Time, timeSlot string) string {
	return fmt.Sprintf("slot_%s_%s", date.UTC().Format("2006-01-02"), timeSlot)
}
