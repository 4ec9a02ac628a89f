package models

import (
	"time"

	"github.com/google/uuid"
)

// DeviceSession is one active login of one user on one device.
// CreatedAt doubles as the refresh-token rotation fingerprint: it is
// overwritten on every successful refresh, which is what makes the
// previously issued refresh token unusable.
type DeviceSession struct {
	UserID     uuid.UUID
	DeviceID   uuid.UUID
	DeviceName string
	DeviceIP   string
	CreatedAt  time.Time
}

// DeviceMeta is what the transport layer knows about the client at login time
type DeviceMeta struct {
	Name string
	IP   string
}
