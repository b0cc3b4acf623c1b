package ws

import (
	"strings"
	"time"

	"github.com/Rotten120/real-time-chatting-app/internal/service"
)

// Checkpoint is the client-supplied watermark: the creation time of the last
// message the client rendered. It is carried on every connection attempt and
// treated as untrusted input. The zero value means "no history ever seen" —
// an explicit none state instead of a magic sentinel date, so no code ever
// compares against a hardcoded epoch.
type Checkpoint struct {
	t   time.Time
	set bool
}

// CheckpointNone is the first-visit checkpoint: replay sends nothing and the
// client pulls its initial history through pagination.
func CheckpointNone() Checkpoint {
	return Checkpoint{}
}

func CheckpointAt(t time.Time) Checkpoint {
	return Checkpoint{t: t, set: true}
}

// ParseCheckpoint reads the handshake value. Absent means none; anything
// else must be an RFC 3339 timestamp.
func ParseCheckpoint(raw string) (Checkpoint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Checkpoint{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return Checkpoint{}, service.ErrBadCheckpoint
	}
	return Checkpoint{t: t, set: true}, nil
}

// Time returns the watermark and whether one exists.
func (c Checkpoint) Time() (time.Time, bool) {
	return c.t, c.set
}
