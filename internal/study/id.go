package study

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID returns a UUIDv7 whose timestamp bits carry now.
func NewID(now time.Time) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
		id[6] = (id[6] & 0x0f) | 0x70
	}
	ms := uint64(now.UnixMilli())
	for i := 5; i >= 0; i-- {
		id[i] = byte(ms)
		ms >>= 8
	}
	return id.String()
}

// CreatedAt recovers the creation time embedded in a task id. Both UUIDv7
// ids and the legacy "task-<unixMillis>-<index>" form are understood.
func CreatedAt(id string) (time.Time, bool) {
	if u, err := uuid.Parse(id); err == nil {
		if u.Version() != 7 {
			return time.Time{}, false
		}
		var ms int64
		for i := 0; i < 6; i++ {
			ms = ms<<8 | int64(u[i])
		}
		return time.UnixMilli(ms), true
	}
	rest, ok := strings.CutPrefix(id, "task-")
	if !ok {
		return time.Time{}, false
	}
	msStr, _, _ := strings.Cut(rest, "-")
	ms, err := strconv.ParseInt(msStr, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}
