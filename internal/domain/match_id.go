package domain

import (
	"time"

	"github.com/google/uuid"
)

const matchIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewMatchID returns an id of the form YYYYMMDD-XXXX where the suffix is
// four random uppercase alphanumerics.
func NewMatchID(now time.Time) string {
	u := uuid.New()
	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = matchIDAlphabet[int(u[i])%len(matchIDAlphabet)]
	}
	return now.Format("20060102") + "-" + string(suffix)
}
