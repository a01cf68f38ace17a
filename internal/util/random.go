// Package util holds small helpers shared by the ShowDirector commands and session.
package util

import (
	"math/rand/v2"
	"strings"
)

const (
	// SessionIDPrefix marks every show session id.
	SessionIDPrefix = "s_"
	sessionIDHexLen = 16
)

const hexDigits = "0123456789abcdef"

// GenerateSessionID returns a new show session id: SessionIDPrefix followed by
// 16 lowercase hex digits.
func GenerateSessionID() string {
	var b strings.Builder
	b.Grow(len(SessionIDPrefix) + sessionIDHexLen)
	b.WriteString(SessionIDPrefix)
	for range sessionIDHexLen {
		b.WriteByte(hexDigits[rand.IntN(len(hexDigits))])
	}
	return b.String()
}
