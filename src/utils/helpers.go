package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/gosimple/slug"
)

// NewTicketCode returns a 32-char hex code from a CSPRNG. Codes end up in QR
// scans at the venue door, so they must not be sequential or guessable.
func NewTicketCode() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// EventSlug builds the URL slug for an event title.
func EventSlug(title string) string {
	return slug.Make(title)
}

// SeatLabel renders the human-readable seat address used in logs and
// conflict messages.
func SeatLabel(section string, row, column uint) string {
	return fmt.Sprintf("%s/%d/%d", section, row, column)
}
