package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// ==================== UUID & TOKEN ====================

// GenerateTokenID mints a globally unique, unguessable credential id.
func GenerateTokenID() uuid.UUID {
	return uuid.New()
}

func GenerateReservationID() uuid.UUID {
	return uuid.New()
}

func ParseUUID(uuidStr string) (uuid.UUID, error) {
	return uuid.Parse(uuidStr)
}

// ==================== BOOKING REFERENCE ====================

// GenerateBookingReference creates a human-readable booking reference.
func GenerateBookingReference() string {
	rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now()

	// Format: MUS-YYYYMMDD-HHMMSS-RANDOM
	datePart := now.Format("20060102")
	timePart := now.Format("150405")
	randomPart := fmt.Sprintf("%04d", rand.Intn(10000))

	return fmt.Sprintf("MUS-%s-%s-%s", datePart, timePart, randomPart)
}
