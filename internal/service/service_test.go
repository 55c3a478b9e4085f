package service

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/pageza/recipeshare/backend/internal/testhelpers"
)

func intPtr(v int) *int { return &v }

func strPtr(s string) *string { return &s }

// stepClock returns a clock that advances one minute per call so rows written
// in a test get distinct, ordered timestamps.
func stepClock() func() time.Time {
	t := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	return testhelpers.NewSQLiteDB(t)
}
