package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"couple-space-backend/pkg/models"
)

func at(hour, min int) time.Time {
	return time.Date(2024, 1, 1, hour, min, 0, 0, time.UTC)
}

func atp(hour, min int) *time.Time {
	t := at(hour, min)
	return &t
}

func TestEffectiveInterval(t *testing.T) {
	t.Run("explicit end is kept", func(t *testing.T) {
		s, e := EffectiveInterval(at(10, 0), atp(12, 30))
		assert.Equal(t, at(10, 0), s)
		assert.Equal(t, at(12, 30), e)
	})

	t.Run("missing end defaults to one hour", func(t *testing.T) {
		s, e := EffectiveInterval(at(10, 0), nil)
		assert.Equal(t, at(10, 0), s)
		assert.Equal(t, at(11, 0), e)
	})
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		want           bool
	}{
		{"identical intervals", at(10, 0), at(11, 0), at(10, 0), at(11, 0), true},
		{"partial overlap", at(10, 0), at(11, 0), at(10, 30), at(11, 30), true},
		{"containment", at(10, 0), at(12, 0), at(10, 30), at(11, 0), true},
		{"abutting intervals do not overlap", at(10, 0), at(11, 0), at(11, 0), at(12, 0), false},
		{"abutting the other way", at(11, 0), at(12, 0), at(10, 0), at(11, 0), false},
		{"disjoint", at(8, 0), at(9, 0), at(10, 0), at(11, 0), false},
		{"one minute of overlap", at(10, 0), at(11, 1), at(11, 0), at(12, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.s1, tt.e1, tt.s2, tt.e2))
			// intersection is symmetric
			assert.Equal(t, tt.want, Overlaps(tt.s2, tt.e2, tt.s1, tt.e1))
		})
	}
}

func TestHasConflict(t *testing.T) {
	events := []models.Event{
		{ID: "a", DateStart: at(10, 0), DateEnd: atp(11, 0)},
		{ID: "b", DateStart: at(14, 0)}, // effective [14:00, 15:00)
	}

	t.Run("empty schedule never conflicts", func(t *testing.T) {
		cs, ce := EffectiveInterval(at(10, 0), nil)
		assert.False(t, HasConflict(nil, cs, ce, ""))
	})

	t.Run("candidate inside an existing event", func(t *testing.T) {
		cs, ce := EffectiveInterval(at(10, 30), atp(10, 45))
		assert.True(t, HasConflict(events, cs, ce, ""))
	})

	t.Run("default duration applies to the stored side", func(t *testing.T) {
		cs, ce := EffectiveInterval(at(14, 30), atp(14, 45))
		assert.True(t, HasConflict(events, cs, ce, ""))
	})

	t.Run("default duration applies to the candidate side", func(t *testing.T) {
		cs, ce := EffectiveInterval(at(9, 30), nil) // [9:30, 10:30)
		assert.True(t, HasConflict(events, cs, ce, ""))
	})

	t.Run("abutting event is accepted", func(t *testing.T) {
		cs, ce := EffectiveInterval(at(11, 0), atp(12, 0))
		assert.False(t, HasConflict(events, cs, ce, ""))
	})

	t.Run("exclusion skips the event being updated", func(t *testing.T) {
		cs, ce := EffectiveInterval(at(10, 0), atp(11, 0))
		assert.True(t, HasConflict(events, cs, ce, ""))
		assert.False(t, HasConflict(events, cs, ce, "a"))
	})

	t.Run("exclusion still sees other events", func(t *testing.T) {
		cs, ce := EffectiveInterval(at(14, 15), nil)
		assert.True(t, HasConflict(events, cs, ce, "a"))
	})
}
