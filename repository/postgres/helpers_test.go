package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fastygo/taskboard/domain"
)

func TestTrackingColumns(t *testing.T) {
	started := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	spent, running, last := trackingColumns(nil)
	assert.Zero(t, spent)
	assert.False(t, running)
	assert.Nil(t, last)

	spent, running, last = trackingColumns(&domain.TimeTracking{TimeSpent: 4.5, IsRunning: true, LastStarted: &started})
	assert.Equal(t, 4.5, spent)
	assert.True(t, running)
	assert.Equal(t, started, last)

	_, _, last = trackingColumns(&domain.TimeTracking{TimeSpent: 4.5, LastStarted: &started})
	assert.Nil(t, last, "stopped trackers drop their start time")
}

func TestMetadataRoundTrip(t *testing.T) {
	assert.Nil(t, marshalMap(nil))
	assert.Nil(t, unmarshalMap(nil))
	assert.Nil(t, unmarshalMap([]byte("not json")))

	in := map[string]string{"theme": "dark"}
	assert.Equal(t, in, unmarshalMap(marshalMap(in)))
}

func TestLimitArg(t *testing.T) {
	assert.Nil(t, limitArg(0), "unbounded")
	assert.Nil(t, limitArg(-1))
	assert.Equal(t, 10_000, limitArg(10_000))
	assert.Equal(t, 20, limitArg(20))
	assert.Equal(t, []string{}, nonNilTags(nil))
	assert.Nil(t, nullTime(time.Time{}))
}
