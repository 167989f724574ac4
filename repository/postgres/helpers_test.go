package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMarshalMap(t *testing.T) {
	assert.Nil(t, marshalMap(nil))
	assert.Nil(t, marshalMap(map[string]string{}))
	assert.JSONEq(t, `{"source":"profile-setup"}`, string(marshalMap(map[string]string{"source": "profile-setup"})))
}

func TestNullTime(t *testing.T) {
	assert.Nil(t, nullTime(time.Time{}))

	loc := time.FixedZone("UTC+2", 2*60*60)
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, loc)
	got, ok := nullTime(ts).(time.Time)
	assert.True(t, ok)
	assert.Equal(t, time.UTC, got.Location())
	assert.True(t, got.Equal(ts))
}
