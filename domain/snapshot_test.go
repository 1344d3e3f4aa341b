package domain

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSnapshotReplaceArrivalOrderWins(t *testing.T) {
	var snap Snapshot[Balance]
	assert.False(t, snap.Fresh())

	snap.Replace(Balance{AvailableINR: decimal.NewFromInt(1000)}, ProvenancePulled)
	snap.Replace(Balance{AvailableINR: decimal.NewFromInt(1500)}, ProvenancePushed)
	assert.True(t, snap.Payload.AvailableINR.Equal(decimal.NewFromInt(1500)))
	assert.Equal(t, ProvenancePushed, snap.Provenance)

	// a later pull overwrites a pushed value just the same
	snap.Replace(Balance{AvailableINR: decimal.NewFromInt(1200)}, ProvenancePulled)
	assert.True(t, snap.Payload.AvailableINR.Equal(decimal.NewFromInt(1200)))
	assert.Equal(t, ProvenancePulled, snap.Provenance)
	assert.True(t, snap.Fresh())
}

func TestSnapshotFailKeepsPayload(t *testing.T) {
	var snap Snapshot[Balance]
	snap.Replace(Balance{AvailableINR: decimal.NewFromInt(1000)}, ProvenancePulled)

	snap.Loading = true
	snap.Fail(errors.New("gateway timeout"))

	assert.True(t, snap.Payload.AvailableINR.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, "gateway timeout", snap.Err)
	assert.False(t, snap.Loading)
}

func TestSnapshotReplaceClearsPreviousError(t *testing.T) {
	var snap Snapshot[Balance]
	snap.Fail(errors.New("boom"))
	snap.Replace(Balance{}, ProvenancePushed)
	assert.Empty(t, snap.Err)
}

func TestSnapshotClear(t *testing.T) {
	var snap Snapshot[Balance]
	snap.Replace(Balance{AvailableINR: decimal.NewFromInt(1000)}, ProvenancePushed)

	snap.Clear()

	assert.True(t, snap.Payload.AvailableINR.IsZero())
	assert.Equal(t, Provenance(""), snap.Provenance)
	assert.False(t, snap.Fresh())
	assert.Empty(t, snap.Err)
}
