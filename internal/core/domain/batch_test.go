package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestClampLimit tests batch size normalisation
func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultBatchLimit, ClampLimit(0))
	assert.Equal(t, DefaultBatchLimit, ClampLimit(-3))
	assert.Equal(t, 5, ClampLimit(5))
	assert.Equal(t, MaxBatchLimit, ClampLimit(MaxBatchLimit+1))
}

// TestBatchResult_Add tests counters and drift reporting
func TestBatchResult_Add(t *testing.T) {
	var r BatchResult
	r.Add(BatchItem{RecordID: 1, Status: ItemSuccess})
	r.Add(BatchItem{RecordID: 2, Status: ItemFailure, Reason: "boom"})
	r.Add(BatchItem{RecordID: 3, Status: ItemSkipped, Reason: SkipReasonAlreadyAdded})
	r.Add(BatchItem{RecordID: 4, Status: ItemSuccess, FlagError: "disk full"})

	assert.Equal(t, 4, r.Processed)
	assert.Equal(t, 2, r.Successes)
	assert.Equal(t, 1, r.Failures)

	drifted := r.Drifted()
	if assert.Len(t, drifted, 1) {
		assert.Equal(t, int64(4), drifted[0].RecordID)
	}
}
