package billing

import (
	"testing"

	"github.com/andy/jumplog/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestResolveRate(t *testing.T) {
	j := domain.Jump{RateAtTimeOfJump: []domain.ServiceRate{{Service: "Tandem", Rate: 40}}}
	table := NewRateTable([]domain.ServiceRate{{Service: "Tandem", Rate: 45}, {Service: "Video", Rate: 30}})

	assert.Equal(t, 40.0, ResolveRate(j, "Tandem", table))
	assert.Equal(t, 30.0, ResolveRate(j, "Video", table))
	assert.Equal(t, 0.0, ResolveRate(j, "Camera", table))
	assert.Equal(t, 0.0, ResolveRate(domain.Jump{}, "Video", nil))
}

func TestSnapshotRates(t *testing.T) {
	j := domain.Jump{
		WorkJump:         true,
		InvoiceItems:     []string{"Tandem", "Video", "Camera"},
		RateAtTimeOfJump: []domain.ServiceRate{{Service: "Tandem", Rate: 40}},
	}

	out := SnapshotRates(j, rates)
	assert.Equal(t, []domain.ServiceRate{
		{Service: "Tandem", Rate: 40},
		{Service: "Video", Rate: 30},
	}, out.RateAtTimeOfJump)
	assert.Len(t, j.RateAtTimeOfJump, 1)

	fun := domain.Jump{InvoiceItems: []string{"Video"}}
	assert.Empty(t, SnapshotRates(fun, rates).RateAtTimeOfJump)
}
