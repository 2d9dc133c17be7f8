package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceSets(t *testing.T) {
	a := []string{"Tandem", "Video", "Coach", "Video"}
	b := []string{"Coach", "Camera"}

	assert.Equal(t, []string{"Tandem", "Video"}, Difference(a, b))
	assert.Equal(t, []string{"Tandem", "Video", "Coach", "Camera"}, Union(a, b))
	assert.Equal(t, []string{"Coach"}, Intersect(a, b))
	assert.Empty(t, Intersect(nil, b))
	assert.Equal(t, []string{"Coach", "Camera"}, Union(nil, b))
}

func TestNormalizeServices(t *testing.T) {
	assert.Equal(t, []string{"Tandem", "Video"}, NormalizeServices([]string{" Tandem", "", "Video ", "Tandem"}))
	assert.Empty(t, NormalizeServices(nil))
}

func TestInvoiceHelpers(t *testing.T) {
	inv := Invoice{Items: []LineItem{
		{JumpID: "a", Service: "Tandem", Total: 45},
		{JumpID: "b", Service: "Video", Total: 30},
		{JumpID: "a", Service: "Video", Total: 30},
	}}

	assert.Equal(t, []string{"Tandem", "Video"}, inv.ServicesFor("a"))
	assert.Empty(t, inv.ServicesFor("c"))
	assert.Equal(t, []string{"a", "b"}, inv.JumpIDs())
	assert.Equal(t, 105.0, inv.SumItems())

	clone := inv.Clone()
	clone.Items[0].Service = "Changed"
	assert.Equal(t, "Tandem", inv.Items[0].Service)
}

func TestParseRegistryKind(t *testing.T) {
	kind, err := ParseRegistryKind("dz")
	assert.NoError(t, err)
	assert.Equal(t, RegistryDropZone, kind)

	_, err = ParseRegistryKind("planes")
	assert.Error(t, err)
}
