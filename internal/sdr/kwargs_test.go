package sdr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKwargsPreservesOrder(t *testing.T) {
	got := ParseKwargs("LNA=20,VGA=10,AMP=0")
	require.Len(t, got, 3)
	assert.Equal(t, KV{"LNA", "20"}, got[0])
	assert.Equal(t, KV{"VGA", "10"}, got[1])
	assert.Equal(t, KV{"AMP", "0"}, got[2])
}

func TestParseKwargsTrimsAndSkips(t *testing.T) {
	got := ParseKwargs(" driver = rtlsdr , serial=0001, bogus ,=orphan")
	require.Len(t, got, 2)
	assert.Equal(t, KV{"driver", "rtlsdr"}, got[0])
	assert.Equal(t, KV{"serial", "0001"}, got[1])
}

func TestParseKwargsEmptyAndGarbage(t *testing.T) {
	assert.Empty(t, ParseKwargs(""))
	assert.Empty(t, ParseKwargs("no pairs here"))
	assert.Empty(t, ParseKwargs(",,,"))
}

func TestKwargsMapAndString(t *testing.T) {
	k := ParseKwargs("a=1,b=2,a=3")
	m := k.Map()
	assert.Equal(t, "3", m["a"])
	assert.Equal(t, "2", m["b"])
	assert.Equal(t, "a=1,b=2,a=3", k.String())
}

func TestKwargsValueMayContainSpaces(t *testing.T) {
	got := ParseKwargs("label=Generic RTL2832U OEM")
	require.Len(t, got, 1)
	assert.Equal(t, "Generic RTL2832U OEM", got[0].Value)
}
