package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/ebcharge/internal/core/domain"
)

const sampleCatalog = "\xef\xbb\xbfplace_ref,place_name,instructions,terminal_ref,terminal_name,lat,lon,power_kw,price,standing,status\n" +
	"bastille,Paris Bastille,Level -1,b1,Bastille 1,48.8532,2.3692,22,3.5,false,\n" +
	"bastille,Paris Bastille,Level -1,b2,Bastille 2,48.8533,2.3693,50,4.0,true,under_repair\n" +
	"partdieu,Lyon Part-Dieu,,p1,Part-Dieu 1,45.7606,4.8590,11,2,,AVAILABLE\n"

func TestParseCatalog_GroupsTerminalsByPlace(t *testing.T) {
	places, problems, err := parseCatalog(strings.NewReader(sampleCatalog), "paris-net")
	require.NoError(t, err)
	assert.Empty(t, problems)
	require.Len(t, places, 2)

	bastille := places[0]
	assert.Equal(t, "paris-net:bastille", bastille.Ref)
	assert.Equal(t, "Level -1", bastille.Place.Instructions)
	assert.Equal(t, domain.GeoPoint{Lat: 48.8532, Lon: 2.3692}, bastille.Place.Location)
	require.Len(t, bastille.Terminals, 2)
	assert.Equal(t, "paris-net:b1", bastille.Terminals[0].Ref)
	assert.Equal(t, domain.TerminalAvailable, bastille.Terminals[0].Terminal.Status)
	assert.Equal(t, 50.0, bastille.Terminals[1].Terminal.PowerKW)
	assert.True(t, bastille.Terminals[1].Terminal.Standing)
	assert.Equal(t, domain.TerminalUnderRepair, bastille.Terminals[1].Terminal.Status)

	assert.Equal(t, domain.TerminalAvailable, places[1].Terminals[0].Terminal.Status)
}

func TestParseCatalog_SkipsInvalidRows(t *testing.T) {
	csv := "place_ref,place_name,terminal_ref,terminal_name,lat,lon,status\n" +
		"a,A,t1,T1,48.85,2.35,\n" +
		"a,A,t2,T2,91,2.35,\n" +
		"a,A,t3,T3,north,2.35,\n" +
		"a,A,t4,T4,48.85,2.35,occupied\n" +
		"a,A,t5,T5,48.85,2.35,exploded\n" +
		"a,A,t1,T1 again,48.85,2.35,\n" +
		",A,t6,T6,48.85,2.35,\n"

	places, problems, err := parseCatalog(strings.NewReader(csv), "net")
	require.NoError(t, err)
	require.Len(t, places, 1)
	require.Len(t, places[0].Terminals, 1)
	assert.Equal(t, "net:t1", places[0].Terminals[0].Ref)

	require.Len(t, problems, 6)
	assert.Contains(t, problems[0], "line 3: latitude")
	assert.Contains(t, problems[1], "lat must be a number")
	assert.Contains(t, problems[2], "status occupied")
	assert.Contains(t, problems[3], `unknown status "exploded"`)
	assert.Contains(t, problems[4], "duplicate terminal_ref")
	assert.Contains(t, problems[5], "place_ref is required")
}

func TestParseCatalog_MissingColumn(t *testing.T) {
	_, _, err := parseCatalog(strings.NewReader("place_ref,place_name,terminal_ref,lat,lon\n"), "net")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "terminal_name")
}
