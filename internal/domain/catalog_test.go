package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSector(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1", "1", true},
		{" 17 ", "17", true},
		{"05", "5", true},
		{"0", "", false},
		{"18", "", false},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := NormalizeSector(tc.in)
		assert.Equalf(t, tc.ok, ok, "input %q", tc.in)
		assert.Equalf(t, tc.want, got, "input %q", tc.in)
	}
}

func TestNormalizeClaimType(t *testing.T) {
	got, ok := NormalizeClaimType("sin servicio")
	require.True(t, ok)
	assert.Equal(t, "Sin servicio", got)

	_, ok = NormalizeClaimType("inexistente")
	assert.False(t, ok)
}

func TestInitialStatus(t *testing.T) {
	assert.Equal(t, ClaimStatusDisconnection, InitialStatus("Desconexion a pedido"))
	assert.Equal(t, ClaimStatusPending, InitialStatus("Sin servicio"))
	assert.Equal(t, ClaimStatusPending, InitialStatus("Facturación"))
}

func TestIsDisconnectRequest(t *testing.T) {
	assert.True(t, IsDisconnectRequest("Desconexion a pedido"))
	assert.True(t, IsDisconnectRequest("DESCONEXION A PEDIDO"))
	assert.False(t, IsDisconnectRequest("Sin servicio"))
}

func TestZoneOfSectorCoversCatalog(t *testing.T) {
	for _, sector := range Sectors() {
		_, ok := ZoneOfSector(sector)
		assert.Truef(t, ok, "sector %s has no zone", sector)
	}
	_, ok := ZoneOfSector("99")
	assert.False(t, ok)
}

func TestZoneMapping(t *testing.T) {
	cases := map[string]Zone{
		"1":  Zone1,
		"4":  Zone1,
		"5":  Zone2,
		"8":  Zone2,
		"9":  Zone3,
		"10": Zone3,
		"11": Zone4,
		"13": Zone4,
		"14": Zone5,
		"17": Zone5,
	}
	for sector, want := range cases {
		zone, ok := ZoneOfSector(sector)
		require.True(t, ok)
		assert.Equalf(t, want, zone, "sector %s", sector)
	}
}

func TestCompatibleZonesAreSymmetric(t *testing.T) {
	for zone, compat := range compatibleZones {
		for _, other := range compat {
			assert.Containsf(t, compatibleZones[other], zone,
				"%s lists %s but not vice versa", zone, other)
		}
	}
}

func TestActiveGroups(t *testing.T) {
	assert.Equal(t, []string{"Grupo A", "Grupo B"}, ActiveGroups(2))
	assert.Len(t, ActiveGroups(10), len(WorkGroups))
	assert.Empty(t, ActiveGroups(0))
}

func TestNormalizeTechnician(t *testing.T) {
	got, ok := NormalizeTechnician("marcos")
	require.True(t, ok)
	assert.Equal(t, "MARCOS", got)

	_, ok = NormalizeTechnician("PEDRO")
	assert.False(t, ok)
}
