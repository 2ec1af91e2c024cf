package domain

import (
	"strconv"
	"strings"
)

// Static configuration for the service area. Loaded once at compile time and
// immutable for the process lifetime; no locking required.

const (
	sectorMin = 1
	sectorMax = 17
)

// Sectors returns the closed sector catalog ("1".."17").
func Sectors() []string {
	out := make([]string, 0, sectorMax)
	for i := sectorMin; i <= sectorMax; i++ {
		out = append(out, strconv.Itoa(i))
	}
	return out
}

// NormalizeSector trims and canonicalizes a sector code ("05" -> "5").
// Returns false when the input is outside the catalog.
func NormalizeSector(input string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", false
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil || n < sectorMin || n > sectorMax {
		return "", false
	}
	return strconv.Itoa(n), true
}

// ClaimTypes is the closed claim-type catalog.
var ClaimTypes = []string{
	"Sin servicio",
	"Baja señal",
	"Corte de fibra",
	"Equipo dañado",
	"Desconexion a pedido",
	"Facturación",
	"Cambio de domicilio",
	"Otro",
}

const disconnectRequestType = "desconexion a pedido"

// NormalizeClaimType matches input case-insensitively against the catalog and
// returns the canonical spelling.
func NormalizeClaimType(input string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	for _, t := range ClaimTypes {
		if strings.EqualFold(trimmed, t) {
			return t, true
		}
	}
	return "", false
}

// IsDisconnectRequest reports whether the claim type is a voluntary
// disconnect request, which starts in the Disconnection status.
func IsDisconnectRequest(claimType string) bool {
	return strings.Contains(strings.ToLower(claimType), disconnectRequestType)
}

// InitialStatus selects the start state for a new claim of the given type.
func InitialStatus(claimType string) ClaimStatus {
	if IsDisconnectRequest(claimType) {
		return ClaimStatusDisconnection
	}
	return ClaimStatusPending
}

// Technicians is the roster of field technicians.
var Technicians = []string{"MARCOS", "ARIEL", "FACUNDO", "CRISTIAN", "JONATHAN", "MAURO"}

// NormalizeTechnician matches input case-insensitively against the roster.
func NormalizeTechnician(input string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	for _, t := range Technicians {
		if strings.EqualFold(trimmed, t) {
			return t, true
		}
	}
	return "", false
}

// Zone is a grouping of sectors used for work-group coverage decisions.
type Zone string

const (
	Zone1 Zone = "Zona 1"
	Zone2 Zone = "Zona 2"
	Zone3 Zone = "Zona 3"
	Zone4 Zone = "Zona 4"
	Zone5 Zone = "Zona 5"
)

var zoneSectors = map[Zone][]string{
	Zone1: {"1", "2", "3", "4"},
	Zone2: {"5", "6", "7", "8"},
	Zone3: {"9", "10"},
	Zone4: {"11", "12", "13"},
	Zone5: {"14", "15", "16", "17"},
}

// compatibleZones lists zones considered adjacent/substitutable for
// work-group load balancing.
var compatibleZones = map[Zone][]Zone{
	Zone1: {Zone3, Zone5},
	Zone2: {Zone4},
	Zone3: {Zone1, Zone2, Zone4, Zone5},
	Zone4: {Zone2},
	Zone5: {Zone1, Zone3},
}

var sectorZone = func() map[string]Zone {
	m := make(map[string]Zone)
	for zone, sectors := range zoneSectors {
		for _, s := range sectors {
			m[s] = zone
		}
	}
	return m
}()

// ZoneOfSector resolves the zone a sector belongs to. A sector absent from
// the table is a configuration error, surfaced by the second return.
func ZoneOfSector(sector string) (Zone, bool) {
	z, ok := sectorZone[sector]
	return z, ok
}

// CompatibleZones returns the zones compatible with z, not including z.
func CompatibleZones(z Zone) []Zone {
	return compatibleZones[z]
}

// ZoneSectors returns the sectors belonging to z.
func ZoneSectors(z Zone) []string {
	return zoneSectors[z]
}

// WorkGroups is the ordered catalog of work groups. The first N entries are
// the active groups when distributing load across N groups; the ordering also
// breaks load ties deterministically.
var WorkGroups = []string{"Grupo A", "Grupo B", "Grupo C", "Grupo D", "Grupo E"}

// ActiveGroups returns the first count groups, clamped to the catalog.
func ActiveGroups(count int) []string {
	if count < 0 {
		count = 0
	}
	if count > len(WorkGroups) {
		count = len(WorkGroups)
	}
	return WorkGroups[:count]
}
