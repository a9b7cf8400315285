// Package reference holds the static lookup tables the pipeline validates
// and formats against: the US state/territory set and the USPS Publication 28
// abbreviation tables. Tables are built once per process and never mutated.
package reference

import (
	"sort"
	"strings"
)

// Tables is the read-only reference data passed into the validator, the
// formatter and the column resolver. Construct with Default and share freely;
// all lookups are safe for concurrent use.
type Tables struct {
	// Revision identifies the table set for cache invalidation.
	Revision string

	states       map[string]struct{}
	stateNames   map[string]string
	namesSorted  []string
	streetTypes  map[string]string
	directionals map[string]string
	unitTypes    map[string]string
}

// Default builds the standard table set.
func Default() *Tables {
	t := &Tables{
		Revision:     "usps-pub28-2024",
		states:       make(map[string]struct{}, len(stateCodes)),
		stateNames:   stateNameToCode,
		streetTypes:  streetTypeAbbrev,
		directionals: directionalAbbrev,
		unitTypes:    unitAbbrev,
	}
	for _, code := range stateCodes {
		t.states[code] = struct{}{}
	}
	for name := range stateNameToCode {
		t.namesSorted = append(t.namesSorted, name)
	}
	sort.Strings(t.namesSorted)
	return t
}

// IsState reports whether s is a valid state or territory code,
// case-insensitively.
func (t *Tables) IsState(s string) bool {
	_, ok := t.states[strings.ToUpper(strings.TrimSpace(s))]
	return ok
}

// StateCode resolves a state code or full state name to its two-letter code.
// Returns "" when the input matches neither.
func (t *Tables) StateCode(s string) string {
	up := strings.ToUpper(strings.TrimSpace(s))
	if _, ok := t.states[up]; ok {
		return up
	}
	return t.stateNames[up]
}

// StateCodes returns every valid code, for fuzzy suggestion scans.
func (t *Tables) StateCodes() []string {
	return stateCodes
}

// StateNames returns the full state names in sorted order, so fuzzy scans
// over them are deterministic.
func (t *Tables) StateNames() []string {
	return t.namesSorted
}

// AbbreviateStreetType maps a full street type ("STREET") to its USPS
// abbreviation ("ST"). Unmapped values pass through unchanged, uppercased.
func (t *Tables) AbbreviateStreetType(s string) string {
	return lookupOrSelf(t.streetTypes, s)
}

// AbbreviateDirectional maps a directional word ("NORTHWEST") to its USPS
// abbreviation ("NW"). Unmapped values pass through unchanged, uppercased.
func (t *Tables) AbbreviateDirectional(s string) string {
	return lookupOrSelf(t.directionals, s)
}

// AbbreviateUnitType maps a unit designator ("SUITE") to its USPS
// abbreviation ("STE"). Unmapped values pass through unchanged, uppercased.
func (t *Tables) AbbreviateUnitType(s string) string {
	return lookupOrSelf(t.unitTypes, s)
}

// IsStreetType reports whether the word is a known street type or one of its
// abbreviations.
func (t *Tables) IsStreetType(s string) bool {
	up := strings.ToUpper(strings.TrimSpace(s))
	if _, ok := t.streetTypes[up]; ok {
		return true
	}
	for _, abbr := range t.streetTypes {
		if abbr == up {
			return true
		}
	}
	return false
}

// IsDirectional reports whether the word is a directional or its abbreviation.
func (t *Tables) IsDirectional(s string) bool {
	up := strings.ToUpper(strings.TrimSpace(s))
	if _, ok := t.directionals[up]; ok {
		return true
	}
	for _, abbr := range t.directionals {
		if abbr == up {
			return true
		}
	}
	return false
}

// IsUnitType reports whether the word is a unit designator or its abbreviation.
func (t *Tables) IsUnitType(s string) bool {
	up := strings.ToUpper(strings.TrimSpace(s))
	if _, ok := t.unitTypes[up]; ok {
		return true
	}
	for _, abbr := range t.unitTypes {
		if abbr == up {
			return true
		}
	}
	return false
}

func lookupOrSelf(m map[string]string, s string) string {
	up := strings.ToUpper(strings.TrimSpace(s))
	if abbr, ok := m[up]; ok {
		return abbr
	}
	return up
}

// stateCodes covers the 50 states plus DC and the territories USPS serves.
var stateCodes = []string{
	"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "FL", "GA",
	"HI", "ID", "IL", "IN", "IA", "KS", "KY", "LA", "ME", "MD",
	"MA", "MI", "MN", "MS", "MO", "MT", "NE", "NV", "NH", "NJ",
	"NM", "NY", "NC", "ND", "OH", "OK", "OR", "PA", "RI", "SC",
	"SD", "TN", "TX", "UT", "VT", "VA", "WA", "WV", "WI", "WY",
	"DC", "AS", "GU", "MP", "PR", "VI",
}

var stateNameToCode = map[string]string{
	"ALABAMA": "AL", "ALASKA": "AK", "ARIZONA": "AZ", "ARKANSAS": "AR",
	"CALIFORNIA": "CA", "COLORADO": "CO", "CONNECTICUT": "CT", "DELAWARE": "DE",
	"FLORIDA": "FL", "GEORGIA": "GA", "HAWAII": "HI", "IDAHO": "ID",
	"ILLINOIS": "IL", "INDIANA": "IN", "IOWA": "IA", "KANSAS": "KS",
	"KENTUCKY": "KY", "LOUISIANA": "LA", "MAINE": "ME", "MARYLAND": "MD",
	"MASSACHUSETTS": "MA", "MICHIGAN": "MI", "MINNESOTA": "MN", "MISSISSIPPI": "MS",
	"MISSOURI": "MO", "MONTANA": "MT", "NEBRASKA": "NE", "NEVADA": "NV",
	"NEW HAMPSHIRE": "NH", "NEW JERSEY": "NJ", "NEW MEXICO": "NM", "NEW YORK": "NY",
	"NORTH CAROLINA": "NC", "NORTH DAKOTA": "ND", "OHIO": "OH", "OKLAHOMA": "OK",
	"OREGON": "OR", "PENNSYLVANIA": "PA", "RHODE ISLAND": "RI", "SOUTH CAROLINA": "SC",
	"SOUTH DAKOTA": "SD", "TENNESSEE": "TN", "TEXAS": "TX", "UTAH": "UT",
	"VERMONT": "VT", "VIRGINIA": "VA", "WASHINGTON": "WA", "WEST VIRGINIA": "WV",
	"WISCONSIN": "WI", "WYOMING": "WY", "DISTRICT OF COLUMBIA": "DC",
	"AMERICAN SAMOA": "AS", "GUAM": "GU", "NORTHERN MARIANA ISLANDS": "MP",
	"PUERTO RICO": "PR", "VIRGIN ISLANDS": "VI",
}

// streetTypeAbbrev is the USPS Publication 28 Appendix C1 street suffix table.
var streetTypeAbbrev = map[string]string{
	"ALLEY": "ALY", "ANEX": "ANX", "ANNEX": "ANX", "ARCADE": "ARC",
	"AVENUE": "AVE", "BAYOU": "BYU", "BEACH": "BCH", "BEND": "BND",
	"BLUFF": "BLF", "BLUFFS": "BLFS", "BOTTOM": "BTM", "BOULEVARD": "BLVD",
	"BRANCH": "BR", "BRIDGE": "BRG", "BROOK": "BRK", "BROOKS": "BRKS",
	"BURG": "BG", "BURGS": "BGS", "BYPASS": "BYP", "BYWAY": "BYW",
	"CAMP": "CP", "CANYON": "CYN", "CAPE": "CPE", "CAUSEWAY": "CSWY",
	"CENTER": "CTR", "CENTERS": "CTRS", "CIRCLE": "CIR", "CIRCLES": "CIRS",
	"CLIFF": "CLF", "CLIFFS": "CLFS", "CLOSE": "CL", "CLUB": "CLB",
	"COMMON": "CMN", "COMMONS": "CMNS", "CORNER": "COR", "CORNERS": "CORS",
	"COURSE": "CRSE", "COURT": "CT", "COURTS": "CTS", "COVE": "CV",
	"COVES": "CVS", "CREEK": "CRK", "CRESCENT": "CRES", "CREST": "CRST",
	"CROSSING": "XING", "CROSSROAD": "XRD", "CROSSROADS": "XRDS", "CURVE": "CURV",
	"DALE": "DL", "DAM": "DM", "DIVIDE": "DV", "DRIVE": "DR",
	"DRIVES": "DRS", "ESTATE": "EST", "ESTATES": "ESTS", "EXPRESSWAY": "EXPY",
	"EXTENSION": "EXT", "EXTENSIONS": "EXTS", "FALL": "FALL", "FALLS": "FLS",
	"FERRY": "FRY", "FIELD": "FLD", "FIELDS": "FLDS", "FLAT": "FLT",
	"FLATS": "FLTS", "FORD": "FRD", "FORDS": "FRDS", "FOREST": "FRST",
	"FORGE": "FRG", "FORGES": "FRGS", "FORK": "FRK", "FORKS": "FRKS",
	"FORT": "FT", "FREEWAY": "FWY", "GARDEN": "GDN", "GARDENS": "GDNS",
	"GATEWAY": "GTWY", "GLEN": "GLN", "GLENS": "GLNS", "GREEN": "GRN",
	"GREENS": "GRNS", "GROVE": "GRV", "GROVES": "GRVS", "HARBOR": "HBR",
	"HARBORS": "HBRS", "HAVEN": "HVN", "HEIGHTS": "HTS", "HIGHWAY": "HWY",
	"HILL": "HL", "HILLS": "HLS", "HOLLOW": "HOLW", "INLET": "INLT",
	"ISLAND": "IS", "ISLANDS": "ISS", "ISLE": "ISLE", "JUNCTION": "JCT",
	"JUNCTIONS": "JCTS", "KEY": "KY", "KEYS": "KYS", "KNOLL": "KNL",
	"KNOLLS": "KNLS", "LAKE": "LK", "LAKES": "LKS", "LAND": "LAND",
	"LANDING": "LNDG", "LANE": "LN", "LANES": "LNS", "LIGHT": "LGT",
	"LIGHTS": "LGTS", "LOAF": "LF", "LOCK": "LCK", "LOCKS": "LCKS",
	"LODGE": "LDG", "LOOP": "LOOP", "MALL": "MALL", "MANOR": "MNR",
	"MANORS": "MNRS", "MEADOW": "MDW", "MEADOWS": "MDWS", "MILE": "MI",
	"MILES": "MIS", "MILL": "ML", "MILLS": "MLS", "MISSION": "MSN",
	"MOUNT": "MT", "MOUNTAIN": "MTN", "MOUNTAINS": "MTNS", "NECK": "NCK",
	"ORCHARD": "ORCH", "OVAL": "OVAL", "OVERPASS": "OPAS", "PARK": "PARK",
	"PARKS": "PARK", "PARKWAY": "PKWY", "PARKWAYS": "PKWY", "PASS": "PASS",
	"PASSAGE": "PSGE", "PATH": "PATH", "PIKE": "PIKE", "PINE": "PNE",
	"PINES": "PNES", "PLACE": "PL", "PLAIN": "PLN", "PLAINS": "PLNS",
	"PLAZA": "PLZ", "POINT": "PT", "POINTS": "PTS", "PORT": "PRT",
	"PORTS": "PRTS", "PRAIRIE": "PR", "RADIAL": "RADL", "RAMP": "RAMP",
	"RANCH": "RNCH", "RAPID": "RPD", "RAPIDS": "RPDS", "REST": "RST",
	"RIDGE": "RDG", "RIDGES": "RDGS", "RIVER": "RIV", "ROAD": "RD",
	"ROADS": "RDS", "ROUTE": "RTE", "ROW": "ROW", "RUE": "RUE",
	"RUN": "RUN", "SHOAL": "SHL", "SHOALS": "SHLS", "SHORE": "SHR",
	"SHORES": "SHRS", "SKYWAY": "SKWY", "SPRING": "SPG", "SPRINGS": "SPGS",
	"SPUR": "SPUR", "SQUARE": "SQ", "SQUARES": "SQS", "STATION": "STA",
	"STRAVENUE": "STRA", "STREAM": "STRM", "STREET": "ST", "STREETS": "STS",
	"SUMMIT": "SMT", "TERRACE": "TER", "THROUGHWAY": "TRWY", "TRAIL": "TRL",
	"TUNNEL": "TUNL", "TURNPIKE": "TPKE", "UNDERPASS": "UPAS", "UNION": "UN",
	"UNIONS": "UNS", "VALLEY": "VLY", "VALLEYS": "VLYS", "VIADUCT": "VIA",
	"VIEW": "VW", "VIEWS": "VWS", "VILLAGE": "VLG", "VILLAGES": "VLGS",
	"VILLE": "VL", "VISTA": "VIS", "WALK": "WALK", "WALKS": "WALK",
	"WALL": "WALL", "WAY": "WAY", "WAYS": "WAYS", "WELL": "WL",
	"WELLS": "WLS",
}

var directionalAbbrev = map[string]string{
	"NORTH": "N", "NORTHEAST": "NE", "EAST": "E", "SOUTHEAST": "SE",
	"SOUTH": "S", "SOUTHWEST": "SW", "WEST": "W", "NORTHWEST": "NW",
}

// unitAbbrev is the USPS Publication 28 Appendix C2 secondary unit table.
var unitAbbrev = map[string]string{
	"APARTMENT": "APT", "BASEMENT": "BSMT", "BUILDING": "BLDG",
	"DEPARTMENT": "DEPT", "FLOOR": "FL", "FRONT": "FRNT", "HANGAR": "HNGR",
	"LOBBY": "LBBY", "LOT": "LOT", "LOWER": "LOWR", "OFFICE": "OFC",
	"PENTHOUSE": "PH", "PIER": "PIER", "REAR": "REAR", "ROOM": "RM",
	"SIDE": "SIDE", "SPACE": "SPC", "STOP": "STOP", "SUITE": "STE",
	"TRAILER": "TRLR", "UNIT": "UNIT", "UPPER": "UPPR",
}
