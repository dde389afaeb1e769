// Package domain models federal spending data keyed by US geography.
//
// # Data Source
//
// Spending summaries are CSV exports of award obligations (one row per
// congressional district or per state) with one column per fiscal year,
// e.g. "fy_2024_obligations". Column names vary between reports, so the
// geographic column and the value columns are supplied by the caller.
//
// # Geographic Identifiers
//
// Input rows use postal conventions:
//
//	State:    "CA"     two-letter USPS abbreviation, case-insensitive
//	District: "CA-01"  state abbreviation, hyphen, district number
//	          "AK-00"  at-large district (a state's only seat)
//	          "DC-ZZ"  non-voting delegate / unassigned area
//
// Census boundary files key features by FIPS codes instead:
//
//	State:    "06"     2-digit state FIPS
//	District: "0601"   state FIPS followed by the 2-digit district number
//
// The join key is always the Census form. Conversion is table driven (50
// states, DC and five territories) and never fails loudly: an identifier that
// cannot be converted is reported as absent and the row is dropped. See
// [DistrictToJoinKey] and [StateToJoinKey].
//
// # Values
//
// Value cells are coerced to float64; blanks and unparseable text count as 0.
// Multiple value columns collapse into one aggregate per row (mean, sum or
// median across the columns of that row, not across rows).
//
// A value of zero or below means "no data" for colouring. Both colour scales
// route it to the fixed no-data colour instead of interpolating it, so a
// region with no awards is visibly different from a region with small awards.
//
// # Colour Scales
//
//	Stepped:    fixed dollar bins shared by every map, so legends compare
//	            across datasets:
//	              < $500K | $500K–$5M | $5M–$50M | $50M–$250M | $250M–$1B | $1B+
//	            Bin upper bounds are exclusive; anything past the last bound
//	            lands in the top bin.
//	Continuous: two-colour blend between the observed min and max, on a
//	            log1p axis by default or a linear axis on request.
package domain
