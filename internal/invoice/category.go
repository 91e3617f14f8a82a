package invoice

import "strings"

// SplitZeroValue partitions Evri records into core rows (real charge lines)
// and excluded rows (zero-value header and meta artifacts). Only a value of
// exactly zero is excluded; anything else is a core row.
func SplitZeroValue(records []ServiceLineRecord) (core, excluded []ServiceLineRecord) {
	for _, rec := range records {
		if rec.Value.IsZero() {
			excluded = append(excluded, rec)
		} else {
			core = append(core, rec)
		}
	}
	return core, excluded
}

// SplitDespatch partitions core rows into outbound despatch rows and extra
// rows (returns, SMS/ETA, relabelling, surcharges, repackaging, fuel).
//
// A row is despatch-like when its service name contains Despatch, Parcel or
// Packet. Returns are a separate flow, and Parcel Repackaged is an extra
// handling charge despite the Parcel keyword, so either of those keywords
// removes the row from the despatch bucket regardless of the others.
func SplitDespatch(core []ServiceLineRecord) (despatch, extras []ServiceLineRecord) {
	for _, rec := range core {
		if isDespatch(rec.Service) {
			despatch = append(despatch, rec)
		} else {
			extras = append(extras, rec)
		}
	}
	return despatch, extras
}

func isDespatch(service string) bool {
	name := strings.ToLower(service)
	despatchLike := strings.Contains(name, "despatch") ||
		strings.Contains(name, "parcel") ||
		strings.Contains(name, "packet")
	return despatchLike &&
		!strings.Contains(name, "return") &&
		!strings.Contains(name, "repackaged")
}
