package patient

import "strings"

// OtherDepartment is the effective-department bucket for anything blank or
// unrecognized.
const OtherDepartment = "Other"

// KnownDepartments is the fixed list the statistics filter recognizes. Note
// that department itself is free text on the record; anything outside this
// list still aggregates, under the Other filter bucket.
var KnownDepartments = []string{
	"Finance and Corporate Services", "Front Office", "HR", "Guest", "Engineering",
	"Life Sciences & Education", "Base Camp", "Motorpool", "Office of the VP",
	"Parks and Adventure", "Park Grounds", "Sales & Marketing", "Safari Camp",
	"Santican Cattle Station", "Security", "Tenants-Outpost", "Tenants-Auntie Anne's",
	"Tenants-Pizzeria Michelangelo", "Tenants-Convenient Store", "Tunnel Garden",
	"ML-Agri Ventures",
}

var knownDepartmentSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(KnownDepartments))
	for _, d := range KnownDepartments {
		m[d] = struct{}{}
	}
	return m
}()

// EffectiveDepartment returns the department bucket used for filtering: the
// trimmed department when it is a known value, otherwise Other.
func (r *Record) EffectiveDepartment() string {
	raw := strings.TrimSpace(r.Department)
	if raw == "" {
		return OtherDepartment
	}
	if _, ok := knownDepartmentSet[raw]; !ok {
		return OtherDepartment
	}
	return raw
}

// DisplayDepartment returns the grouping label shown in statistics output.
// Unknown departments keep their original trimmed string so distinct unknown
// values stay distinct rows; only a blank department collapses to Other.
func (r *Record) DisplayDepartment() string {
	eff := r.EffectiveDepartment()
	if eff != OtherDepartment {
		return eff
	}
	if raw := strings.TrimSpace(r.Department); raw != "" {
		return raw
	}
	return OtherDepartment
}
