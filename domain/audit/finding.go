package audit

// Section identifies one of the six fixed check groups
type Section string

const (
	SectionIDs         Section = "IDS"
	SectionEras        Section = "ERAS"
	SectionRegions     Section = "REGIONS"
	SectionFeatures    Section = "FEATURES"
	SectionLabels      Section = "LABELS"
	SectionPredictions Section = "PREDICTIONS"
)

// Sections returns the check groups in canonical execution order
func Sections() []Section {
	return []Section{
		SectionIDs,
		SectionEras,
		SectionRegions,
		SectionFeatures,
		SectionLabels,
		SectionPredictions,
	}
}

// Finding records a single out-of-tolerance observation. The Message carries
// the fully formatted check line exactly as it was emitted to the audit log.
type Finding struct {
	Section  Section  `json:"section" db:"section"`
	Severity Severity `json:"severity" db:"severity"`
	Message  string   `json:"message" db:"message"`
}
