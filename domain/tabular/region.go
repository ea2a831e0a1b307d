package tabular

// Region partitions rows by their role in the modeling workflow
type Region string

const (
	RegionTrain      Region = "train"
	RegionValidation Region = "validation"
	RegionTest       Region = "test"
	RegionLive       Region = "live"
)

// CanonicalRegions returns the four regions a complete dataset carries, in
// expected order. Tables may carry other region labels; the integrity checks
// report those as extras rather than rejecting them.
func CanonicalRegions() []Region {
	return []Region{RegionTrain, RegionValidation, RegionTest, RegionLive}
}

// String returns the region name
func (r Region) String() string {
	return string(r)
}
