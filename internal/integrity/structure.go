package integrity

import (
	"fmt"
	"sort"

	"datacheck/domain/audit"
	"datacheck/domain/tabular"
)

// checkIDs verifies that every row carries a distinct id
func (c *Checker) checkIDs(rep *reporter, table *tabular.Table) error {
	distinct := make(map[string]struct{}, table.Rows())
	for _, id := range table.IDs() {
		distinct[id] = struct{}{}
	}
	duplicates := table.Rows() - len(distinct)
	rep.equal("duplicate ids", float64(duplicates), 0, audit.SeverityWarn)
	return nil
}

// checkEras verifies the distinct era count of each expected region
func (c *Checker) checkEras(rep *reporter, table *tabular.Table) error {
	for _, region := range c.thresholds.regionOrder() {
		distinct := make(map[string]struct{})
		for i := 0; i < table.Rows(); i++ {
			if table.RegionAt(i) == region {
				distinct[table.EraAt(i)] = struct{}{}
			}
		}
		message := fmt.Sprintf("number of eras in %s", region)
		want := c.thresholds.ErasPerRegion[region]
		rep.equal(message, float64(len(distinct)), float64(want), audit.SeverityWarn)
	}
	return nil
}

// checkRegions compares the observed region set against the expected one.
// The expected set is the key set of the era count thresholds.
func (c *Checker) checkRegions(rep *reporter, table *tabular.Table) error {
	expected := make(map[tabular.Region]bool, len(c.thresholds.ErasPerRegion))
	for region := range c.thresholds.ErasPerRegion {
		expected[region] = true
	}
	observed := make(map[tabular.Region]bool)
	for _, region := range table.Regions() {
		observed[region] = true
	}

	var extra, missing []string
	for region := range observed {
		if !expected[region] {
			extra = append(extra, string(region))
		}
	}
	for region := range expected {
		if !observed[region] {
			missing = append(missing, string(region))
		}
	}
	sort.Strings(extra)
	sort.Strings(missing)

	if len(extra) > 0 {
		rep.note(audit.SeverityWarn, fmt.Sprintf("extra regions found: %v", extra))
	}
	if len(missing) > 0 {
		rep.note(audit.SeverityWarn, fmt.Sprintf("missing regions: %v", missing))
	}
	return nil
}
