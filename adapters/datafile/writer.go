package datafile

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"datacheck/domain/tabular"
)

// WriteCSV writes a table in the canonical column layout, with features
// named feature1..featureN and missing labels written as NA. Loading the
// output back produces an equivalent table, which makes this useful for
// fixtures and demo datasets.
func WriteCSV(table *tabular.Table, w io.Writer) error {
	cw := csv.NewWriter(w)

	header := []string{columnID, columnEra, columnDataType}
	for j := 1; j <= table.FeatureCount(); j++ {
		header = append(header, fmt.Sprintf("%s%d", featurePrefix, j))
	}
	header = append(header, columnTarget)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	x := table.Features()
	labels := table.Labels()
	ids := table.IDs()
	record := make([]string, 0, len(header))
	for i := 0; i < table.Rows(); i++ {
		record = record[:0]
		record = append(record, ids[i], table.EraAt(i), string(table.RegionAt(i)))
		for j := 0; j < table.FeatureCount(); j++ {
			record = append(record, strconv.FormatFloat(x.At(i, j), 'f', -1, 64))
		}
		if math.IsNaN(labels[i]) {
			record = append(record, "NA")
		} else {
			record = append(record, strconv.FormatFloat(labels[i], 'f', -1, 64))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
