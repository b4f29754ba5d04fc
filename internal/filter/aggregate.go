package filter

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const (
	colLenderName      = "lender_name"
	colInstitutionType = "lender_institution_type"
	colCountry         = "lender_operating_country"
)

// Stats summarizes one aggregation run.
type Stats struct {
	FilesScanned int
	FilesSkipped int
	RowsKept     int
	UniqueNames  int
}

// Aggregate scans every dealscan_*.csv under dealscanDir, keeps rows that
// pass both the bank-likeness and US-domicile checks, and writes the
// deduplicated, sorted lender name list to outPath.
func Aggregate(dealscanDir, outPath string) (Stats, error) {
	var stats Stats
	log := zap.L().With(zap.String("stage", "aggregate"))

	files, err := filepath.Glob(filepath.Join(dealscanDir, "dealscan_*.csv"))
	if err != nil {
		return stats, eris.Wrap(err, "filter: glob dealscan files")
	}
	if len(files) == 0 {
		return stats, eris.Errorf("filter: no dealscan_*.csv files in %s", dealscanDir)
	}
	sort.Strings(files)

	names := make(map[string]struct{})
	for _, path := range files {
		kept, err := collectFile(path, names)
		if err != nil {
			log.Warn("skipping malformed dealscan file",
				zap.String("file", filepath.Base(path)),
				zap.Error(err),
			)
			stats.FilesSkipped++
			continue
		}
		stats.FilesScanned++
		stats.RowsKept += kept
		log.Info("scanned dealscan file",
			zap.String("file", filepath.Base(path)),
			zap.Int("kept", kept),
		)
	}

	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)
	stats.UniqueNames = len(sorted)

	if err := writeNames(outPath, sorted); err != nil {
		return stats, err
	}
	return stats, nil
}

// collectFile reads one dealscan CSV and adds passing lender names to names.
func collectFile(path string, names map[string]struct{}) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, eris.Wrapf(err, "filter: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return 0, eris.Wrapf(err, "filter: read header of %s", path)
	}
	idx := headerIndex(header)

	nameIdx, ok := idx[colLenderName]
	if !ok {
		return 0, eris.Errorf("filter: %s: missing column %s", path, colLenderName)
	}
	countryIdx, hasCountry := idx[colCountry]
	typeIdx, hasType := idx[colInstitutionType]

	kept := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return kept, eris.Wrapf(err, "filter: read row of %s", path)
		}

		name := field(record, nameIdx)
		instType := ""
		if hasType {
			instType = field(record, typeIdx)
		}
		country := ""
		if hasCountry {
			country = field(record, countryIdx)
		}

		if !IsBankLike(name, instType) || !IsUSDomiciled(country, instType) {
			continue
		}
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		names[trimmed] = struct{}{}
		kept++
	}
	return kept, nil
}

// headerIndex maps lowercased, trimmed column names to their positions.
// Strips a UTF-8 BOM from the first column if present.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, col := range header {
		col = strings.TrimPrefix(col, "\uFEFF")
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return idx
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}

func writeNames(outPath string, names []string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return eris.Wrapf(err, "filter: create output dir for %s", outPath)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return eris.Wrapf(err, "filter: create %s", outPath)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Lender_Name"}); err != nil {
		return eris.Wrap(err, "filter: write header")
	}
	for _, n := range names {
		if err := w.Write([]string{n}); err != nil {
			return eris.Wrap(err, "filter: write row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "filter: flush output")
	}
	return nil
}
