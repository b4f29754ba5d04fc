package merge

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// panelHeader is the deliberately minimal output schema: join keys and
// names only, no other statement fields.
var panelHeader = []string{"year", "quarter", "name", "rssdid", "Lender_Name", "Lender_Id"}

// Stats summarizes one merge run.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	RowsWritten    int
	RowsMatched    int
}

type joinKey struct {
	rssd    string
	year    int
	quarter int
}

type loanRef struct {
	lenderName string
	lenderID   string
}

// Merge joins every call report under callDir against the master map and
// the matching DealScan year file, writing one merged_panel_<year>.csv per
// call report into outDir. A malformed source file is skipped; the run
// continues with the rest.
func Merge(masterMapPath, callDir, dealscanDir, outDir string) (Stats, error) {
	var stats Stats
	log := zap.L().With(zap.String("stage", "merge"))

	entries, err := LoadMasterMap(masterMapPath)
	if err != nil {
		return stats, err
	}
	log.Info("loaded master map", zap.Int("lenders", len(entries)))

	byLender := make(map[string][]string, len(entries))
	for _, e := range entries {
		byLender[e.Lender] = e.RSSDs
	}

	callFiles, err := globCallFiles(callDir)
	if err != nil {
		return stats, err
	}
	if len(callFiles) == 0 {
		return stats, eris.Errorf("merge: no call report files in %s", callDir)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return stats, eris.Wrapf(err, "merge: create output dir %s", outDir)
	}

	for _, callPath := range callFiles {
		name := filepath.Base(callPath)
		year, ok := FileYear(callPath)
		if !ok {
			log.Warn("call report filename has no year, skipping", zap.String("file", name))
			stats.FilesSkipped++
			continue
		}

		stmts, err := ReadStatements(callPath, year)
		if err != nil {
			log.Warn("skipping malformed call report", zap.String("file", name), zap.Error(err))
			stats.FilesSkipped++
			continue
		}

		lookup := buildLookup(dealscanDir, year, byLender, log)

		written, matched, err := writePanel(filepath.Join(outDir, "merged_panel_"+strconv.Itoa(year)+".csv"), stmts, lookup)
		if err != nil {
			return stats, err
		}
		stats.FilesProcessed++
		stats.RowsWritten += written
		stats.RowsMatched += matched
		log.Info("wrote panel",
			zap.Int("year", year),
			zap.Int("rows", written),
			zap.Int("matched", matched),
		)
	}
	return stats, nil
}

func globCallFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*call*.csv", "*call*.xlsx"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, eris.Wrap(err, "merge: glob call reports")
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// buildLookup maps (rssd, year, quarter) to the loan rows whose lender
// resolved to that identifier. Repeats are kept so the join fans out.
func buildLookup(dealscanDir string, year int, byLender map[string][]string, log *zap.Logger) map[joinKey][]loanRef {
	matches, err := filepath.Glob(filepath.Join(dealscanDir, "dealscan_*"+strconv.Itoa(year)+"*.csv"))
	if err != nil || len(matches) == 0 {
		log.Warn("no dealscan file for year", zap.Int("year", year))
		return nil
	}
	sort.Strings(matches)

	rows, err := ReadLoanRows(matches[0])
	if err != nil {
		log.Warn("skipping malformed dealscan file",
			zap.String("file", filepath.Base(matches[0])), zap.Error(err))
		return nil
	}

	lookup := make(map[joinKey][]loanRef)
	for _, row := range rows {
		for _, rssd := range byLender[row.LenderName] {
			k := joinKey{rssd: rssd, year: row.Year, quarter: row.Quarter}
			lookup[k] = append(lookup[k], loanRef{lenderName: row.LenderName, lenderID: row.LenderID})
		}
	}
	return lookup
}

func writePanel(outPath string, stmts []Statement, lookup map[joinKey][]loanRef) (written, matched int, err error) {
	f, err := os.Create(outPath)
	if err != nil {
		return 0, 0, eris.Wrapf(err, "merge: create %s", outPath)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(panelHeader); err != nil {
		return 0, 0, eris.Wrap(err, "merge: write header")
	}

	for _, s := range stmts {
		refs := lookup[joinKey{rssd: s.RSSD, year: s.Year, quarter: s.Quarter}]
		if len(refs) == 0 {
			if err := writePanelRow(w, s, loanRef{}); err != nil {
				return written, matched, err
			}
			written++
			continue
		}
		for _, ref := range refs {
			if err := writePanelRow(w, s, ref); err != nil {
				return written, matched, err
			}
			written++
			matched++
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return written, matched, eris.Wrap(err, "merge: flush panel")
	}
	return written, matched, nil
}

func writePanelRow(w *csv.Writer, s Statement, ref loanRef) error {
	row := []string{
		strconv.Itoa(s.Year),
		strconv.Itoa(s.Quarter),
		s.Name,
		s.RSSD,
		ref.lenderName,
		ref.lenderID,
	}
	if err := w.Write(row); err != nil {
		return eris.Wrap(err, "merge: write panel row")
	}
	return nil
}
