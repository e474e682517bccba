package service

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"hedgeblotter/internal/models"
	"hedgeblotter/internal/normalize"
	"hedgeblotter/internal/recon"
	"hedgeblotter/internal/session"
	"hedgeblotter/internal/tabular"
)

// Importer turns uploaded spreadsheets into normalized trade records and
// stages them on the session until the user commits them to the blotter.
type Importer struct {
	Blotter *Blotter
	Logger  *zap.Logger
}

// ImportPreview is what the upload endpoints return: the normalized rows,
// the column mapping that produced them, and import statistics.
type ImportPreview struct {
	Schema          normalize.Schema  `json:"schema"`
	Rows            []normalize.Row   `json:"rows"`
	RowCount        int               `json:"row_count"`
	Mapping         map[string]string `json:"mapping"`
	DetectedVanilla int               `json:"detected_vanilla,omitempty"`
}

// Import parses an uploaded file, normalizes it against the schema, and
// stages the result on the session. A file that yields zero rows is not
// an error; the preview just comes back empty.
func (im *Importer) Import(st *session.State, schema normalize.Schema, r io.Reader, filename string) (ImportPreview, error) {
	table, err := tabular.Read(r, filename)
	if err != nil {
		return ImportPreview{}, fmt.Errorf("read %s: %w", filename, err)
	}
	result := normalize.Normalize(schema, table)
	trades := result.Dataset.Trades()

	st.Lock()
	switch schema {
	case normalize.SchemaVanilla:
		st.MARSImport = trades
	case normalize.SchemaExotic:
		st.ExoticImport = trades
	}
	st.Unlock()

	im.Logger.Info("imported file",
		zap.String("file", filename),
		zap.String("schema", string(schema)),
		zap.Int("rows", len(result.Dataset.Rows)),
	)
	return ImportPreview{
		Schema:          schema,
		Rows:            result.Dataset.Rows,
		RowCount:        len(result.Dataset.Rows),
		Mapping:         result.Mapping,
		DetectedVanilla: result.DetectedVanilla,
	}, nil
}

// Commit moves a staged import into the live blotter and clears the stage.
func (im *Importer) Commit(st *session.State, schema normalize.Schema) (int, error) {
	st.Lock()
	var count int
	switch schema {
	case normalize.SchemaVanilla:
		count = len(st.MARSImport)
		st.Vanilla = append(st.Vanilla, st.MARSImport...)
		st.MARSImport = nil
	case normalize.SchemaExotic:
		count = len(st.ExoticImport)
		st.Exotic = append(st.Exotic, st.ExoticImport...)
		st.ExoticImport = nil
	default:
		st.Unlock()
		return 0, fmt.Errorf("unknown schema %q", schema)
	}
	st.Unlock()

	if count == 0 {
		return 0, nil
	}
	im.Blotter.save(st)
	im.Logger.Info("committed import", zap.String("schema", string(schema)), zap.Int("trades", count))
	return count, nil
}

// Recon reconciles the two trade populations by trade id. The first side
// is everything sourced from the risk system (the staged import plus any
// committed rows carrying that source); the second is everything entered
// by hand, including exotic imports.
func (im *Importer) Recon(st *session.State) recon.Result {
	st.Lock()
	var mars, manual []models.Trade
	mars = append(mars, st.MARSImport...)
	for _, t := range st.Vanilla {
		if t.Source == models.SourceMARS {
			mars = append(mars, t)
		} else {
			manual = append(manual, t)
		}
	}
	manual = append(manual, st.Exotic...)
	manual = append(manual, st.ExoticImport...)
	st.Unlock()

	result := recon.Run(mars, manual)
	im.Logger.Info("reconciliation complete",
		zap.Int("matched", len(result.Matched)),
		zap.Int("only_mars", len(result.OnlyMARS)),
		zap.Int("only_manual", len(result.OnlyManual)),
	)
	return result
}
