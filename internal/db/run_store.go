package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/banshee-data/specid/internal/specobj"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// ErrObjectNotFound is returned when no object of a run has the given name.
var ErrObjectNotFound = errors.New("object not found")

// Run is one reduction of one or more exposures.
type Run struct {
	RunID       string `json:"run_id"`
	Label       string `json:"label,omitempty"`
	Source      string `json:"source,omitempty"`
	ConfigKey   string `json:"config_key,omitempty"`
	CreatedAtNs int64  `json:"created_at_ns"`
	NumObjects  int    `json:"num_objects"`
}

// StoredObject is a persisted record with its encoded name.
type StoredObject struct {
	RunID  string           `json:"run_id"`
	Seq    int              `json:"seq"`
	Name   string           `json:"name"`
	Record *specobj.SpecObj `json:"record"`
}

// CreateRun inserts run. An empty RunID is replaced by a new UUID.
func (db *DB) CreateRun(run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAtNs == 0 {
		run.CreatedAtNs = db.clock.Now().UnixNano()
	}
	_, err := db.Exec(`
		INSERT INTO runs (run_id, label, source, config_key, created_at_ns)
		VALUES (?, ?, ?, ?, ?)`,
		run.RunID,
		nullString(run.Label),
		nullString(run.Source),
		nullString(run.ConfigKey),
		run.CreatedAtNs,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetRun retrieves a run and its object count.
func (db *DB) GetRun(runID string) (*Run, error) {
	var run Run
	var label, source, configKey sql.NullString
	err := db.QueryRow(`
		SELECT r.run_id, r.label, r.source, r.config_key, r.created_at_ns,
		       (SELECT COUNT(*) FROM spec_objects o WHERE o.run_id = r.run_id)
		FROM runs r
		WHERE r.run_id = ?`, runID).Scan(
		&run.RunID, &label, &source, &configKey, &run.CreatedAtNs, &run.NumObjects,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	run.Label = label.String
	run.Source = source.String
	run.ConfigKey = configKey.String
	return &run, nil
}

// ListRuns returns all runs, newest first.
func (db *DB) ListRuns() ([]*Run, error) {
	rows, err := db.Query(`
		SELECT r.run_id, r.label, r.source, r.config_key, r.created_at_ns,
		       (SELECT COUNT(*) FROM spec_objects o WHERE o.run_id = r.run_id)
		FROM runs r
		ORDER BY r.created_at_ns DESC, r.run_id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		var label, source, configKey sql.NullString
		if err := rows.Scan(&run.RunID, &label, &source, &configKey, &run.CreatedAtNs, &run.NumObjects); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Label = label.String
		run.Source = source.String
		run.ConfigKey = configKey.String
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// InsertObjects appends objs to a run in one transaction. Names are encoded
// with format; a nil format uses specobj.DetNumber.
func (db *DB) InsertObjects(runID string, objs []*specobj.SpecObj, format specobj.DetectorFormat) error {
	if _, err := db.GetRun(runID); err != nil {
		return err
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin insert objects: %w", err)
	}
	defer tx.Rollback()

	var next int
	if err := tx.QueryRow(`SELECT COALESCE(MAX(seq) + 1, 0) FROM spec_objects WHERE run_id = ?`, runID).Scan(&next); err != nil {
		return fmt.Errorf("next object seq: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO spec_objects (
			run_id, seq, name, objid, slitid, det, scidx, config, objtype, hand_flag, record_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert object: %w", err)
	}
	defer stmt.Close()

	for i, o := range objs {
		name, err := o.Name(format)
		if err != nil {
			return fmt.Errorf("object %d: %w", i, err)
		}
		blob, err := json.Marshal(o)
		if err != nil {
			return fmt.Errorf("object %s: %w", name, err)
		}
		if _, err := stmt.Exec(
			runID, next+i, name, o.ObjID(), o.SlitID(), o.Det, o.ScIdx,
			o.Config, o.ObjType.String(), o.Hand.Flag, string(blob),
		); err != nil {
			return fmt.Errorf("insert object %s: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert objects: %w", err)
	}
	return nil
}

// ObjectNames returns the names of a run's objects in insertion order.
func (db *DB) ObjectNames(runID string) ([]string, error) {
	if _, err := db.GetRun(runID); err != nil {
		return nil, err
	}
	rows, err := db.Query(`SELECT name FROM spec_objects WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("list object names: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan object name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// GetObject returns the first object of a run with the given name.
func (db *DB) GetObject(runID, name string) (*StoredObject, error) {
	row := db.QueryRow(`
		SELECT run_id, seq, name, record_json
		FROM spec_objects
		WHERE run_id = ? AND name = ?
		ORDER BY seq
		LIMIT 1`, runID, name)
	obj, err := scanObject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s in run %s", ErrObjectNotFound, name, runID)
	}
	return obj, err
}

// ListObjects returns a run's objects in insertion order.
func (db *DB) ListObjects(runID string) ([]*StoredObject, error) {
	if _, err := db.GetRun(runID); err != nil {
		return nil, err
	}
	rows, err := db.Query(`
		SELECT run_id, seq, name, record_json
		FROM spec_objects
		WHERE run_id = ?
		ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	defer rows.Close()

	var out []*StoredObject
	for rows.Next() {
		obj, err := scanObject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, rows.Err()
}

// CompareRuns matches the objects of run1 against those of run2.
func (db *DB) CompareRuns(run1ID, run2ID string, tol specobj.Tolerance) (*specobj.RunComparison, error) {
	names1, err := db.ObjectNames(run1ID)
	if err != nil {
		return nil, err
	}
	names2, err := db.ObjectNames(run2ID)
	if err != nil {
		return nil, err
	}
	cmp, err := specobj.CompareRuns(names1, names2, tol)
	if err != nil {
		return nil, fmt.Errorf("compare runs %s and %s: %w", run1ID, run2ID, err)
	}
	cmp.Run1ID = run1ID
	cmp.Run2ID = run2ID
	return cmp, nil
}

// DeleteRun removes a run and its objects.
func (db *DB) DeleteRun(runID string) error {
	res, err := db.Exec(`DELETE FROM runs WHERE run_id = ?`, runID)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanObject(row rowScanner) (*StoredObject, error) {
	var obj StoredObject
	var blob string
	if err := row.Scan(&obj.RunID, &obj.Seq, &obj.Name, &blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan object: %w", err)
	}
	obj.Record = &specobj.SpecObj{}
	if err := json.Unmarshal([]byte(blob), obj.Record); err != nil {
		return nil, fmt.Errorf("decode object %s: %w", obj.Name, err)
	}
	return &obj, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
