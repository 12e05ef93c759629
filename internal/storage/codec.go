package storage

import (
	"encoding/json"
	"fmt"

	"github.com/mkoven/pathmc/internal/paths"
)

// Wire records. Snapshots go inline: toy systems are small enough that
// frame deduplication across steps is not worth the bookkeeping.

type sampleRecord struct {
	Replica    int               `json:"replica"`
	Ensemble   string            `json:"ensemble"`
	Trajectory []*paths.Snapshot `json:"trajectory"`
}

type stepRecord struct {
	Index    int            `json:"index"`
	Mover    string         `json:"mover"`
	Accepted bool           `json:"accepted"`
	Previous []sampleRecord `json:"previous"`
	Active   []sampleRecord `json:"active"`
}

func sampleSetToRecords(ss paths.SampleSet) []sampleRecord {
	recs := make([]sampleRecord, 0, len(ss))
	for _, name := range ss.Ensembles() {
		s := ss[name]
		recs = append(recs, sampleRecord{
			Replica:    s.ReplicaID,
			Ensemble:   s.Ensemble,
			Trajectory: s.Trajectory,
		})
	}
	return recs
}

func recordsToSampleSet(recs []sampleRecord) paths.SampleSet {
	ss := make(paths.SampleSet, len(recs))
	var maxID uint64
	for _, r := range recs {
		ss[r.Ensemble] = paths.Sample{
			ReplicaID:  r.Replica,
			Ensemble:   r.Ensemble,
			Trajectory: r.Trajectory,
		}
		for _, s := range r.Trajectory {
			if s.ID > maxID {
				maxID = s.ID
			}
		}
	}
	// Keep fresh snapshot IDs above anything loaded from disk.
	paths.ReserveSnapshotIDs(maxID)
	return ss
}

func encodeStep(step *paths.Step) ([]byte, error) {
	rec := stepRecord{
		Index:    step.Index,
		Mover:    step.Mover,
		Accepted: step.Accepted,
		Previous: sampleSetToRecords(step.Previous),
		Active:   sampleSetToRecords(step.Active),
	}
	return json.Marshal(rec)
}

func decodeStep(data []byte) (*paths.Step, error) {
	var rec stepRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode step: %w", err)
	}
	return &paths.Step{
		Index:    rec.Index,
		Mover:    rec.Mover,
		Accepted: rec.Accepted,
		Previous: recordsToSampleSet(rec.Previous),
		Active:   recordsToSampleSet(rec.Active),
	}, nil
}

// EncodeSampleSet serializes a sample set for tag storage.
func EncodeSampleSet(ss paths.SampleSet) ([]byte, error) {
	return json.Marshal(sampleSetToRecords(ss))
}

// DecodeSampleSet is the inverse of EncodeSampleSet.
func DecodeSampleSet(data []byte) (paths.SampleSet, error) {
	var recs []sampleRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("decode sample set: %w", err)
	}
	return recordsToSampleSet(recs), nil
}
