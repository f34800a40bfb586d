package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/cluster/internal/cluster"
	"github.com/san-kum/cluster/internal/sim"
	"github.com/san-kum/cluster/internal/snapshot"
)

const (
	metadataFile = "metadata.json"
	energyFile   = "energy.csv"
	snapshotFile = "snapshots.dat"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID           string             `json:"id"`
	Timestamp    time.Time          `json:"timestamp"`
	Integrator   string             `json:"integrator"`
	N            int                `json:"n"`
	Dim          int                `json:"dim"`
	Radius       float64            `json:"r0"`
	MeanMass     float64            `json:"mean_mass"`
	Softening    float64            `json:"epsilon"`
	SaveEach     int                `json:"save_each"`
	G            float64            `json:"g"`
	Dt           float64            `json:"dt"`
	Duration     float64            `json:"duration"`
	MassSeed     uint64             `json:"mass_seed"`
	PositionSeed uint64             `json:"position_seed"`
	Steps        int                `json:"steps"`
	Elapsed      float64            `json:"elapsed_seconds"`
	EnergyDrift  float64            `json:"energy_drift"`
	Metrics      map[string]float64 `json:"metrics"`
	// NonFinite names the values that were NaN or Inf and are stored as 0.
	NonFinite []string `json:"non_finite,omitempty"`
}

func (m *RunMetadata) sanitize() {
	if !finite([]float64{m.EnergyDrift}) {
		m.NonFinite = append(m.NonFinite, "energy_drift")
		m.EnergyDrift = 0
	}
	names := make([]string, 0, len(m.Metrics))
	for name := range m.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !finite([]float64{m.Metrics[name]}) {
			m.NonFinite = append(m.NonFinite, name)
			m.Metrics[name] = 0
		}
	}
}

// Create makes a fresh run directory named after prefix and returns its id.
func (s *Store) Create(prefix string) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}
	base := fmt.Sprintf("%s_%d", prefix, time.Now().Unix())
	runID := base
	for i := 1; ; i++ {
		err := os.Mkdir(s.RunDir(runID), 0755)
		if err == nil {
			return runID, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", err
		}
		runID = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *Store) RunDir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

// SnapshotPath is where a run's snapshot stream is written.
func (s *Store) SnapshotPath(runID string) string {
	return filepath.Join(s.RunDir(runID), snapshotFile)
}

// Save writes the run metadata and its energy series.
func (s *Store) Save(meta RunMetadata, result *sim.Result) error {
	runDir := s.RunDir(meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return err
	}

	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if result != nil {
		meta.Steps = result.StepsTaken
		meta.Elapsed = result.Elapsed.Seconds()
		meta.EnergyDrift = result.EnergyDrift
		meta.Metrics = make(map[string]float64, len(result.Metrics))
		for name, v := range result.Metrics {
			meta.Metrics[name] = v
		}
		if meta.Integrator == "" {
			meta.Integrator = result.Integrator
		}
	}
	meta.sanitize()

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return err
	}

	if result == nil {
		return nil
	}
	return writeEnergy(filepath.Join(runDir, energyFile), result.Summaries)
}

var energyHeader = []string{"time", "kinetic", "potential", "total", "bound_total", "bound", "n"}

func writeEnergy(path string, summaries []cluster.Summary) error {
	csvFile, err := os.Create(path)
	if err != nil {
		return err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(energyHeader); err != nil {
		return err
	}
	for _, s := range summaries {
		row := []string{
			formatFloat(s.Time),
			formatFloat(s.Kinetic),
			formatFloat(s.Potential),
			formatFloat(s.Total),
			formatFloat(s.BoundTotal),
			strconv.Itoa(s.Bound),
			strconv.Itoa(s.N),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns the stored runs, oldest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.RunDir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadEnergy reads back the energy series written by Save.
func (s *Store) LoadEnergy(runID string) ([]cluster.Summary, error) {
	file, err := os.Open(filepath.Join(s.RunDir(runID), energyFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(energyHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []cluster.Summary{}, nil
	}

	out := make([]cluster.Summary, 0, len(records)-1)
	for i, rec := range records[1:] {
		var vals [5]float64
		for j := range vals {
			if vals[j], err = strconv.ParseFloat(rec[j], 64); err != nil {
				return nil, fmt.Errorf("%s line %d: %w", energyFile, i+2, err)
			}
		}
		bound, err := strconv.Atoi(rec[5])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", energyFile, i+2, err)
		}
		n, err := strconv.Atoi(rec[6])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", energyFile, i+2, err)
		}
		out = append(out, cluster.Summary{
			Time:       vals[0],
			Kinetic:    vals[1],
			Potential:  vals[2],
			Total:      vals[3],
			BoundTotal: vals[4],
			Bound:      bound,
			N:          n,
			Finite:     finite(vals[:]),
		})
	}
	return out, nil
}

// LoadSnapshots reads the snapshot stream of a run.
func (s *Store) LoadSnapshots(runID string) (snapshot.Header, []snapshot.Record, error) {
	f, err := os.Open(s.SnapshotPath(runID))
	if err != nil {
		return snapshot.Header{}, nil, err
	}
	defer f.Close()
	return snapshot.ReadAll(f)
}

// HasSnapshots reports whether the run kept a snapshot stream.
func (s *Store) HasSnapshots(runID string) bool {
	_, err := os.Stat(s.SnapshotPath(runID))
	return err == nil
}

func finite(vals []float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
