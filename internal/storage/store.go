package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/metrics"
	"github.com/san-kum/orbitsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	energyFile   = "energy.csv"
	eventsFile   = "events.json"
)

// Store keeps one directory of run summaries per run. Trajectories are
// never written.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Timestamp  time.Time      `json:"timestamp"`
	Integrator string         `json:"integrator"`
	Bodies     int            `json:"bodies"`
	Frames     int            `json:"frames"`
	SimDays    float64        `json:"sim_days"`
	Drift      float64        `json:"energy_drift"`
	MaxDrift   float64        `json:"max_energy_drift"`
	Halt       sim.HaltReason `json:"halt"`
	Events     int            `json:"events"`
	Config     *config.Config `json:"config"`
}

func runID(name string, ts time.Time) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ', ':':
			return '_'
		}
		return r
	}, name)
	return fmt.Sprintf("%s_%d", clean, ts.UnixNano())
}

func (s *Store) Save(cfg *config.Config, result sim.RunResult) (string, error) {
	now := time.Now()
	id := runID(cfg.Name, now)
	runDir := filepath.Join(s.baseDir, id)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         id,
		Name:       cfg.Name,
		Timestamp:  now,
		Integrator: cfg.Integrator,
		Bodies:     len(cfg.Bodies),
		Frames:     result.Frames,
		SimDays:    result.SimDays,
		Drift:      result.Drift,
		MaxDrift:   result.MaxDrift,
		Halt:       result.Halt,
		Events:     len(result.Events),
		Config:     cfg,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	events := result.Events
	if events == nil {
		events = []sim.Event{}
	}
	if err := writeJSON(filepath.Join(runDir, eventsFile), events); err != nil {
		return "", err
	}

	if err := writeEnergy(filepath.Join(runDir, energyFile), result.Energy); err != nil {
		return "", err
	}
	return id, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeEnergy(path string, samples []metrics.EnergySample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"sim_time", "energy"}); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			strconv.FormatFloat(s.SimTime, 'g', -1, 64),
			strconv.FormatFloat(s.Energy, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, newest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadEvents(runID string) ([]sim.Event, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, eventsFile))
	if err != nil {
		return nil, err
	}

	var events []sim.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return events, nil
}

func (s *Store) LoadEnergy(runID string) ([]metrics.EnergySample, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, energyFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []metrics.EnergySample{}, nil
	}

	samples := make([]metrics.EnergySample, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 2 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		e, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		samples = append(samples, metrics.EnergySample{SimTime: t, Energy: e})
	}
	return samples, nil
}
