package drift

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/huayilab/calforge/internal/domain"
	"github.com/huayilab/calforge/internal/events"
	"github.com/huayilab/calforge/internal/modules/calibration"
	"github.com/huayilab/calforge/pkg/formulas"
)

// DefaultWindow is the moving-average window used by drift scans.
const DefaultWindow = 5

// DefaultThreshold is the |z-score| above which a series counts as drifting.
const DefaultThreshold = 3.0

// maxSeriesPoints caps how much history one scan loads per series.
const maxSeriesPoints = 256

// Service tracks calibration history and detects parameter drift
type Service struct {
	history   *HistoryDB
	events    *events.Manager
	window    int
	threshold float64
	log       zerolog.Logger
}

// NewService creates a drift service with default window and threshold
func NewService(history *HistoryDB, ev *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		history:   history,
		events:    ev,
		window:    DefaultWindow,
		threshold: DefaultThreshold,
		log:       log.With().Str("service", "drift").Logger(),
	}
}

// QubitSeries names the history series of one qubit measurement
func QubitSeries(qubit int, name string) string {
	return fmt.Sprintf("qubit:%d:%s", qubit, name)
}

// GateSeries names the history series of one gate measurement
func GateSeries(label, name string) string {
	return fmt.Sprintf("gate:%s:%s", label, name)
}

// RecordRun appends a calibration run's measurements to the backend's history
func (s *Service) RecordRun(backend string, result *calibration.ImportResult) error {
	for _, rec := range result.QubitRecords {
		for _, m := range rec.Measurements {
			series := QubitSeries(rec.Qubit, m.Name)
			if err := s.history.Append(backend, series, []Point{{Value: m.Value, MeasuredAt: m.Date}}); err != nil {
				return err
			}
		}
	}
	for _, rec := range result.GateRecords {
		for _, m := range []domain.Measurement{rec.GateError, rec.GateLength} {
			series := GateSeries(rec.Name, m.Name)
			if err := s.history.Append(backend, series, []Point{{Value: m.Value, MeasuredAt: m.Date}}); err != nil {
				return err
			}
		}
	}

	s.log.Debug().
		Str("backend", backend).
		Int("qubits", len(result.QubitRecords)).
		Int("gates", len(result.GateRecords)).
		Msg("Run recorded in history")
	return nil
}

// Scan assesses every recorded series for drift: a series is drifting when
// its latest value sits more than the threshold's worth of standard
// deviations away from the series mean.
func (s *Service) Scan(backend string) (*Report, error) {
	names, err := s.history.ListSeries(backend)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Backend:   backend,
		Window:    s.window,
		Threshold: s.threshold,
	}

	latestT1 := map[int]float64{}
	latestT2 := map[int]float64{}

	for _, name := range names {
		points, err := s.history.GetSeries(backend, name, maxSeriesPoints)
		if err != nil {
			return nil, err
		}
		if len(points) == 0 {
			continue
		}

		values := make([]float64, len(points))
		for i, p := range points {
			values[i] = p.Value
		}
		latest := values[len(values)-1]

		sr := SeriesReport{
			Series: name,
			Points: len(points),
			Latest: latest,
			Mean:   formulas.Mean(values),
			StdDev: formulas.StdDev(values),
			Sma:    formulas.Sma(values, s.window),
			Ema:    formulas.Ema(values, s.window),
		}
		// A short series cannot establish a baseline; never flag it.
		if len(values) > s.window {
			sr.ZScore = formulas.ZScore(latest, values[:len(values)-1])
			sr.Drifting = sr.ZScore > s.threshold || sr.ZScore < -s.threshold
		}

		report.Series = append(report.Series, sr)
		if sr.Drifting {
			report.DriftingSeries = append(report.DriftingSeries, name)
		}

		if qubit, meas, ok := parseQubitSeries(name); ok {
			switch meas {
			case domain.MeasT1:
				latestT1[qubit] = latest
			case domain.MeasT2:
				latestT2[qubit] = latest
			}
		}
	}

	for qubit, t1 := range latestT1 {
		t2, ok := latestT2[qubit]
		if !ok {
			continue
		}
		status := CoherenceStatus{
			Qubit:     qubit,
			T1:        t1,
			T2:        t2,
			Ratio:     formulas.CoherenceRatio(t1, t2),
			Violation: formulas.ExceedsCoherenceBound(t1, t2),
		}
		report.Coherence = append(report.Coherence, status)
		if status.Violation {
			report.CoherenceViolations = append(report.CoherenceViolations, qubit)
		}
	}
	sort.Slice(report.Coherence, func(i, j int) bool {
		return report.Coherence[i].Qubit < report.Coherence[j].Qubit
	})
	sort.Ints(report.CoherenceViolations)

	if len(report.DriftingSeries) > 0 {
		s.log.Warn().
			Str("backend", backend).
			Strs("series", report.DriftingSeries).
			Msg("Calibration drift detected")
		s.events.Emit(events.DriftDetected, "drift", map[string]interface{}{
			"backend": backend,
			"series":  report.DriftingSeries,
		})
	}

	return report, nil
}

// Series fetches one raw history series
func (s *Service) Series(backend, name string) ([]Point, error) {
	return s.history.GetSeries(backend, name, maxSeriesPoints)
}

func parseQubitSeries(series string) (qubit int, measurement string, ok bool) {
	parts := strings.SplitN(series, ":", 3)
	if len(parts) != 3 || parts[0] != "qubit" {
		return 0, "", false
	}
	q, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, "", false
	}
	return q, parts[2], true
}
