package dyntrack

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds all tuning parameters of the tracking engine.  Every numeric
// threshold the engine uses lives here; nothing is hardcoded in the cycle.
type Config struct {
	// GatingDistance is the maximum normalized (Mahalanobis) position
	// distance between a predicted track and a detection for the pairing
	// to be considered at all.  Pairings beyond the gate are forbidden
	// regardless of assignment optimality.
	GatingDistance float64 `yaml:"gating_distance"`
	// ClassMismatchPenalty is added to the association cost when both the
	// track and the detection carry class labels and they differ
	ClassMismatchPenalty float64 `yaml:"class_mismatch_penalty"`
	// ExtentPenaltyWeight scales the extent-dissimilarity cost term,
	// (1 - footprint IoU).  Zero disables the term.
	ExtentPenaltyWeight float64 `yaml:"extent_penalty_weight"`

	// ConfirmHits is the number of consecutive matched frames (the
	// spawning detection included) required to promote a tentative track
	// to confirmed
	ConfirmHits int `yaml:"confirm_hits"`
	// TentativeMaxMisses removes an unconfirmed track after this many
	// consecutive misses, discarding spurious detections quickly
	TentativeMaxMisses int `yaml:"tentative_max_misses"`
	// TentativeMaxAge removes a track that has not reached confirmation
	// after this many frames of life
	TentativeMaxAge int `yaml:"tentative_max_age"`
	// CoastingMaxMisses is the number of consecutive misses a confirmed
	// track survives while coasting.  It is removed on the following miss.
	// Must be at least TentativeMaxMisses since confirmed tracks are
	// trusted longer through occlusion.
	CoastingMaxMisses int `yaml:"coasting_max_misses"`
	// SpawnSuppressionRadius stops a new track spawning from an unmatched
	// detection this close to an existing tentative or confirmed track's
	// predicted position
	SpawnSuppressionRadius float64 `yaml:"spawn_suppression_radius"`
	// SpawnSuppressionOverlap stops a new track spawning when the
	// detection's footprint IoU with such a track exceeds this value
	SpawnSuppressionOverlap float64 `yaml:"spawn_suppression_overlap"`

	// ProcessNoiseAccel is the standard deviation of unmodeled
	// acceleration in m/s^2, controlling how fast predictive uncertainty
	// grows between frames
	ProcessNoiseAccel float64 `yaml:"process_noise_accel"`
	// MeasurementNoise is the standard deviation of the detector's
	// position error in meters
	MeasurementNoise float64 `yaml:"measurement_noise"`
	// ExtentSmoothing is the EMA weight kept on a track's previous extent
	// when a matched detection updates it, in [0,1)
	ExtentSmoothing float64 `yaml:"extent_smoothing"`

	// ConfidenceThreshold drops detections below this confidence before
	// association
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	// DuplicateRadius collapses detections within one frame whose centers
	// are closer than this, keeping the higher-confidence one.  Zero
	// disables deduplication.
	DuplicateRadius float64 `yaml:"duplicate_radius"`

	// ProjectionHorizon is how far ahead, in seconds, emitted obstacles
	// carry a predicted trajectory.  Zero disables trajectories.
	ProjectionHorizon float64 `yaml:"projection_horizon"`
	// ProjectionStep is the time step between trajectory points in seconds
	ProjectionStep float64 `yaml:"projection_step"`
	// FootprintPadding inflates emitted obstacle footprints by this many
	// meters on all sides.  Zero emits the raw extent.
	FootprintPadding float64 `yaml:"footprint_padding"`
}

// DefaultConfig returns conservative defaults suitable for indoor robots
// tracking tens of obstacles at a few hertz
func DefaultConfig() Config {
	return Config{
		GatingDistance:          3.0,
		ClassMismatchPenalty:    1.0,
		ExtentPenaltyWeight:     0.5,
		ConfirmHits:             3,
		TentativeMaxMisses:      2,
		TentativeMaxAge:         10,
		CoastingMaxMisses:       8,
		SpawnSuppressionRadius:  0.5,
		SpawnSuppressionOverlap: 0.5,
		ProcessNoiseAccel:       2.0,
		MeasurementNoise:        0.1,
		ExtentSmoothing:         0.9,
		ConfidenceThreshold:     0.25,
		DuplicateRadius:         0.2,
		ProjectionHorizon:       2.0,
		ProjectionStep:          0.5,
		FootprintPadding:        0.0,
	}
}

// Validate checks the configuration for out-of-range values.  A non-nil
// error is fatal at engine construction.
func (c Config) Validate() error {
	if c.GatingDistance <= 0 {
		return errors.Errorf("gating_distance must be positive, got %v", c.GatingDistance)
	}
	if c.ClassMismatchPenalty < 0 {
		return errors.Errorf("class_mismatch_penalty must not be negative, got %v", c.ClassMismatchPenalty)
	}
	if c.ExtentPenaltyWeight < 0 {
		return errors.Errorf("extent_penalty_weight must not be negative, got %v", c.ExtentPenaltyWeight)
	}
	if c.ConfirmHits < 1 {
		return errors.Errorf("confirm_hits must be at least 1, got %d", c.ConfirmHits)
	}
	if c.TentativeMaxMisses < 1 {
		return errors.Errorf("tentative_max_misses must be at least 1, got %d", c.TentativeMaxMisses)
	}
	if c.TentativeMaxAge < c.ConfirmHits {
		return errors.Errorf("tentative_max_age %d is below confirm_hits %d, tracks could never confirm", c.TentativeMaxAge, c.ConfirmHits)
	}
	if c.CoastingMaxMisses < c.TentativeMaxMisses {
		return errors.Errorf("coasting_max_misses %d must not be below tentative_max_misses %d", c.CoastingMaxMisses, c.TentativeMaxMisses)
	}
	if c.SpawnSuppressionRadius < 0 {
		return errors.Errorf("spawn_suppression_radius must not be negative, got %v", c.SpawnSuppressionRadius)
	}
	if c.SpawnSuppressionOverlap < 0 || c.SpawnSuppressionOverlap > 1 {
		return errors.Errorf("spawn_suppression_overlap must be in [0,1], got %v", c.SpawnSuppressionOverlap)
	}
	if c.ProcessNoiseAccel <= 0 {
		return errors.Errorf("process_noise_accel must be positive, got %v", c.ProcessNoiseAccel)
	}
	if c.MeasurementNoise <= 0 {
		return errors.Errorf("measurement_noise must be positive, got %v", c.MeasurementNoise)
	}
	if c.ExtentSmoothing < 0 || c.ExtentSmoothing >= 1 {
		return errors.Errorf("extent_smoothing must be in [0,1), got %v", c.ExtentSmoothing)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return errors.Errorf("confidence_threshold must be in [0,1], got %v", c.ConfidenceThreshold)
	}
	if c.DuplicateRadius < 0 {
		return errors.Errorf("duplicate_radius must not be negative, got %v", c.DuplicateRadius)
	}
	if c.ProjectionHorizon < 0 {
		return errors.Errorf("projection_horizon must not be negative, got %v", c.ProjectionHorizon)
	}
	if c.ProjectionHorizon > 0 && c.ProjectionStep <= 0 {
		return errors.Errorf("projection_step must be positive when a projection horizon is set, got %v", c.ProjectionStep)
	}
	if c.FootprintPadding < 0 {
		return errors.Errorf("footprint_padding must not be negative, got %v", c.FootprintPadding)
	}
	return nil
}

// LoadConfig reads a YAML configuration file.  Omitted keys keep their
// default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config file %s", path)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config file %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "invalid config file %s", path)
	}

	return cfg, nil
}
