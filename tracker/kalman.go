package tracker

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	dyntrack "github.com/navsense/go-dyntrack"
)

const (
	// stateDim is [x y z vx vy vz]
	stateDim = 6
	// measDim is the observed position [x y z]
	measDim = 3
	// covFloor keeps covariance diagonals strictly positive through long
	// coasting stretches and aggressive corrections
	covFloor = 1e-9
)

var errDegenerate = errors.New("projected covariance is not positive definite")

// kalmanFilter estimates one track's position and velocity under a
// constant-velocity motion model with white-noise acceleration.  The
// transition depends on the elapsed time between frames, so irregular frame
// rates are handled exactly rather than assuming a fixed step.
type kalmanFilter struct {
	// accelNoise is the standard deviation of unmodeled acceleration
	accelNoise float64
	// measNoise is the standard deviation of detector position error
	measNoise float64

	// mean is the state estimate [x y z vx vy vz]
	mean *mat.VecDense
	// cov is the state covariance
	cov *mat.Dense
	// obsMat maps state space to measurement space
	obsMat *mat.Dense
}

// newKalmanFilter initializes a filter at the measured position with zero
// velocity.  The position prior is tight around the measurement; the velocity
// prior is broad so the first few corrections pull the velocity estimate
// toward the observed motion quickly.
func newKalmanFilter(accelNoise, measNoise float64, pos dyntrack.Point3) *kalmanFilter {
	obsMat := mat.NewDense(measDim, stateDim, nil)
	for i := 0; i < measDim; i++ {
		obsMat.Set(i, i, 1.0)
	}

	kf := &kalmanFilter{
		accelNoise: accelNoise,
		measNoise:  measNoise,
		mean:       mat.NewVecDense(stateDim, nil),
		cov:        mat.NewDense(stateDim, stateDim, nil),
		obsMat:     obsMat,
	}

	kf.mean.SetVec(0, pos.X)
	kf.mean.SetVec(1, pos.Y)
	kf.mean.SetVec(2, pos.Z)

	kf.resetCovariance()

	return kf
}

// resetCovariance restores the construction-time prior uncertainty around the
// current mean.  Used at spawn and as recovery from numerical degeneracy.
func (kf *kalmanFilter) resetCovariance() {
	posStd := 2 * kf.measNoise
	velStd := 10 * kf.accelNoise

	for i := 0; i < stateDim; i++ {
		for j := 0; j < stateDim; j++ {
			kf.cov.Set(i, j, 0)
		}
	}

	for i := 0; i < measDim; i++ {
		kf.cov.Set(i, i, posStd*posStd)
		kf.cov.Set(measDim+i, measDim+i, velStd*velStd)
	}
}

// Predict advances the state by dt seconds without correction.  A negative dt
// is treated as zero; dt of zero leaves the estimate unchanged.
func (kf *kalmanFilter) Predict(dt float64) {
	if dt < 0 {
		dt = 0
	}

	motion := kf.motionMat(dt)

	// mean = F * mean
	predicted := mat.NewVecDense(stateDim, nil)
	predicted.MulVec(motion, kf.mean)
	kf.mean.CopyVec(predicted)

	// cov = F * cov * F' + Q
	kf.cov.Mul(motion, kf.cov)
	kf.cov.Mul(kf.cov, motion.T())
	kf.cov.Add(kf.cov, kf.processNoise(dt))

	kf.floorCovariance()
}

// Update corrects the state with a measured position.  The gain is computed
// through a Cholesky factorization of the projected covariance; a
// factorization failure leaves the state untouched and is reported as
// errDegenerate for the caller to recover from.
func (kf *kalmanFilter) Update(pos dyntrack.Point3) error {
	projMean, projCov := kf.project()

	var chol mat.Cholesky
	if ok := chol.Factorize(projCov); !ok {
		return errDegenerate
	}

	// B = cov * H'
	b := mat.NewDense(stateDim, measDim, nil)
	b.Mul(kf.cov, kf.obsMat.T())

	// solve S * gainT = B' so gainT is the transposed Kalman gain
	var gainT mat.Dense
	if err := chol.SolveTo(&gainT, b.T()); err != nil {
		return fmt.Errorf("computing kalman gain: %w", err)
	}

	innovation := mat.NewVecDense(measDim, []float64{
		pos.X - projMean.AtVec(0),
		pos.Y - projMean.AtVec(1),
		pos.Z - projMean.AtVec(2),
	})

	// mean += K * innovation
	shift := mat.NewVecDense(stateDim, nil)
	shift.MulVec(gainT.T(), innovation)
	kf.mean.AddVec(kf.mean, shift)

	// cov -= K * S * K'
	tmp := mat.NewDense(stateDim, measDim, nil)
	tmp.Mul(gainT.T(), projCov)

	reduction := mat.NewDense(stateDim, stateDim, nil)
	reduction.Mul(tmp, &gainT)

	kf.cov.Sub(kf.cov, reduction)

	kf.floorCovariance()

	if !kf.Healthy() {
		return errDegenerate
	}

	return nil
}

// GateDistance returns the Mahalanobis distance between a measured position
// and the current state projected into measurement space
func (kf *kalmanFilter) GateDistance(pos dyntrack.Point3) (float64, error) {
	projMean, projCov := kf.project()

	var chol mat.Cholesky
	if ok := chol.Factorize(projCov); !ok {
		return 0, errDegenerate
	}

	innovation := mat.NewVecDense(measDim, []float64{
		pos.X - projMean.AtVec(0),
		pos.Y - projMean.AtVec(1),
		pos.Z - projMean.AtVec(2),
	})

	// d^2 = innovation' * S^-1 * innovation
	solved := mat.NewVecDense(measDim, nil)
	if err := chol.SolveVecTo(solved, innovation); err != nil {
		return 0, fmt.Errorf("solving gate distance: %w", err)
	}

	return math.Sqrt(mat.Dot(innovation, solved)), nil
}

// Position returns the estimated position
func (kf *kalmanFilter) Position() dyntrack.Point3 {
	return dyntrack.Point3{
		X: kf.mean.AtVec(0),
		Y: kf.mean.AtVec(1),
		Z: kf.mean.AtVec(2),
	}
}

// Velocity returns the estimated velocity in m/s
func (kf *kalmanFilter) Velocity() dyntrack.Point3 {
	return dyntrack.Point3{
		X: kf.mean.AtVec(3),
		Y: kf.mean.AtVec(4),
		Z: kf.mean.AtVec(5),
	}
}

// Healthy reports whether the estimate is finite with a positive covariance
// diagonal
func (kf *kalmanFilter) Healthy() bool {
	for i := 0; i < stateDim; i++ {
		if v := kf.mean.AtVec(i); math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}

		d := kf.cov.At(i, i)
		if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
			return false
		}
	}

	return true
}

// Clone returns an independent deep copy of the filter
func (kf *kalmanFilter) Clone() *kalmanFilter {
	clone := &kalmanFilter{
		accelNoise: kf.accelNoise,
		measNoise:  kf.measNoise,
		mean:       mat.NewVecDense(stateDim, nil),
		cov:        mat.NewDense(stateDim, stateDim, nil),
		obsMat:     kf.obsMat,
	}

	clone.mean.CopyVec(kf.mean)
	clone.cov.Copy(kf.cov)

	return clone
}

// project maps the state estimate into measurement space and adds the
// measurement noise, yielding the innovation covariance
func (kf *kalmanFilter) project() (*mat.VecDense, *mat.SymDense) {
	projMean := mat.NewVecDense(measDim, nil)
	projMean.MulVec(kf.obsMat, kf.mean)

	// S = H * cov * H' + R
	tmp := mat.NewDense(measDim, stateDim, nil)
	tmp.Mul(kf.obsMat, kf.cov)

	full := mat.NewDense(measDim, measDim, nil)
	full.Mul(tmp, kf.obsMat.T())

	r := kf.measNoise * kf.measNoise

	projCov := mat.NewSymDense(measDim, nil)
	for i := 0; i < measDim; i++ {
		for j := i; j < measDim; j++ {
			// symmetrize against accumulated round-off
			v := (full.At(i, j) + full.At(j, i)) / 2
			if i == j {
				v += r
			}
			projCov.SetSym(i, j, v)
		}
	}

	return projMean, projCov
}

// motionMat builds the constant-velocity transition for an elapsed time of dt
// seconds: position advances by velocity*dt, velocity is unchanged in
// expectation
func (kf *kalmanFilter) motionMat(dt float64) *mat.Dense {
	motion := mat.NewDense(stateDim, stateDim, nil)

	for i := 0; i < stateDim; i++ {
		motion.Set(i, i, 1.0)
	}
	for i := 0; i < measDim; i++ {
		motion.Set(i, measDim+i, dt)
	}

	return motion
}

// processNoise builds the white-noise-acceleration process covariance for an
// elapsed time of dt seconds.  Per axis the 2x2 block is
//
//	[ q*dt^4/4  q*dt^3/2 ]
//	[ q*dt^3/2  q*dt^2   ]
//
// with q the acceleration variance, so predictive uncertainty grows with the
// time actually elapsed rather than per frame.
func (kf *kalmanFilter) processNoise(dt float64) *mat.Dense {
	q := kf.accelNoise * kf.accelNoise

	q11 := q * dt * dt * dt * dt / 4
	q12 := q * dt * dt * dt / 2
	q22 := q * dt * dt

	noise := mat.NewDense(stateDim, stateDim, nil)

	for i := 0; i < measDim; i++ {
		noise.Set(i, i, q11)
		noise.Set(i, measDim+i, q12)
		noise.Set(measDim+i, i, q12)
		noise.Set(measDim+i, measDim+i, q22)
	}

	return noise
}

// floorCovariance clamps the covariance diagonal away from zero
func (kf *kalmanFilter) floorCovariance() {
	for i := 0; i < stateDim; i++ {
		if kf.cov.At(i, i) < covFloor {
			kf.cov.Set(i, i, covFloor)
		}
	}
}
