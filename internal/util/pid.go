package util

// PidLoop is a discrete PID loop with a fixed sample interval.
// Its output is clamped to [0, 1]. The integral is not clamped.
type PidLoop struct {
	// Proportional Constant
	p float64
	// Integral Constant
	i float64
	// Derivative Constant
	d float64
	// fixed loop interval in seconds
	dt float64

	// setpoint
	target float64
	// error of the previous loop
	prevError float64
	// accumulated error, i.e. integral error
	integral float64
}

func NewPidLoop(p, i, d, dt float64) *PidLoop {
	if dt <= 0 {
		dt = 1
	}
	return &PidLoop{
		p:  p,
		i:  i,
		d:  d,
		dt: dt,
	}
}

// SetTarget changes the setpoint and clears the accumulated state
func (p *PidLoop) SetTarget(target float64) {
	p.target = target
	p.integral = 0
	p.prevError = 0
}

// Reset clears integral and previous error, keeping the setpoint
func (p *PidLoop) Reset() {
	p.SetTarget(p.target)
}

func (p *PidLoop) Target() float64 {
	return p.target
}

// Update advances the pid loop by one interval
func (p *PidLoop) Update(measured float64) float64 {
	err := p.target - measured

	p.integral += err * p.dt
	derivative := (err - p.prevError) / p.dt
	p.prevError = err

	output := p.p*err + p.i*p.integral + p.d*derivative
	return Coerce(output, 0.0, 1.0)
}
