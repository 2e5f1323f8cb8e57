package control_loop

// Plant is a simple model of an alternator charging a battery, used to
// try out regulators without hardware.
type Plant struct {
	// ambient and start temperature in °C
	AmbientTemp float64
	// battery voltage without charge current
	RestVoltage float64
	// alternator output current at full field
	MaxCurrent float64
	// terminal voltage rise per amp of charge current
	InternalResistance float64
	// °C per amp and tick
	HeatingRate float64
	// fraction of the temperature difference to ambient lost per tick
	CoolingRate float64

	temp float64
}

// DefaultPlant roughly matches a 100A alternator on a 12V lead acid bank
var DefaultPlant = Plant{
	AmbientTemp:        25,
	RestVoltage:        12.6,
	MaxCurrent:         100,
	InternalResistance: 0.02,
	HeatingRate:        0.05,
	CoolingRate:        0.02,
}

// Read returns the sensor values for the given field duty and advances the
// temperature by one tick.
func (p *Plant) Read(duty int) Reading {
	if p.temp == 0 {
		p.temp = p.AmbientTemp
	}

	amps := float64(duty) / MaxDuty * p.MaxCurrent
	volts := p.RestVoltage + amps*p.InternalResistance
	p.temp += amps*p.HeatingRate - (p.temp-p.AmbientTemp)*p.CoolingRate

	return Reading{
		TempC: p.temp,
		Volts: volts,
		Amps:  amps,
	}
}

type SimulationStep struct {
	Tick    int
	Reading Reading
	Result  Result
}

// Simulate runs the regulator against the plant for the given number of ticks,
// starting with the field switched off.
func Simulate(regulator Regulator, limits Limits, plant *Plant, ticks int) []SimulationStep {
	steps := make([]SimulationStep, 0, ticks)
	duty := MinDuty
	for i := 0; i < ticks; i++ {
		reading := plant.Read(duty)
		result := regulator.Cycle(reading, limits, duty)
		duty = result.Duty
		steps = append(steps, SimulationStep{
			Tick:    i,
			Reading: reading,
			Result:  result,
		})
	}
	return steps
}
