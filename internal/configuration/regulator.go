package configuration

const (
	RegulatorTypeThreshold = "threshold"
	RegulatorTypePid       = "pid"
)

var RegulatorTypes = []string{RegulatorTypeThreshold, RegulatorTypePid}

type RegulatorConfig struct {
	Type      string                    `json:"type"`
	Threshold *ThresholdRegulatorConfig `json:"threshold,omitempty"`
	Pid       *PidRegulatorConfig       `json:"pid,omitempty"`
}

type ThresholdRegulatorConfig struct {
	// Skip the trend rules until the sample history has been filled once
	MaskTrendWarmup DefaultTrueBool `json:"maskTrendWarmup"`
}

type PidRegulatorConfig struct {
	P float64 `json:"p"`
	I float64 `json:"i"`
	D float64 `json:"d"`
}

var DefaultPidRegulatorConfig = PidRegulatorConfig{
	P: 0.5,
	I: 0.05,
	D: 0,
}
