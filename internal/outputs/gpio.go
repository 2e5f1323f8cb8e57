package outputs

// gpioLevel maps a duty to the level of a digital output line
func gpioLevel(duty int) int {
	if duty > MinDuty {
		return 1
	}
	return 0
}
