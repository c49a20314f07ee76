package consts

const (
	KELVIN = 273.15 // Kelvin temperature (K)
	TNOM   = 300.15 // Nominal temperature, 27C (K)
	GMIN   = 1e-12  // Minimum conductance (S)
)

const (
	OPAMP_GAIN    = 1e5 // Open-loop gain suggested for a finite op-amp model
	NET_TOLERANCE = 0.5 // Canvas distance under which a wire vertex touches a segment
)
