package pcl

import (
	"errors"
	"fmt"
)

// Vector parameter limits of the device.
const (
	MinFrequency = 1
	MaxFrequency = 5000
	MinPower     = 0
	MaxPower     = 100
	MinSpeed     = 1
	MaxSpeed     = 100
)

// ErrInvalidParam is returned by VectorParams.Validate.
var ErrInvalidParam = errors.New("pcl: invalid vector parameter")

// VectorParams holds the laser settings for vector cutting.
type VectorParams struct {
	// Frequency is the pulse frequency in Hz.
	Frequency int `toml:"frequency"`
	// Power is the laser power in percent.
	Power int `toml:"power"`
	// Speed is the head speed in percent.
	Speed int `toml:"speed"`
}

// DefaultVectorParams returns full power at the lowest speed and highest frequency.
func DefaultVectorParams() VectorParams {
	return VectorParams{Frequency: 5000, Power: 100, Speed: 5}
}

// Validate checks the parameters against the device limits. The encoder itself
// does not validate, so callers should validate before sending.
func (p VectorParams) Validate() error {
	if p.Frequency < MinFrequency || p.Frequency > MaxFrequency {
		return fmt.Errorf("%w: frequency %d out of range [%d, %d]", ErrInvalidParam, p.Frequency, MinFrequency, MaxFrequency)
	}
	if p.Power < MinPower || p.Power > MaxPower {
		return fmt.Errorf("%w: power %d out of range [%d, %d]", ErrInvalidParam, p.Power, MinPower, MaxPower)
	}
	if p.Speed < MinSpeed || p.Speed > MaxSpeed {
		return fmt.Errorf("%w: speed %d out of range [%d, %d]", ErrInvalidParam, p.Speed, MinSpeed, MaxSpeed)
	}

	return nil
}
