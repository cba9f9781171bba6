package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

var _ IOptions = (*VehicleOptions)(nil)

// VehicleOptions configures the vehicle controller and its simulated hardware.
type VehicleOptions struct {
	// ID identifies the vehicle in logs and status output.
	ID string `json:"id" mapstructure:"id"`

	// ParkingValidRate is the probability that a parking check passes.
	ParkingValidRate float64 `json:"parking-valid-rate" mapstructure:"parking-valid-rate"`

	// ParkingSeed seeds the parking decision source. Zero picks a time-based seed.
	ParkingSeed int64 `json:"parking-seed" mapstructure:"parking-seed"`

	// SensorSeed seeds the simulated sensor readings. Zero picks a time-based seed.
	SensorSeed int64 `json:"sensor-seed" mapstructure:"sensor-seed"`
}

// NewVehicleOptions creates a VehicleOptions object with default parameters.
func NewVehicleOptions() *VehicleOptions {
	return &VehicleOptions{
		ID:               "scooter-001",
		ParkingValidRate: 0.5,
	}
}

// Validate is used to parse and validate the parameters entered by the user at
// the command line when the program starts.
func (o *VehicleOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	if o.ID == "" {
		errors = append(errors, fmt.Errorf("--vehicle.id must not be empty"))
	}
	if err := ValidateRate("vehicle.parking-valid-rate", o.ParkingValidRate); err != nil {
		errors = append(errors, err)
	}

	return errors
}

// AddFlags adds flags for VehicleOptions to the specified FlagSet.
func (o *VehicleOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.ID, "vehicle.id", o.ID, "Identifier of this vehicle.")
	fs.Float64Var(&o.ParkingValidRate, "vehicle.parking-valid-rate", o.ParkingValidRate, "Probability in [0, 1] that a parking check passes.")
	fs.Int64Var(&o.ParkingSeed, "vehicle.parking-seed", o.ParkingSeed, "Seed for parking decisions (0 = time based).")
	fs.Int64Var(&o.SensorSeed, "vehicle.sensor-seed", o.SensorSeed, "Seed for simulated sensor readings (0 = time based).")
}
