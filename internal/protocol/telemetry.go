package protocol

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Telemetry keys in display order.
const (
	KeyTemperature   = "temperature"
	KeyPressure      = "pressure"
	KeyHumidity      = "humidity"
	KeyPitch         = "pitch"
	KeyRoll          = "roll"
	KeyYaw           = "yaw"
	KeyAccelerationX = "acceleration_x"
	KeyAccelerationY = "acceleration_y"
	KeyAccelerationZ = "acceleration_z"
)

var telemetryKeys = []string{
	KeyTemperature, KeyPressure, KeyHumidity,
	KeyPitch, KeyRoll, KeyYaw,
	KeyAccelerationX, KeyAccelerationY, KeyAccelerationZ,
}

// Telemetry is a sensor snapshot published on the vehicle-info topic.
type Telemetry struct {
	Temperature float64 // °C
	Pressure    float64 // hPa
	Humidity    float64 // %RH
	Pitch       float64 // degrees
	Roll        float64 // degrees
	Yaw         float64 // degrees

	AccelerationX float64 // g
	AccelerationY float64 // g
	AccelerationZ float64 // g
}

// Rounded returns a copy with environment readings at one decimal and
// acceleration at whole units.
func (t Telemetry) Rounded() Telemetry {
	r := t
	r.Temperature = round(t.Temperature, 1)
	r.Pressure = round(t.Pressure, 1)
	r.Humidity = round(t.Humidity, 1)
	r.AccelerationX = round(t.AccelerationX, 0)
	r.AccelerationY = round(t.AccelerationY, 0)
	r.AccelerationZ = round(t.AccelerationZ, 0)
	return r
}

// ToProto converts the snapshot into a protobuf Struct.
func (t Telemetry) ToProto() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		KeyTemperature:   t.Temperature,
		KeyPressure:      t.Pressure,
		KeyHumidity:      t.Humidity,
		KeyPitch:         t.Pitch,
		KeyRoll:          t.Roll,
		KeyYaw:           t.Yaw,
		KeyAccelerationX: t.AccelerationX,
		KeyAccelerationY: t.AccelerationY,
		KeyAccelerationZ: t.AccelerationZ,
	})
}

// Field is one telemetry key/value pair.
type Field struct {
	Key   string
	Value string
}

// DecodeTelemetry parses a vehicle-info payload into fields. Known keys come
// first in display order, unknown keys follow sorted by name.
func DecodeTelemetry(payload []byte) ([]Field, error) {
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(payload, s); err != nil {
		return nil, fmt.Errorf("invalid telemetry payload: %w", err)
	}
	return OrderedFields(s), nil
}

// OrderedFields flattens s into display-ordered fields.
func OrderedFields(s *structpb.Struct) []Field {
	m := s.GetFields()
	fields := make([]Field, 0, len(m))

	for _, k := range telemetryKeys {
		if v, ok := m[k]; ok {
			fields = append(fields, Field{Key: k, Value: formatValue(v)})
		}
	}

	var extra []string
	for k := range m {
		if !slices.Contains(telemetryKeys, k) {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	for _, k := range extra {
		fields = append(fields, Field{Key: k, Value: formatValue(m[k])})
	}
	return fields
}

func formatValue(v *structpb.Value) string {
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(k.NumberValue, 'f', -1, 64)
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_BoolValue:
		return strconv.FormatBool(k.BoolValue)
	case *structpb.Value_NullValue:
		return "null"
	default:
		b, err := protojson.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	r := math.Round(v*p) / p
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}
