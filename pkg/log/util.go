package log

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// toFields converts a loose key/value list into typed zap fields.
// A bare error is logged under "error" and a zap.Field passes through.
// A trailing unpaired value is kept under "arg#N". A pair whose key is not
// a string is kept whole under "invalid_key_N".
func toFields(args ...any) []zap.Field {
	if len(args) == 0 {
		return nil
	}

	fields := make([]zap.Field, 0, len(args)/2+1)
	for i := 0; i < len(args); {
		switch v := args[i].(type) {
		case zap.Field:
			fields = append(fields, v)
			i++
			continue
		case error:
			fields = append(fields, zap.Error(v))
			i++
			continue
		}

		if i == len(args)-1 {
			fields = append(fields, zap.Any(fmt.Sprintf("arg#%d", i), args[i]))
			break
		}

		key, val := args[i], args[i+1]
		i += 2

		name, ok := key.(string)
		if !ok {
			fields = append(fields, zap.Any(fmt.Sprintf("invalid_key_%d", i/2), map[string]any{
				"key":   key,
				"value": val,
			}))
			continue
		}
		fields = append(fields, field(name, val))
	}

	return fields
}

// field picks the zap encoding for one value. Payloads are text on every
// topic, so byte slices are logged as strings.
func field(key string, val any) zap.Field {
	switch v := val.(type) {
	case error:
		return zap.NamedError(key, v)
	case []byte:
		return zap.ByteString(key, v)
	case time.Duration, time.Time:
		return zap.Any(key, v)
	case fmt.Stringer:
		return zap.Stringer(key, v)
	}
	return zap.Any(key, val)
}
