package utils

import (
	"context"
)

type contextKey string

const DeviceIDKey contextKey = "device_id"

func GetDeviceIDFromContext(ctx context.Context) (string, bool) {
	deviceVal := ctx.Value(DeviceIDKey)
	if deviceVal == nil {
		return "", false
	}

	deviceID, ok := deviceVal.(string)
	return deviceID, ok
}

func SetDeviceContext(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, DeviceIDKey, deviceID)
}
