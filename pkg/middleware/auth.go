package middleware

import (
	"net/http"
	"strings"

	"museum-admission/pkg/utils"

	"go.uber.org/zap"
)

// DeviceAuth guards the scanner endpoints. Scanner devices send
// "Authorization: Device <id>:<key>"; the key is checked against the bcrypt
// hash in config, the id only travels into logs.
func DeviceAuth(scanner utils.ScannerConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Device ") {
				utils.ResponseUnauthorized(w, "Device authentication required")
				return
			}

			deviceID, key, ok := strings.Cut(strings.TrimPrefix(header, "Device "), ":")
			if !ok || deviceID == "" {
				utils.ResponseUnauthorized(w, "Malformed device credentials")
				return
			}

			if scanner.DeviceKeyHash == "" || !utils.CheckDeviceKey(scanner.DeviceKeyHash, key) {
				logger.Warn("Device auth rejected",
					zap.String("device_id", deviceID),
					zap.String("path", r.URL.Path),
				)
				utils.ResponseUnauthorized(w, "Invalid device key")
				return
			}

			ctx := utils.SetDeviceContext(r.Context(), deviceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
