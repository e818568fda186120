package request

type ScanRequest struct {
	// Content is the raw scanned code content, passed through untrusted.
	Content string `json:"content" validate:"required"`
}
