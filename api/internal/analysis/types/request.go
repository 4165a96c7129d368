package types

// AnalyzeRequest is the body the client posts to the analysis proxy.
// ImageBase64 may be a data URL or a bare base64 payload.
type AnalyzeRequest struct {
	ImageBase64 string `json:"imageBase64"`
	Prompt      string `json:"prompt"`
}

// AnalyzeInput is what an engine receives once the proxy has decoded the image.
type AnalyzeInput struct {
	Image  []byte
	MIME   string
	Prompt string
}
