package settings

// Logging selects where diagnostics go. Without File, logs go to stderr.
type Logging struct {
	File    string `json:"File,omitempty"`
	Level   string `json:"Level,omitempty"`
	MaxDays int    `json:"MaxDays,omitempty"`
}
