package model

// AppInfo describes a sub-application hosted by the shell.
type AppInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
}
