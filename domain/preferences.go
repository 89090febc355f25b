package domain

// Preferences are the UI settings kept between runs.
type Preferences struct {
	ShowSidePanel bool `json:"showRightSidebar"`
	DarkMode      bool `json:"darkMode"`
}
