package station

import "time"

// User is a named operator who performs scans at the station.
type User struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ConnectionConfig holds the quotation-database credentials saved from
// the settings page.
type ConnectionConfig struct {
	Driver   string `json:"driver,omitempty"`
	Server   string `json:"server"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// ConnectionView is the read shape of the saved configuration. The
// password never leaves the server; clients only learn whether one is set.
type ConnectionView struct {
	Driver      string `json:"driver,omitempty"`
	Server      string `json:"server"`
	Database    string `json:"database"`
	Username    string `json:"username"`
	HasPassword bool   `json:"has_password"`
}

// View returns the client-safe shape of the configuration.
func (c *ConnectionConfig) View() ConnectionView {
	return ConnectionView{
		Driver:      c.Driver,
		Server:      c.Server,
		Database:    c.Database,
		Username:    c.Username,
		HasPassword: c.Password != "",
	}
}
