package models

// Module slugs gate API key permissions per feature area.
const (
	ModuleDevices  = "devices"
	ModuleSensors  = "sensors"
	ModuleReadings = "readings"
	ModuleAPIKeys  = "api-keys"
)

// Module describes a permission-gated feature area.
type Module struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// SystemModules returns the registry of modules an API key can be scoped to.
// Add new modules here as the system grows.
func SystemModules() []Module {
	return []Module{
		{Slug: ModuleDevices, Name: "Devices", Description: "Device management and gateway publish"},
		{Slug: ModuleSensors, Name: "Sensors", Description: "Sensor management"},
		{Slug: ModuleReadings, Name: "Readings", Description: "Reading queries and batch ingestion"},
		{Slug: ModuleAPIKeys, Name: "API Keys", Description: "API key management"},
	}
}
