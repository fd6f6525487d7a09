package model

// Manufacturer is a read-only entry in the manufacturer directory.
type Manufacturer struct {
	Key           string `json:"key"           yaml:"key"`
	Name          string `json:"name"          yaml:"name"`
	Certification string `json:"certification" yaml:"certification"`
	Specialty     string `json:"specialty"     yaml:"specialty"`
	SecurityLevel string `json:"security_level" yaml:"security_level"`
	Location      string `json:"location"      yaml:"location"`
}

// UnknownManufacturer is reported in place of a name or location that no
// longer resolves in the directory.
const UnknownManufacturer = "UNKNOWN"
