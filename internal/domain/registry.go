package domain

import "fmt"

// RegistryKind names one of the user-maintained name lists
type RegistryKind string

const (
	RegistryDropZone RegistryKind = "dropzone"
	RegistryAircraft RegistryKind = "aircraft"
	RegistryJumpType RegistryKind = "jumptype"
)

// ParseRegistryKind accepts the CLI spelling of a registry
func ParseRegistryKind(s string) (RegistryKind, error) {
	switch s {
	case "dropzone", "dropzones", "dz":
		return RegistryDropZone, nil
	case "aircraft":
		return RegistryAircraft, nil
	case "jumptype", "jumptypes", "type":
		return RegistryJumpType, nil
	}
	return "", fmt.Errorf("unknown registry %q (expected dropzone, aircraft or jumptype)", s)
}
