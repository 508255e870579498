// Package components lists the tool families the server can register.
package components

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Component names, as accepted by --enabled-components
const (
	AppService = "appservice"
	KeyVault   = "keyvault"
	Storage    = "storage"
	Compute    = "compute"
)

// Component is one tool family
type Component struct {
	Name        string
	Description string
}

var catalogue = []Component{
	{Name: AppService, Description: "Azure App Service web apps: inspect, view configuration, start, stop, restart"},
	{Name: KeyVault, Description: "Azure Key Vault secrets and vault discovery"},
	{Name: Storage, Description: "Azure Blob Storage containers and blobs"},
	{Name: Compute, Description: "Azure Virtual Machines lifecycle"},
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// GetAllComponents returns every component in registration order
func GetAllComponents() []Component {
	return append([]Component(nil), catalogue...)
}

// GetComponentByName looks a component up, ignoring case and surrounding blanks
func GetComponentByName(name string) (*Component, error) {
	name = normalize(name)
	for i := range catalogue {
		if catalogue[i].Name == name {
			comp := catalogue[i]
			return &comp, nil
		}
	}
	return nil, errors.Newf("unknown component: %s", name)
}

// ValidateComponents splits names into known and unknown components. An empty
// list means every component and is valid; otherwise at least one name must
// be known. Blank entries are skipped.
func ValidateComponents(names []string) (valid []string, invalid []string, err error) {
	if len(names) == 0 {
		return []string{}, []string{}, nil
	}

	for _, name := range names {
		name = normalize(name)
		if name == "" {
			continue
		}
		if _, lookupErr := GetComponentByName(name); lookupErr != nil {
			invalid = append(invalid, name)
			continue
		}
		valid = append(valid, name)
	}

	switch {
	case len(valid) > 0:
		return valid, invalid, nil
	case len(invalid) > 0:
		return valid, invalid, errors.Newf("no valid components specified, invalid components: %s", strings.Join(invalid, ", "))
	default:
		return valid, invalid, errors.New("at least one component must be enabled")
	}
}

// IsComponentEnabled reports whether name is a known component selected by
// enabled. An empty selection enables everything.
func IsComponentEnabled(name string, enabled []string) bool {
	name = normalize(name)
	if _, err := GetComponentByName(name); err != nil {
		return false
	}
	if len(enabled) == 0 {
		return true
	}
	for _, e := range enabled {
		if normalize(e) == name {
			return true
		}
	}
	return false
}
