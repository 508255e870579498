package components

import (
	"reflect"
	"testing"
)

func TestValidateComponents(t *testing.T) {
	tests := []struct {
		name        string
		components  []string
		wantValid   []string
		wantInvalid []string
		wantErr     string
	}{
		{"empty list enables all", []string{}, []string{}, []string{}, ""},
		{"single", []string{"storage"}, []string{"storage"}, nil, ""},
		{"all", []string{"appservice", "keyvault", "storage", "compute"}, []string{"appservice", "keyvault", "storage", "compute"}, nil, ""},
		{"mixed case with spaces", []string{" KeyVault ", " compute "}, []string{"keyvault", "compute"}, nil, ""},
		{"known and unknown", []string{"storage", "network"}, []string{"storage"}, []string{"network"}, ""},
		{"only unknown", []string{"kubectl"}, nil, []string{"kubectl"}, "no valid components specified, invalid components: kubectl"},
		{"only blanks", []string{" ", ""}, nil, nil, "at least one component must be enabled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, invalid, err := ValidateComponents(tt.components)

			if tt.wantErr == "" && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != "" && (err == nil || err.Error() != tt.wantErr) {
				t.Fatalf("error = %v, want %q", err, tt.wantErr)
			}
			if !reflect.DeepEqual(valid, tt.wantValid) {
				t.Errorf("valid = %#v, want %#v", valid, tt.wantValid)
			}
			if !reflect.DeepEqual(invalid, tt.wantInvalid) {
				t.Errorf("invalid = %#v, want %#v", invalid, tt.wantInvalid)
			}
		})
	}
}

func TestIsComponentEnabled(t *testing.T) {
	tests := []struct {
		name      string
		component string
		enabled   []string
		want      bool
	}{
		{"empty list enables all", "appservice", nil, true},
		{"listed", "keyvault", []string{"keyvault"}, true},
		{"not listed", "compute", []string{"storage"}, false},
		{"unknown component", "helm", nil, false},
		{"case insensitive", "Storage", []string{" STORAGE"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsComponentEnabled(tt.component, tt.enabled); got != tt.want {
				t.Errorf("IsComponentEnabled(%q, %v) = %v, want %v", tt.component, tt.enabled, got, tt.want)
			}
		})
	}
}

func TestGetComponentByName(t *testing.T) {
	comp, err := GetComponentByName(" Compute")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if comp.Name != Compute {
		t.Errorf("expected %s, got %s", Compute, comp.Name)
	}

	if _, err := GetComponentByName("fleet"); err == nil || err.Error() != "unknown component: fleet" {
		t.Errorf("unexpected error for unknown component: %v", err)
	}
}

func TestGetAllComponents_IsACopy(t *testing.T) {
	all := GetAllComponents()
	if len(all) != 4 || all[0].Name != AppService || all[3].Name != Compute {
		t.Fatalf("unexpected catalogue %v", all)
	}

	all[0].Name = "changed"
	if GetAllComponents()[0].Name != AppService {
		t.Error("catalogue must not be mutable through GetAllComponents")
	}
}
