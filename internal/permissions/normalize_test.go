package permissions_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/veritum/veritum-pro/internal/permissions"
)

func TestNormalizeModuleKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"nexus", "nexus"},
		{"NEXUS", "nexus"},
		{"NEXUS_KEY", "nexus"},
		{"nexus_key", "nexus"},
		{"Scriptor_Key", "scriptor"},
		{"  aurum_key  ", "aurum"},
		{"", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, permissions.NormalizeModuleKey(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeModuleKey_Idempotent(t *testing.T) {
	inputs := []string{"NEXUS_KEY", "nexus", "Scriptor_Key", "lumen_KEY"}
	for _, in := range inputs {
		once := permissions.NormalizeModuleKey(in)
		twice := permissions.NormalizeModuleKey(once)
		assert.Equal(t, once, twice, "normalize(normalize(%q))", in)
	}
}
