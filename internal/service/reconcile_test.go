package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProfessorMatches(t *testing.T) {
	cases := []struct {
		name   string
		stored string
		target string
		exact  bool
		ok     bool
	}{
		{"exact", "prof-ada", "prof-ada", true, true},
		{"case insensitive", "Prof-Ada", "prof-ada", false, true},
		{"stored contains target", "dr-prof-ada-phd", "prof-ada", false, true},
		{"target contains stored", "ada", "prof-ada", false, true},
		{"containment ignores case", "ADA", "prof-ada", false, true},
		{"no relation", "prof-zed", "prof-ada", false, false},
		{"empty stored", "", "prof-ada", false, false},
		{"empty target", "prof-ada", "", false, false},
		{"both empty is exact", "", "", true, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			exact, ok := professorMatches(tc.stored, tc.target)
			require.Equal(t, tc.exact, exact)
			require.Equal(t, tc.ok, ok)
		})
	}
}
