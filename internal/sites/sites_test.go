package sites_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thinkcol-info/kaishing-report-app/internal/sites"
)

func TestResolve(t *testing.T) {
	r := sites.Default()

	testCases := []struct {
		name    string
		account string
		want    string
	}{
		{"known account", "eddiecheuk@kaishing.com.hk", "HQ-IT"},
		{"shared site code", "ksitsupport@kaishing.com.hk", "HQ-IT"},
		{"supreme domain", "vincenttse@supreme-mgt.com.hk", "VY"},
		{"uppercased roster entry kept verbatim", "Vcity@kaishing.com.hk", "VCY"},
		{"case mismatch misses", "vcity@kaishing.com.hk", sites.Unknown},
		{"off roster", "nobody@example.com", sites.Unknown},
		{"empty account", "", sites.Unknown},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, r.Resolve(tc.account))
		})
	}
}

func TestDefaultRosterLoads(t *testing.T) {
	assert.Greater(t, sites.Default().Size(), 60)
}

func TestNewResolverCopiesTable(t *testing.T) {
	table := map[string]string{"a@kaishing.com.hk": "HQ"}
	r := sites.NewResolver(table)
	table["a@kaishing.com.hk"] = "changed"
	assert.Equal(t, "HQ", r.Resolve("a@kaishing.com.hk"))
}
