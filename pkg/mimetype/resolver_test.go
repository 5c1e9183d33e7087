package mimetype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_Resolve(t *testing.T) {
	table := Default()

	cases := []struct {
		name     string
		fileName string
		want     string
	}{
		{name: "csv", fileName: "report.csv", want: "text/csv"},
		{name: "upper case extension", fileName: "PLOT.PNG", want: "image/png"},
		{name: "nested path", fileName: "docs/guide.md", want: "text/markdown"},
		{name: "multiple dots", fileName: "archive.v2.pdf", want: "application/pdf"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := table.Resolve(tc.fileName)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTable_ResolveRejectsUnknown(t *testing.T) {
	table := Default()

	for _, name := range []string{"binary.exe", "noextension", "trailingdot.", ""} {
		_, err := table.Resolve(name)
		assert.ErrorIs(t, err, ErrUnsupportedType, name)
	}
}

func TestNew_AppliesOverrides(t *testing.T) {
	table := New(DefaultTable, map[string]string{
		"parquet": "application/vnd.apache.parquet",
		".CSV":    "application/csv",
		".zip":    "",
	})

	got, err := table.Resolve("data.parquet")
	require.NoError(t, err)
	assert.Equal(t, "application/vnd.apache.parquet", got)

	got, err = table.Resolve("report.csv")
	require.NoError(t, err)
	assert.Equal(t, "application/csv", got)

	_, err = table.Resolve("bundle.zip")
	assert.ErrorIs(t, err, ErrUnsupportedType)

	assert.Equal(t, len(DefaultTable), table.Len())
}
