package chartrace

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validCSV = `date,name,category,value
2020-01-01,Alpha,tech,100
2020-01-01,Beta,retail,80
2020-02-01,Alpha,tech,120
2020-02-01,Beta,retail,95
`

func TestParseCSV(t *testing.T) {
	t.Parallel()

	ds, err := ParseCSV(strings.NewReader(validCSV))
	require.NoError(t, err)
	assert.Len(t, ds.Records, 4)
	assert.Len(t, ds.Dates, 2)
	assert.Equal(t, []string{"Alpha", "Beta"}, ds.Names)
	assert.Equal(t, "tech", ds.Categories["Alpha"])
	assert.True(t, ds.Dates[0].Before(ds.Dates[1]))
}

func TestParseCSVHeaderCaseInsensitive(t *testing.T) {
	t.Parallel()

	csv := "Date,NAME,Category,Value\n2020-01-01,Alpha,tech,1\n"
	ds, err := ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Len(t, ds.Records, 1)
}

func TestParseCSVMissingColumn(t *testing.T) {
	t.Parallel()

	_, err := ParseCSV(strings.NewReader("date,name,value\n2020-01-01,Alpha,1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing required column "category"`)
}

func TestParseCSVDuplicateEntry(t *testing.T) {
	t.Parallel()

	csv := `date,name,category,value
2020-01-01,Alpha,tech,100
2020-01-01,Alpha,tech,110
`
	_, err := ParseCSV(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate entry")
}

func TestParseCSVInvalidDate(t *testing.T) {
	t.Parallel()

	_, err := ParseCSV(strings.NewReader("date,name,category,value\n01/02/2020,Alpha,tech,1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date")
}

func TestParseCSVInvalidValue(t *testing.T) {
	t.Parallel()

	_, err := ParseCSV(strings.NewReader("date,name,category,value\n2020-01-01,Alpha,tech,abc\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid value")
}

func TestParseCSVEmpty(t *testing.T) {
	t.Parallel()

	_, err := ParseCSV(strings.NewReader("date,name,category,value\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data rows")
}
