package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/rohankatakam/devpairs/internal/collab"
)

func sampleReport() *Report {
	return &Report{
		Repository: "octo/hello",
		Mode:       collab.ModeBoth,
		Grouping:   collab.GroupByModule,
		Commits:    42,
		Pairs: []collab.RankedPair{
			{Pair: collab.NewPair("Alice", "Bob"), Count: 5},
			{Pair: collab.NewPair("Carol", "Dave"), Count: 12},
		},
	}
}

func TestTableFormatter(t *testing.T) {
	tests := []struct {
		name     string
		pairs    []collab.RankedPair
		expected string
	}{
		{
			name:     "no pairs",
			expected: "No pairs have been found.\n",
		},
		{
			name: "short names use the header width",
			pairs: []collab.RankedPair{
				{Pair: collab.NewPair("Alice", "Bob"), Count: 5},
				{Pair: collab.NewPair("Carol", "Dave"), Count: 12},
			},
			expected: "Developer Pair" + strings.Repeat(" ", 17) + " | Count\n" +
				strings.Repeat("-", 42) + "\n" +
				"Alice & Bob" + strings.Repeat(" ", 20) + " |     5\n" +
				"Carol & Dave" + strings.Repeat(" ", 19) + " |    12\n",
		},
		{
			name: "long names widen the table",
			pairs: []collab.RankedPair{
				{Pair: collab.NewPair("Bartholomew-Longname", "Al"), Count: 100000},
			},
			expected: "Developer Pair" + strings.Repeat(" ", 29) + " | Count\n" +
				strings.Repeat("-", 54) + "\n" +
				"Al & Bartholomew-Longname" + strings.Repeat(" ", 18) + " | 100000\n",
		},
		{
			name: "non-ascii names are measured in characters",
			pairs: []collab.RankedPair{
				{Pair: collab.NewPair("Søren-Kierkegård", "Al"), Count: 3},
			},
			expected: "Developer Pair" + strings.Repeat(" ", 21) + " | Count\n" +
				strings.Repeat("-", 46) + "\n" +
				"Al & Søren-Kierkegård" + strings.Repeat(" ", 14) + " |     3\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := sampleReport()
			report.Pairs = tt.pairs

			var buf bytes.Buffer
			require.NoError(t, (&TableFormatter{}).Format(report, &buf))
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestPrettyFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&PrettyFormatter{}).Format(sampleReport(), &buf))

	out := buf.String()
	assert.Contains(t, out, "octo/hello")
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "Dave")
	assert.Contains(t, out, "42")

	buf.Reset()
	empty := sampleReport()
	empty.Pairs = nil
	require.NoError(t, (&PrettyFormatter{}).Format(empty, &buf))
	assert.Equal(t, NoPairsMessage+"\n", buf.String())
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON).Format(sampleReport(), &buf))

	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "octo/hello", doc.Repository)
	assert.Equal(t, "both", doc.Mode)
	assert.Equal(t, "module", doc.Grouping)
	assert.Equal(t, 42, doc.Commits)
	assert.Equal(t, []PairEntry{
		{First: "Alice", Second: "Bob", Count: 5},
		{First: "Carol", Second: "Dave", Count: 12},
	}, doc.Pairs)
}

func TestJSONFormatter_EmptyPairsIsArray(t *testing.T) {
	report := sampleReport()
	report.Pairs = nil

	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON).Format(report, &buf))
	assert.Contains(t, buf.String(), `"pairs": []`)
}

func TestYAMLFormatter(t *testing.T) {
	report := sampleReport()
	report.Mode = collab.ModeEither

	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatYAML).Format(report, &buf))
	assert.Contains(t, buf.String(), "mode: either")

	var doc Document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Pairs, 2)
	assert.Equal(t, PairEntry{First: "Carol", Second: "Dave", Count: 12}, doc.Pairs[1])
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"":       FormatTable,
		"table":  FormatTable,
		"PRETTY": FormatPretty,
		" json ": FormatJSON,
		"yaml":   FormatYAML,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("csv")
	assert.Error(t, err)
}

func TestNewFormatter_DefaultsToTable(t *testing.T) {
	assert.IsType(t, &TableFormatter{}, NewFormatter(""))
	assert.IsType(t, &PrettyFormatter{}, NewFormatter(FormatPretty))
	assert.IsType(t, &YAMLFormatter{}, NewFormatter(FormatYAML))
}
