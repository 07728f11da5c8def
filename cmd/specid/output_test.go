package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	writeTable(&buf, []column{textCol("Name"), numCol("Obj ID")}, [][]string{
		{"O5-S1", "5"},
		{"O123-S1"},
		{"O7-S1", "7", "dropped"},
	})

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 7, out)
	assert.Contains(t, lines[1], "Name")
	assert.Contains(t, lines[1], "Obj ID")
	assert.Contains(t, lines[3], "      5 │", "numeric column is right-aligned")
	assert.Contains(t, lines[4], "O123-S1")
	assert.NotContains(t, out, "dropped")
}

func TestWriteTableNoColumns(t *testing.T) {
	var buf bytes.Buffer
	writeTable(&buf, nil, [][]string{{"x"}})
	assert.Empty(t, buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, map[string]int{"objid": 500}))
	assert.Equal(t, "{\n  \"objid\": 500\n}\n", buf.String())

	assert.Error(t, writeJSON(&buf, func() {}))
}
