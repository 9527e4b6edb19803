package fetcher

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectCSV(t *testing.T) {
	input := "LAD24CD,LAD24NM,2025,2026\nE06000001,Hartlepool,0.5,1.5\nE06000002,\"Middlesbrough, Town\",-1,\n"
	rows, err := CollectCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"LAD24CD", "LAD24NM", "2025", "2026"}, rows[0])
	assert.Equal(t, []string{"E06000002", "Middlesbrough, Town", "-1", ""}, rows[2])
}

func TestCollectCSV_TrimSpaceAndDelimiter(t *testing.T) {
	input := " a | b \n 1 | 2 \n"
	rows, err := CollectCSV(context.Background(), strings.NewReader(input), CSVOptions{Delimiter: '|', TrimSpace: true})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}}, rows)
}

func TestCollectCSV_ByteOrderMark(t *testing.T) {
	input := "\ufeffLAD24CD,LAD24NM,2025\nE06000001,Hartlepool,\ufeff1\n"
	rows, err := CollectCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, "LAD24CD", rows[0][0])
	assert.Equal(t, "\ufeff1", rows[1][2], "only the header is stripped")
}

func TestCollectCSV_MalformedQuote(t *testing.T) {
	input := "a,b\n\"unterminated,2\n"
	_, err := CollectCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv: read row")
}

func TestStreamCSV_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := CollectCSV(ctx, strings.NewReader("a,b\n1,2\n"), CSVOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context cancelled")
}
