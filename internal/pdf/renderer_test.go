package pdf

import (
	"bytes"
	"compress/zlib"
	"io"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"otka-backend/internal/model"
)

// decodedContent inflates every flate stream in the document so the text
// placement operators become inspectable.
func decodedContent(t *testing.T, doc []byte) string {
	t.Helper()

	var out bytes.Buffer
	rest := doc
	for {
		i := bytes.Index(rest, []byte("stream"))
		if i < 0 {
			break
		}
		rest = rest[i+len("stream"):]
		rest = bytes.TrimPrefix(rest, []byte("\r\n"))
		rest = bytes.TrimPrefix(rest, []byte("\n"))
		end := bytes.Index(rest, []byte("endstream"))
		if end < 0 {
			break
		}
		if zr, err := zlib.NewReader(bytes.NewReader(rest[:end])); err == nil {
			if data, readErr := io.ReadAll(zr); readErr == nil {
				out.Write(data)
			}
			zr.Close()
		}
		rest = rest[end:]
	}
	require.NotZero(t, out.Len(), "no decodable content streams in document")
	return out.String()
}

var textPlacementRe = regexp.MustCompile(`BT ([0-9.]+) ([0-9.]+) Td \(((?:\\.|[^()\\])*)\)`)

// textBaseline returns the y coordinate of the first shown string with the
// given prefix. Non-ASCII characters are re-encoded by the font layer, so
// callers match on an ASCII prefix.
func textBaseline(t *testing.T, content, prefix string) float64 {
	t.Helper()
	for _, m := range textPlacementRe.FindAllStringSubmatch(content, -1) {
		if strings.HasPrefix(m[3], prefix) {
			y, err := strconv.ParseFloat(m[2], 64)
			require.NoError(t, err)
			return y
		}
	}
	t.Fatalf("string %q not found in content stream", prefix)
	return 0
}

func TestRenderProducesPDF(t *testing.T) {
	proforma := sampleProforma([]model.ProformaItem{
		item("Canapea 3 locuri", 2, "100.00", "21"),
	})

	data, err := NewRenderer().Render(proforma, sampleSettings())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRenderStacksTotalsOnSeparateBaselines(t *testing.T) {
	proforma := sampleProforma([]model.ProformaItem{
		item("Canapea 3 locuri", 2, "100.00", "21"),
	})

	data, err := NewRenderer().Render(proforma, sampleSettings())
	require.NoError(t, err)

	content := decodedContent(t, data)

	subtotalY := textBaseline(t, content, "Subtotal")
	vatY := textBaseline(t, content, "Total TVA")
	totalY := textBaseline(t, content, "TOTAL DE PLAT")

	// Page coordinates grow upward; each totals line sits below the one
	// before it instead of sharing a baseline.
	assert.Greater(t, subtotalY, vatY)
	assert.Greater(t, vatY, totalY)

	// The amounts column stacks the same way as the labels.
	assert.Greater(t,
		textBaseline(t, content, "250.00 RON"),
		textBaseline(t, content, "52.50 RON"),
	)
}
