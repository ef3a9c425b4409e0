package processor

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/fogleman/gg"
)

const (
	paletteWidth  = 300
	paletteHeight = 40
)

// PaletteStrip renders the dominant colors of an analyzed image as a strip of
// equal-width bands, encoded as PNG. Colors that are not valid hex values are
// skipped; if none remain, no strip is produced and ok is false.
func PaletteStrip(colors []string) ([]byte, bool, error) {
	valid := validHexColors(colors)
	if len(valid) == 0 {
		return nil, false, nil
	}

	dc := gg.NewContext(paletteWidth, paletteHeight)
	bandWidth := float64(paletteWidth) / float64(len(valid))

	for i, c := range valid {
		dc.SetHexColor(c)
		dc.DrawRectangle(float64(i)*bandWidth, 0, bandWidth, paletteHeight)
		dc.Fill()
	}

	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, dc.Image()); err != nil {
		return nil, false, fmt.Errorf("failed to encode palette strip: %w", err)
	}

	return buf.Bytes(), true, nil
}
