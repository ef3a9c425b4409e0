package processor

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"regexp"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/disintegration/imaging"

	"github.com/avdeevm/ai-gallery/internal/model"
)

// Progress checkpoints within a single file, as fractions in [0,1].
const (
	progressThumbnail = 0.1
	progressEncoded   = 0.2
)

var supportedTypes = map[string]imaging.Format{
	"image/jpeg": imaging.JPEG,
	"image/png":  imaging.PNG,
}

// ErrUnsupportedType is returned for any content type other than JPEG or PNG,
// before any bytes are decoded.
var ErrUnsupportedType = fmt.Errorf("unsupported content type: only JPEG and PNG are accepted")

// Processor derives the upload artifacts from a raw image file: a bounded
// thumbnail, a base64 payload for the vision model, and a collision-safe
// stored filename.
type Processor struct {
	maxEdge int
	lastTS  atomic.Int64 // guards the timestamp prefix against same-millisecond collisions
}

// New creates a Processor. maxEdge bounds the larger thumbnail dimension.
func New(maxEdge int) *Processor {
	return &Processor{maxEdge: maxEdge}
}

// Process produces the thumbnail, base64 payload and stored name for one file.
// The progress callback fires at two checkpoints: thumbnail ready and encoding
// ready. Errors are returned, never panicked, so a batch can continue with the
// next file.
func (p *Processor) Process(f model.SourceFile, onProgress func(float64)) (model.ProcessedFile, error) {
	format, ok := supportedTypes[f.ContentType]
	if !ok {
		return model.ProcessedFile{}, ErrUnsupportedType
	}

	img, err := imaging.Decode(bytes.NewReader(f.Data))
	if err != nil {
		return model.ProcessedFile{}, fmt.Errorf("failed to decode image: %w", err)
	}

	// Fit scales down to the bounding box and never upscales.
	thumb := imaging.Fit(img, p.maxEdge, p.maxEdge, imaging.Lanczos)

	buf := bytes.NewBuffer(nil)
	if err := imaging.Encode(buf, thumb, format); err != nil {
		return model.ProcessedFile{}, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	if onProgress != nil {
		onProgress(progressThumbnail)
	}

	encoded := base64.StdEncoding.EncodeToString(f.Data)

	if onProgress != nil {
		onProgress(progressEncoded)
	}

	return model.ProcessedFile{
		StoredName:    p.storedName(f.Name),
		Thumbnail:     buf.Bytes(),
		ThumbnailType: f.ContentType,
		Base64:        encoded,
	}, nil
}

// storedName prefixes the original name with a strictly increasing millisecond
// timestamp so two uploads of the same file never collide in storage.
func (p *Processor) storedName(original string) string {
	now := time.Now().UnixMilli()
	for {
		last := p.lastTS.Load()
		if now <= last {
			now = last + 1
		}
		if p.lastTS.CompareAndSwap(last, now) {
			break
		}
	}

	return strconv.FormatInt(now, 10) + "-" + original
}

var hexColorRe = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// validHexColors filters the model's color output down to well-formed
// six-digit hex values, normalized with a leading '#'.
func validHexColors(colors []string) []string {
	out := make([]string, 0, len(colors))
	for _, c := range colors {
		if !hexColorRe.MatchString(c) {
			continue
		}
		if c[0] != '#' {
			c = "#" + c
		}
		out = append(out, c)
	}

	return out
}
