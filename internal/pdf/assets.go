package pdf

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/disintegration/imaging"

	"github.com/avichaydahan/brandlight-reports/internal/errors"
)

const logoWidth = 400

var assetClient = &http.Client{Timeout: 15 * time.Second}

// FetchLogoDataURI downloads a brand logo, resizes it to logoWidth and
// returns it as a PNG data URI ready to embed on the cover page.
func FetchLogoDataURI(ctx context.Context, logoURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, logoURL, nil)
	if err != nil {
		return "", errors.Internal("build logo request", errors.WithCause(err))
	}

	resp, err := assetClient.Do(req)
	if err != nil {
		return "", errors.Internal("download logo", errors.WithCause(err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Internal(fmt.Sprintf("logo download returned %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", errors.Internal("read logo body", errors.WithCause(err))
	}

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", errors.Internal("decode logo image", errors.WithCause(err))
	}
	resized := imaging.Resize(img, logoWidth, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.PNG); err != nil {
		return "", errors.Internal("encode logo image", errors.WithCause(err))
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
