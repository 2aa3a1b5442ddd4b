package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/erazemk/lostfound/internal/imaging"
)

// UploadResult is the service's answer to an image upload.
type UploadResult struct {
	ImageURL string
	Message  string
}

type rawUpload struct {
	ImageURL string `json:"imageUrl"`
	URL      string `json:"url"`
	Message  string `json:"message"`
}

// UploadImage validates, downscales and uploads an item photo. The returned
// URL is what CreateItem expects in NewItem.ImageURL.
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	img, err := imaging.Prepare(r)
	switch {
	case errors.Is(err, imaging.ErrTooLarge):
		return nil, newError(ErrPayloadTooLarge, 0, "Image size should be less than 5MB.", err)
	case errors.Is(err, imaging.ErrUnsupported):
		return nil, newError(ErrUnsupportedMedia, 0, "", err)
	case err != nil:
		return nil, newError(ErrValidation, 0, "Failed to read image file.", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, uploadName(filename)))
	h.Set("Content-Type", img.MIME)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, newError(ErrValidation, 0, "", fmt.Errorf("creating multipart part: %w", err))
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, newError(ErrValidation, 0, "", fmt.Errorf("writing multipart part: %w", err))
	}
	if err := mw.Close(); err != nil {
		return nil, newError(ErrValidation, 0, "", fmt.Errorf("closing multipart body: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, c.uploadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload/image", &body)
	if err != nil {
		return nil, newError(ErrValidation, 0, "", fmt.Errorf("building request: %w", err))
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	slog.Debug("uploading image", "file", filename, "size", humanize.Bytes(uint64(len(img.Data))),
		"width", img.Width, "height", img.Height)

	data, err := c.send(req)
	if err != nil {
		return nil, err
	}

	var raw rawUpload
	if err := decode(data, &raw); err != nil {
		return nil, err
	}
	res := &UploadResult{ImageURL: firstNonEmpty(raw.ImageURL, raw.URL), Message: raw.Message}
	if res.ImageURL == "" {
		return nil, newError(ErrServer, 0, "Upload succeeded but no image URL was returned.", nil)
	}

	slog.Info("image uploaded", "url", res.ImageURL)
	return res, nil
}

// DeleteImage removes a previously uploaded image by its URL.
func (c *Client) DeleteImage(ctx context.Context, imageURL string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}

	name := imageFileName(imageURL)
	if name == "" {
		return newError(ErrValidation, 0, "Invalid image URL.", nil)
	}
	return c.doJSON(ctx, http.MethodDelete, "/upload/image/"+url.PathEscape(name), nil, nil)
}

// uploadName keeps the base name but switches the extension to .jpg since
// every upload is re-encoded as JPEG.
func uploadName(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if base == "." || base == "/" || base == "" {
		base = "image"
	}
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.Map(func(r rune) rune {
		if r == '"' || r < 0x20 {
			return '_'
		}
		return r
	}, base)
	return base + ".jpg"
}

func imageFileName(imageURL string) string {
	u, err := url.Parse(strings.TrimSpace(imageURL))
	if err != nil {
		return ""
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return ""
	}
	return name
}
