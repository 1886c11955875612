// Package panels provides the widgets laid over the star chart: the group
// leaderboard, the profile popup and the info bar.
package panels

import (
	"context"
	"image"
	_ "image/jpeg" // profile pictures
	_ "image/png"
	"net/url"

	"constellation/internal/profile"

	"fyne.io/fyne/v2/storage"
	"github.com/cockroachdb/errors"
)

// CardSource resolves profile cards. app.State implements it.
type CardSource interface {
	Card(ctx context.Context, userID string) profile.Card
}

// loadPicture fetches and decodes a profile picture through fyne's storage
// repositories, which handle http and https URIs.
func loadPicture(link string) (image.Image, error) {
	u, err := storage.ParseURI(link)
	if err != nil {
		return nil, errors.Wrapf(err, "parse picture uri %q", link)
	}
	rc, err := storage.Reader(u)
	if err != nil {
		return nil, errors.Wrapf(err, "open picture %q", link)
	}
	defer rc.Close()
	img, _, err := image.Decode(rc)
	if err != nil {
		return nil, errors.Wrapf(err, "decode picture %q", link)
	}
	return img, nil
}

// parseLink returns nil for links that do not parse, which leaves a
// hyperlink inert.
func parseLink(link string) *url.URL {
	if link == "" {
		return nil
	}
	u, err := url.Parse(link)
	if err != nil {
		return nil
	}
	return u
}
