package linking

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"

	"lockfit/internal/domain"
)

// Browser opens links with the OS URL handler, which routes phantom:// to
// the wallet app and https universal links to the browser.
type Browser struct{}

// Open launches link.
func (Browser) Open(ctx context.Context, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := browser.OpenURL(link); err != nil {
		return fmt.Errorf("open link: %w", err)
	}
	return nil
}

// Printer writes links to W for the user to open on another device.
type Printer struct {
	W io.Writer
}

// Open prints link on its own line.
func (p Printer) Open(_ context.Context, link string) error {
	_, err := fmt.Fprintln(p.W, link)
	return err
}

// Fallback tries Primary and, if it fails, Secondary.
type Fallback struct {
	Primary   domain.LinkOpener
	Secondary domain.LinkOpener
}

// Open hands link to Primary, then Secondary.
func (f Fallback) Open(ctx context.Context, link string) error {
	err := f.Primary.Open(ctx, link)
	if err == nil {
		return nil
	}
	log.Warn().Err(err).Msg("Could not launch wallet link; printing it instead")
	return f.Secondary.Open(ctx, link)
}

// New returns the opener for mode: "browser", "print" or "auto".
func New(mode string, w io.Writer) (domain.LinkOpener, error) {
	switch mode {
	case "browser":
		return Browser{}, nil
	case "print":
		return Printer{W: w}, nil
	case "", "auto":
		return Fallback{Primary: Browser{}, Secondary: Printer{W: w}}, nil
	default:
		return nil, fmt.Errorf("unknown link opener %q", mode)
	}
}

var (
	_ domain.LinkOpener = Browser{}
	_ domain.LinkOpener = Printer{}
	_ domain.LinkOpener = Fallback{}
)
