// Package gifmaker stitches saved PNG frames into an animated GIF.
package gifmaker

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"os"
	"sync"
)

type frame struct {
	img *image.Paletted
	err error
}

// Assemble converts the PNG frames to paletted images in parallel and
// writes them to out as one GIF, delay hundredths of a second per frame.
// Every frame shares the palette of the last one.
func Assemble(ctx context.Context, pngFilenames []string, out string, delay int) error {
	if len(pngFilenames) == 0 {
		return errors.New("gifmaker: no frames")
	}

	last, err := decode(pngFilenames[len(pngFilenames)-1])
	if err != nil {
		return err
	}
	pal := quantize(last).Palette

	// each worker owns one slot, so order is kept without sorting
	frames := make([]frame, len(pngFilenames))
	var wg sync.WaitGroup
	for i, name := range pngFilenames {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			frames[i] = convert(ctx, name, pal)
		}(i, name)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	anim := &gif.GIF{
		Image: make([]*image.Paletted, len(frames)),
		Delay: make([]int, len(frames)),
	}
	for i, fr := range frames {
		if fr.err != nil {
			return fr.err
		}
		anim.Image[i] = fr.img
		anim.Delay[i] = delay
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, anim); err != nil {
		f.Close()
		return fmt.Errorf("gifmaker: %w", err)
	}
	return f.Close()
}

func convert(ctx context.Context, name string, pal color.Palette) frame {
	if err := ctx.Err(); err != nil {
		return frame{err: err}
	}
	img, err := decode(name)
	if err != nil {
		return frame{err: err}
	}
	return frame{img: onto(image.NewPaletted(img.Bounds(), pal), img)}
}

// quantize maps img onto the Plan 9 palette.
func quantize(img image.Image) *image.Paletted {
	return onto(image.NewPaletted(img.Bounds(), palette.Plan9), img)
}

func onto(dst *image.Paletted, src image.Image) *image.Paletted {
	draw.Draw(dst, src.Bounds(), src, image.Point{}, draw.Over)
	return dst
}

func decode(name string) (image.Image, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("gifmaker: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("gifmaker: decode %s: %w", name, err)
	}
	return img, nil
}
