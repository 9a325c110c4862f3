package loaders

import (
	"context"
	"fmt"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"github.com/spaghettifunk/unify/engine/core"
)

// AudioBuffer holds fully decoded samples.
type AudioBuffer struct {
	Locator string
	Format  beep.Format
	Buffer  *beep.Buffer
}

func (a *AudioBuffer) Duration() time.Duration {
	return a.Format.SampleRate.D(a.Buffer.Len())
}

// Streamer plays the whole buffer from the start.
func (a *AudioBuffer) Streamer() beep.StreamSeeker {
	return a.Buffer.Streamer(0, a.Buffer.Len())
}

type AudioLoader struct{}

func (al *AudioLoader) Load(ctx context.Context, locator string) (interface{}, error) {
	r, err := readAll(ctx, locator)
	if err != nil {
		return nil, err
	}

	streamer, format, err := wav.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", core.ErrUnsupportedFormat, locator, err)
	}
	defer streamer.Close()

	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)
	if err := streamer.Err(); err != nil {
		return nil, err
	}
	return &AudioBuffer{Locator: locator, Format: format, Buffer: buffer}, nil
}

func (al *AudioLoader) Unload(asset interface{}) error {
	if a, ok := asset.(*AudioBuffer); ok {
		a.Buffer = nil
	}
	return nil
}
