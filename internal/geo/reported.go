package geo

import "context"

// Reported is a Locator backed by the outcome a client device already obtained,
// either a fix or one of the capture errors.
type Reported struct {
	Position Position
	Err      error
}

func (r Reported) CurrentPosition(ctx context.Context, opts Options) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	if r.Err != nil {
		return Position{}, r.Err
	}
	return r.Position, nil
}

// Replayed marks the outcome as already read from the device sensor.
func (r Reported) Replayed() bool { return true }

type replayer interface {
	Replayed() bool
}

// Replays reports whether asking the locator returns an outcome the device
// already produced instead of querying a sensor. Such outcomes must always be
// recorded, so a cached recent fix can never stand in for them.
func Replays(l Locator) bool {
	r, ok := l.(replayer)
	return ok && r.Replayed()
}
