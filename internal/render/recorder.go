package render

import "encoding/json"

// Recorder is a Context that keeps the last frame it received, for remote
// clients and tests.
type Recorder struct {
	frame Frame
}

func (r *Recorder) Begin(st FrameState) error {
	r.frame = Frame{State: st}
	return nil
}

func (r *Recorder) Draw(dc DrawCall) error {
	r.frame.Calls = append(r.frame.Calls, dc)
	return nil
}

func (r *Recorder) End() error { return nil }

// Frame returns the last completed frame.
func (r *Recorder) Frame() Frame {
	return r.frame
}

// FrameToJSON serializes a frame for the client.
func FrameToJSON(f Frame) ([]byte, error) {
	if f.Calls == nil {
		f.Calls = []DrawCall{}
	}
	return json.Marshal(f)
}
