package mock

import "github.com/fwojciec/docscout"

var _ docscout.FrameworkDetector = (*FrameworkDetector)(nil)

// FrameworkDetector is a mock implementation of docscout.FrameworkDetector.
type FrameworkDetector struct {
	DetectFn func(html string) docscout.Framework
}

func (d *FrameworkDetector) Detect(html string) docscout.Framework {
	return d.DetectFn(html)
}
