// Package writer exposes sinks for heap images: raw copies of the managed
// region taken after a replay, for offline inspection.
package writer

// Writer receives one heap image.
type Writer interface {
	WriteImage(buf []byte) error
}
