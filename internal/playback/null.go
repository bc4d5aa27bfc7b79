package playback

import "github.com/miditape/miditape/sdk/contracts"

// NullSink discards everything. Used for headless runs where the
// operator only wants the session log, and by tests.
type NullSink struct{}

func (NullSink) Play(contracts.Event) error { return nil }
func (NullSink) Close() error               { return nil }
