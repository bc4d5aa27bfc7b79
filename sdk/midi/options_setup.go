package midi

import (
	"github.com/miditape/miditape/internal/logger"
	"github.com/miditape/miditape/sdk/contracts"
)

// applyDefaultOptions sets default values for ClientOptions if not
// explicitly provided: a zap-backed logger at InfoLevel and a default
// CoreMIDI client name.
func applyDefaultOptions(opts ...contracts.Option) (contracts.ClientOptions, error) {
	options := &contracts.ClientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.LogLevel == 0 {
		options.LogLevel = contracts.InfoLevel
	}
	if options.CoreMIDIConfig == nil {
		options.CoreMIDIConfig = &contracts.CoreMIDIConfig{ClientName: "miditape"}
	}

	options.Logger.SetLevel(options.LogLevel)
	return *options, nil
}
