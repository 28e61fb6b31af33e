package entitystore

import "go.uber.org/zap"

type options struct {
	codec      Codec
	logger     *zap.Logger
	categories []string
}

// Option configures a store at Open time.
type Option func(*options)

// WithCodec sets the codec used for the backing file. The default is JSON.
func WithCodec(codec Codec) Option {
	return func(o *options) {
		if codec != nil {
			o.codec = codec
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithCategories registers the categories a CategoryStore accepts. They are created on load when
// missing, and any other category found in the file makes the load fail with ErrMalformedData.
// Without this option every category present in the file is accepted. Store ignores it.
func WithCategories(categories ...string) Option {
	return func(o *options) {
		o.categories = append(o.categories, categories...)
	}
}
