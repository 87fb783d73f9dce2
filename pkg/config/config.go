package config

import (
	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultChunkSize      = 1024
	DefaultEventQueueSize = 1024
)

var ErrInvalidOptions = errors.New("pivot: invalid options")

type Options struct {
	// Rows or columns materialized per FetchMore call.
	ChunkSize int `toml:"chunk_size"`
	// Header recompute fans out to a worker pool when greater than 1.
	RecomputeWorkers int `toml:"recompute_workers"`
	// Capacity of the grid event ring, a power of two.
	EventQueueSize uint32 `toml:"event_queue_size"`
	LogLevel       string `toml:"log_level"`
}

func DefaultOptions() *Options {
	return &Options{
		ChunkSize:        DefaultChunkSize,
		RecomputeWorkers: 1,
		EventQueueSize:   DefaultEventQueueSize,
	}
}

// FillDefaults replaces zero fields with their defaults.
func (o *Options) FillDefaults() *Options {
	if o.ChunkSize == 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.RecomputeWorkers == 0 {
		o.RecomputeWorkers = 1
	}
	if o.EventQueueSize == 0 {
		o.EventQueueSize = DefaultEventQueueSize
	}
	return o
}

func (o *Options) Validate() error {
	if o.ChunkSize <= 0 {
		return errors.Wrapf(ErrInvalidOptions, "chunk_size %d", o.ChunkSize)
	}
	if o.RecomputeWorkers < 0 {
		return errors.Wrapf(ErrInvalidOptions, "recompute_workers %d", o.RecomputeWorkers)
	}
	if o.EventQueueSize < 2 || o.EventQueueSize&(o.EventQueueSize-1) != 0 {
		return errors.Wrapf(ErrInvalidOptions, "event_queue_size %d is not a power of two", o.EventQueueSize)
	}
	if o.LogLevel != "" {
		if _, err := logrus.ParseLevel(o.LogLevel); err != nil {
			return errors.Wrapf(ErrInvalidOptions, "log_level: %v", err)
		}
	}
	return nil
}

// ApplyLogging sets the logrus level if one is configured.
func (o *Options) ApplyLogging() {
	if o.LogLevel == "" {
		return
	}
	if level, err := logrus.ParseLevel(o.LogLevel); err == nil {
		logrus.SetLevel(level)
	}
}

func Decode(data string) (*Options, error) {
	opts := new(Options)
	if _, err := toml.Decode(data, opts); err != nil {
		return nil, errors.Wrap(err, "decode options")
	}
	opts.FillDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func LoadFile(path string) (*Options, error) {
	opts := new(Options)
	if _, err := toml.DecodeFile(path, opts); err != nil {
		return nil, errors.Wrapf(err, "load options from %s", path)
	}
	opts.FillDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}
