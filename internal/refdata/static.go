package refdata

import (
	"context"

	"rcm-benchmark/internal/benchmark"
)

// StaticDefaultsSource serves the built-in tables and never looks anything up.
type StaticDefaultsSource struct {
	ref *benchmark.ReferenceData
}

func NewStaticDefaultsSource() *StaticDefaultsSource {
	return NewStaticSource(benchmark.DefaultReferenceData())
}

// NewStaticSource serves ref, which must not be modified afterwards.
func NewStaticSource(ref *benchmark.ReferenceData) *StaticDefaultsSource {
	return &StaticDefaultsSource{ref: ref}
}

func (s *StaticDefaultsSource) Name() string { return SourceStatic }

func (s *StaticDefaultsSource) Resolve(_ context.Context, _ string, state string) (*Resolution, error) {
	return &Resolution{
		Reference: s.ref,
		State:     state,
		Source:    SourceStatic,
	}, nil
}
