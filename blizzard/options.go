package blizzard

import (
	"fmt"

	"github.com/kbukum/speechprep/features"
	"github.com/kbukum/speechprep/transform"
	"github.com/kbukum/speechprep/validation"
)

// Option defaults.
const (
	DefaultBatchSize         = 64
	DefaultSeqLength         = 100
	DefaultSortingMultiplier = 20
)

// Options configure a stream. Zero values select the defaults.
type Options struct {
	WhichSets         []string `yaml:"which_sets" mapstructure:"which_sets" validate:"min=1,unique,dive,required"`
	BatchSize         int      `yaml:"batch_size" mapstructure:"batch_size" validate:"gt=0"`
	SeqLength         int      `yaml:"seq_length" mapstructure:"seq_length" validate:"gt=0"`
	NumExamples       int      `yaml:"num_examples" mapstructure:"num_examples" validate:"gte=0"`
	SortingMultiplier int      `yaml:"sorting_multiplier" mapstructure:"sorting_multiplier" validate:"gt=0"`
	WhichSources      []string `yaml:"which_sources" mapstructure:"which_sources" validate:"min=1,unique"`
	F0Ceiling         float64  `yaml:"f0_ceiling" mapstructure:"f0_ceiling"`
	Equalize          string   `yaml:"equalize" mapstructure:"equalize" validate:"oneof=first min"`
	ZeroUnvoiced      []string `yaml:"zero_unvoiced" mapstructure:"zero_unvoiced" validate:"unique"`
	NormalizeVoicing  bool     `yaml:"normalize_voicing" mapstructure:"normalize_voicing"`
	ReturnLast        bool     `yaml:"return_last" mapstructure:"return_last"`
	ShareValue        bool     `yaml:"share_value" mapstructure:"share_value"`
	Strict            bool     `yaml:"strict" mapstructure:"strict"`
	FloatX            string   `yaml:"float_x" mapstructure:"float_x" validate:"oneof=float32 float64"`
	Seed              uint64   `yaml:"seed" mapstructure:"seed"`
	Prefetch          int      `yaml:"prefetch" mapstructure:"prefetch" validate:"gte=0"`
	RunID             string   `yaml:"run_id" mapstructure:"run_id" validate:"omitempty,uuid"`
}

// ApplyDefaults fills every unset option.
func (o *Options) ApplyDefaults() {
	if len(o.WhichSets) == 0 {
		o.WhichSets = []string{"train"}
	}
	if o.BatchSize == 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.SeqLength == 0 {
		o.SeqLength = DefaultSeqLength
	}
	if o.SortingMultiplier == 0 {
		o.SortingMultiplier = DefaultSortingMultiplier
	}
	if len(o.WhichSources) == 0 {
		o.WhichSources = channelNames(features.DefaultSources)
	}
	if o.F0Ceiling == 0 {
		o.F0Ceiling = transform.DefaultF0Ceiling
	}
	if o.Equalize == "" {
		o.Equalize = string(transform.PolicyFirst)
	}
	if len(o.ZeroUnvoiced) == 0 {
		o.ZeroUnvoiced = channelNames(transform.DefaultZeroUnvoiced)
	}
	if o.FloatX == "" {
		o.FloatX = string(features.Float32)
	}
}

// Validate checks option ranges and channel names. Call ApplyDefaults first.
func (o *Options) Validate() error {
	if err := validation.Validate(o); err != nil {
		return err
	}
	v := validation.New().Positive("f0_ceiling", o.F0Ceiling)
	if _, err := features.ParseChannels(o.WhichSources); err != nil {
		v.AddError("which_sources", err.Error())
	}
	zero, err := features.ParseChannels(o.ZeroUnvoiced)
	if err != nil {
		v.AddError("zero_unvoiced", err.Error())
	} else {
		v.Merge("zero_unvoiced", transform.ValidateZeroChannels(zero))
	}
	return v.Validate()
}

// PoolSize is the number of records sorted together.
func (o *Options) PoolSize() int { return o.BatchSize * o.SortingMultiplier }

// settings are options resolved into typed values.
type settings struct {
	sources []features.Channel
	zero    []features.Channel
	policy  transform.Policy
	fx      features.FloatX
	window  int
}

func (o *Options) resolve() (settings, error) {
	var s settings
	var err error
	if s.sources, err = features.ParseChannels(o.WhichSources); err != nil {
		return s, err
	}
	if s.zero, err = features.ParseChannels(o.ZeroUnvoiced); err != nil {
		return s, err
	}
	if s.policy, err = transform.ParsePolicy(o.Equalize); err != nil {
		return s, err
	}
	s.fx = features.FloatX(o.FloatX)
	s.window = o.SeqLength + 1
	return s, nil
}

func channelNames(chs []features.Channel) []string {
	names := make([]string, len(chs))
	for i, ch := range chs {
		names[i] = string(ch)
	}
	return names
}

// String summarizes the options for logging.
func (o *Options) String() string {
	return fmt.Sprintf("sets=%v batch=%d seq=%d pool=%d sources=%v", o.WhichSets, o.BatchSize, o.SeqLength, o.PoolSize(), o.WhichSources)
}
