package ebustl

// Functional options for the package's three configurable entry
// points: NewPageAggregator, ReadSTL and WriteSTL. Each option mutates
// an unexported config struct; this mirrors the teacher's
// STLOptions/TeletextOptions pattern of plain option structs, but as
// functions so zero-value callers never need to know the struct shape.

type aggregatorConfig struct {
	pageFilter     int // 0 means "first subtitle page seen"
	defaultOption  NationalOption
	reverseBits    bool
}

// AggregatorOption configures NewPageAggregator.
type AggregatorOption func(*aggregatorConfig)

// WithTeletextPage restricts the aggregator to a single page number
// (as broadcast in the header's page number field); packets for any
// other page are ignored. Without this option the aggregator locks
// onto the first page whose header sets the C6 subtitle flag.
func WithTeletextPage(page int) AggregatorOption {
	return func(c *aggregatorConfig) { c.pageFilter = page }
}

// WithDefaultNationalOption sets the Latin national option subset used
// until a header packet with a different C12-C14 selection arrives.
func WithDefaultNationalOption(opt NationalOption) AggregatorOption {
	return func(c *aggregatorConfig) { c.defaultOption = opt }
}

// WithReverseBitOrder passes PacketDecodeOptions.ReverseBitOrder
// through to every packet the aggregator decodes.
func WithReverseBitOrder() AggregatorOption {
	return func(c *aggregatorConfig) { c.reverseBits = true }
}

func newAggregatorConfig(opts []AggregatorOption) aggregatorConfig {
	c := aggregatorConfig{defaultOption: NOEnglish}
	for _, o := range opts {
		o(&c)
	}
	return c
}

type readerConfig struct {
	ignoreProgrammeStart bool
	frameRateOverride    *FrameRate
}

// ReaderOption configures ReadSTL.
type ReaderOption func(*readerConfig)

// WithIgnoreProgrammeStart treats GSI's "Time Code: Start of
// Programme" (TCP) as zero instead of subtracting it from every TTI
// timecode. Some encoders burn in a non-zero TCP purely as a slate
// offset without intending captions to be shifted by it; this option
// recovers the raw in-file timecodes for those files.
func WithIgnoreProgrammeStart() ReaderOption {
	return func(c *readerConfig) { c.ignoreProgrammeStart = true }
}

// WithFrameRateOverride bypasses the GSI's own frame rate field,
// for files whose DFC/frame-rate byte is known to be wrong.
func WithFrameRateOverride(fr FrameRate) ReaderOption {
	return func(c *readerConfig) { c.frameRateOverride = &fr }
}

func newReaderConfig(opts []ReaderOption) readerConfig {
	var c readerConfig
	for _, o := range opts {
		o(&c)
	}
	return c
}

type writerConfig struct {
	gsi GSI
}

// WriterOption configures WriteSTL.
type WriterOption func(*writerConfig)

// WithGSI supplies the GSI metadata block to write; without this
// option WriteSTL emits a minimal GSI block (see defaultGSI).
func WithGSI(gsi GSI) WriterOption {
	return func(c *writerConfig) { c.gsi = gsi }
}

func newWriterConfig(opts []WriterOption) writerConfig {
	c := writerConfig{gsi: defaultGSI()}
	for _, o := range opts {
		o(&c)
	}
	return c
}
