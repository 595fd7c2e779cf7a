package ebustl

import "fmt"

// FrameRate describes a video frame rate as an exact rational (Num/Den
// frames per second) plus the SMPTE ST 12-1 drop-frame bookkeeping
// needed to turn a running frame count into an hh:mm:ss:ff timecode.
type FrameRate struct {
	Num           int
	Den           int
	DropFrame     bool
	NominalFPS    int // fps rounded to an integer, used for timecode digit wraparound
	DropPerMinute int // frame numbers skipped at the top of each non-tenth minute
}

var (
	FrameRate24    = FrameRate{Num: 24, Den: 1, NominalFPS: 24}
	FrameRate25    = FrameRate{Num: 25, Den: 1, NominalFPS: 25}
	FrameRate30    = FrameRate{Num: 30, Den: 1, NominalFPS: 30}
	FrameRate2997  = FrameRate{Num: 30000, Den: 1001, DropFrame: true, NominalFPS: 30, DropPerMinute: 2}
	FrameRate5994  = FrameRate{Num: 60000, Den: 1001, DropFrame: true, NominalFPS: 60, DropPerMinute: 4}
)

// DetectFrameRate resolves an STL GSI "Disk Format Code"/frame-rate
// hint, expressed here as the nominal integer fps plus a drop-frame
// flag, to one of the known exact rates.
func DetectFrameRate(nominalFPS int, dropFrame bool) (FrameRate, error) {
	switch {
	case nominalFPS == 24 && !dropFrame:
		return FrameRate24, nil
	case nominalFPS == 25 && !dropFrame:
		return FrameRate25, nil
	case nominalFPS == 30 && !dropFrame:
		return FrameRate30, nil
	case nominalFPS == 30 && dropFrame:
		return FrameRate2997, nil
	case nominalFPS == 60 && dropFrame:
		return FrameRate5994, nil
	default:
		return FrameRate{}, fmt.Errorf("ebustl: fps=%d drop=%v: %w", nominalFPS, dropFrame, ErrUnrecognizedFrameRate)
	}
}

// FramesToUS converts a running frame count to microseconds. Drop-frame
// numbering only changes how a frame count is displayed as hh:mm:ss:ff;
// elapsed time for a given count of frames is always count*Den/Num
// seconds, so this conversion is the same whether or not fr is a
// drop-frame rate.
func FramesToUS(frameCount int64, fr FrameRate) int64 {
	return frameCount * int64(fr.Den) * 1_000_000 / int64(fr.Num)
}

// USToFrames is the inverse of FramesToUS, rounding to the nearest
// frame.
func USToFrames(us int64, fr FrameRate) int64 {
	num := us*int64(fr.Num) + int64(fr.Den)*500_000
	return num / (int64(fr.Den) * 1_000_000)
}

// SMPTETimecode is an hours:minutes:seconds:frames timecode.
type SMPTETimecode struct {
	Hours, Minutes, Seconds, Frames int
	DropFrame                      bool
}

// String formats the timecode using ":" between all fields for
// non-drop-frame rates, and ";" before the frame field for drop-frame
// rates, per the SMPTE ST 12-1 display convention.
func (t SMPTETimecode) String() string {
	sep := ":"
	if t.DropFrame {
		sep = ";"
	}
	return fmt.Sprintf("%02d:%02d:%02d%s%02d", t.Hours, t.Minutes, t.Seconds, sep, t.Frames)
}

// USToSMPTE converts an elapsed microsecond offset to an SMPTE
// timecode at the given frame rate, applying the drop-frame frame
// number skip when fr.DropFrame is set.
func USToSMPTE(us int64, fr FrameRate) SMPTETimecode {
	frameNumber := USToFrames(us, fr)
	if fr.DropFrame {
		frameNumber = applyDropFrameSkip(frameNumber, fr)
	}
	fps := int64(fr.NominalFPS)
	frames := frameNumber % fps
	totalSeconds := frameNumber / fps
	seconds := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return SMPTETimecode{
		Hours: int(hours), Minutes: int(minutes), Seconds: int(seconds), Frames: int(frames),
		DropFrame: fr.DropFrame,
	}
}

// applyDropFrameSkip takes a raw (non-drop) frame count and returns the
// adjusted frame count whose hh:mm:ss:ff digit decomposition matches
// the SMPTE ST 12-1 drop-frame sequence: frame numbers :00 and :01
// (or :00..:03 at 59.94) are skipped at the start of each minute that
// is not a multiple of ten.
func applyDropFrameSkip(frameNumber int64, fr FrameRate) int64 {
	dropFrames := int64(fr.DropPerMinute)
	framesPerMinute := int64(fr.NominalFPS)*60 - dropFrames
	// 9 short (drop) minutes plus 1 full (tenth) minute per 10-minute
	// block, matching the well-known 17982/1798/2 SMPTE ST 12-1 constants.
	framesPer10Minutes := framesPerMinute*9 + int64(fr.NominalFPS)*60

	tenMinuteBlocks := frameNumber / framesPer10Minutes
	remainder := frameNumber % framesPer10Minutes

	if remainder > dropFrames {
		frameNumber += dropFrames*9*tenMinuteBlocks + dropFrames*((remainder-dropFrames)/framesPerMinute)
	} else {
		frameNumber += dropFrames * 9 * tenMinuteBlocks
	}
	return frameNumber
}

// SMPTEToFrames is the inverse of the digit decomposition performed by
// USToSMPTE: given an hh:mm:ss:ff timecode, returns the raw elapsed
// frame count, reversing the drop-frame skip when fr.DropFrame is set.
func SMPTEToFrames(t SMPTETimecode, fr FrameRate) int64 {
	fps := int64(fr.NominalFPS)
	totalMinutes := int64(t.Hours)*60 + int64(t.Minutes)
	frameNumber := totalMinutes*60*fps + int64(t.Seconds)*fps + int64(t.Frames)
	if !fr.DropFrame {
		return frameNumber
	}
	dropFrames := int64(fr.DropPerMinute)
	droppedSoFar := dropFrames * (totalMinutes - totalMinutes/10)
	return frameNumber - droppedSoFar
}

// SMPTEToUS converts a parsed timecode straight to microseconds.
func SMPTEToUS(t SMPTETimecode, fr FrameRate) int64 {
	return FramesToUS(SMPTEToFrames(t, fr), fr)
}
