package alert

import (
	"time"

	"github.com/wlin7245/remindly/internal/models"
)

// FlashPlan describes one screen-flash sequence. Urgency is encoded in the
// color and repetition count: the closer the trigger is to the due time, the
// hotter the color and the shorter the sequence.
type FlashPlan struct {
	Color    string
	Count    int
	Duration time.Duration
	Interval time.Duration
}

// VibrationPlan describes one vibration sequence as an off/on waveform,
// starting with an initial delay.
type VibrationPlan struct {
	Waveform  []time.Duration
	Intensity models.VibrationIntensity
}

const (
	flashDuration = 800 * time.Millisecond
	flashInterval = 150 * time.Millisecond
)

// FlashFor maps a trigger kind to its flash sequence.
func FlashFor(kind models.TriggerKind) FlashPlan {
	plan := FlashPlan{Color: "red", Count: 6, Duration: flashDuration, Interval: flashInterval}
	switch kind {
	case models.TriggerMinutesBefore:
		plan.Color, plan.Count = "yellow", 4
	case models.TriggerHoursBefore:
		plan.Color, plan.Count = "blue", 6
	case models.TriggerDaysBefore:
		plan.Color, plan.Count = "green", 8
	case models.TriggerWeeksBefore:
		plan.Color, plan.Count = "magenta", 10
	}
	return plan
}

// Total is the wall-clock length of the whole sequence. The dispatcher's
// busy gate holds for this long.
func (p FlashPlan) Total() time.Duration {
	return time.Duration(p.Count) * (p.Duration + p.Interval)
}

func waveform(ms ...int) []time.Duration {
	out := make([]time.Duration, len(ms))
	for i, m := range ms {
		out[i] = time.Duration(m) * time.Millisecond
	}
	return out
}

// VibrationFor maps a trigger kind to its waveform. Distant triggers buzz
// longer and slower; imminent ones are a short double tap.
func VibrationFor(kind models.TriggerKind, cfg models.VibrationConfig) VibrationPlan {
	plan := VibrationPlan{Intensity: cfg.Intensity}
	switch kind {
	case models.TriggerMinutesBefore:
		plan.Waveform = waveform(0, 100, 50, 100)
	case models.TriggerHoursBefore:
		plan.Waveform = waveform(0, 200, 100, 200, 100, 200)
	case models.TriggerDaysBefore:
		plan.Waveform = waveform(0, 300, 150, 300, 150, 300)
	case models.TriggerWeeksBefore:
		plan.Waveform = waveform(0, 400, 200, 400, 200, 400, 200, 400)
	default:
		plan.Waveform = waveform(0, 200, 100, 200, 100, 200)
	}
	return plan
}

// Escalate bumps the sequence up one notch per series attempt: stronger
// intensity, one extra flash, until everything is maxed out.
func Escalate(flash FlashPlan, vib VibrationPlan, attempt int) (FlashPlan, VibrationPlan) {
	if attempt <= 1 {
		return flash, vib
	}
	flash.Count += attempt - 1
	if flash.Count > 12 {
		flash.Count = 12
	}
	switch vib.Intensity {
	case models.IntensityLight:
		vib.Intensity = models.IntensityMedium
	default:
		vib.Intensity = models.IntensityStrong
	}
	return flash, vib
}
