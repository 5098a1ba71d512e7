package music

import (
	"github.com/mnglab/mng"
	"github.com/mnglab/mng/script"
)

type (
	// Layer is one channel of a track: a LoopLayer or an AleotoricLayer.
	Layer interface {
		Name() string
		Variables() *script.VariableContainer
		Volume() float64
		// Sounds returns the number of live sounds the layer controls, its
		// loop included.
		Sounds() int
		// Queued returns the number of sounds waiting for their start time.
		Queued() int

		base() *layerBase
		start(now float64)
		update(now, overall float64)
	}

	// QueuedSound is a sound waiting to be started at Time. Volume and pan
	// were rolled when the sound was queued.
	QueuedSound struct {
		Wave   mng.WaveID
		Volume float64
		Pan    float64
		Time   float64
	}

	// ControlledSound is a live sound on the device. Volume is relative to
	// the layer; the device sees it scaled by the layer gain.
	ControlledSound struct {
		Handle mng.Handle
		Volume float64
		Pan    float64
	}

	// layerBase is the sound queue and live sound bookkeeping shared by all
	// layer kinds.
	layerBase struct {
		name   string
		vars   *script.VariableContainer
		volume script.Ref
		script.Updatable

		s     *session
		track *Track

		queue  []QueuedSound
		sounds []ControlledSound
		loop   *ControlledSound
		// gain is overall × layer volume as last applied to the live sounds
		gain float64
	}
)

func newLayerBase(s *session, track *Track, name string) layerBase {
	vars := s.table.NewScope(name)
	return layerBase{
		name:   name,
		vars:   vars,
		volume: vars.Declare("Volume", 1),
		s:      s,
		track:  track,
	}
}

func (b *layerBase) Name() string                         { return b.name }
func (b *layerBase) Variables() *script.VariableContainer { return b.vars }
func (b *layerBase) Volume() float64                      { return b.s.table.Value(b.volume) }
func (b *layerBase) Queued() int                          { return len(b.queue) }
func (b *layerBase) base() *layerBase                     { return b }

func (b *layerBase) Sounds() int {
	if b.loop != nil {
		return len(b.sounds) + 1
	}
	return len(b.sounds)
}

// Live returns a copy of the live non-looped sounds.
func (b *layerBase) Live() []ControlledSound {
	ret := make([]ControlledSound, len(b.sounds))
	copy(ret, b.sounds)
	return ret
}

func (b *layerBase) startBase(now float64) {
	b.vars.Reset()
	b.queue = b.queue[:0]
	b.gain = 0
	b.Updatable.Start(b.s.table, now)
}

// tick runs the layer script, drops the sounds the device has finished,
// pushes a changed gain to the survivors and starts the queued sounds that
// are due.
func (b *layerBase) tick(now, overall float64) {
	b.Updatable.Tick(b.s.table, now)
	dev := b.s.device
	live := b.sounds[:0]
	for _, c := range b.sounds {
		if dev.FinishedControlledSound(c.Handle) {
			dev.StopControlledSound(c.Handle, false)
			continue
		}
		live = append(live, c)
	}
	b.sounds = live
	if b.loop != nil && dev.FinishedControlledSound(b.loop.Handle) {
		dev.StopControlledSound(b.loop.Handle, false)
		b.loop = nil
	}
	b.refreshGain(overall)
	waiting := b.queue[:0]
	for _, q := range b.queue {
		if now+b.s.resolution >= q.Time {
			b.startSound(q.Wave, q.Volume, q.Pan)
			continue
		}
		waiting = append(waiting, q)
	}
	b.queue = waiting
}

// refreshGain pushes overall × layer volume to the live sounds if it
// changed since it was last applied.
func (b *layerBase) refreshGain(overall float64) {
	gain := overall * b.Volume()
	if gain == b.gain {
		return
	}
	b.gain = gain
	dev := b.s.device
	for _, c := range b.sounds {
		dev.UpdateControlledSound(c.Handle, mng.DeviceVolume(gain*c.Volume), mng.DevicePan(c.Pan))
	}
	if b.loop != nil {
		dev.UpdateControlledSound(b.loop.Handle, mng.DeviceVolume(gain*b.loop.Volume), mng.DevicePan(b.loop.Pan))
	}
}

// PlaySound starts wave at volume relative to the layer. Through an effect,
// the first stage starts now and every later stage is queued behind the
// delays of the stages before it.
func (b *layerBase) PlaySound(now float64, wave mng.WaveID, volume float64, effect *Effect) {
	if effect == nil {
		b.startSound(wave, volume, 0)
		return
	}
	effect.BeginReadingStages(b.track.BeatLength())
	at := now
	for {
		stage, ok := effect.ReadStage(b.s.table)
		if !ok {
			return
		}
		if at <= now {
			b.startSound(wave, volume*stage.Volume, stage.Pan)
		} else {
			b.queue = append(b.queue, QueuedSound{Wave: wave, Volume: volume * stage.Volume, Pan: stage.Pan, Time: at})
		}
		at += stage.Delay
	}
}

func (b *layerBase) startSound(wave mng.WaveID, volume, pan float64) {
	h, err := b.s.device.StartControlledSound(wave, mng.DeviceVolume(b.gain*volume), mng.DevicePan(pan), false)
	if err != nil {
		return
	}
	b.sounds = append(b.sounds, ControlledSound{Handle: h, Volume: volume, Pan: pan})
}

// LoopSound starts wave looping, replacing the current loop if any. It
// reports whether the device accepted the sound.
func (b *layerBase) LoopSound(wave mng.WaveID, volume, pan float64) bool {
	b.StopLoop()
	h, err := b.s.device.StartControlledSound(wave, mng.DeviceVolume(b.gain*volume), mng.DevicePan(pan), true)
	if err != nil {
		return false
	}
	b.loop = &ControlledSound{Handle: h, Volume: volume, Pan: pan}
	return true
}

func (b *layerBase) UpdateLoop(volume, pan float64) {
	if b.loop == nil {
		return
	}
	b.loop.Volume, b.loop.Pan = volume, pan
	b.s.device.UpdateControlledSound(b.loop.Handle, mng.DeviceVolume(b.gain*volume), mng.DevicePan(pan))
}

func (b *layerBase) StopLoop() {
	if b.loop == nil {
		return
	}
	b.s.device.StopControlledSound(b.loop.Handle, false)
	b.loop = nil
}

// stop drops the queue and releases every live sound.
func (b *layerBase) stop(fade bool) {
	b.queue = b.queue[:0]
	for _, c := range b.sounds {
		b.s.device.StopControlledSound(c.Handle, fade)
	}
	b.sounds = b.sounds[:0]
	if b.loop != nil {
		b.s.device.StopControlledSound(b.loop.Handle, fade)
		b.loop = nil
	}
}
