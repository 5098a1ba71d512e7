// Package music is the sequencer: it compiles scripts into tracks of loop
// and aleotoric layers and drives a SoundDevice from them, one Update per
// tick.
package music

import (
	"fmt"
	"log"
	"math/rand/v2"

	"github.com/mnglab/mng"
	"github.com/mnglab/mng/script"
)

type (
	// Manager is the top of the music engine: it owns the loaded script,
	// chooses which track plays and carries the mood and threat levels the
	// scripts react to. Transport requests are recorded and take effect at
	// the start of the next Update; a second request of the same kind made
	// before that replaces the first.
	//
	// A Manager is not safe for concurrent use.
	Manager struct {
		device     mng.SoundDevice
		s          *session
		loader     mng.BundleLoader
		catalog    *Catalog
		logger     *log.Logger
		resolution float64
		seed       uint64

		current *Track
		old     *Track
		next    string
		paused  string

		status statusEvent
		change trackEvent

		mood, threat             float64
		targetMood, targetThreat float64
		volume                   float64
		now                      float64
	}

	statusEvent int

	trackEvent struct {
		name      string
		interrupt bool
	}
)

const (
	noStatusEvent statusEvent = iota
	playEvent
	pauseEvent
	fadeEvent
	stopEvent
)

const (
	// MoodStep and ThreatStep are how far mood and threat move toward their
	// targets on every Update.
	MoodStep   = 0.05
	ThreatStep = 0.1
)

// NewManager returns a manager with an empty script playing on device.
func NewManager(device mng.SoundDevice) *Manager {
	m := &Manager{
		device:     device,
		resolution: DefaultResolution,
		seed:       rand.Uint64(),
		volume:     1,
	}
	m.s = newSession(m.seed, device, m.resolution)
	return m
}

// SetLogger sets where bundle swaps and ignored requests are reported. A
// nil logger, the default, discards them.
func (m *Manager) SetLogger(l *log.Logger) { m.logger = l }

// SetSeed seeds the random source of scripts loaded from now on.
func (m *Manager) SetSeed(seed uint64) { m.seed = seed }

// SetResolution sets the tick length the manager is driven at.
func (m *Manager) SetResolution(seconds float64) {
	m.resolution = seconds
	m.s.resolution = seconds
}

// SetLoader installs the bundles that BeginTrack may switch to. Every
// bundle is loaded once to index its tracks.
func (m *Manager) SetLoader(loader mng.BundleLoader) error {
	c, err := NewCatalog(loader)
	if err != nil {
		return err
	}
	m.loader, m.catalog = loader, c
	return nil
}

func (m *Manager) logf(format string, v ...any) {
	if m.logger != nil {
		m.logger.Printf(format, v...)
	}
}

// Load compiles the script of b and hands its waves to the device if the
// device is a WaveLoader. On failure nothing changes. On success the old
// script's sounds stop, and a track that was playing restarts if the new
// script has a track of that name.
func (m *Manager) Load(b *mng.Bundle) error {
	playing := m.trackName()
	if err := m.load(b); err != nil {
		return err
	}
	if _, ok := m.s.track(playing); ok {
		m.next = playing
	}
	return nil
}

// LoadScript is Load for a bundle without waves.
func (m *Manager) LoadScript(name, src string) error {
	return m.Load(&mng.Bundle{Name: name, Script: src})
}

func (m *Manager) load(b *mng.Bundle) error {
	s := newSession(m.seed, m.device, m.resolution)
	s.bundle = b.Name
	if err := compile(s, b.Script); err != nil {
		return fmt.Errorf("could not parse script of bundle %v: %w", b.Name, err)
	}
	if len(b.Waves) > 0 {
		if len(b.Waves) < s.waves.Len() {
			return fmt.Errorf("bundle %v has %d waves, its script names %d", b.Name, len(b.Waves), s.waves.Len())
		}
		if wl, ok := m.device.(mng.WaveLoader); ok {
			if err := wl.LoadWaves(b.Waves); err != nil {
				return fmt.Errorf("could not load waves of bundle %v: %w", b.Name, err)
			}
		}
	}
	m.stopAll(false)
	m.next, m.paused = "", ""
	m.s = s
	m.seed++
	s.table.Set(s.mood, m.mood)
	s.table.Set(s.threat, m.threat)
	s.Updatable.Start(s.table, m.now)
	return nil
}

func (m *Manager) stopAll(fade bool) {
	if m.current != nil {
		m.current.Stop(fade)
		m.current = nil
	}
	if m.old != nil {
		m.old.Stop(fade)
		m.old = nil
	}
}

// Play resumes the track stopped by Pause.
func (m *Manager) Play() { m.status = playEvent }

// Pause silences the music immediately, remembering the track for Play.
func (m *Manager) Pause() { m.status = pauseEvent }

// Fade fades the current track out over its FadeOut time, leaving silence.
func (m *Manager) Fade() { m.status = fadeEvent }

// Stop silences the music immediately and forgets the track.
func (m *Manager) Stop() { m.status = stopEvent }

// BeginTrack fades the current track out over its own FadeOut time and
// then starts the named track, switching bundles if the track belongs to
// another. Unknown names are ignored.
func (m *Manager) BeginTrack(name string) { m.change = trackEvent{name: name} }

// InterruptTrack is BeginTrack with a fade-out of InterruptFade seconds.
func (m *Manager) InterruptTrack(name string) {
	m.change = trackEvent{name: name, interrupt: true}
}

// SetMood and SetThreat set the levels that the Mood and Threat variables
// move toward.
func (m *Manager) SetMood(v float64)   { m.targetMood = v }
func (m *Manager) SetThreat(v float64) { m.targetThreat = v }

// SetVolume sets the overall volume in [0,1].
func (m *Manager) SetVolume(v float64) { m.volume = clamp(v, 0, 1) }

func (m *Manager) Mood() float64   { return m.mood }
func (m *Manager) Threat() float64 { return m.threat }
func (m *Manager) Volume() float64 { return m.volume }

// Bundle returns the name of the loaded bundle.
func (m *Manager) Bundle() string { return m.s.bundle }

// Source returns the text of the loaded script.
func (m *Manager) Source() string { return m.s.source }

func (m *Manager) Tracks() []*Track                     { return m.s.tracks }
func (m *Manager) Effects() []*Effect                   { return m.s.order }
func (m *Manager) Waves() *WaveLibrary                  { return m.s.waves }
func (m *Manager) Variables() *script.VariableContainer { return m.s.vars }
func (m *Manager) Catalog() *Catalog                    { return m.catalog }

// Track returns the track of the loaded script with the given name.
func (m *Manager) Track(name string) (*Track, bool) { return m.s.track(name) }

// Current returns the track playing or fading in, if any.
func (m *Manager) Current() *Track { return m.current }

// Fading returns the track fading out, if any.
func (m *Manager) Fading() *Track { return m.old }

// trackName is the track that plays, or will play, or was paused.
func (m *Manager) trackName() string {
	switch {
	case m.current != nil:
		return m.current.name
	case m.next != "":
		return m.next
	}
	return m.paused
}

// Update advances the music to now, in seconds. It first applies the
// pending transport requests, status before track change, then moves
// mood and threat, runs the manager script and updates the fading and the
// current track.
func (m *Manager) Update(now float64) {
	m.now = now
	m.applyStatus(now)
	m.applyChange(now)
	m.mood = approach(m.mood, m.targetMood, MoodStep)
	m.threat = approach(m.threat, m.targetThreat, ThreatStep)
	s := m.s
	s.table.Set(s.mood, m.mood)
	s.table.Set(s.threat, m.threat)
	s.Updatable.Tick(s.table, now)
	if m.old != nil {
		m.old.Update(now, m.volume)
		if m.old.Status() == Finished {
			m.old = nil
		}
	}
	if m.old == nil && m.next != "" {
		m.startNext(now)
	}
	if m.current != nil {
		m.current.Update(now, m.volume)
	}
}

func (m *Manager) applyStatus(now float64) {
	ev := m.status
	m.status = noStatusEvent
	switch ev {
	case playEvent:
		if m.current == nil && m.next == "" && m.paused != "" {
			m.next, m.paused = m.paused, ""
		}
	case pauseEvent:
		if name := m.trackName(); name != "" {
			m.paused = name
		}
		m.next = ""
		m.stopAll(true)
	case fadeEvent:
		m.fadeCurrent(now, false)
		m.next, m.paused = "", ""
	case stopEvent:
		m.stopAll(false)
		m.next, m.paused = "", ""
	}
}

func (m *Manager) applyChange(now float64) {
	ev := m.change
	m.change = trackEvent{}
	if ev.name == "" {
		return
	}
	if !m.known(ev.name) {
		m.logf("ignoring request for unknown track %q", ev.name)
		return
	}
	if m.current != nil && script.FoldName(m.current.name) == script.FoldName(ev.name) {
		return
	}
	if m.current != nil {
		m.fadeCurrent(now, ev.interrupt)
	} else if m.old != nil && ev.interrupt {
		m.old.BeginFadingOut(now, InterruptFade)
	}
	m.next, m.paused = ev.name, ""
}

// fadeCurrent moves the current track to the fading slot.
func (m *Manager) fadeCurrent(now float64, interrupt bool) {
	if m.current == nil {
		return
	}
	duration := m.current.FadeOut()
	if interrupt {
		duration = InterruptFade
	}
	m.current.BeginFadingOut(now, duration)
	if m.current.Status() != Finished {
		m.old = m.current
	}
	m.current = nil
}

func (m *Manager) known(name string) bool {
	if _, ok := m.s.track(name); ok {
		return true
	}
	_, ok := m.catalog.Bundle(name)
	return ok
}

// startNext makes the pending track current, loading its bundle first if
// the loaded script does not have it.
func (m *Manager) startNext(now float64) {
	name := m.next
	m.next = ""
	t, ok := m.s.track(name)
	if !ok {
		bundle, found := m.catalog.Bundle(name)
		if !found {
			return
		}
		m.logf("switching from bundle %q to %q for track %q", m.s.bundle, bundle, name)
		b, err := m.loader.LoadBundle(bundle)
		if err == nil {
			err = m.load(b)
		}
		if err != nil {
			m.logf("could not switch to bundle %q: %v", bundle, err)
			return
		}
		if t, ok = m.s.track(name); !ok {
			m.logf("bundle %q has no track %q", bundle, name)
			return
		}
	}
	t.Start(now)
	m.current = t
}

func approach(v, target, step float64) float64 {
	switch {
	case v < target:
		return min(v+step, target)
	case v > target:
		return max(v-step, target)
	}
	return v
}

// Snapshot returns the state a Restore needs to resume the music.
func (m *Manager) Snapshot() mng.Snapshot {
	return mng.Snapshot{
		Bundle:       m.s.bundle,
		Track:        m.trackName(),
		Playing:      m.current != nil || m.next != "",
		Mood:         m.mood,
		Threat:       m.threat,
		TargetMood:   m.targetMood,
		TargetThreat: m.targetThreat,
		Volume:       m.volume,
	}
}

// Restore resumes from a snapshot, loading its bundle through the loader if
// another one is loaded. The track starts from its beginning on the next
// Update.
func (m *Manager) Restore(snap mng.Snapshot) error {
	if snap.Bundle != "" && snap.Bundle != m.s.bundle {
		if m.loader == nil {
			return fmt.Errorf("cannot restore bundle %v: no bundle loader", snap.Bundle)
		}
		b, err := m.loader.LoadBundle(snap.Bundle)
		if err != nil {
			return err
		}
		if err := m.load(b); err != nil {
			return err
		}
	}
	m.mood, m.threat = snap.Mood, snap.Threat
	m.targetMood, m.targetThreat = snap.TargetMood, snap.TargetThreat
	m.SetVolume(snap.Volume)
	m.s.table.Set(m.s.mood, m.mood)
	m.s.table.Set(m.s.threat, m.threat)
	m.stopAll(false)
	m.next, m.paused = "", ""
	if snap.Track != "" && !m.known(snap.Track) {
		m.logf("ignoring saved track %q: unknown track", snap.Track)
	} else if snap.Track != "" {
		if snap.Playing {
			m.BeginTrack(snap.Track)
		} else {
			m.paused = snap.Track
		}
	}
	return nil
}
