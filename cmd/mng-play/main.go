package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/mnglab/mng"
	"github.com/mnglab/mng/config"
	"github.com/mnglab/mng/gomidi"
	"github.com/mnglab/mng/mixer"
	"github.com/mnglab/mng/music"
	"github.com/mnglab/mng/oto"
	"github.com/mnglab/mng/store/sqlite"
	"github.com/mnglab/mng/version"
)

func main() {
	configFile := flag.String("config", "", "YAML file of settings. MNG_* environment variables are read first and the file overrides them.")
	bundles := flag.String("d", "", "Directory of the .mng bundles tracks are looked up in.")
	bundle := flag.String("b", "", "Bundle to load at start.")
	trackName := flag.String("t", "", "Track to begin at start. Overrides the saved state.")
	scriptFile := flag.String("script", "", "Play a script file, packing the .wav files next to it, instead of a bundle.")
	tick := flag.Duration("tick", 0, "Time between sequencer updates.")
	volume := flag.Float64("volume", 0, "Overall volume within [0,1].")
	pcm := flag.Bool("c", false, "Output 16-bit signed PCM instead of float32.")
	dbPath := flag.String("db", "", "SQLite database the player state is restored from and saved to.")
	slot := flag.String("slot", "", "Save slot used at start and exit.")
	watch := flag.Bool("w", false, "Reload bundles when they change on disk.")
	midiPort := flag.String("midi", "", "Steer mood and threat from the first MIDI input whose name starts with this.")
	listMIDI := flag.Bool("midi-list", false, "List the MIDI inputs and exit.")
	help := flag.Bool("h", false, "Show help.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.String())
		os.Exit(0)
	}
	if *help {
		flag.Usage()
		os.Exit(0)
	}
	if *listMIDI {
		ports, err := midiPorts()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		os.Exit(0)
	}
	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "d":
			cfg.Bundles = *bundles
		case "b":
			cfg.Bundle = *bundle
		case "t":
			cfg.Track = *trackName
		case "tick":
			cfg.Tick = *tick
		case "volume":
			cfg.Volume = *volume
		case "c":
			cfg.PCM16 = *pcm
		case "db":
			cfg.Database = *dbPath
		case "slot":
			cfg.Slot = *slot
		case "w":
			cfg.Watch = *watch
		case "midi":
			cfg.MIDI.Port = *midiPort
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	p := &player{cfg: cfg, logger: log.New(os.Stderr, "mng-play: ", log.LstdFlags)}
	if err := p.run(ctx, *scriptFile); err != nil {
		fmt.Fprintf(os.Stderr, "mng-play: %v\n", err)
		stop()
		os.Exit(1)
	}
}

type player struct {
	cfg    config.Player
	logger *log.Logger
	loader mng.DirLoader
	m      *music.Manager
	store  *sqlite.Store
}

func (p *player) run(ctx context.Context, scriptFile string) error {
	mix := mixer.New(p.cfg.SampleRate)
	p.m = music.NewManager(mix)
	p.m.SetLogger(p.logger)
	p.m.SetResolution(p.cfg.Tick.Seconds())
	p.m.SetVolume(p.cfg.Volume)
	p.loader = mng.DirLoader(p.cfg.Bundles)
	if err := p.m.SetLoader(p.loader); err != nil {
		if scriptFile == "" {
			return err
		}
		p.logger.Printf("no bundles: %v", err)
	}
	switch {
	case scriptFile != "":
		b, err := packScript(scriptFile)
		if err != nil {
			return err
		}
		if err := p.m.Load(b); err != nil {
			return err
		}
	case p.cfg.Bundle != "":
		b, err := p.loader.LoadBundle(p.cfg.Bundle)
		if err != nil {
			return err
		}
		if err := p.m.Load(b); err != nil {
			return err
		}
	}
	if p.cfg.Database != "" {
		st, err := sqlite.Open(ctx, p.cfg.Database)
		if err != nil {
			return err
		}
		p.store = st
		defer st.Close()
		if p.cfg.Track == "" {
			p.restore(ctx, p.cfg.Slot)
		}
	}
	if p.cfg.Track != "" {
		p.m.BeginTrack(p.cfg.Track)
	}
	var mapper *gomidi.Mapper
	if p.cfg.MIDI.Port != "" {
		mapper = gomidi.NewMapper(uint8(p.cfg.MIDI.MoodCC), uint8(p.cfg.MIDI.ThreatCC))
		closeMIDI, err := openMIDI(p.cfg.MIDI.Port, mapper)
		if err != nil {
			return err
		}
		defer closeMIDI()
	}
	out, err := oto.NewOutput(mix, p.cfg.SampleRate, p.cfg.Buffer, p.cfg.PCM16)
	if err != nil {
		return err
	}
	defer out.Close()
	var changed <-chan string
	var watchErrs <-chan error
	if p.cfg.Watch {
		match, dir := bundleName, p.cfg.Bundles
		if scriptFile != "" {
			match, dir = sameFile(scriptFile), filepath.Dir(scriptFile)
		}
		w, err := newWatcher(match, dir)
		if err != nil {
			return fmt.Errorf("could not watch %v: %v", dir, err)
		}
		defer w.Close()
		changed, watchErrs = w.Events, w.Errors
	}
	done := make(chan struct{})
	defer close(done)
	commands := make(chan command)
	commandErrs := make(chan error)
	go readCommands(os.Stdin, commands, commandErrs, done)

	ticker := time.NewTicker(p.cfg.Tick)
	defer ticker.Stop()
	start := time.Now()
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			if mapper != nil {
				mapper.Apply(p.m)
			}
			p.m.Update(time.Since(start).Seconds())
			if err := out.Err(); err != nil {
				return fmt.Errorf("audio output failed: %v", err)
			}
		case c, ok := <-commands:
			if !ok {
				commands = nil
				continue
			}
			if c.verb == "quit" {
				break loop
			}
			p.handle(ctx, c)
		case err := <-commandErrs:
			p.logger.Print(err)
		case name := <-changed:
			if scriptFile != "" {
				p.repack(scriptFile)
			} else {
				p.reload(name)
			}
		case err := <-watchErrs:
			p.logger.Printf("watching bundles: %v", err)
		}
	}
	p.save(context.Background(), p.cfg.Slot)
	return nil
}

func (p *player) handle(ctx context.Context, c command) {
	switch c.verb {
	case "save":
		p.save(ctx, slotOr(c.arg, p.cfg.Slot))
	case "load":
		p.restore(ctx, slotOr(c.arg, p.cfg.Slot))
	case "status":
		fmt.Println(p.status())
	case "tracks":
		var names []string
		if catalog := p.m.Catalog(); catalog != nil {
			names = catalog.Tracks()
		} else {
			for _, t := range p.m.Tracks() {
				names = append(names, t.Name())
			}
		}
		fmt.Println(strings.Join(names, "\n"))
	default:
		c.apply(p.m)
	}
}

func (p *player) status() string {
	track, status := "-", "-"
	if t := p.m.Current(); t != nil {
		track, status = t.Name(), t.Status().String()
	}
	return fmt.Sprintf("bundle %v track %v (%v) mood %.2f threat %.2f volume %.2f",
		p.m.Bundle(), track, status, p.m.Mood(), p.m.Threat(), p.m.Volume())
}

func (p *player) save(ctx context.Context, slot string) {
	if p.store == nil {
		return
	}
	if err := p.store.Save(ctx, slot, p.m.Snapshot()); err != nil {
		p.logger.Printf("could not save slot %v: %v", slot, err)
	}
}

func (p *player) restore(ctx context.Context, slot string) {
	if p.store == nil {
		p.logger.Print("no database to restore from")
		return
	}
	snap, ok, err := p.store.Load(ctx, slot)
	switch {
	case err != nil:
		p.logger.Printf("could not load slot %v: %v", slot, err)
	case !ok:
		p.logger.Printf("slot %v is empty", slot)
	default:
		if err := p.m.Restore(snap); err != nil {
			p.logger.Printf("could not restore slot %v: %v", slot, err)
		}
	}
}

// reload reloads a changed bundle if it is playing and reindexes the
// tracks of the bundle directory.
func (p *player) reload(name string) {
	if name == p.m.Bundle() {
		b, err := p.loader.LoadBundle(name)
		if err != nil {
			p.logger.Printf("could not reload bundle %v: %v", name, err)
		} else if err := p.m.Load(b); err != nil {
			p.logger.Printf("could not reload bundle %v: %v", name, err)
		} else {
			p.logger.Printf("reloaded bundle %v", name)
		}
	}
	if err := p.m.SetLoader(p.loader); err != nil {
		p.logger.Printf("could not index bundles: %v", err)
	}
}

func (p *player) repack(scriptFile string) {
	b, err := packScript(scriptFile)
	if err == nil {
		err = p.m.Load(b)
	}
	if err != nil {
		p.logger.Printf("could not reload %v: %v", scriptFile, err)
		return
	}
	p.logger.Printf("reloaded %v", scriptFile)
}

func slotOr(slot, fallback string) string {
	if slot != "" {
		return slot
	}
	return fallback
}

// packScript packs a script file with the .wav files in its directory.
func packScript(filename string) (*mng.Bundle, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read file %v: %v", filename, err)
	}
	dir, base := filepath.Split(filename)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return music.Pack(name, string(data), func(wave string) (mng.Wave, error) {
		data, err := os.ReadFile(filepath.Join(dir, wave+".wav"))
		if err != nil {
			return mng.Wave{}, err
		}
		return mng.ReadWav(data)
	})
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "MNG player. Plays .mng bundles and reads commands from standard input:\n"+
		"  track NAME, interrupt NAME, mood X, threat X, volume X, play, pause, fade, stop,\n"+
		"  save [SLOT], load [SLOT], status, tracks, quit\n"+
		"Usage: %s [flags]\n", os.Args[0])
	flag.PrintDefaults()
}
