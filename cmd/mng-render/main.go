package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/mnglab/mng"
	"github.com/mnglab/mng/mixer"
	"github.com/mnglab/mng/music"
	"github.com/mnglab/mng/version"
)

type renderOptions struct {
	Track      string
	Seconds    float64
	Tick       float64
	SampleRate int
	Mood       float64
	Threat     float64
	Seed       uint64
	FadeAt     float64
}

func main() {
	trackName := flag.String("t", "", "Track to render. By default, the first track of the bundle.")
	seconds := flag.Float64("d", 30, "Length of the rendering in seconds.")
	tick := flag.Float64("tick", music.DefaultResolution, "Seconds between sequencer updates.")
	sampleRate := flag.Int("rate", mixer.DefaultSampleRate, "Sample rate of the rendering.")
	mood := flag.Float64("mood", 0, "Mood the sequencer creeps towards.")
	threat := flag.Float64("threat", 0, "Threat the sequencer creeps towards.")
	seed := flag.Uint64("seed", 1, "Seed of the random numbers the scripts draw.")
	fadeAt := flag.Float64("fade", -1, "Begin fading the track out at this time in seconds. Negative values never fade.")
	rawOut := flag.Bool("r", false, "Output the rendering as .raw file instead of .wav.")
	pcm := flag.Bool("c", false, "Convert audio to 16-bit signed PCM when outputting.")
	directory := flag.String("o", "", "Directory where to output all files. The directory and its parents are created if needed. By default, the working directory.")
	help := flag.Bool("h", false, "Show help.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.String())
		os.Exit(0)
	}
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	opts := renderOptions{
		Track:      *trackName,
		Seconds:    *seconds,
		Tick:       *tick,
		SampleRate: *sampleRate,
		Mood:       *mood,
		Threat:     *threat,
		Seed:       *seed,
		FadeAt:     *fadeAt,
	}
	process := func(filename string) error {
		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("could not read file %v: %v", filename, err)
		}
		b, err := mng.ReadBundle(data)
		if err != nil {
			return fmt.Errorf("could not read bundle %v: %v", filename, err)
		}
		buffer, peak, err := render(b, opts)
		if err != nil {
			return err
		}
		fmt.Printf("%v: %.2f s, peak %.3f\n", filename, float64(len(buffer))/float64(opts.SampleRate), peak)
		extension := ".wav"
		var contents []byte
		if *rawOut {
			extension = ".raw"
			contents, err = mng.Raw(buffer, *pcm)
		} else {
			contents, err = mng.Wav(buffer, opts.SampleRate, *pcm)
		}
		if err != nil {
			return fmt.Errorf("could not generate %v file: %v", extension, err)
		}
		dir := *directory
		if dir == "" {
			if dir, err = os.Getwd(); err != nil {
				return fmt.Errorf("could not get working directory, specify the output directory explicitly: %v", err)
			}
		}
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("could not create output directory %v: %v", dir, err)
		}
		_, name := filepath.Split(filename)
		f := filepath.Join(dir, strings.TrimSuffix(name, filepath.Ext(name))+extension)
		if err := os.WriteFile(f, contents, 0644); err != nil {
			return fmt.Errorf("could not write file %v: %v", f, err)
		}
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		if err := process(param); err != nil {
			fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", param, err)
			retval = 1
		}
	}
	os.Exit(retval)
}

// render plays one track of b through a mixer, advancing the sequencer one
// tick per rendered chunk. It returns the audio and its peak amplitude.
func render(b *mng.Bundle, opts renderOptions) (mng.AudioBuffer, float32, error) {
	if opts.Tick <= 0 || opts.SampleRate <= 0 {
		return nil, 0, fmt.Errorf("tick and sample rate must be positive")
	}
	mix := mixer.New(opts.SampleRate)
	m := music.NewManager(mix)
	m.SetSeed(opts.Seed)
	m.SetResolution(opts.Tick)
	if err := m.Load(b); err != nil {
		return nil, 0, fmt.Errorf("could not load bundle %v: %v", b.Name, err)
	}
	track := opts.Track
	if track == "" {
		tracks := m.Tracks()
		if len(tracks) == 0 {
			return nil, 0, fmt.Errorf("bundle %v has no tracks", b.Name)
		}
		track = tracks[0].Name()
	} else if _, ok := m.Track(track); !ok {
		return nil, 0, fmt.Errorf("bundle %v has no track %q", b.Name, track)
	}
	m.SetMood(opts.Mood)
	m.SetThreat(opts.Threat)
	m.BeginTrack(track)
	frames := int(math.Round(opts.Seconds * float64(opts.SampleRate)))
	chunk := int(math.Round(opts.Tick * float64(opts.SampleRate)))
	if chunk < 1 {
		chunk = 1
	}
	buffer := make(mng.AudioBuffer, frames)
	var peak float32
	faded := opts.FadeAt < 0
	for pos := 0; pos < frames; pos += chunk {
		now := float64(pos) / float64(opts.SampleRate)
		if !faded && now >= opts.FadeAt {
			m.Fade()
			faded = true
		}
		m.Update(now)
		if err := mix.ReadAudio(buffer[pos:min(pos+chunk, frames)]); err != nil {
			return nil, 0, fmt.Errorf("mixing failed: %v", err)
		}
		peak = max(peak, mix.Peak())
	}
	return buffer, peak, nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "MNG renderer. Input .mng bundles, outputs a track rendered offline as .wav or .raw.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
