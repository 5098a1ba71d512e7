package main

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/mnglab/mng"
	"github.com/mnglab/mng/music"
)

type (
	listing struct {
		Name    string
		Waves   []waveInfo
		Effects []effectInfo
		Tracks  []trackInfo
	}

	waveInfo struct {
		ID         int
		Name       string
		Channels   int     `yaml:",omitempty"`
		SampleRate int     `yaml:"sampleRate,omitempty"`
		Seconds    float64 `yaml:",omitempty"`
	}

	effectInfo struct {
		Name   string
		Stages int
	}

	trackInfo struct {
		Name       string
		Volume     float64
		BeatLength float64 `yaml:"beatLength,omitempty"`
		BarLength  int     `yaml:"barLength,omitempty"`
		FadeIn     float64 `yaml:"fadeIn,omitempty"`
		FadeOut    float64 `yaml:"fadeOut,omitempty"`
		Layers     []layerInfo
	}

	layerInfo struct {
		Name      string
		Kind      string
		Wave      string   `yaml:",omitempty"`
		Voices    int      `yaml:",omitempty"`
		Effect    string   `yaml:",omitempty"`
		Variables []string `yaml:",omitempty"`
	}
)

const defaultTemplate = `{{ .Name | upper }}
waves:{{ range .Waves }}
  {{ printf "%3d" .ID }} {{ .Name }}{{ if .Seconds }} ({{ printf "%.2f" .Seconds }}s){{ end }}{{ end }}
effects:{{ range .Effects }}
  {{ .Name }} ({{ .Stages }} {{ if eq .Stages 1 }}stage{{ else }}stages{{ end }}){{ end }}
tracks:{{ range .Tracks }}
  {{ .Name }}{{ if or .FadeIn .FadeOut }} fade {{ .FadeIn }}s/{{ .FadeOut }}s{{ end }}{{ range .Layers }}
    {{ .Kind | lower }} {{ .Name }}{{ with .Wave }} {{ . | quote }}{{ end }}{{ with .Voices }} {{ . }} voices{{ end }}{{ with .Variables }} [{{ join ", " . }}]{{ end }}{{ end }}{{ end }}
`

// describe compiles the script of b without playing it and lists what it
// defines.
func describe(b *mng.Bundle) (listing, error) {
	m := music.NewManager(&mng.NullDevice{})
	if err := m.Load(b); err != nil {
		return listing{}, err
	}
	ret := listing{Name: b.Name}
	for id, name := range m.Waves().Names() {
		info := waveInfo{ID: id, Name: name}
		if id < len(b.Waves) {
			w := b.Waves[id]
			info.Channels, info.SampleRate, info.Seconds = w.Channels, w.SampleRate, w.Duration()
		}
		ret.Waves = append(ret.Waves, info)
	}
	for _, e := range m.Effects() {
		ret.Effects = append(ret.Effects, effectInfo{Name: e.Name(), Stages: len(e.Stages())})
	}
	for _, t := range m.Tracks() {
		info := trackInfo{
			Name:       t.Name(),
			Volume:     t.Volume(),
			BeatLength: t.BeatLength(),
			BarLength:  t.BarLength(),
			FadeIn:     t.FadeIn(),
			FadeOut:    t.FadeOut(),
		}
		for _, l := range t.Layers() {
			li := layerInfo{Name: l.Name()}
			for _, v := range l.Variables().Variables() {
				li.Variables = append(li.Variables, v.Name)
			}
			switch l := l.(type) {
			case *music.LoopLayer:
				li.Kind = "LoopLayer"
				if id, ok := l.Wave(); ok {
					li.Wave = m.Waves().Name(id)
				}
			case *music.AleotoricLayer:
				li.Kind = "AleotoricLayer"
				li.Voices = len(l.Voices())
				if e := l.Effect(); e != nil {
					li.Effect = e.Name()
				}
			}
			info.Layers = append(info.Layers, li)
		}
		ret.Tracks = append(ret.Tracks, info)
	}
	return ret, nil
}

// listingTemplate returns the template in file, or the built-in one.
func listingTemplate(file string) (*template.Template, error) {
	tmpl := template.New("listing").Funcs(sprig.TxtFuncMap())
	if file == "" {
		return tmpl.Parse(defaultTemplate)
	}
	text, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("could not read template %v: %v", file, err)
	}
	return tmpl.Parse(string(text))
}

func (l listing) render(w io.Writer, tmpl *template.Template) error {
	if err := tmpl.Execute(w, l); err != nil {
		return fmt.Errorf("could not execute template: %v", err)
	}
	return nil
}
