package main

import (
	"bytes"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/mnglab/mng"
	"github.com/mnglab/mng/music"
)

const listingScript = `
Effect("Echo"){ Stage{ Delay(0.5) } Stage{ Volume(0.5) } }
Track("Calm"){
	FadeIn(2) FadeOut(3)
	LoopLayer("Pad"){ Wave("pad") }
	AleotoricLayer("Birds"){
		Effect("Echo")
		Voice{ Wave("tweet") }
		Voice{ Wave("chirp") }
	}
}`

func packListing(t *testing.T) listing {
	t.Helper()
	b, err := music.Pack("forest", listingScript, func(name string) (mng.Wave, error) {
		return mng.Wave{Channels: 1, SampleRate: 100, Data: make([]byte, 200)}, nil
	})
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	l, err := describe(b)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	return l
}

func TestDescribe(t *testing.T) {
	l := packListing(t)
	if len(l.Waves) != 3 || l.Waves[0].Name != "pad" || l.Waves[0].Seconds != 1 {
		t.Errorf("waves = %+v, want pad, tweet and chirp of one second", l.Waves)
	}
	if len(l.Effects) != 1 || l.Effects[0].Stages != 2 {
		t.Errorf("effects = %+v, want Echo with 2 stages", l.Effects)
	}
	if len(l.Tracks) != 1 {
		t.Fatalf("%d tracks, want 1", len(l.Tracks))
	}
	calm := l.Tracks[0]
	if calm.FadeIn != 2 || calm.FadeOut != 3 {
		t.Errorf("fades = %v/%v, want 2/3", calm.FadeIn, calm.FadeOut)
	}
	if len(calm.Layers) != 2 {
		t.Fatalf("%d layers, want 2", len(calm.Layers))
	}
	if pad := calm.Layers[0]; pad.Kind != "LoopLayer" || pad.Wave != "pad" {
		t.Errorf("first layer = %+v, want the pad loop", pad)
	}
	if birds := calm.Layers[1]; birds.Kind != "AleotoricLayer" || birds.Voices != 2 || birds.Effect != "Echo" {
		t.Errorf("second layer = %+v, want 2 voices through Echo", birds)
	}
}

func TestRenderListing(t *testing.T) {
	tmpl, err := listingTemplate("")
	if err != nil {
		t.Fatalf("listingTemplate: %v", err)
	}
	var buf bytes.Buffer
	if err := packListing(t).render(&buf, tmpl); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"FOREST", "Echo (2 stages)", "Calm fade 2s/3s", `looplayer Pad "pad"`, "aleotoriclayer Birds 2 voices"} {
		if !strings.Contains(out, want) {
			t.Errorf("listing lacks %q:\n%v", want, out)
		}
	}
}

func TestListingYaml(t *testing.T) {
	data, err := yaml.Marshal(packListing(t))
	if err != nil {
		t.Fatalf("yaml.Marshal: %v", err)
	}
	var back listing
	if err := yaml.Unmarshal(data, &back); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}
	if len(back.Tracks) != 1 || back.Tracks[0].FadeOut != 3 {
		t.Errorf("listing read back as %+v", back)
	}
}
