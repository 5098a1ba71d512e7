package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type (
	// controls is the part of *music.Manager that typed commands drive.
	controls interface {
		BeginTrack(name string)
		InterruptTrack(name string)
		SetMood(v float64)
		SetThreat(v float64)
		SetVolume(v float64)
		Play()
		Pause()
		Fade()
		Stop()
	}

	// command is one line typed on standard input. Verbs that need more than
	// the manager (save, load, status, tracks, quit) are handled by the player
	// loop; apply ignores them.
	command struct {
		verb  string
		arg   string
		value float64
	}
)

var verbs = map[string]struct {
	arg, number bool
}{
	"track":     {arg: true},
	"interrupt": {arg: true},
	"mood":      {number: true},
	"threat":    {number: true},
	"volume":    {number: true},
	"play":      {},
	"pause":     {},
	"fade":      {},
	"stop":      {},
	"save":      {},
	"load":      {},
	"status":    {},
	"tracks":    {},
	"quit":      {},
}

func parseCommand(line string) (command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{}, fmt.Errorf("empty command")
	}
	c := command{verb: strings.ToLower(fields[0])}
	v, ok := verbs[c.verb]
	if !ok {
		return command{}, fmt.Errorf("unknown command %q", fields[0])
	}
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))
	switch {
	case v.number:
		if len(fields) != 2 {
			return command{}, fmt.Errorf("%v takes one number", c.verb)
		}
		f, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return command{}, fmt.Errorf("%v: %v", c.verb, err)
		}
		c.value = f
	case v.arg:
		if rest == "" {
			return command{}, fmt.Errorf("%v takes a track name", c.verb)
		}
		c.arg = rest
	default:
		// save and load take an optional slot name
		c.arg = rest
	}
	return c, nil
}

func (c command) apply(m controls) {
	switch c.verb {
	case "track":
		m.BeginTrack(c.arg)
	case "interrupt":
		m.InterruptTrack(c.arg)
	case "mood":
		m.SetMood(c.value)
	case "threat":
		m.SetThreat(c.value)
	case "volume":
		m.SetVolume(c.value)
	case "play":
		m.Play()
	case "pause":
		m.Pause()
	case "fade":
		m.Fade()
	case "stop":
		m.Stop()
	}
}

// readCommands sends the commands read from r until r ends or done closes.
// Malformed lines are reported on errs and skipped.
func readCommands(r io.Reader, commands chan<- command, errs chan<- error, done <-chan struct{}) {
	defer close(commands)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "" {
			continue
		}
		c, err := parseCommand(scanner.Text())
		if err != nil {
			select {
			case errs <- err:
			case <-done:
				return
			}
			continue
		}
		select {
		case commands <- c:
		case <-done:
			return
		}
	}
}
