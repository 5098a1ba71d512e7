package music

import (
	"github.com/mnglab/mng"
	"github.com/mnglab/mng/script"
)

// WaveLibrary interns wave names. The first name seen gets WaveID 0, the
// next new name 1 and so on; IDs are never reused while the library lives.
// Names match case-insensitively.
type WaveLibrary struct {
	names []string
	index map[string]mng.WaveID
}

func NewWaveLibrary() *WaveLibrary {
	return &WaveLibrary{index: map[string]mng.WaveID{}}
}

// Intern returns the ID of name, assigning the next free one if the name is
// new.
func (l *WaveLibrary) Intern(name string) mng.WaveID {
	key := script.FoldName(name)
	if id, ok := l.index[key]; ok {
		return id
	}
	id := mng.WaveID(len(l.names))
	l.names = append(l.names, name)
	l.index[key] = id
	return id
}

func (l *WaveLibrary) Lookup(name string) (mng.WaveID, bool) {
	id, ok := l.index[script.FoldName(name)]
	return id, ok
}

// Name returns the name a wave was first interned with.
func (l *WaveLibrary) Name(id mng.WaveID) string {
	if id < 0 || int(id) >= len(l.names) {
		return ""
	}
	return l.names[id]
}

func (l *WaveLibrary) Len() int { return len(l.names) }

// Names returns the interned names in ID order.
func (l *WaveLibrary) Names() []string {
	ret := make([]string, len(l.names))
	copy(ret, l.names)
	return ret
}
