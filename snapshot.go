package mng

// Snapshot is the coarse state of a music manager that survives a save and
// load: which track plays from which bundle, the mood and threat levels and
// the overall volume. Layer and variable state is not kept; a
// restored track starts over from its Initialise script.
type Snapshot struct {
	Bundle       string  `yaml:",omitempty"`
	Track        string  `yaml:",omitempty"`
	Playing      bool
	Mood         float64
	Threat       float64
	TargetMood   float64
	TargetThreat float64
	Volume       float64
}
