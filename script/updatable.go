package script

// Updatable is the script machinery shared by layers, tracks and the
// manager: an Initialise action run once at every (re)start and an Update
// action run every tick, or every UpdateRate seconds when UpdateRate > 0.
type Updatable struct {
	Initialise *Action
	Update     *Action
	UpdateRate float64

	nextUpdate float64
}

// ParseElement parses an Initialise, Update or UpdateRate element whose
// keyword tok has already been consumed. It reports false, consuming
// nothing, if tok is none of those.
func (u *Updatable) ParseElement(tok Token, tz *Tokenizer, t *Table, scope Scope) (bool, error) {
	var err error
	switch {
	case tok.Is("Initialise"):
		if u.Initialise != nil {
			return true, Unexpected(tok)
		}
		u.Initialise, err = ParseAction(tz, t, scope)
	case tok.Is("Update"):
		if u.Update != nil {
			return true, Unexpected(tok)
		}
		u.Update, err = ParseAction(tz, t, scope)
	case tok.Is("UpdateRate"):
		u.UpdateRate, err = tz.ParseConstantArgument()
		if err == nil && u.UpdateRate < 0 {
			err = Unexpected(tok)
		}
	default:
		return false, nil
	}
	return true, err
}

// PreParseElement skips an Updatable element during the first pass over a
// script, returning the assignment targets of its actions.
func PreParseElement(tok Token, tz *Tokenizer) (bool, []Token, error) {
	switch {
	case tok.Is("Initialise"), tok.Is("Update"):
		targets, err := CollectTargets(tz)
		return true, targets, err
	case tok.Is("UpdateRate"):
		return true, nil, tz.Skip()
	}
	return false, nil, nil
}

// Start runs the Initialise action and schedules the first update for now.
func (u *Updatable) Start(t *Table, now float64) {
	u.Initialise.Perform(t)
	u.nextUpdate = now
}

// Tick runs the Update action if it is due. The due time then advances by
// UpdateRate from the previous due time, not from now.
func (u *Updatable) Tick(t *Table, now float64) {
	if u.Update == nil {
		return
	}
	if u.UpdateRate <= 0 {
		u.Update.Perform(t)
		return
	}
	if now >= u.nextUpdate {
		u.Update.Perform(t)
		u.nextUpdate += u.UpdateRate
	}
}

// NextUpdate returns the time the Update action is next due.
func (u *Updatable) NextUpdate() float64 {
	return u.nextUpdate
}
