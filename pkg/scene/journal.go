package scene

// Journal is the undo log. Records made between Begin and End form one
// group; records made outside a group form a group of their own. Undo
// reverts the most recent group, newest record first.
type Journal struct {
	groups []undoGroup
	open   *undoGroup
}

type undoGroup struct {
	label   string
	reverts []func()
}

// NewJournal creates an empty undo log
func NewJournal() *Journal {
	return &Journal{}
}

// Begin opens a group. An already open group is closed first.
func (j *Journal) Begin(label string) {
	j.End()
	j.open = &undoGroup{label: label}
}

// End closes the open group. Empty groups are dropped.
func (j *Journal) End() {
	if j.open == nil {
		return
	}
	if len(j.open.reverts) > 0 {
		j.groups = append(j.groups, *j.open)
	}
	j.open = nil
}

func (j *Journal) record(label string, revert func()) {
	if j.open != nil {
		j.open.reverts = append(j.open.reverts, revert)
		return
	}
	j.groups = append(j.groups, undoGroup{label: label, reverts: []func(){revert}})
}

// Undo reverts the most recent group and returns its label
func (j *Journal) Undo() (string, bool) {
	j.End()
	if len(j.groups) == 0 {
		return "", false
	}
	g := j.groups[len(j.groups)-1]
	j.groups = j.groups[:len(j.groups)-1]
	for i := len(g.reverts) - 1; i >= 0; i-- {
		g.reverts[i]()
	}
	return g.label, true
}

// Len returns the number of undoable groups
func (j *Journal) Len() int {
	n := len(j.groups)
	if j.open != nil && len(j.open.reverts) > 0 {
		n++
	}
	return n
}

// Clear drops all history
func (j *Journal) Clear() {
	j.groups = nil
	j.open = nil
}
