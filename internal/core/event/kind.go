package event

// Kind names a variant of event. Kinds form a chain rooted at Base, a
// timeline declared for a kind accepts events of that kind or of any kind
// derived from it.
type Kind struct {
	name   string
	parent *Kind
}

// Base is the root kind every event derives from
var Base = &Kind{name: "event"}

// NewKind derives a kind from parent, Base when parent is nil
func NewKind(name string, parent *Kind) *Kind {
	if parent == nil {
		parent = Base
	}
	return &Kind{name: name, parent: parent}
}

func (k *Kind) Name() string {
	return k.name
}

func (k *Kind) Parent() *Kind {
	return k.parent
}

// Is returns true when other is k or one of its ancestors
func (k *Kind) Is(other *Kind) bool {
	for current := k; current != nil; current = current.parent {
		if current == other {
			return true
		}
	}
	return false
}

func (k *Kind) String() string {
	if k.parent == nil {
		return k.name
	}
	return k.parent.String() + "/" + k.name
}
