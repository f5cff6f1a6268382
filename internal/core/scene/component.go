package scene

// Component is one behavioural unit attached to an Entity. Implementations
// embed Base, which carries the owning-entity binding; the binding is managed
// by the Scene on attach and detach, never by the component itself.
type Component interface {
	TypeName() string
	Entity() *Entity

	bind(owner *Entity)
	unbind()
}

// Updatable components receive ticks from the host loop while their entity
// chain is active.
type Updatable interface {
	Update(dt float64)
}

// Base is the embeddable half of Component.
type Base struct {
	owner *Entity
}

func (b *Base) Entity() *Entity { return b.owner }

func (b *Base) bind(owner *Entity) { b.owner = owner }

func (b *Base) unbind() { b.owner = nil }
